package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/planora/planora/internal/models"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
	maxTitleLength = 200
)

// CreateTaskRequest holds the data needed to create a new task
type CreateTaskRequest struct {
	Title             string
	Description       string
	Priority          string // low/medium/high, empty means medium
	Status            string // empty means todo
	DueDate           *time.Time
	EstimatedDuration *int
	CategoryID        *uint
	ProjectID         *uint
	Tags              []string
	Resources         []models.Resource
}

// UpdateTaskRequest holds a partial task update; nil fields are left untouched
type UpdateTaskRequest struct {
	Title             *string
	Description       *string
	Priority          *string
	Status            *string
	DueDate           *time.Time
	ClearDueDate      bool
	EstimatedDuration *int
	ActualDuration    *int
	CategoryID        *uint
	ProjectID         *uint // replaces the task's project associations
	Tags              *[]string
}

// TaskQueryOptions holds filtering, sorting and paging options for task queries
type TaskQueryOptions struct {
	Status     string
	Priority   string
	ProjectID  *uint
	CategoryID *uint
	Tag        string
	Overdue    bool
	DueAfter   *time.Time
	DueBefore  *time.Time
	SortBy     string
	SortDesc   bool
	Page       int
	PerPage    int
	Now        time.Time // reference time for Overdue, defaults to time.Now
}

// sortColumns whitelists the columns tasks may be ordered by
var sortColumns = map[string]string{
	"created_at": "tasks.created_at",
	"updated_at": "tasks.updated_at",
	"due_date":   "tasks.due_date",
	"title":      "tasks.title",
	"status":     "tasks.status",
	"position":   "tasks.position",
	"priority":   "CASE tasks.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END",
}

// CreateTask creates a new task with tags and an optional project association
func (s *Store) CreateTask(ctx context.Context, userID uint, req CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("task title is required: %w", ErrInvalid)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, fmt.Errorf("task title exceeds %d characters: %w", maxTitleLength, ErrInvalid)
	}

	priority := strings.ToLower(strings.TrimSpace(req.Priority))
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q: %w", req.Priority, ErrInvalid)
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status == "" {
		status = models.StatusTodo
	}
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q: %w", req.Status, ErrInvalid)
	}

	if req.EstimatedDuration != nil && *req.EstimatedDuration < 0 {
		return nil, fmt.Errorf("estimated duration must not be negative: %w", ErrInvalid)
	}

	task := models.Task{
		UserID:            userID,
		Title:             title,
		Description:       strings.TrimSpace(req.Description),
		Priority:          priority,
		Status:            status,
		EstimatedDuration: req.EstimatedDuration,
		Resources:         req.Resources,
	}
	if req.DueDate != nil {
		due := req.DueDate.UTC()
		task.DueDate = &due
	}
	if status == models.StatusCompleted {
		now := time.Now().UTC()
		task.CompletedAt = &now
	}

	if req.CategoryID != nil {
		if _, err := s.getOwnedCategory(ctx, userID, *req.CategoryID); err != nil {
			return nil, err
		}
		task.CategoryID = req.CategoryID
	}

	if req.ProjectID != nil {
		project, err := s.getOwnedProject(ctx, userID, *req.ProjectID)
		if err != nil {
			return nil, err
		}
		task.Projects = []models.Project{*project}
	}

	// Process tags
	if len(req.Tags) > 0 {
		tags, err := s.findOrCreateTags(ctx, userID, req.Tags)
		if err != nil {
			return nil, err
		}
		task.Tags = tags
	}

	// New tasks go to the end of the user's list
	var maxPos sql.NullInt64
	if err := s.conn(ctx).Model(&models.Task{}).Where("user_id = ?", userID).
		Select("MAX(position)").Row().Scan(&maxPos); err != nil {
		return nil, err
	}
	if maxPos.Valid {
		task.Position = int(maxPos.Int64) + 1
	}

	// Associated rows already exist, only the join rows are written
	if err := s.conn(ctx).Omit("Projects.*", "Tags.*").Create(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// findOrCreateTags finds the user's existing tags or creates new ones
func (s *Store) findOrCreateTags(ctx context.Context, userID uint, tagNames []string) ([]models.Tag, error) {
	var tags []models.Tag
	seen := map[string]bool{}

	for _, name := range tagNames {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var tag models.Tag
		err := s.conn(ctx).Where(models.Tag{UserID: userID, Name: name}).FirstOrCreate(&tag).Error
		if err != nil {
			return nil, err
		}

		tags = append(tags, tag)
	}

	return tags, nil
}

// GetTask retrieves a task owned by the user
func (s *Store) GetTask(ctx context.Context, userID, id uint) (*models.Task, error) {
	var task models.Task

	err := s.conn(ctx).Preload("Tags").Preload("Projects").
		Where("user_id = ?", userID).First(&task, id).Error
	if err != nil {
		return nil, notFound(err, "task", id)
	}

	return &task, nil
}

// ListTasks retrieves a page of tasks matching opts along with the total match count
func (s *Store) ListTasks(ctx context.Context, userID uint, opts TaskQueryOptions) ([]models.Task, int64, error) {
	query, err := s.taskQuery(ctx, userID, opts)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, err := taskOrder(opts.SortBy, opts.SortDesc)
	if err != nil {
		return nil, 0, err
	}

	page, perPage := NormalizePage(opts.Page, opts.PerPage)

	var tasks []models.Task
	err = query.Preload("Tags").Preload("Projects").
		Order(order).Order("tasks.id ASC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (s *Store) taskQuery(ctx context.Context, userID uint, opts TaskQueryOptions) (*gorm.DB, error) {
	query := s.conn(ctx).Model(&models.Task{}).Where("tasks.user_id = ?", userID)

	if opts.Status != "" {
		if !models.ValidStatus(opts.Status) {
			return nil, fmt.Errorf("invalid status %q: %w", opts.Status, ErrInvalid)
		}
		query = query.Where("tasks.status = ?", opts.Status)
	}
	if opts.Priority != "" {
		if !models.ValidPriority(opts.Priority) {
			return nil, fmt.Errorf("invalid priority %q: %w", opts.Priority, ErrInvalid)
		}
		query = query.Where("tasks.priority = ?", opts.Priority)
	}
	if opts.ProjectID != nil {
		query = query.Joins("JOIN project_tasks ON project_tasks.task_id = tasks.id").
			Where("project_tasks.project_id = ?", *opts.ProjectID)
	}
	if opts.CategoryID != nil {
		query = query.Where("tasks.category_id = ?", *opts.CategoryID)
	}
	if opts.Tag != "" {
		query = query.Joins("JOIN task_tags ON task_tags.task_id = tasks.id").
			Joins("JOIN tags ON tags.id = task_tags.tag_id").
			Where("tags.name = ?", strings.ToLower(strings.TrimSpace(opts.Tag)))
	}
	if opts.Overdue {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		query = query.Where("tasks.status <> ? AND tasks.due_date IS NOT NULL AND tasks.due_date < ?",
			models.StatusCompleted, now.UTC())
	}
	if opts.DueAfter != nil {
		query = query.Where("tasks.due_date >= ?", opts.DueAfter.UTC())
	}
	if opts.DueBefore != nil {
		query = query.Where("tasks.due_date <= ?", opts.DueBefore.UTC())
	}

	return query, nil
}

func taskOrder(sortBy string, desc bool) (string, error) {
	if sortBy == "" {
		sortBy = "position"
	}
	column, ok := sortColumns[sortBy]
	if !ok {
		return "", fmt.Errorf("cannot sort by %q: %w", sortBy, ErrInvalid)
	}

	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	if sortBy == "due_date" {
		// Tasks without a due date always sort last
		return fmt.Sprintf("tasks.due_date IS NULL, %s %s", column, direction), nil
	}
	return column + " " + direction, nil
}

// NormalizePage applies the paging defaults: page 1, 20 per page, at most 100
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// UpdateTask applies a partial update to a task owned by the user
func (s *Store) UpdateTask(ctx context.Context, userID, id uint, req UpdateTaskRequest) (*models.Task, error) {
	err := s.Transaction(ctx, func(tx *Store) error {
		task, err := tx.GetTask(ctx, userID, id)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
				return fmt.Errorf("task title must be 1-%d characters: %w", maxTitleLength, ErrInvalid)
			}
			updates["title"] = title
		}
		if req.Description != nil {
			updates["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Priority != nil {
			if !models.ValidPriority(*req.Priority) {
				return fmt.Errorf("invalid priority %q: %w", *req.Priority, ErrInvalid)
			}
			updates["priority"] = *req.Priority
		}
		if req.Status != nil {
			if !models.ValidStatus(*req.Status) {
				return fmt.Errorf("invalid status %q: %w", *req.Status, ErrInvalid)
			}
			updates["status"] = *req.Status
			switch {
			case *req.Status == models.StatusCompleted && !task.IsCompleted():
				updates["completed_at"] = time.Now().UTC()
			case *req.Status != models.StatusCompleted:
				updates["completed_at"] = nil
			}
		}
		if req.ClearDueDate {
			updates["due_date"] = nil
		} else if req.DueDate != nil {
			updates["due_date"] = req.DueDate.UTC()
		}
		if req.EstimatedDuration != nil {
			if *req.EstimatedDuration < 0 {
				return fmt.Errorf("estimated duration must not be negative: %w", ErrInvalid)
			}
			updates["estimated_duration"] = *req.EstimatedDuration
		}
		if req.ActualDuration != nil {
			if *req.ActualDuration < 0 {
				return fmt.Errorf("actual duration must not be negative: %w", ErrInvalid)
			}
			updates["actual_duration"] = *req.ActualDuration
		}
		if req.CategoryID != nil {
			if _, err := tx.getOwnedCategory(ctx, userID, *req.CategoryID); err != nil {
				return err
			}
			updates["category_id"] = *req.CategoryID
		}

		if len(updates) > 0 {
			if err := tx.conn(ctx).Model(task).Updates(updates).Error; err != nil {
				return err
			}
		}

		if req.ProjectID != nil {
			project, err := tx.getOwnedProject(ctx, userID, *req.ProjectID)
			if err != nil {
				return err
			}
			if err := tx.conn(ctx).Model(task).Association("Projects").Replace(project); err != nil {
				return err
			}
		}

		if req.Tags != nil {
			tags, err := tx.findOrCreateTags(ctx, userID, *req.Tags)
			if err != nil {
				return err
			}
			if err := tx.conn(ctx).Model(task).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTask(ctx, userID, id)
}

// MarkTaskDone marks a task as completed and stops any active session on it
func (s *Store) MarkTaskDone(ctx context.Context, userID, id uint) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if task.IsCompleted() {
		return nil, fmt.Errorf("task #%d is already completed: %w", id, ErrConflict)
	}

	// Check if there's an active session for this task and stop it
	active, err := s.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil && active.TaskID != nil && *active.TaskID == id {
		if _, err := s.StopSession(ctx, userID, active.ID, StopSessionRequest{}); err != nil {
			return nil, fmt.Errorf("failed to stop active session: %w", err)
		}
	}

	now := time.Now().UTC()
	err = s.conn(ctx).Model(task).Updates(map[string]any{
		"status":       models.StatusCompleted,
		"completed_at": now,
	}).Error
	if err != nil {
		return nil, err
	}

	return s.GetTask(ctx, userID, id)
}

// MarkTaskUndone moves a completed task back to todo
func (s *Store) MarkTaskUndone(ctx context.Context, userID, id uint) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if !task.IsCompleted() {
		return nil, fmt.Errorf("task #%d is not completed: %w", id, ErrConflict)
	}

	err = s.conn(ctx).Model(task).Updates(map[string]any{
		"status":       models.StatusTodo,
		"completed_at": nil,
	}).Error
	if err != nil {
		return nil, err
	}

	return s.GetTask(ctx, userID, id)
}

// DeleteTask removes a task together with its project and tag associations
func (s *Store) DeleteTask(ctx context.Context, userID, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		task, err := tx.GetTask(ctx, userID, id)
		if err != nil {
			return err
		}

		if err := tx.conn(ctx).Model(task).Association("Projects").Clear(); err != nil {
			return err
		}
		if err := tx.conn(ctx).Model(task).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.conn(ctx).Model(&models.FocusSession{}).
			Where("task_id = ?", id).Update("task_id", nil).Error; err != nil {
			return err
		}

		return tx.conn(ctx).Delete(task).Error
	})
}

// ReorderTasks assigns positions to the given tasks in slice order
func (s *Store) ReorderTasks(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return fmt.Errorf("no task ids given: %w", ErrInvalid)
	}

	unique := map[uint]bool{}
	for _, id := range ids {
		unique[id] = true
	}
	if len(unique) != len(ids) {
		return fmt.Errorf("task ids must not repeat: %w", ErrInvalid)
	}

	return s.Transaction(ctx, func(tx *Store) error {
		var owned int64
		if err := tx.conn(ctx).Model(&models.Task{}).
			Where("user_id = ? AND id IN ?", userID, ids).Count(&owned).Error; err != nil {
			return err
		}
		if owned != int64(len(ids)) {
			return fmt.Errorf("one or more tasks: %w", ErrNotFound)
		}

		for pos, id := range ids {
			if err := tx.conn(ctx).Model(&models.Task{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AddTaskToProject associates an existing task with a project; repeated calls are no-ops
func (s *Store) AddTaskToProject(ctx context.Context, userID, taskID, projectID uint) error {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return err
	}
	project, err := s.getOwnedProject(ctx, userID, projectID)
	if err != nil {
		return err
	}

	for _, p := range task.Projects {
		if p.ID == projectID {
			return nil
		}
	}

	return s.conn(ctx).Model(task).Association("Projects").Append(project)
}

// SearchTasks finds tasks whose title or description contains query.
// Results are ranked: exact title match, title prefix, title suffix, then contains.
func (s *Store) SearchTasks(ctx context.Context, userID uint, query string, limit int) ([]models.Task, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, fmt.Errorf("search query is required: %w", ErrInvalid)
	}

	pattern := "%" + escapeLike(q) + "%"

	var tasks []models.Task
	err := s.conn(ctx).Preload("Tags").Preload("Projects").
		Where("user_id = ?", userID).
		Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return matchRank(tasks[i].Title, tasks[i].Description, q) < matchRank(tasks[j].Title, tasks[j].Description, q)
	})

	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

// matchRank scores how well q matches; lower is better
func matchRank(primary, secondary, q string) int {
	p := strings.ToLower(primary)
	switch {
	case p == q:
		return 0
	case strings.HasPrefix(p, q):
		return 1
	case strings.HasSuffix(p, q):
		return 2
	case strings.Contains(p, q):
		return 3
	case strings.Contains(strings.ToLower(secondary), q):
		return 4
	}
	return 5
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
