package db

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/planora/planora/internal/models"
)

const maxProjectNameLength = 255

// CreateProjectRequest holds the data needed to create a project
type CreateProjectRequest struct {
	Name        string
	Description string
}

// UpdateProjectRequest holds a partial project update
type UpdateProjectRequest struct {
	Name        *string
	Description *string
	Status      *string
}

// ProjectDetail is a project together with its task progress
type ProjectDetail struct {
	models.Project
	TaskCount      int64   `json:"task_count"`
	CompletedTasks int64   `json:"completed_tasks"`
	Progress       float64 `json:"progress"` // percent of tasks completed
}

// CreateProject creates an active project owned by the user
func (s *Store) CreateProject(ctx context.Context, userID uint, req CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("project name is required: %w", ErrInvalid)
	}
	if utf8.RuneCountInString(name) > maxProjectNameLength {
		return nil, fmt.Errorf("project name exceeds %d characters: %w", maxProjectNameLength, ErrInvalid)
	}

	project := models.Project{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Status:      models.ProjectActive,
	}
	if err := s.conn(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Store) getOwnedProject(ctx context.Context, userID, id uint) (*models.Project, error) {
	var project models.Project
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&project, id).Error; err != nil {
		return nil, notFound(err, "project", id)
	}
	return &project, nil
}

// GetProject retrieves a project owned by the user with its task progress
func (s *Store) GetProject(ctx context.Context, userID, id uint) (*ProjectDetail, error) {
	project, err := s.getOwnedProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	details, err := s.withProgress(ctx, []models.Project{*project})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListProjects lists the user's projects, newest first. An empty status lists all.
func (s *Store) ListProjects(ctx context.Context, userID uint, status string) ([]ProjectDetail, error) {
	query := s.conn(ctx).Where("user_id = ?", userID)
	if status != "" {
		if !models.ValidProjectStatus(status) {
			return nil, fmt.Errorf("invalid project status %q: %w", status, ErrInvalid)
		}
		query = query.Where("status = ?", status)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Order("id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return s.withProgress(ctx, projects)
}

// withProgress attaches task counts to each project
func (s *Store) withProgress(ctx context.Context, projects []models.Project) ([]ProjectDetail, error) {
	details := make([]ProjectDetail, len(projects))
	if len(projects) == 0 {
		return details, nil
	}

	ids := make([]uint, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	var rows []struct {
		ProjectID uint
		Total     int64
		Completed int64
	}
	err := s.conn(ctx).Table("project_tasks").
		Select("project_tasks.project_id AS project_id, COUNT(*) AS total, "+
			"SUM(CASE WHEN tasks.status = ? THEN 1 ELSE 0 END) AS completed", models.StatusCompleted).
		Joins("JOIN tasks ON tasks.id = project_tasks.task_id").
		Where("project_tasks.project_id IN ?", ids).
		Group("project_tasks.project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint][2]int64, len(rows))
	for _, r := range rows {
		counts[r.ProjectID] = [2]int64{r.Total, r.Completed}
	}

	for i, p := range projects {
		c := counts[p.ID]
		details[i] = ProjectDetail{Project: p, TaskCount: c[0], CompletedTasks: c[1]}
		if c[0] > 0 {
			details[i].Progress = float64(c[1]) / float64(c[0]) * 100
		}
	}
	return details, nil
}

// UpdateProject applies a partial update to a project owned by the user
func (s *Store) UpdateProject(ctx context.Context, userID, id uint, req UpdateProjectRequest) (*ProjectDetail, error) {
	project, err := s.getOwnedProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || utf8.RuneCountInString(name) > maxProjectNameLength {
			return nil, fmt.Errorf("project name must be 1-%d characters: %w", maxProjectNameLength, ErrInvalid)
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		if !models.ValidProjectStatus(*req.Status) {
			return nil, fmt.Errorf("invalid project status %q: %w", *req.Status, ErrInvalid)
		}
		for k, v := range statusUpdates(project, *req.Status) {
			updates[k] = v
		}
	}

	if len(updates) > 0 {
		if err := s.conn(ctx).Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetProject(ctx, userID, id)
}

// SetProjectStatus moves a project to active, completed or archived
func (s *Store) SetProjectStatus(ctx context.Context, userID, id uint, status string) (*models.Project, error) {
	if !models.ValidProjectStatus(status) {
		return nil, fmt.Errorf("invalid project status %q: %w", status, ErrInvalid)
	}

	project, err := s.getOwnedProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if project.Status == status {
		return nil, fmt.Errorf("project #%d is already %s: %w", id, status, ErrConflict)
	}

	if err := s.conn(ctx).Model(project).Updates(statusUpdates(project, status)).Error; err != nil {
		return nil, err
	}
	return s.getOwnedProject(ctx, userID, id)
}

func statusUpdates(project *models.Project, status string) map[string]any {
	updates := map[string]any{"status": status}
	switch {
	case status == models.ProjectCompleted && project.CompletedAt == nil:
		updates["completed_at"] = time.Now().UTC()
	case status != models.ProjectCompleted:
		updates["completed_at"] = nil
	}
	return updates
}

// DeleteProject removes a project and its task associations. The tasks themselves survive.
func (s *Store) DeleteProject(ctx context.Context, userID, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		project, err := tx.getOwnedProject(ctx, userID, id)
		if err != nil {
			return err
		}

		if err := tx.conn(ctx).Model(project).Association("Tasks").Clear(); err != nil {
			return err
		}
		if err := tx.conn(ctx).Model(&models.Note{}).
			Where("project_id = ?", id).Update("project_id", nil).Error; err != nil {
			return err
		}

		return tx.conn(ctx).Delete(project).Error
	})
}

// ProjectTasks lists a project's tasks by due date, undated tasks last
func (s *Store) ProjectTasks(ctx context.Context, userID, projectID uint) ([]models.Task, error) {
	if _, err := s.getOwnedProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	var tasks []models.Task
	err := s.conn(ctx).Preload("Tags").
		Joins("JOIN project_tasks ON project_tasks.task_id = tasks.id").
		Where("project_tasks.project_id = ? AND tasks.user_id = ?", projectID, userID).
		Scopes(byDueDate).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// byDueDate orders tasks by due date with undated tasks last
func byDueDate(db *gorm.DB) *gorm.DB {
	return db.Order("tasks.due_date IS NULL").Order("tasks.due_date ASC").Order("tasks.id ASC")
}
