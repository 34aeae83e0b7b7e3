package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/parser"
)

// optionalDate tells an absent field from an explicit null
type optionalDate struct {
	Set   bool
	Value string
}

func (d *optionalDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &d.Value)
}

// parse returns the date, or nil when the field was null or empty
func (d optionalDate) parse() (*time.Time, error) {
	if strings.TrimSpace(d.Value) == "" {
		return nil, nil
	}
	t, err := parser.ParseISODate(d.Value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type createTaskRequest struct {
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Priority          string       `json:"priority"`
	Status            string       `json:"status"`
	DueDate           optionalDate `json:"due_date"`
	EstimatedDuration *int         `json:"estimated_duration"`
	CategoryID        *uint        `json:"category_id"`
	ProjectID         *uint        `json:"project_id"`
	Tags              []string     `json:"tags"`
}

type updateTaskRequest struct {
	Title             *string      `json:"title"`
	Description       *string      `json:"description"`
	Priority          *string      `json:"priority"`
	Status            *string      `json:"status"`
	DueDate           optionalDate `json:"due_date"`
	EstimatedDuration *int         `json:"estimated_duration"`
	ActualDuration    *int         `json:"actual_duration"`
	CategoryID        *uint        `json:"category_id"`
	ProjectID         *uint        `json:"project_id"`
	Tags              *[]string    `json:"tags"`
}

type reorderRequest struct {
	TaskIDs []uint `json:"task_ids"`
}

type pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		fail(c, http.StatusBadRequest, "Task title is required")
		return
	}

	due, err := req.DueDate.parse()
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid due_date, use YYYY-MM-DD or RFC 3339")
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), currentUser(c), db.CreateTaskRequest{
		Title:             req.Title,
		Description:       req.Description,
		Priority:          req.Priority,
		Status:            req.Status,
		DueDate:           due,
		EstimatedDuration: req.EstimatedDuration,
		CategoryID:        req.CategoryID,
		ProjectID:         req.ProjectID,
		Tags:              req.Tags,
	})
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Task created", gin.H{"task": task})
}

func (s *Server) handleListTasks(c *gin.Context) {
	opts := db.TaskQueryOptions{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Tag:      c.Query("tag"),
		Overdue:  c.Query("overdue") == "true",
		SortBy:   c.Query("sort"),
		SortDesc: strings.EqualFold(c.Query("order"), "desc"),
		Now:      s.now(),
	}

	var valid bool
	if opts.ProjectID, valid = queryUint(c, "project_id"); !valid {
		return
	}
	if opts.CategoryID, valid = queryUint(c, "category_id"); !valid {
		return
	}
	if opts.Page, valid = queryInt(c, "page"); !valid {
		return
	}
	if opts.PerPage, valid = queryInt(c, "per_page"); !valid {
		return
	}
	for key, dst := range map[string]**time.Time{"due_after": &opts.DueAfter, "due_before": &opts.DueBefore} {
		if raw := c.Query(key); raw != "" {
			t, err := parser.ParseISODate(raw)
			if err != nil {
				fail(c, http.StatusBadRequest, "Invalid "+key)
				return
			}
			*dst = &t
		}
	}

	tasks, total, err := s.store.ListTasks(c.Request.Context(), currentUser(c), opts)
	if err != nil {
		s.storeError(c, err)
		return
	}

	page, perPage := db.NormalizePage(opts.Page, opts.PerPage)
	ok(c, http.StatusOK, "", gin.H{
		"tasks": tasks,
		"pagination": pagination{
			Page:    page,
			PerPage: perPage,
			Total:   total,
			Pages:   (total + int64(perPage) - 1) / int64(perPage),
		},
	})
}

func (s *Server) handleSearchTasks(c *gin.Context) {
	limit, valid := queryInt(c, "limit")
	if !valid {
		return
	}
	tasks, err := s.store.SearchTasks(c.Request.Context(), currentUser(c), c.Query("q"), limit)
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"tasks": tasks, "count": len(tasks)})
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}
	task, err := s.store.GetTask(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"task": task})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}
	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	update := db.UpdateTaskRequest{
		Title:             req.Title,
		Description:       req.Description,
		Priority:          req.Priority,
		Status:            req.Status,
		EstimatedDuration: req.EstimatedDuration,
		ActualDuration:    req.ActualDuration,
		CategoryID:        req.CategoryID,
		ProjectID:         req.ProjectID,
		Tags:              req.Tags,
	}
	if req.DueDate.Set {
		due, err := req.DueDate.parse()
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid due_date, use YYYY-MM-DD or RFC 3339")
			return
		}
		update.DueDate = due
		update.ClearDueDate = due == nil
	}

	task, err := s.store.UpdateTask(c.Request.Context(), currentUser(c), id, update)
	if err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Task updated", gin.H{"task": task})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, found := idParam(c, "id")
	if !found {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), currentUser(c), id); err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Task deleted successfully", nil)
}

func (s *Server) handleReorderTasks(c *gin.Context) {
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := s.store.ReorderTasks(c.Request.Context(), currentUser(c), req.TaskIDs); err != nil {
		s.storeError(c, err)
		return
	}
	ok(c, http.StatusOK, "Tasks reordered", nil)
}
