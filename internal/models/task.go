package models

import (
	"time"
)

// Task statuses
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task represents a unit of work owned by a single user
type Task struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `json:"description"`
	Priority    string `gorm:"size:20;default:medium" json:"priority"`
	Status      string `gorm:"size:20;default:todo;index" json:"status"`

	DueDate     *time.Time `gorm:"index" json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`

	EstimatedDuration *int `json:"estimated_duration"` // minutes
	ActualDuration    *int `json:"actual_duration"`    // minutes

	Position   int   `gorm:"default:0" json:"position"`
	CategoryID *uint `gorm:"index" json:"category_id"`

	// Learning resources attached by the plan generator
	Resources []Resource `gorm:"serializer:json" json:"resources"`

	// Relationships
	Projects []Project `gorm:"many2many:project_tasks;" json:"projects,omitempty"`
	Tags     []Tag     `gorm:"many2many:task_tags;" json:"tags,omitempty"`
}

// Resource is a named link attached to a task
type Resource struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// IsCompleted reports whether the task has been finished
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue reports whether the task is past its due date and still open
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.IsCompleted() && now.After(*t.DueDate)
}

// FirstProjectID returns the id of the first associated project, if any
func (t *Task) FirstProjectID() *uint {
	if len(t.Projects) == 0 {
		return nil
	}
	id := t.Projects[0].ID
	return &id
}

// Tag represents a task tag, unique per user
type Tag struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"-"`
	Name   string `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"name"`

	// Relationships
	Tasks []Task `gorm:"many2many:task_tags;" json:"-"`
}

// ValidStatus reports whether s is a known task status
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known task priority
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
