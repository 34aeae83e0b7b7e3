package models

import (
	"time"
)

// Project statuses
const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectArchived  = "archived"
)

// Project groups tasks toward a goal
type Project struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description string     `json:"description"`
	Status      string     `gorm:"size:50;default:active;index" json:"status"`
	CompletedAt *time.Time `json:"completed_at"`

	// Relationships
	Tasks []Task `gorm:"many2many:project_tasks;" json:"tasks,omitempty"`
}

// ValidProjectStatus reports whether s is a known project status
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}
