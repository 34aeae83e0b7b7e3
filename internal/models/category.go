package models

import (
	"time"
)

// DefaultCategoryColor is used when a category is created without a color
const DefaultCategoryColor = "#3B82F6"

// Category is a user-defined bucket for tasks
type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `json:"description"`
	Color       string `gorm:"size:7;default:#3B82F6" json:"color"` // hex
	Icon        string `gorm:"size:50" json:"icon"`
	IsDefault   bool   `gorm:"default:false" json:"is_default"`
	Position    int    `gorm:"default:0" json:"position"`
}

// CategoryStats summarizes the tasks filed under a category
type CategoryStats struct {
	Category
	TaskCount      int64   `json:"task_count"`
	CompletedTasks int64   `json:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}
