package models

import (
	"time"
)

// Note is a markdown note, optionally attached to a project
type Note struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID    uint   `gorm:"not null;index" json:"user_id"`
	ProjectID *uint  `gorm:"index" json:"project_id"`
	Title     string `gorm:"size:200" json:"title"`
	Content   string `gorm:"not null" json:"content"`

	Project *Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}
