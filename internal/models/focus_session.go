package models

import (
	"time"
)

// Focus session types
const (
	SessionPomodoro = "pomodoro"
	SessionDeepWork = "deep_work"
	SessionBreak    = "break"
)

// FocusSession represents a timed focus block, optionally tied to a task
type FocusSession struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID         uint       `gorm:"not null;index" json:"user_id"`
	TaskID         *uint      `gorm:"index" json:"task_id"`
	SessionType    string     `gorm:"size:20;default:pomodoro" json:"session_type"`
	PlannedMinutes int        `json:"planned_minutes"`
	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`
	Duration       int        `json:"duration"` // minutes, set on stop
	WasCompleted   bool       `gorm:"default:true" json:"was_completed"`

	Notes             string `json:"notes"`
	ProductivityScore *int   `json:"productivity_score"` // 1-10 self-rating

	// Relationships
	Task *Task `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"task,omitempty"`
}

// IsActive reports whether the session is still running
func (s *FocusSession) IsActive() bool {
	return s.EndedAt == nil
}

// ValidSessionType reports whether t is a known session type
func ValidSessionType(t string) bool {
	switch t {
	case SessionPomodoro, SessionDeepWork, SessionBreak:
		return true
	}
	return false
}
