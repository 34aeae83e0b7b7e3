package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/planora/planora/internal/models"
)

const defaultPlannedMinutes = 25

// StartSessionRequest describes a focus session to start
type StartSessionRequest struct {
	TaskID         *uint
	SessionType    string // pomodoro/deep_work/break, empty means pomodoro
	PlannedMinutes int    // zero means 25
}

// StopSessionRequest carries the optional reflection recorded when a session ends
type StopSessionRequest struct {
	Notes             string
	ProductivityScore *int  // 1-10
	WasCompleted      *bool // defaults to true
}

// StartSession starts a new focus session. A user may have only one active session.
func (s *Store) StartSession(ctx context.Context, userID uint, req StartSessionRequest) (*models.FocusSession, error) {
	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = models.SessionPomodoro
	}
	if !models.ValidSessionType(sessionType) {
		return nil, fmt.Errorf("invalid session type %q: %w", req.SessionType, ErrInvalid)
	}

	planned := req.PlannedMinutes
	if planned == 0 {
		planned = defaultPlannedMinutes
	}
	if planned < 0 || planned > 24*60 {
		return nil, fmt.Errorf("planned minutes must be between 1 and 1440: %w", ErrInvalid)
	}

	var session models.FocusSession
	err := s.Transaction(ctx, func(tx *Store) error {
		// Check if the task exists
		if req.TaskID != nil {
			if _, err := tx.GetTask(ctx, userID, *req.TaskID); err != nil {
				return err
			}
		}

		// Check if there's already an active session
		active, err := tx.GetActiveSession(ctx, userID)
		if err != nil {
			return err
		}
		if active != nil {
			return fmt.Errorf("session #%d is already active, stop it first: %w", active.ID, ErrConflict)
		}

		session = models.FocusSession{
			UserID:         userID,
			TaskID:         req.TaskID,
			SessionType:    sessionType,
			PlannedMinutes: planned,
			StartedAt:      time.Now().UTC(),
		}
		return tx.conn(ctx).Create(&session).Error
	})
	if err != nil {
		return nil, err
	}

	return s.getSession(ctx, userID, session.ID)
}

func (s *Store) getSession(ctx context.Context, userID, id uint) (*models.FocusSession, error) {
	var session models.FocusSession
	err := s.conn(ctx).Preload("Task").Where("user_id = ?", userID).First(&session, id).Error
	if err != nil {
		return nil, notFound(err, "focus session", id)
	}
	return &session, nil
}

// StopSession ends an active session, recording its duration in whole minutes.
// Time spent is added to the linked task's actual duration.
func (s *Store) StopSession(ctx context.Context, userID, id uint, req StopSessionRequest) (*models.FocusSession, error) {
	if req.ProductivityScore != nil && (*req.ProductivityScore < 1 || *req.ProductivityScore > 10) {
		return nil, fmt.Errorf("productivity score must be between 1 and 10: %w", ErrInvalid)
	}

	err := s.Transaction(ctx, func(tx *Store) error {
		session, err := tx.getSession(ctx, userID, id)
		if err != nil {
			return err
		}
		if !session.IsActive() {
			return fmt.Errorf("focus session #%d has already ended: %w", id, ErrConflict)
		}

		// Stop the session
		now := time.Now().UTC()
		minutes := int(now.Sub(session.StartedAt).Minutes())
		if minutes < 0 {
			minutes = 0
		}
		completed := true
		if req.WasCompleted != nil {
			completed = *req.WasCompleted
		}

		updates := map[string]any{
			"ended_at":      now,
			"duration":      minutes,
			"was_completed": completed,
			"notes":         req.Notes,
		}
		if req.ProductivityScore != nil {
			updates["productivity_score"] = *req.ProductivityScore
		}
		if err := tx.conn(ctx).Model(session).Updates(updates).Error; err != nil {
			return err
		}

		if session.TaskID != nil && minutes > 0 {
			return tx.conn(ctx).Model(&models.Task{}).
				Where("id = ? AND user_id = ?", *session.TaskID, userID).
				Update("actual_duration", gorm.Expr("COALESCE(actual_duration, 0) + ?", minutes)).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.getSession(ctx, userID, id)
}

// StopActiveSession stops the user's currently active session
func (s *Store) StopActiveSession(ctx context.Context, userID uint, req StopSessionRequest) (*models.FocusSession, error) {
	active, err := s.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, fmt.Errorf("no active session: %w", ErrNotFound)
	}
	return s.StopSession(ctx, userID, active.ID, req)
}

// GetActiveSession returns the currently active session, if any.
// No active session is not an error; both return values are nil.
func (s *Store) GetActiveSession(ctx context.Context, userID uint) (*models.FocusSession, error) {
	var session models.FocusSession

	err := s.conn(ctx).Where("user_id = ? AND ended_at IS NULL", userID).
		Preload("Task").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// ListSessions returns the user's most recent sessions
func (s *Store) ListSessions(ctx context.Context, userID uint, limit int) ([]models.FocusSession, error) {
	if limit <= 0 || limit > maxPerPage {
		limit = defaultPerPage
	}

	var sessions []models.FocusSession
	err := s.conn(ctx).Where("user_id = ?", userID).
		Preload("Task").
		Order("started_at DESC").Order("id DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSessionsInRange returns all finished sessions started within the range
func (s *Store) GetSessionsInRange(ctx context.Context, userID uint, startTime, endTime time.Time) ([]models.FocusSession, error) {
	var sessions []models.FocusSession

	err := s.conn(ctx).
		Where("user_id = ? AND started_at >= ? AND started_at <= ? AND ended_at IS NOT NULL",
			userID, startTime.UTC(), endTime.UTC()).
		Preload("Task").
		Preload("Task.Tags").
		Order("started_at ASC").
		Find(&sessions).Error

	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// FocusMinutes sums the minutes of finished sessions started at or after since
func (s *Store) FocusMinutes(ctx context.Context, userID uint, since time.Time) (int, error) {
	var total int64
	err := s.conn(ctx).Model(&models.FocusSession{}).
		Select("COALESCE(SUM(duration), 0)").
		Where("user_id = ? AND started_at >= ? AND ended_at IS NOT NULL", userID, since.UTC()).
		Row().Scan(&total)
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
