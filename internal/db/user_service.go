package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/planora/planora/internal/models"
)

// CreateUserRequest holds the data needed to register a user
type CreateUserRequest struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

// UpdateProfileRequest holds optional profile changes; nil fields are left untouched
type UpdateProfileRequest struct {
	FirstName            *string
	LastName             *string
	Timezone             *string
	Theme                *string
	AvatarURL            *string
	NotificationsEnabled *bool
}

// TaskStats summarizes a user's tasks
type TaskStats struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	Pending        int64   `json:"pending"`
	Overdue        int64   `json:"overdue"`
	CompletionRate float64 `json:"completion_rate"`
}

// CreateUser registers a new account. Username and email must be unused.
func (s *Store) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.PasswordHash == "" {
		return nil, fmt.Errorf("username, email, and password are required: %w", ErrInvalid)
	}

	var count int64
	if err := s.conn(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("username already exists: %w", ErrConflict)
	}
	if err := s.conn(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("email already registered: %w", ErrConflict)
	}

	user := models.User{
		PublicID:             uuid.NewString(),
		Username:             username,
		Email:                email,
		PasswordHash:         req.PasswordHash,
		FirstName:            strings.TrimSpace(req.FirstName),
		LastName:             strings.TrimSpace(req.LastName),
		Timezone:             "UTC",
		Theme:                "light",
		NotificationsEnabled: true,
		IsActive:             true,
	}
	if err := s.conn(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser retrieves a user by ID
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.conn(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// TouchLastLogin records a successful login
func (s *Store) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return s.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// UpdateProfile applies profile changes and returns the updated user
func (s *Store) UpdateProfile(ctx context.Context, id uint, req UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, fmt.Errorf("unknown timezone %q: %w", *req.Timezone, ErrInvalid)
		}
		updates["timezone"] = *req.Timezone
	}
	if req.Theme != nil {
		if *req.Theme != "light" && *req.Theme != "dark" {
			return nil, fmt.Errorf("theme must be light or dark: %w", ErrInvalid)
		}
		updates["theme"] = *req.Theme
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.NotificationsEnabled != nil {
		updates["notifications_enabled"] = *req.NotificationsEnabled
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.conn(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// TaskStats computes task statistics for a user
func (s *Store) TaskStats(ctx context.Context, userID uint, now time.Time) (*TaskStats, error) {
	var stats TaskStats
	now = now.UTC()
	base := func() *gorm.DB {
		return s.conn(ctx).Model(&models.Task{}).Where("user_id = ?", userID)
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", models.StatusCompleted).Count(&stats.Completed).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status IN ?", []string{models.StatusTodo, models.StatusInProgress}).Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status <> ? AND due_date IS NOT NULL AND due_date < ?", models.StatusCompleted, now).Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
	}
	return &stats, nil
}
