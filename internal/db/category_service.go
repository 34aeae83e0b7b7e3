package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/planora/planora/internal/models"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CategoryRequest holds category fields for create and update; nil fields are left untouched
type CategoryRequest struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	IsDefault   *bool
	Position    *int
}

// CreateCategory creates a category with a name unique to the user
func (s *Store) CreateCategory(ctx context.Context, userID uint, req CategoryRequest) (*models.Category, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("category name is required: %w", ErrInvalid)
	}

	category := models.Category{
		UserID: userID,
		Color:  models.DefaultCategoryColor,
	}
	if err := s.applyCategory(ctx, userID, &category, req); err != nil {
		return nil, err
	}

	if err := s.conn(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// applyCategory validates req and copies it onto c
func (s *Store) applyCategory(ctx context.Context, userID uint, c *models.Category, req CategoryRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || utf8.RuneCountInString(name) > 100 {
			return fmt.Errorf("category name must be 1-100 characters: %w", ErrInvalid)
		}

		var count int64
		err := s.conn(ctx).Model(&models.Category{}).
			Where("user_id = ? AND LOWER(name) = ? AND id <> ?", userID, strings.ToLower(name), c.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("category %q already exists: %w", name, ErrConflict)
		}
		c.Name = name
	}
	if req.Description != nil {
		c.Description = strings.TrimSpace(*req.Description)
	}
	if req.Color != nil {
		if !hexColor.MatchString(*req.Color) {
			return fmt.Errorf("color must look like #RRGGBB: %w", ErrInvalid)
		}
		c.Color = strings.ToUpper(*req.Color)
	}
	if req.Icon != nil {
		c.Icon = *req.Icon
	}
	if req.IsDefault != nil {
		c.IsDefault = *req.IsDefault
	}
	if req.Position != nil {
		c.Position = *req.Position
	}
	return nil
}

func (s *Store) getOwnedCategory(ctx context.Context, userID, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&category, id).Error; err != nil {
		return nil, notFound(err, "category", id)
	}
	return &category, nil
}

// ListCategories lists the user's categories with task statistics
func (s *Store) ListCategories(ctx context.Context, userID uint) ([]models.CategoryStats, error) {
	var categories []models.Category
	err := s.conn(ctx).Where("user_id = ?", userID).
		Order("position ASC").Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}

	var rows []struct {
		CategoryID uint
		Total      int64
		Completed  int64
	}
	err = s.conn(ctx).Model(&models.Task{}).
		Select("category_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed",
			models.StatusCompleted).
		Where("user_id = ? AND category_id IS NOT NULL", userID).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint][2]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = [2]int64{r.Total, r.Completed}
	}

	stats := make([]models.CategoryStats, len(categories))
	for i, c := range categories {
		n := counts[c.ID]
		stats[i] = models.CategoryStats{Category: c, TaskCount: n[0], CompletedTasks: n[1]}
		if n[0] > 0 {
			stats[i].CompletionRate = float64(n[1]) / float64(n[0]) * 100
		}
	}
	return stats, nil
}

// UpdateCategory applies a partial update to a category owned by the user
func (s *Store) UpdateCategory(ctx context.Context, userID, id uint, req CategoryRequest) (*models.Category, error) {
	category, err := s.getOwnedCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyCategory(ctx, userID, category, req); err != nil {
		return nil, err
	}
	if err := s.conn(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category; its tasks become uncategorized
func (s *Store) DeleteCategory(ctx context.Context, userID, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		category, err := tx.getOwnedCategory(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.conn(ctx).Model(&models.Task{}).
			Where("user_id = ? AND category_id = ?", userID, id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.conn(ctx).Delete(category).Error
	})
}
