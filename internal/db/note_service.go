package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/planora/planora/internal/models"
)

// NoteRequest holds note fields for create and update; nil fields are left untouched
type NoteRequest struct {
	Title     *string
	Content   *string
	ProjectID *uint
}

// CreateNote creates a note, optionally attached to one of the user's projects
func (s *Store) CreateNote(ctx context.Context, userID uint, req NoteRequest) (*models.Note, error) {
	if req.Content == nil || strings.TrimSpace(*req.Content) == "" {
		return nil, fmt.Errorf("note content is required: %w", ErrInvalid)
	}

	note := models.Note{UserID: userID}
	if err := s.applyNote(ctx, userID, &note, req); err != nil {
		return nil, err
	}
	if err := s.conn(ctx).Create(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *Store) applyNote(ctx context.Context, userID uint, n *models.Note, req NoteRequest) error {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if utf8.RuneCountInString(title) > 200 {
			return fmt.Errorf("note title exceeds 200 characters: %w", ErrInvalid)
		}
		n.Title = title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return fmt.Errorf("note content is required: %w", ErrInvalid)
		}
		n.Content = *req.Content
	}
	if req.ProjectID != nil {
		if _, err := s.getOwnedProject(ctx, userID, *req.ProjectID); err != nil {
			return err
		}
		n.ProjectID = req.ProjectID
	}
	return nil
}

// GetNote retrieves a note owned by the user
func (s *Store) GetNote(ctx context.Context, userID, id uint) (*models.Note, error) {
	var note models.Note
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&note, id).Error; err != nil {
		return nil, notFound(err, "note", id)
	}
	return &note, nil
}

// ListNotes lists the user's notes, most recently updated first
func (s *Store) ListNotes(ctx context.Context, userID uint, projectID *uint) ([]models.Note, error) {
	query := s.conn(ctx).Where("user_id = ?", userID)
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	var notes []models.Note
	if err := query.Order("updated_at DESC").Order("id DESC").Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// SearchNotes finds notes whose title or content contains query, best title matches first
func (s *Store) SearchNotes(ctx context.Context, userID uint, query string) ([]models.Note, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, fmt.Errorf("search query is required: %w", ErrInvalid)
	}
	pattern := "%" + escapeLike(q) + "%"

	var notes []models.Note
	err := s.conn(ctx).Where("user_id = ?", userID).
		Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(content) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("updated_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return matchRank(notes[i].Title, notes[i].Content, q) < matchRank(notes[j].Title, notes[j].Content, q)
	})
	return notes, nil
}

// UpdateNote applies a partial update to a note owned by the user
func (s *Store) UpdateNote(ctx context.Context, userID, id uint, req NoteRequest) (*models.Note, error) {
	note, err := s.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyNote(ctx, userID, note, req); err != nil {
		return nil, err
	}
	if err := s.conn(ctx).Save(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes a note owned by the user
func (s *Store) DeleteNote(ctx context.Context, userID, id uint) error {
	result := s.conn(ctx).Where("user_id = ?", userID).Delete(&models.Note{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("note #%d: %w", id, ErrNotFound)
	}
	return nil
}
