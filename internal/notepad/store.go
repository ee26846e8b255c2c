package notepad

import (
	"context"
	"errors"
	"fmt"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"gorm.io/gorm"
)

// Store persists Notepad rows.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, n *models.Notepad) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notepad: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uint) (*models.Notepad, error) {
	var n models.Notepad
	err := s.db.WithContext(ctx).First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Notepad not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find notepad %d: %w", id, err)
	}
	return &n, nil
}

// ListByUser returns the user's notepads in insertion order.
func (s *Store) ListByUser(ctx context.Context, userID uint) ([]models.Notepad, error) {
	var out []models.Notepad
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list notepads for user %d: %w", userID, err)
	}
	return out, nil
}

func (s *Store) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notepad{}).Where("user_id = ?", userID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count notepads for user %d: %w", userID, err)
	}
	return n, nil
}

// UpdateContent overwrites title and body only.
func (s *Store) UpdateContent(ctx context.Context, id uint, title, body string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Notepad{ID: id}).
		Select("title", "body", "updated_at").
		Updates(models.Notepad{Title: title, Body: body})
	if res.Error != nil {
		return fmt.Errorf("update notepad %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Notepad not found")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Notepad{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete notepad %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Notepad not found")
	}
	return nil
}
