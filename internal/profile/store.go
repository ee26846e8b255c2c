package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"gorm.io/gorm"
)

// Store persists UserProfile rows.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx returns a Store bound to tx.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

func (s *Store) Create(ctx context.Context, p *models.UserProfile) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uint) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find profile %d: %w", id, err)
	}
	return &p, nil
}

func (s *Store) FindByUserID(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find profile for user %d: %w", userID, err)
	}
	return &p, nil
}

// Save writes every column of p.
func (s *Store) Save(ctx context.Context, p *models.UserProfile) error {
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("save profile %d: %w", p.ID, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.UserProfile{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}
