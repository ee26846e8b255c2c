package notepad

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"go.uber.org/zap"
)

const maxTitleLen = 256

// Service orchestrates notepad CRUD. Ownership is checked by the caller
// (authz.Check) before Update and Delete.
type Service struct {
	store *Store
	log   *zap.Logger
}

func NewService(store *Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.Validation("Title is required.")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return apperrors.Validation("Title is too long.")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, title, body string, userID uint) (*models.Notepad, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	n := &models.Notepad{Title: title, Body: body, UserID: userID}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}

	s.log.Info("notepad created", zap.Uint("notepad_id", n.ID), zap.Uint("user_id", userID))
	return n, nil
}

func (s *Service) GetAllByUser(ctx context.Context, userID uint) ([]models.Notepad, error) {
	return s.store.ListByUser(ctx, userID)
}

// GetOr404 looks the notepad up regardless of who owns it.
func (s *Service) GetOr404(ctx context.Context, id uint) (*models.Notepad, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return s.store.CountByUser(ctx, userID)
}

func (s *Service) Update(ctx context.Context, id uint, title, body string) (*models.Notepad, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := s.store.UpdateContent(ctx, id, title, body); err != nil {
		return nil, err
	}

	s.log.Info("notepad updated", zap.Uint("notepad_id", id))
	return s.store.FindByID(ctx, id)
}

// Delete removes n and reports whether it succeeded.
func (s *Service) Delete(ctx context.Context, n *models.Notepad) bool {
	if err := s.store.Delete(ctx, n.ID); err != nil {
		s.log.Error("notepad deletion failed", zap.Uint("notepad_id", n.ID), zap.Error(err))
		return false
	}
	s.log.Info("notepad deleted", zap.Uint("notepad_id", n.ID), zap.Uint("user_id", n.UserID))
	return true
}
