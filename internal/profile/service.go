package profile

import (
	"context"
	"regexp"
	"unicode/utf8"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const (
	maxNameLen        = 100
	minAffiliationLen = 5
	maxAffiliationLen = 100
	orcidLen          = 19
)

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{4}$`)

// Form is the submitted profile edit form.
type Form struct {
	Name        string
	Surname     string
	Affiliation string
	Orcid       string
}

type Service struct {
	db    *gorm.DB
	store *Store
	log   *zap.Logger
}

func NewService(db *gorm.DB, store *Store, log *zap.Logger) *Service {
	return &Service{db: db, store: store, log: log}
}

func (s *Service) GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error) {
	return s.store.FindByUserID(ctx, userID)
}

// Validate normalises f in place and returns the first violation.
func (f *Form) Validate() error {
	f.Name = norm.NFC.String(f.Name)
	f.Surname = norm.NFC.String(f.Surname)
	f.Affiliation = norm.NFC.String(f.Affiliation)

	switch {
	case f.Name == "":
		return apperrors.Validation("Name is required.")
	case utf8.RuneCountInString(f.Name) > maxNameLen:
		return apperrors.Validation("Name is too long.")
	case f.Surname == "":
		return apperrors.Validation("Surname is required.")
	case utf8.RuneCountInString(f.Surname) > maxNameLen:
		return apperrors.Validation("Surname is too long.")
	case len(f.Orcid) != orcidLen && len(f.Orcid) != 0:
		return apperrors.Validation("ORCID must have 16 numbers separated by dashes.")
	case f.Orcid != "" && !orcidPattern.MatchString(f.Orcid):
		return apperrors.Validation("Invalid ORCID format.")
	}

	if n := utf8.RuneCountInString(f.Affiliation); n > 0 && (n < minAffiliationLen || n > maxAffiliationLen) {
		return apperrors.Validation("Invalid affiliation length.")
	}
	return nil
}

// UpdateProfile validates form and overwrites the profile in one
// transaction. On any error the stored profile is left untouched.
func (s *Service) UpdateProfile(ctx context.Context, profileID uint, form Form) (*models.UserProfile, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	var updated *models.UserProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.store.WithTx(tx)

		p, err := store.FindByID(ctx, profileID)
		if err != nil {
			return err
		}

		p.Name = form.Name
		p.Surname = form.Surname
		p.Affiliation = form.Affiliation
		p.Orcid = form.Orcid

		if err := store.Save(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		s.log.Warn("profile update rolled back", zap.Uint("profile_id", profileID), zap.Error(err))
		return nil, err
	}

	s.log.Info("profile updated", zap.Uint("profile_id", profileID))
	return updated, nil
}
