package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"github.com/EmpoweredVote/EV-Notepad/internal/profile"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// invalidCredentials is shared by the unknown-email and wrong-password paths
// so the response does not reveal which accounts exist.
const invalidCredentials = "Invalid credentials"

// Service handles account creation and the session lifecycle.
type Service struct {
	db         *gorm.DB
	users      *UserStore
	sessions   *SessionStore
	profiles   *profile.Store
	hashCost   int
	sessionTTL time.Duration
	now        func() time.Time
	log        *zap.Logger
}

func NewService(db *gorm.DB, users *UserStore, sessions *SessionStore, profiles *profile.Store, hashCost int, sessionTTL time.Duration, log *zap.Logger) *Service {
	return &Service{
		db:         db,
		users:      users,
		sessions:   sessions,
		profiles:   profiles,
		hashCost:   hashCost,
		sessionTTL: sessionTTL,
		now:        time.Now,
		log:        log,
	}
}

// CreateWithProfile registers a user and its profile atomically.
func (s *Service) CreateWithProfile(ctx context.Context, name, surname, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.Validation("Email is required.")
	}
	if password == "" {
		return nil, apperrors.Validation("Password is required.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperrors.Validation("Password is too long.")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	inUse := apperrors.Conflict(fmt.Sprintf("Email %s in use", email))

	var user *models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)

		_, err := users.FindByEmail(ctx, email)
		if err == nil {
			return inUse
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		u := &models.User{Email: email, HashedPassword: string(hashed)}
		if err := users.Create(ctx, u); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return inUse
			}
			return err
		}

		p := &models.UserProfile{UserID: u.ID, Name: name, Surname: surname}
		if err := s.profiles.WithTx(tx).Create(ctx, p); err != nil {
			return err
		}

		u.Profile = *p
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and opens a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Session, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Authentication(invalidCredentials)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return nil, apperrors.Authentication(invalidCredentials)
	}

	return s.StartSession(ctx, u.ID)
}

// StartSession opens a session for userID and prunes the user's expired ones.
func (s *Service) StartSession(ctx context.Context, userID uint) (*models.Session, error) {
	now := s.now()

	if n, err := s.sessions.DeleteExpired(ctx, userID, now); err != nil {
		s.log.Warn("prune expired sessions", zap.Uint("user_id", userID), zap.Error(err))
	} else if n > 0 {
		s.log.Debug("pruned expired sessions", zap.Uint("user_id", userID), zap.Int64("count", n))
	}

	sess := &models.Session{
		SessionID: uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.log.Info("session started", zap.Uint("user_id", userID))
	return sess, nil
}

// Me returns the acting user with its profile.
func (s *Service) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.FindWithProfile(ctx, userID)
}

// Logout destroys the session. It succeeds when there is nothing to destroy.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// ResolveSession returns the stored session. Expiry is enforced by the
// session middleware.
func (s *Service) ResolveSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.sessions.FindByID(ctx, sessionID)
}
