package seeds

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/auth"
	"github.com/EmpoweredVote/EV-Notepad/internal/notepad"
	"go.uber.org/zap"
)

// Account is a fixture login.
type Account struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

// Accounts are the logins the load generator and manual testing rely on.
var Accounts = []Account{
	{Name: "Test", Surname: "User", Email: "user@example.com", Password: "test1234"},
	{Name: "Other", Surname: "User", Email: "user1@example.com", Password: "1234"},
}

//go:embed data/notepads.json
var notepadsJSON []byte

type sampleNotepad struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Seeder struct {
	Auth     *auth.Service
	Users    *auth.UserStore
	Notepads *notepad.Service
	Log      *zap.Logger
}

func (s *Seeder) SeedAll(ctx context.Context) error {
	if err := s.SeedAccounts(ctx); err != nil {
		return err
	}
	return s.SeedNotepads(ctx, Accounts[0].Email)
}

// SeedAccounts creates the fixture accounts, skipping those that exist.
func (s *Seeder) SeedAccounts(ctx context.Context) error {
	created := 0
	for _, a := range Accounts {
		_, err := s.Auth.CreateWithProfile(ctx, a.Name, a.Surname, a.Email, a.Password)
		if errors.Is(err, apperrors.ErrConflict) {
			s.Log.Info("account exists, skipping", zap.String("email", a.Email))
			continue
		}
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.Email, err)
		}
		created++
	}

	s.Log.Info("seeded accounts", zap.Int("created", created))
	return nil
}

// SeedNotepads gives email's account the sample notepads when it has none.
func (s *Seeder) SeedNotepads(ctx context.Context, email string) error {
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("seed notepads for %s: %w", email, err)
	}

	n, err := s.Notepads.CountByUser(ctx, u.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.Log.Info("notepads exist, skipping", zap.String("email", email), zap.Int64("count", n))
		return nil
	}

	var samples []sampleNotepad
	if err := json.Unmarshal(notepadsJSON, &samples); err != nil {
		return fmt.Errorf("parse notepads.json: %w", err)
	}

	for _, sample := range samples {
		if _, err := s.Notepads.Create(ctx, sample.Title, sample.Body, u.ID); err != nil {
			return fmt.Errorf("seed notepad %q: %w", sample.Title, err)
		}
	}

	s.Log.Info("seeded notepads", zap.String("email", email), zap.Int("count", len(samples)))
	return nil
}
