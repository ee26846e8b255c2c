package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/auth"
	"github.com/EmpoweredVote/EV-Notepad/internal/profile"
	"github.com/EmpoweredVote/EV-Notepad/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func counts(t *testing.T, gdb *gorm.DB) (users, profiles int64) {
	t.Helper()
	ctx := context.Background()
	users, err := auth.NewUserStore(gdb).Count(ctx)
	require.NoError(t, err)
	profiles, err = profile.NewStore(gdb).Count(ctx)
	require.NoError(t, err)
	return users, profiles
}

func TestCreateWithProfile(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := testutil.AuthService(gdb)

	u, err := svc.CreateWithProfile(context.Background(), "Ada", "Lovelace", "service_test@example.com", "secret")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "secret", u.HashedPassword)
	assert.Equal(t, u.ID, u.Profile.UserID)

	users, profiles := counts(t, gdb)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), profiles)

	p, err := profile.NewStore(gdb).FindByUserID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, "Lovelace", p.Surname)
}

func TestCreateWithProfile_DuplicateEmail(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := testutil.AuthService(gdb)
	ctx := context.Background()

	_, err := svc.CreateWithProfile(ctx, "Ada", "Lovelace", "service_test@example.com", "secret")
	require.NoError(t, err)

	_, err = svc.CreateWithProfile(ctx, "Other", "Person", "service_test@example.com", "another")
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.EqualError(t, err, "Email service_test@example.com in use")

	users, profiles := counts(t, gdb)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), profiles)
}

func TestCreateWithProfile_RollsBackWhenProfileInsertFails(t *testing.T) {
	gdb := testutil.NewDB(t)
	boom := errors.New("boom")
	require.NoError(t, gdb.Callback().Create().Before("gorm:create").Register("test:fail_profile_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "user_profiles" {
			_ = tx.AddError(boom)
		}
	}))

	_, err := testutil.AuthService(gdb).CreateWithProfile(context.Background(), "Ada", "Lovelace", "rollback@example.com", "secret")
	require.ErrorIs(t, err, boom)

	users, profiles := counts(t, gdb)
	assert.Zero(t, users)
	assert.Zero(t, profiles)
}

func TestCreateWithProfile_MissingFields(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantMsg  string
	}{
		{name: "no email", email: "", password: "secret", wantMsg: "Email is required."},
		{name: "blank email", email: "   ", password: "secret", wantMsg: "Email is required."},
		{name: "no password", email: "a@example.com", password: "", wantMsg: "Password is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gdb := testutil.NewDB(t)
			svc := testutil.AuthService(gdb)

			_, err := svc.CreateWithProfile(context.Background(), "Ada", "Lovelace", tt.email, tt.password)
			require.ErrorIs(t, err, apperrors.ErrValidation)
			assert.EqualError(t, err, tt.wantMsg)

			users, profiles := counts(t, gdb)
			assert.Zero(t, users)
			assert.Zero(t, profiles)
		})
	}
}

func TestCreateWithProfile_PasswordTooLong(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := testutil.AuthService(gdb)

	_, err := svc.CreateWithProfile(context.Background(), "Ada", "Lovelace", "long@example.com", strings.Repeat("x", 73))
	require.ErrorIs(t, err, apperrors.ErrValidation)

	users, _ := counts(t, gdb)
	assert.Zero(t, users)
}

func TestLogin(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := testutil.AuthService(gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "login@example.com", "right")

	sess, err := svc.Login(ctx, "login@example.com", "right")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Len(t, sess.SessionID, 36)
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	resolved, err := svc.ResolveSession(ctx, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, resolved.UserID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := testutil.AuthService(gdb)
	ctx := context.Background()

	testutil.CreateUser(t, gdb, "login@example.com", "right")

	_, wrongPassword := svc.Login(ctx, "login@example.com", "wrong")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "right")

	require.ErrorIs(t, wrongPassword, apperrors.ErrAuthentication)
	require.ErrorIs(t, unknownEmail, apperrors.ErrAuthentication)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.EqualError(t, wrongPassword, "Invalid credentials")
}

func TestLogin_EmailIsCaseSensitive(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := testutil.AuthService(gdb)

	testutil.CreateUser(t, gdb, "Mixed@example.com", "pw")

	_, err := svc.Login(context.Background(), "mixed@example.com", "pw")
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
}

func TestService_Logout(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := testutil.AuthService(gdb)
	ctx := context.Background()

	testutil.CreateUser(t, gdb, "logout@example.com", "pw")
	sess, err := svc.Login(ctx, "logout@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.SessionID))

	_, err = svc.ResolveSession(ctx, sess.SessionID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Logging out twice, or with no session at all, still succeeds.
	assert.NoError(t, svc.Logout(ctx, sess.SessionID))
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestStartSession_PrunesExpired(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := testutil.AuthService(gdb)
	sessions := auth.NewSessionStore(gdb)
	ctx := context.Background()

	u := testutil.CreateUser(t, gdb, "prune@example.com", "pw")

	expired, err := svc.StartSession(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, gdb.Model(expired).Update("expires_at", time.Now().Add(-time.Minute)).Error)

	stale, err := svc.ResolveSession(ctx, expired.SessionID)
	require.NoError(t, err)
	assert.True(t, stale.Expired(time.Now()))

	_, err = svc.Login(ctx, "prune@example.com", "pw")
	require.NoError(t, err)

	n, err := sessions.CountByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
