package notepad_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"github.com/EmpoweredVote/EV-Notepad/internal/notepad"
	"github.com/EmpoweredVote/EV-Notepad/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	app   *testutil.App
	svc   *notepad.Service
	owner *models.User
	c     *http.Client
	notes []*models.Notepad
}

// newFixture logs in an owner with Notepad1 and Notepad2.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	app := testutil.NewServer(t)
	c, owner := app.LoggedInClient(t, "owner@example.com", "pw")
	svc := notepad.NewService(notepad.NewStore(app.DB), zap.NewNop())

	f := &fixture{app: app, svc: svc, owner: owner, c: c}
	for i := 1; i <= 2; i++ {
		n, err := svc.Create(context.Background(), fmt.Sprintf("Notepad%d", i), fmt.Sprintf("Body %d", i), owner.ID)
		require.NoError(t, err)
		f.notes = append(f.notes, n)
	}
	return f
}

func TestIndexListsOwnNotepads(t *testing.T) {
	f := newFixture(t)
	other := testutil.CreateUser(t, f.app.DB, "other@example.com", "pw")
	_, err := f.svc.Create(context.Background(), "Not mine", "", other.ID)
	require.NoError(t, err)

	resp, body := f.app.Get(t, f.c, "/notepad")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Notepad1")
	assert.Contains(t, body, "Notepad2")
	assert.NotContains(t, body, "Not mine")
}

func TestShowOwnNotepad(t *testing.T) {
	f := newFixture(t)

	resp, body := f.app.Get(t, f.c, fmt.Sprintf("/notepad/%d", f.notes[1].ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Notepad2")
	assert.Contains(t, body, "Body 2")
}

func TestShowSanitizesBody(t *testing.T) {
	f := newFixture(t)
	n, err := f.svc.Create(context.Background(), "Rich", `<b>bold</b><script>alert(1)</script>`, f.owner.ID)
	require.NoError(t, err)

	_, body := f.app.Get(t, f.c, fmt.Sprintf("/notepad/%d", n.ID))
	assert.Contains(t, body, "<b>bold</b>")
	assert.NotContains(t, body, "<script>")
}

func TestShowMissingNotepad(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.app.Get(t, f.c, "/notepad/9999")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.app.Get(t, f.c, "/notepad/abc")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateNotepad(t *testing.T) {
	f := newFixture(t)

	resp, body := f.app.Post(t, f.c, "/notepad/create", url.Values{"title": {"Fresh"}, "body": {"hello"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/notepad", resp.Request.URL.Path)
	assert.Contains(t, body, "Notepad created successfully")
	assert.Contains(t, body, "Fresh")

	count, err := f.svc.CountByUser(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCreateNotepad_MissingTitle(t *testing.T) {
	f := newFixture(t)

	resp, body := f.app.Post(t, f.c, "/notepad/create", url.Values{"title": {""}, "body": {"kept"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/notepad/create", resp.Request.URL.Path)
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, "kept")

	count, err := f.svc.CountByUser(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestEditNotepad(t *testing.T) {
	f := newFixture(t)
	id := f.notes[0].ID

	resp, body := f.app.Get(t, f.c, fmt.Sprintf("/notepad/edit/%d", id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Notepad1"`)

	resp, body = f.app.Post(t, f.c, fmt.Sprintf("/notepad/edit/%d", id), url.Values{"title": {"Renamed"}, "body": {"Rewritten"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/notepad", resp.Request.URL.Path)
	assert.Contains(t, body, "Notepad updated successfully")

	got, err := f.svc.GetOr404(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "Rewritten", got.Body)
}

func TestEditStoresTitleAsSubmitted(t *testing.T) {
	f := newFixture(t)
	id := f.notes[0].ID

	resp, _ := f.app.Post(t, f.c, fmt.Sprintf("/notepad/edit/%d", id), url.Values{"title": {"  Padded title "}, "body": {" spaced body\n"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/notepad", resp.Request.URL.Path)

	got, err := f.svc.GetOr404(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "  Padded title ", got.Title)
	assert.Equal(t, " spaced body\n", got.Body)
}

func TestEditBlankTitleIsRequired(t *testing.T) {
	f := newFixture(t)
	id := f.notes[0].ID

	resp, body := f.app.Post(t, f.c, fmt.Sprintf("/notepad/edit/%d", id), url.Values{"title": {"   "}, "body": {"x"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "This field is required.")

	got, err := f.svc.GetOr404(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Notepad1", got.Title)
}

func TestDeleteNotepad(t *testing.T) {
	f := newFixture(t)
	id := f.notes[0].ID

	resp, body := f.app.Post(t, f.c, fmt.Sprintf("/notepad/delete/%d", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/notepad", resp.Request.URL.Path)
	assert.Contains(t, body, "Notepad successfully deleted")

	_, err := f.svc.GetOr404(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	resp, _ = f.app.Get(t, f.c, fmt.Sprintf("/notepad/%d", id))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOtherUserIsRejected(t *testing.T) {
	f := newFixture(t)
	intruder, _ := f.app.LoggedInClient(t, "intruder@example.com", "pw")
	id := f.notes[1].ID

	tests := []struct {
		name   string
		do     func() (*http.Response, string)
		action string
	}{
		{"view", func() (*http.Response, string) {
			return f.app.Get(t, intruder, fmt.Sprintf("/notepad/%d", id))
		}, "view"},
		{"edit form", func() (*http.Response, string) {
			return f.app.Get(t, intruder, fmt.Sprintf("/notepad/edit/%d", id))
		}, "edit"},
		{"edit", func() (*http.Response, string) {
			return f.app.Post(t, intruder, fmt.Sprintf("/notepad/edit/%d", id), url.Values{"title": {"Hijacked"}, "body": {"x"}})
		}, "edit"},
		{"delete", func() (*http.Response, string) {
			return f.app.Post(t, intruder, fmt.Sprintf("/notepad/delete/%d", id), nil)
		}, "delete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := tt.do()
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "/notepad", resp.Request.URL.Path)
			assert.Contains(t, body, "You are not authorized to "+tt.action+" this notepad")
			assert.NotContains(t, body, "Body 2")
		})
	}

	got, err := f.svc.GetOr404(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Notepad2", got.Title)
	assert.Equal(t, "Body 2", got.Body)
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	anon := f.app.NewClient(t)

	for _, path := range []string{"/notepad", "/notepad/create", fmt.Sprintf("/notepad/%d", f.notes[0].ID)} {
		resp, _ := f.app.Get(t, anon, path)
		assert.Equal(t, "/login", resp.Request.URL.Path, path)
		assert.Equal(t, path, resp.Request.URL.Query().Get("next"))
	}
}

func TestPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.app.PostRaw(t, f.c, fmt.Sprintf("/notepad/delete/%d", f.notes[0].ID), url.Values{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, err := f.svc.GetOr404(context.Background(), f.notes[0].ID)
	assert.NoError(t, err)
}
