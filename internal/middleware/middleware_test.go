package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/EmpoweredVote/EV-Notepad/internal/middleware"
	"github.com/EmpoweredVote/EV-Notepad/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockFetcher implements middleware.SessionFetcher without any database dependency.
type mockFetcher struct {
	session utils.SessionData
	err     error
}

func (m mockFetcher) FindSessionByID(ctx context.Context, id string) (utils.SessionData, error) {
	return m.session, m.err
}

// whoAmI echoes the acting user id, or "anonymous".
var whoAmI = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(strconv.FormatUint(uint64(id), 10)))
})

func callWithCookie(t *testing.T, mw func(http.Handler) http.Handler, cookieValue string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: cookieValue})
	}
	rec := httptest.NewRecorder()
	mw(whoAmI).ServeHTTP(rec, req)
	return rec
}

func TestSessionMiddleware_MissingCookie(t *testing.T) {
	rec := callWithCookie(t, middleware.SessionMiddleware(mockFetcher{}), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestSessionMiddleware_ExpiredSession(t *testing.T) {
	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:    7,
			ExpiresAt: time.Now().Add(-1 * time.Hour),
		},
	}

	rec := callWithCookie(t, middleware.SessionMiddleware(fetcher), "expired-session-id")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestSessionMiddleware_FetcherError(t *testing.T) {
	fetcher := mockFetcher{err: errors.New("session not found")}

	rec := callWithCookie(t, middleware.SessionMiddleware(fetcher), "nonexistent-session-id")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestSessionMiddleware_ValidSession(t *testing.T) {
	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:    42,
			ExpiresAt: time.Now().Add(1 * time.Hour),
		},
	}

	rec := callWithCookie(t, middleware.SessionMiddleware(fetcher), "valid-session-id")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())
}

func TestRequireLogin_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/notepad/edit/3", nil)
	rec := httptest.NewRecorder()

	middleware.RequireLogin(whoAmI).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?next=%2Fnotepad%2Fedit%2F3", rec.Header().Get("Location"))
}

func TestRequireLogin_Authenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/notepad", nil)
	req = req.WithContext(utils.WithUserID(req.Context(), 5))
	rec := httptest.NewRecorder()

	middleware.RequireLogin(whoAmI).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Body.String())
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/login", middleware.LoginURL("/"))
	assert.Equal(t, "/login?next=%2Fprofile%2Fedit", middleware.LoginURL("/profile/edit"))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	mw := middleware.CORS([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	mw(whoAmI).ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	mw := middleware.CORS([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	mw(whoAmI).ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	mw := middleware.RequestLogger(zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mw(whoAmI).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}
