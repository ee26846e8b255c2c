// Package testutil builds in-memory databases and running servers for tests.
package testutil

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/EmpoweredVote/EV-Notepad/internal/auth"
	"github.com/EmpoweredVote/EV-Notepad/internal/config"
	"github.com/EmpoweredVote/EV-Notepad/internal/db"
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"github.com/EmpoweredVote/EV-Notepad/internal/profile"
	"github.com/EmpoweredVote/EV-Notepad/internal/routes"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// Config returns settings suitable for plain-HTTP tests.
func Config() *config.Config {
	cfg := config.Default()
	cfg.Env = "test"
	cfg.DatabaseDriver = config.DriverSQLite
	cfg.SessionKey = "test-session-key-0123456789abcdef"
	cfg.SessionTTL = time.Hour
	cfg.CookieSecure = false
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

// NewDB opens a fresh, migrated in-memory database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := Config()
	cfg.DatabaseURL = fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))

	gdb, err := db.Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// AuthService builds an auth.Service over gdb.
func AuthService(gdb *gorm.DB) *auth.Service {
	cfg := Config()
	return auth.NewService(gdb,
		auth.NewUserStore(gdb),
		auth.NewSessionStore(gdb),
		profile.NewStore(gdb),
		cfg.BcryptCost, cfg.SessionTTL, zap.NewNop())
}

// CreateUser registers a user with a profile and returns it.
func CreateUser(t *testing.T, gdb *gorm.DB, email, password string) *models.User {
	t.Helper()
	u, err := AuthService(gdb).CreateWithProfile(context.Background(), "Test", "User", email, password)
	require.NoError(t, err)
	return u
}

// App is a running server backed by its own database.
type App struct {
	Server *httptest.Server
	DB     *gorm.DB
}

func NewServer(t *testing.T) *App {
	t.Helper()

	gdb := NewDB(t)
	h, err := routes.New(Config(), gdb, zap.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &App{Server: srv, DB: gdb}
}

func (a *App) URL(path string) string {
	return a.Server.URL + path
}

// NewClient returns a client with a cookie jar that follows redirects.
func (a *App) NewClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

// NoRedirect returns a copy of c that stops at the first response.
func NoRedirect(c *http.Client) *http.Client {
	cp := *c
	cp.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &cp
}

var csrfMeta = regexp.MustCompile(`name="csrf-token" content="([^"]*)"`)

// CSRFToken extracts the token rendered into a page.
func CSRFToken(body string) string {
	m := csrfMeta.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return html.UnescapeString(m[1])
}

// Get fetches path and returns the response with its body read.
func (a *App) Get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(a.URL(path))
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

// Post submits values to path with a fresh CSRF token.
func (a *App) Post(t *testing.T, c *http.Client, path string, values url.Values) (*http.Response, string) {
	t.Helper()

	_, home := a.Get(t, c, "/")
	token := CSRFToken(home)
	require.NotEmpty(t, token, "no csrf token on home page")

	if values == nil {
		values = url.Values{}
	}
	values.Set("csrf_token", token)
	return a.PostRaw(t, c, path, values)
}

// PostRaw submits values to path as-is.
func (a *App) PostRaw(t *testing.T, c *http.Client, path string, values url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(a.URL(path), values)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

// Login authenticates c and requires the redirect home.
func (a *App) Login(t *testing.T, c *http.Client, email, password string) {
	t.Helper()
	resp, _ := a.Post(t, c, "/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/", resp.Request.URL.Path)
}

// LoggedInClient creates a user and returns a client logged in as it.
func (a *App) LoggedInClient(t *testing.T, email, password string) (*http.Client, *models.User) {
	t.Helper()
	u := CreateUser(t, a.DB, email, password)
	c := a.NewClient(t)
	a.Login(t, c, email, password)
	return c, u
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// Contains reports whether body contains s after HTML unescaping.
func Contains(body, s string) bool {
	return strings.Contains(html.UnescapeString(body), s)
}
