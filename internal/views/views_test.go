package views

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRichText(t *testing.T) {
	out := string(richText(`<p>hi <a href="javascript:alert(1)">x</a></p><script>bad()</script>`))
	assert.Contains(t, out, "<p>hi")
	assert.NotContains(t, out, "javascript:")
	assert.NotContains(t, out, "<script>")
}

func TestFlasherRoundTrip(t *testing.T) {
	f := NewFlasher([]byte("0123456789abcdef0123456789abcdef"), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, f.Add(rec, req, "success", "Saved"))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}

	rec2 := httptest.NewRecorder()
	got, err := f.Pop(rec2, next)
	require.NoError(t, err)
	assert.Equal(t, []Flash{{Category: "success", Message: "Saved"}}, got)
}

func TestFlasherRecoversFromUndecodableCookie(t *testing.T) {
	f := NewFlasher([]byte("0123456789abcdef0123456789abcdef"), false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashSessionName, Value: "garbage"})
	rec := httptest.NewRecorder()

	err := f.Add(rec, req, "error", "Kept anyway")
	require.Error(t, err)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	got, err := f.Pop(httptest.NewRecorder(), next)
	require.NoError(t, err)
	assert.Equal(t, []Flash{{Category: "error", Message: "Kept anyway"}}, got)

	_, err = f.Pop(httptest.NewRecorder(), req)
	assert.Error(t, err)
}

func TestRenderAllPages(t *testing.T) {
	rd, err := New(NewFlasher([]byte("0123456789abcdef0123456789abcdef"), false), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, rd.pages, len(pages))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rd.Error(rec, req, http.StatusNotFound, "Page not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestRenderUnknownPage(t *testing.T) {
	rd, err := New(NewFlasher([]byte("0123456789abcdef0123456789abcdef"), false), zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "nope", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
