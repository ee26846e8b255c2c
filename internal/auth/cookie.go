package auth

import (
	"net/http"
	"time"

	"github.com/EmpoweredVote/EV-Notepad/internal/middleware"
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"github.com/gorilla/securecookie"
)

// CookieCodec signs the session id stored in the browser.
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	secure bool
}

func NewCookieCodec(hashKey []byte, ttl time.Duration, secure bool) *CookieCodec {
	sc := securecookie.New(hashKey, nil)
	sc.MaxAge(int(ttl / time.Second))
	return &CookieCodec{sc: sc, secure: secure}
}

func (c *CookieCodec) Encode(sessionID string) (string, error) {
	return c.sc.Encode(middleware.SessionCookieName, sessionID)
}

func (c *CookieCodec) Decode(value string) (string, error) {
	var id string
	if err := c.sc.Decode(middleware.SessionCookieName, value, &id); err != nil {
		return "", err
	}
	return id, nil
}

// SetSession writes the session cookie for s.
func (c *CookieCodec) SetSession(w http.ResponseWriter, s *models.Session) error {
	value, err := c.Encode(s.SessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionID returns the verified session id carried by r, if any.
func (c *CookieCodec) SessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	id, err := c.Decode(cookie.Value)
	if err != nil {
		return "", false
	}
	return id, true
}
