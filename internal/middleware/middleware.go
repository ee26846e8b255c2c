package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/EmpoweredVote/EV-Notepad/internal/utils"
)

// SessionCookieName carries the signed session id.
const SessionCookieName = "session_id"

type SessionFetcher interface {
	FindSessionByID(ctx context.Context, cookieValue string) (utils.SessionData, error)
}

// SessionMiddleware resolves the session cookie into an acting user id.
// Requests without a usable session continue anonymously.
func SessionMiddleware(fetcher SessionFetcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := fetcher.FindSessionByID(r.Context(), cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if !session.ExpiresAt.After(time.Now()) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.WithUserID(r.Context(), session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin redirects anonymous requests to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			http.Redirect(w, r, LoginURL(r.URL.Path), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginURL builds the login redirect that returns to path afterwards.
func LoginURL(path string) string {
	if path == "" || path == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(path)
}
