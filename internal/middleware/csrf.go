package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// PlaintextCSRF marks requests as served over plain HTTP so the CSRF
// check skips its TLS-only referer validation. Only used when cookies
// are not marked Secure.
func PlaintextCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
