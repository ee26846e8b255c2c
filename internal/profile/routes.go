package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes returns the /profile router. Every route requires login.
func SetupRoutes(h *Handler, requireLogin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requireLogin)

	r.Get("/summary", h.Summary)
	r.Get("/edit", h.ShowEditForm)
	r.Post("/edit", h.Edit)

	return r
}
