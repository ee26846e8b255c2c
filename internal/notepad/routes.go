package notepad

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes returns the /notepad router. Every route requires login.
func SetupRoutes(h *Handler, requireLogin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requireLogin)

	r.Get("/", h.Index)
	r.Get("/create", h.ShowCreateForm)
	r.Post("/create", h.Create)
	r.Get("/{id}", h.Show)
	r.Get("/edit/{id}", h.ShowEditForm)
	r.Post("/edit/{id}", h.Edit)
	r.Post("/delete/{id}", h.Delete)

	return r
}
