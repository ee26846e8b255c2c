package public

import (
	"net/http"

	"github.com/EmpoweredVote/EV-Notepad/internal/views"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Views *views.Renderer
}

func NewHandler(v *views.Renderer) *Handler {
	return &Handler{Views: v}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "home", h.Views.Base(w, r, "Notepad"))
}

func SetupRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Index)
}
