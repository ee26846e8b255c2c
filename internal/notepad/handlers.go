package notepad

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/authz"
	"github.com/EmpoweredVote/EV-Notepad/internal/middleware"
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"github.com/EmpoweredVote/EV-Notepad/internal/utils"
	"github.com/EmpoweredVote/EV-Notepad/internal/views"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const listURL = "/notepad"

type Handler struct {
	Service *Service
	Views   *views.Renderer
	Log     *zap.Logger
}

func NewHandler(svc *Service, v *views.Renderer, logger *zap.Logger) *Handler {
	return &Handler{Service: svc, Views: v, Log: logger}
}

// Form is the submitted notepad form.
type Form struct {
	Title string
	Body  string
}

func parseForm(r *http.Request) Form {
	return Form{
		Title: r.PostFormValue("title"),
		Body:  r.PostFormValue("body"),
	}
}

func (f Form) fieldErrors() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "This field is required."
	}
	return errs
}

type indexData struct {
	views.BaseVM
	Notepads []models.Notepad
}

type formData struct {
	views.BaseVM
	NotepadID   uint
	Form        Form
	FieldErrors map[string]string
	Error       string
}

type showData struct {
	views.BaseVM
	Notepad *models.Notepad
}

// Index handles GET /notepad.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	notepads, err := h.Service.GetAllByUser(r.Context(), userID)
	if err != nil {
		h.Log.Error("list notepads", zap.Uint("user_id", userID), zap.Error(err))
		h.Views.Error(w, r, http.StatusInternalServerError, "")
		return
	}

	h.Views.Render(w, r, http.StatusOK, "notepad_index", indexData{
		BaseVM:   h.Views.Base(w, r, "My notepads"),
		Notepads: notepads,
	})
}

// ShowCreateForm handles GET /notepad/create.
func (h *Handler) ShowCreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, formPage{template: "notepad_create", title: "New notepad"}, nil, "")
}

// Create handles POST /notepad/create.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form := parseForm(r)
	page := formPage{template: "notepad_create", title: "New notepad", form: form}

	if errs := form.fieldErrors(); len(errs) > 0 {
		h.renderForm(w, r, page, errs, "")
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	_, err := h.Service.Create(r.Context(), form.Title, form.Body, userID)
	h.handleServiceResponse(w, r, err, "Notepad created successfully", page)
}

// Show handles GET /notepad/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	n, ok := h.loadOwned(w, r, "view")
	if !ok {
		return
	}

	h.Views.Render(w, r, http.StatusOK, "notepad_show", showData{
		BaseVM:  h.Views.Base(w, r, n.Title),
		Notepad: n,
	})
}

// ShowEditForm handles GET /notepad/edit/{id}.
func (h *Handler) ShowEditForm(w http.ResponseWriter, r *http.Request) {
	n, ok := h.loadOwned(w, r, "edit")
	if !ok {
		return
	}

	h.renderForm(w, r, formPage{
		template:  "notepad_edit",
		title:     "Edit notepad",
		notepadID: n.ID,
		form:      Form{Title: n.Title, Body: n.Body},
	}, nil, "")
}

// Edit handles POST /notepad/edit/{id}.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	n, ok := h.loadOwned(w, r, "edit")
	if !ok {
		return
	}

	form := parseForm(r)
	page := formPage{template: "notepad_edit", title: "Edit notepad", notepadID: n.ID, form: form}

	if errs := form.fieldErrors(); len(errs) > 0 {
		h.renderForm(w, r, page, errs, "")
		return
	}

	_, err := h.Service.Update(r.Context(), n.ID, form.Title, form.Body)
	h.handleServiceResponse(w, r, err, "Notepad updated successfully", page)
}

// Delete handles POST /notepad/delete/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	n, ok := h.loadOwned(w, r, "delete")
	if !ok {
		return
	}

	if h.Service.Delete(r.Context(), n) {
		h.Views.Redirect(w, r, listURL, "success", "Notepad successfully deleted")
		return
	}
	h.Views.Redirect(w, r, listURL, "error", "Notepad deletion failed")
}

// loadOwned resolves {id} and applies the ownership check. It writes the
// response itself and returns false when the request must stop.
func (h *Handler) loadOwned(w http.ResponseWriter, r *http.Request, action string) (*models.Notepad, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		h.Views.Error(w, r, http.StatusNotFound, "Notepad not found")
		return nil, false
	}

	n, err := h.Service.GetOr404(r.Context(), uint(id))
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		h.Views.Error(w, r, http.StatusNotFound, "Notepad not found")
		return nil, false
	case err != nil:
		h.Log.Error("load notepad", zap.Uint64("notepad_id", id), zap.Error(err))
		h.Views.Error(w, r, http.StatusInternalServerError, "")
		return nil, false
	}

	switch err := authz.Check(r.Context(), n); {
	case errors.Is(err, apperrors.ErrAuthentication):
		http.Redirect(w, r, middleware.LoginURL(r.URL.Path), http.StatusFound)
		return nil, false
	case err != nil:
		actingID, _ := utils.GetUserIDFromContext(r.Context())
		h.Log.Warn("notepad access denied",
			zap.Uint("notepad_id", n.ID),
			zap.Uint("acting_user_id", actingID),
			zap.String("action", action))
		h.Views.Redirect(w, r, listURL, "error", "You are not authorized to "+action+" this notepad")
		return nil, false
	}
	return n, true
}

type formPage struct {
	template  string
	title     string
	notepadID uint
	form      Form
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, p formPage, fieldErrors map[string]string, msg string) {
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}
	h.Views.Render(w, r, http.StatusOK, p.template, formData{
		BaseVM:      h.Views.Base(w, r, p.title),
		NotepadID:   p.notepadID,
		Form:        p.form,
		FieldErrors: fieldErrors,
		Error:       msg,
	})
}

// handleServiceResponse redirects to the list on success, re-renders the
// form for user-facing errors and fails the request otherwise.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, err error, successMsg string, p formPage) {
	if err == nil {
		h.Views.Redirect(w, r, listURL, "success", successMsg)
		return
	}

	if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrConflict) {
		msg, _ := apperrors.Message(err)
		h.renderForm(w, r, p, nil, msg)
		return
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		h.Views.Error(w, r, http.StatusNotFound, "Notepad not found")
		return
	}

	h.Log.Error("notepad request failed", zap.String("path", r.URL.Path), zap.Error(err))
	h.Views.Error(w, r, http.StatusInternalServerError, "")
}
