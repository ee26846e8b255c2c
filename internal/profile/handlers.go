package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/authz"
	"github.com/EmpoweredVote/EV-Notepad/internal/middleware"
	"github.com/EmpoweredVote/EV-Notepad/internal/models"
	"github.com/EmpoweredVote/EV-Notepad/internal/utils"
	"github.com/EmpoweredVote/EV-Notepad/internal/views"
	"go.uber.org/zap"
)

const summaryURL = "/profile/summary"

type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type NotepadCounter interface {
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type Handler struct {
	Service  *Service
	Users    UserFinder
	Notepads NotepadCounter
	Views    *views.Renderer
	Log      *zap.Logger
}

func NewHandler(svc *Service, users UserFinder, notepads NotepadCounter, v *views.Renderer, logger *zap.Logger) *Handler {
	return &Handler{Service: svc, Users: users, Notepads: notepads, Views: v, Log: logger}
}

type summaryData struct {
	views.BaseVM
	Profile      *models.UserProfile
	Email        string
	NotepadCount int64
}

type editData struct {
	views.BaseVM
	Form  Form
	Error string
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadOwn(w, r)
	if !ok {
		return
	}

	user, err := h.Users.FindByID(r.Context(), p.UserID)
	if err != nil {
		h.Log.Error("load profile owner", zap.Uint("user_id", p.UserID), zap.Error(err))
		h.Views.Error(w, r, http.StatusInternalServerError, "")
		return
	}

	count, err := h.Notepads.CountByUser(r.Context(), p.UserID)
	if err != nil {
		h.Log.Warn("count notepads", zap.Uint("user_id", p.UserID), zap.Error(err))
	}

	h.Views.Render(w, r, http.StatusOK, "profile_summary", summaryData{
		BaseVM:       h.Views.Base(w, r, "Profile"),
		Profile:      p,
		Email:        user.Email,
		NotepadCount: count,
	})
}

func (h *Handler) ShowEditForm(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadOwn(w, r)
	if !ok {
		return
	}
	form := Form{Name: p.Name, Surname: p.Surname, Affiliation: p.Affiliation, Orcid: p.Orcid}
	h.renderEdit(w, r, form, "")
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadOwn(w, r)
	if !ok {
		return
	}

	form := Form{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Surname:     strings.TrimSpace(r.PostFormValue("surname")),
		Affiliation: strings.TrimSpace(r.PostFormValue("affiliation")),
		Orcid:       strings.TrimSpace(r.PostFormValue("orcid")),
	}

	_, err := h.Service.UpdateProfile(r.Context(), p.ID, form)
	switch {
	case err == nil:
		h.Views.Redirect(w, r, summaryURL, "success", "Profile updated")
	case errors.Is(err, apperrors.ErrValidation):
		msg, _ := apperrors.Message(err)
		h.renderEdit(w, r, form, msg)
	case errors.Is(err, apperrors.ErrNotFound):
		h.Views.Error(w, r, http.StatusNotFound, "Profile not found")
	default:
		h.Log.Error("update profile", zap.Uint("profile_id", p.ID), zap.Error(err))
		h.Views.Error(w, r, http.StatusInternalServerError, "")
	}
}

// loadOwn fetches the acting user's profile and applies the ownership check.
func (h *Handler) loadOwn(w http.ResponseWriter, r *http.Request) (*models.UserProfile, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.LoginURL(r.URL.Path), http.StatusFound)
		return nil, false
	}

	p, err := h.Service.GetByUserID(r.Context(), userID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		h.Views.Error(w, r, http.StatusNotFound, "Profile not found")
		return nil, false
	case err != nil:
		h.Log.Error("load profile", zap.Uint("user_id", userID), zap.Error(err))
		h.Views.Error(w, r, http.StatusInternalServerError, "")
		return nil, false
	}

	if err := authz.Check(r.Context(), p); err != nil {
		h.Log.Warn("profile access denied", zap.Uint("profile_id", p.ID), zap.Uint("acting_user_id", userID))
		h.Views.Redirect(w, r, "/", "error", "You are not authorized to access this resource")
		return nil, false
	}
	return p, true
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, form Form, msg string) {
	h.Views.Render(w, r, http.StatusOK, "profile_edit", editData{
		BaseVM: h.Views.Base(w, r, "Edit profile"),
		Form:   form,
		Error:  msg,
	})
}
