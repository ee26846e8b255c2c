package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/EmpoweredVote/EV-Notepad/internal/apperrors"
	"github.com/EmpoweredVote/EV-Notepad/internal/utils"
	"github.com/EmpoweredVote/EV-Notepad/internal/views"
	"go.uber.org/zap"
)

const homeURL = "/"

type Handler struct {
	Service *Service
	Cookies *CookieCodec
	Views   *views.Renderer
	Log     *zap.Logger
}

func NewHandler(svc *Service, cookies *CookieCodec, v *views.Renderer, logger *zap.Logger) *Handler {
	return &Handler{Service: svc, Cookies: cookies, Views: v, Log: logger}
}

// SignupForm is the submitted registration form.
type SignupForm struct {
	Name     string
	Surname  string
	Email    string
	Password string
}

func (f SignupForm) fieldErrors() map[string]string {
	errs := map[string]string{}
	if f.Name == "" {
		errs["name"] = "This field is required."
	}
	if f.Surname == "" {
		errs["surname"] = "This field is required."
	}
	return errs
}

type signupData struct {
	views.BaseVM
	Form        SignupForm
	FieldErrors map[string]string
	Error       string
}

type loginData struct {
	views.BaseVM
	Email string
	Next  string
	Error string
}

func loggedIn(r *http.Request) bool {
	_, ok := utils.GetUserIDFromContext(r.Context())
	return ok
}

func (h *Handler) ShowSignupForm(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, homeURL, http.StatusFound)
		return
	}
	h.renderSignup(w, r, http.StatusOK, SignupForm{}, nil, "")
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, homeURL, http.StatusFound)
		return
	}

	form := SignupForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Surname:  strings.TrimSpace(r.PostFormValue("surname")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if errs := form.fieldErrors(); len(errs) > 0 {
		h.renderSignup(w, r, http.StatusOK, form, errs, "")
		return
	}

	user, err := h.Service.CreateWithProfile(r.Context(), form.Name, form.Surname, form.Email, form.Password)
	if err != nil {
		if msg, ok := apperrors.Message(err); ok &&
			(errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrConflict)) {
			h.renderSignup(w, r, http.StatusOK, form, nil, msg)
			return
		}
		h.Log.Error("signup failed", zap.Error(err))
		h.Views.Error(w, r, http.StatusInternalServerError, "Could not create account")
		return
	}

	session, err := h.Service.StartSession(r.Context(), user.ID)
	if err != nil {
		h.Log.Error("start session after signup", zap.Uint("user_id", user.ID), zap.Error(err))
		h.Views.Redirect(w, r, "/login", "success", "Account created. Please log in.")
		return
	}
	if err := h.Cookies.SetSession(w, session); err != nil {
		h.Log.Error("set session cookie", zap.Error(err))
		h.Views.Error(w, r, http.StatusInternalServerError, "Could not start session")
		return
	}

	h.Views.Redirect(w, r, homeURL, "success", "Welcome, "+form.Name)
}

func (h *Handler) ShowLoginForm(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, homeURL, http.StatusFound)
		return
	}
	h.renderLogin(w, r, http.StatusOK, "", r.URL.Query().Get("next"), "")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	next := r.URL.Query().Get("next")

	session, err := h.Service.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuthentication) {
			msg, _ := apperrors.Message(err)
			h.renderLogin(w, r, http.StatusOK, email, next, msg)
			return
		}
		h.Log.Error("login failed", zap.Error(err))
		h.Views.Error(w, r, http.StatusInternalServerError, "Could not log in")
		return
	}

	if err := h.Cookies.SetSession(w, session); err != nil {
		h.Log.Error("set session cookie", zap.Error(err))
		h.Views.Error(w, r, http.StatusInternalServerError, "Could not start session")
		return
	}

	http.Redirect(w, r, safeNext(next), http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.Cookies.SessionID(r); ok {
		if err := h.Service.Logout(r.Context(), id); err != nil {
			h.Log.Warn("logout failed", zap.Error(err))
		}
	}
	h.Cookies.Clear(w)
	http.Redirect(w, r, homeURL, http.StatusFound)
}

type meResponse struct {
	UserID      uint   `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Affiliation string `json:"affiliation,omitempty"`
	Orcid       string `json:"orcid,omitempty"`
}

// Me reports the acting user as JSON.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}

	u, err := h.Service.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		h.Log.Error("load current user", zap.Uint("user_id", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Profile.Name,
		Surname:     u.Profile.Surname,
		Affiliation: u.Profile.Affiliation,
		Orcid:       u.Profile.Orcid,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) renderSignup(w http.ResponseWriter, r *http.Request, status int, form SignupForm, errs map[string]string, msg string) {
	form.Password = ""
	data := signupData{
		BaseVM:      h.Views.Base(w, r, "Sign up"),
		Form:        form,
		FieldErrors: errs,
		Error:       msg,
	}
	h.Views.Render(w, r, status, "signup", data)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, email, next, msg string) {
	data := loginData{
		BaseVM: h.Views.Base(w, r, "Login"),
		Email:  email,
		Next:   safeNextOrEmpty(next),
		Error:  msg,
	}
	h.Views.Render(w, r, status, "login", data)
}

// safeNext only follows local absolute paths.
func safeNext(next string) string {
	if v := safeNextOrEmpty(next); v != "" {
		return v
	}
	return homeURL
}

func safeNextOrEmpty(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
