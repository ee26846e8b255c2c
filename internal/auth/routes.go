package auth

import "github.com/go-chi/chi/v5"

func SetupRoutes(r chi.Router, h *Handler) {
	r.Get("/signup", h.ShowSignupForm)
	r.Post("/signup", h.Signup)
	r.Get("/login", h.ShowLoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)
}
