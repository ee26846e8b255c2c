package routes

import (
	"net/http"

	"github.com/EmpoweredVote/EV-Notepad/internal/auth"
	"github.com/EmpoweredVote/EV-Notepad/internal/config"
	"github.com/EmpoweredVote/EV-Notepad/internal/middleware"
	"github.com/EmpoweredVote/EV-Notepad/internal/notepad"
	"github.com/EmpoweredVote/EV-Notepad/internal/profile"
	"github.com/EmpoweredVote/EV-Notepad/internal/public"
	"github.com/EmpoweredVote/EV-Notepad/internal/views"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New wires stores, services and handlers into the application router.
func New(cfg *config.Config, gdb *gorm.DB, log *zap.Logger) (http.Handler, error) {
	users := auth.NewUserStore(gdb)
	sessions := auth.NewSessionStore(gdb)
	profiles := profile.NewStore(gdb)
	notepads := notepad.NewStore(gdb)

	authSvc := auth.NewService(gdb, users, sessions, profiles, cfg.BcryptCost, cfg.SessionTTL, log.Named("auth"))
	profileSvc := profile.NewService(gdb, profiles, log.Named("profile"))
	notepadSvc := notepad.NewService(notepads, log.Named("notepad"))

	flashes := views.NewFlasher([]byte(cfg.SessionKey), cfg.CookieSecure)
	rd, err := views.New(flashes, log.Named("views"))
	if err != nil {
		return nil, err
	}

	cookies := auth.NewCookieCodec([]byte(cfg.SessionKey), cfg.SessionTTL, cfg.CookieSecure)
	fetcher := auth.SessionInfo{Service: authSvc, Cookies: cookies}

	authHandler := auth.NewHandler(authSvc, cookies, rd, log.Named("auth"))
	notepadHandler := notepad.NewHandler(notepadSvc, rd, log.Named("notepad"))
	profileHandler := profile.NewHandler(profileSvc, users, notepadSvc, rd, log.Named("profile"))
	publicHandler := public.NewHandler(rd)

	protect := csrf.Protect(cfg.CSRFKey(),
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.FieldName("csrf_token"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Warn("csrf check failed",
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)))
			rd.Error(w, r, http.StatusForbidden, "The form has expired or is invalid. Please try again.")
		})),
	)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if !cfg.CookieSecure {
		r.Use(middleware.PlaintextCSRF)
	}
	r.Use(middleware.SessionMiddleware(fetcher))
	r.Use(protect)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rd.Error(w, r, http.StatusNotFound, "Page not found")
	})

	public.SetupRoutes(r, publicHandler)
	auth.SetupRoutes(r, authHandler)
	r.Mount("/notepad", notepad.SetupRoutes(notepadHandler, middleware.RequireLogin))
	r.Mount("/profile", profile.SetupRoutes(profileHandler, middleware.RequireLogin))

	return r, nil
}
