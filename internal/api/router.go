package api

import (
	"fmt"
	"net/http"
	"taskhunt_web/internal/api/handler"
	appMiddleware "taskhunt_web/internal/api/middleware"
	"taskhunt_web/internal/app/service"
	"taskhunt_web/internal/common"
	"taskhunt_web/internal/common/security"
	"taskhunt_web/internal/web"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

var errNotFoundPage = fmt.Errorf("page not found: %w", common.ErrNotFound)

type RouterConfig struct {
	CookieSecure bool
	// CSRFKey enables gorilla/csrf when set.
	CSRFKey []byte
}

type Services struct {
	Sessions *service.SessionService
	Auth     *service.AuthService
	Tasks    *service.TaskService
	Profiles *service.ProfileService
}

func NewRouter(cfg RouterConfig, svc Services, view *web.Renderer, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	pages := handler.NewPages(view, svc.Sessions, log)

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/static/*", web.StaticHandler("/static/"))

	r.Group(func(r chi.Router) {
		if len(cfg.CSRFKey) > 0 {
			protect := csrf.Protect(cfg.CSRFKey,
				csrf.Secure(cfg.CookieSecure),
				csrf.Path("/"),
				csrf.SameSite(csrf.SameSiteLaxMode),
				csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					log.Warn("CSRF check failed", zap.Error(csrf.FailureReason(r)))
					http.Error(w, "Forbidden - CSRF token invalid", http.StatusForbidden)
				})),
			)
			r.Use(func(next http.Handler) http.Handler {
				protected := protect(next)
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					if !cfg.CookieSecure {
						req = csrf.PlaintextHTTPRequest(req)
					}
					protected.ServeHTTP(w, req)
				})
			})
		}

		// Reads the "jwt" session cookie (or a Bearer header) and checks its signature.
		r.Use(jwtauth.Verifier(security.TokenAuth))
		r.Use(appMiddleware.LoadSession(svc.Sessions, log, pages.Error))

		handler.NewAuthHandler(svc.Auth, pages, cfg.CookieSecure).RegisterRoutes(r)
		handler.NewTaskHandler(svc.Tasks, pages).RegisterRoutes(r)
		handler.NewProfileHandler(svc.Profiles, pages).RegisterRoutes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pages.Error(w, r, errNotFoundPage)
	})

	return r
}
