package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"planora/internal/service"
)

// RouterDeps everything the router mounts.
type RouterDeps struct {
	Auth    service.AuthService
	AuthAPI *AuthHandler
	RSVP    *RSVPHandler
	Events  *EventHandler
	Guests  *GuestHandler
	OAuth   *OAuthHandler
	Limiter *RateLimiter
	Logger  *zap.Logger
}

// NewRouter assembles the full route tree:
//
//	GET  /health
//	/auth/api/v1/*                 public, rate limited
//	/rsvp/api/v1/*                 public, rate limited, token-keyed
//	GET  /oauth/google/callback    public
//	/admin/api/v1/*                bearer session required
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok("ok"))
	})

	r.Route("/auth/api/v1", func(r chi.Router) {
		r.Use(rateLimit(deps.Limiter))
		deps.AuthAPI.Routes(r)
	})

	r.Route("/rsvp/api/v1", func(r chi.Router) {
		r.Use(rateLimit(deps.Limiter))
		deps.RSVP.Routes(r)
	})

	r.Get("/oauth/google/callback", deps.OAuth.Callback)

	r.Route("/admin/api/v1", func(r chi.Router) {
		r.Use(requireAuth(deps.Auth))
		deps.Events.Routes(r)
		deps.Guests.Routes(r)
		r.Get("/events/{eventID}/oauth/google", deps.OAuth.Start)
	})

	return r
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
