package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/service-desk-dashboard/internal/adapters/primary/http/middleware"
	"github.com/lorrc/service-desk-dashboard/internal/auth"
)

// RouterConfig holds the handlers and middleware the router mounts.
// Rate limiters are optional; a nil limiter disables that tier.
type RouterConfig struct {
	Logger       *slog.Logger
	TokenManager *auth.TokenManager

	Auth      *AuthHandler
	Dashboard *DashboardHandler
	Health    *HealthHandler
	WebSocket http.Handler

	GeneralLimiter     *mw.RateLimiter
	AuthLimiter        *mw.RateLimiter
	InteractionLimiter *mw.RateLimiter

	// AllowedOrigins for browser clients. Empty allows any origin.
	AllowedOrigins []string
}

// NewRouter builds the HTTP routing tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(cfg.Logger))
	r.Use(mw.RecoveryLogger(cfg.Logger))
	r.Use(cors.Handler(corsOptions(cfg.AllowedOrigins)))

	if cfg.GeneralLimiter != nil {
		r.Use(cfg.GeneralLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	cfg.Health.RegisterRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes with stricter rate limiting
		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Middleware)
			}
			r.Route("/auth", cfg.Auth.RegisterRoutes)
		})

		// Authentication is handled inside the WebSocket handler
		r.Handle("/ws", cfg.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(cfg.TokenManager))
			if cfg.InteractionLimiter != nil {
				r.Use(cfg.InteractionLimiter.Middleware)
			}
			r.Route("/dashboard", cfg.Dashboard.RegisterRoutes)
		})
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{mw.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}
