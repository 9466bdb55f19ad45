// Package router assembles the HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/careloop/frontdesk/internal/actions"
	httpmiddleware "github.com/careloop/frontdesk/internal/http/middleware"
	"github.com/careloop/frontdesk/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ActionsHandler     *actions.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Per-IP rate limit on the actions endpoint. Zero disables it.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.ActionsHandler != nil {
		r.Group(func(r chi.Router) {
			if cfg.RateLimitPerSecond > 0 {
				burst := cfg.RateLimitBurst
				if burst <= 0 {
					burst = int(cfg.RateLimitPerSecond) + 1
				}
				r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, burst))
			}
			r.Post("/api/actions", cfg.ActionsHandler.Perform)
		})
	}

	return r
}
