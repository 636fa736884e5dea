package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/viralscript/viralscript/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth handlers
	Login   http.HandlerFunc
	Refresh http.HandlerFunc
	Logout  http.HandlerFunc
	Me      http.HandlerFunc

	// Generation
	Generate http.HandlerFunc

	// Saved patterns
	ListPatterns     http.HandlerFunc
	GetPattern       http.HandlerFunc
	DeletePattern    http.HandlerFunc
	PatternOwnership func(http.Handler) http.Handler
	ListPatternAudit http.HandlerFunc

	// Governance handlers
	GetQuota      http.HandlerFunc
	ListAuditLogs http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error // nil means not configured
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	LoginRateLimiter   func(http.Handler) http.Handler
	HealthChecks       []HealthCheck
}

func NewRouter(cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	readiness := readinessHandler(cfg.HealthChecks)
	r.Get("/health/ready", readiness)
	r.Get("/health", readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.LoginRateLimiter != nil {
					r.Use(cfg.LoginRateLimiter)
				}
				r.Post("/login", h.Login)
			})
			r.Post("/refresh", h.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/me", h.Me)
			r.Post("/generate", h.Generate)

			r.Route("/patterns", func(r chi.Router) {
				r.Get("/", h.ListPatterns)

				r.Route("/{patternID}", func(r chi.Router) {
					r.Use(h.PatternOwnership)
					r.Get("/", h.GetPattern)
					r.Delete("/", h.DeletePattern)
					r.Get("/audit", h.ListPatternAudit)
				})
			})

			r.Get("/quota", h.GetQuota)
			r.Get("/audit", h.ListAuditLogs)
		})
	})

	return r
}

func readinessHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		health := map[string]string{"status": "healthy"}
		status := http.StatusOK

		for _, c := range checks {
			switch {
			case c.Check == nil:
				health[c.Name] = "not configured"
			case c.Check(ctx) != nil:
				health[c.Name] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
			default:
				health[c.Name] = "healthy"
			}
		}

		JSON(w, status, health)
	}
}
