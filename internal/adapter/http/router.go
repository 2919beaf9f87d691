package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/adapter/http/handler"
	"github.com/iho/pocketledger/internal/adapter/http/middleware"
	"github.com/iho/pocketledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EntryHandler    *handler.EntryHandler
	ReportHandler   *handler.ReportHandler
	SettingsHandler *handler.SettingsHandler
	BackupHandler   *handler.BackupHandler
	HealthHandler   *handler.HealthHandler

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// RateLimiter throttles /api/v1 when set.
	RateLimiter *middleware.RateLimiter
	// IdempotencyStore enables Idempotency-Key handling for POST and PUT when set.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	Logger zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Create)
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/groups", cfg.EntryHandler.Groups)
			r.Post("/{id}/toggle", cfg.EntryHandler.Toggle)
			r.Delete("/{id}", cfg.EntryHandler.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/dashboard", cfg.ReportHandler.Dashboard)
			r.Get("/evolution", cfg.ReportHandler.Evolution)
			r.Get("/trends", cfg.ReportHandler.Trends)
			r.Get("/upcoming", cfg.ReportHandler.Upcoming)
			r.Get("/notifications", cfg.ReportHandler.Notifications)
		})

		r.Get("/settings", cfg.SettingsHandler.Get)
		r.Put("/settings", cfg.SettingsHandler.Update)

		r.Route("/backup", func(r chi.Router) {
			r.Get("/", cfg.BackupHandler.Export)
			r.Post("/", cfg.BackupHandler.Import)
			r.Get("/csv", cfg.BackupHandler.ExportCSV)
		})
	})

	return r
}
