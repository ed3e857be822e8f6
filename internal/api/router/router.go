package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utilaudit/utilaudit/internal/api/handlers"
	"github.com/utilaudit/utilaudit/internal/api/middleware"
	"github.com/utilaudit/utilaudit/internal/config"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/internal/pkg/metrics"
)

type Handlers struct {
	Health   *handlers.HealthHandler
	Record   *handlers.RecordHandler
	Anomaly  *handlers.AnomalyHandler
	Settings *handlers.SettingsHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CORS([]string{cfg.Server.FrontendURL}))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200
	r.Use(metrics.Middleware)

	// Health checks and metrics
	r.Get("/healthz", h.Health.Healthz)
	r.Get("/readyz", h.Health.Readyz)
	r.Handle("/metrics", metrics.Handler())

	// Cost records
	r.Route("/api/v1/records", func(r chi.Router) {
		r.Get("/", h.Record.List)
		r.Post("/", h.Record.Ingest)
		r.Post("/backfill", h.Record.Backfill)
		r.Get("/{id}", h.Record.Get)
	})

	// Anomalies
	r.Route("/api/v1/anomalies", func(r chi.Router) {
		r.Get("/", h.Anomaly.List)
		r.Get("/summary", h.Anomaly.GetSummary)
		r.Get("/{id}", h.Anomaly.Get)
		r.Patch("/{id}/status", h.Anomaly.UpdateStatus)
		r.Delete("/{id}", h.Anomaly.Delete)
	})

	// Detection checks and settings
	r.Get("/api/v1/checks", h.Settings.ListChecks)
	r.Route("/api/v1/settings", func(r chi.Router) {
		r.Get("/", h.Settings.Get)
		r.Put("/", h.Settings.Update)
		r.Post("/checks/{id}/enable", h.Settings.EnableCheck)
		r.Post("/checks/{id}/disable", h.Settings.DisableCheck)
	})

	return r
}
