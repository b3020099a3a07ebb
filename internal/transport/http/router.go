package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"breakupscli/internal/config"
	"breakupscli/internal/middleware"
)

// NewRouter assembles the full server route tree. hub may be nil when the
// progress socket is disabled.
func NewRouter(logger *slog.Logger, cfg *config.Config, service ReportGenerator, hub http.Handler, version string) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))

	if cfg.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	health := NewHealthHandler(version)
	reports := NewReportHandler(logger, service, cfg.Server.MaxUploadBytes)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.Handle)
		r.Mount("/reports", reports.Routes())
	})
	r.Handle("/metrics", promhttp.Handler())
	if hub != nil {
		r.Handle("/ws", hub)
	}

	return r
}
