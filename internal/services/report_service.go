// Package services holds the application service layer between transport and
// the pipeline.
package services

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"breakupscli/internal/config"
	"breakupscli/internal/operations"
	"breakupscli/pkg/contracts/domain"
)

// ReportService runs report pipelines on behalf of the transport layer and
// keeps the run metrics.
type ReportService struct {
	logger   *slog.Logger
	pipeline *operations.Pipeline

	runsStarted   prometheus.Counter
	runsSucceeded prometheus.Counter
	runsFailed    prometheus.Counter
	chartsShipped prometheus.Counter
	pdfsShipped   prometheus.Counter
}

// NewReportService wires the pipeline and registers metrics on reg. A nil
// registerer falls back to the default registry.
func NewReportService(logger *slog.Logger, cfg *config.Config, sink operations.ProgressSink, reg prometheus.Registerer) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &ReportService{
		logger:   logger,
		pipeline: operations.NewPipeline(logger, cfg, sink),
		runsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "breakups_runs_started_total",
			Help: "Report runs accepted for processing.",
		}),
		runsSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "breakups_runs_succeeded_total",
			Help: "Report runs that produced an archive.",
		}),
		runsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "breakups_runs_failed_total",
			Help: "Report runs that failed at ingestion or packaging.",
		}),
		chartsShipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "breakups_charts_shipped_total",
			Help: "Chart images included in shipped archives.",
		}),
		pdfsShipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "breakups_pdfs_shipped_total",
			Help: "PDF documents included in shipped archives.",
		}),
	}
}

// GenerateReport runs the full pipeline for one uploaded workbook.
func (s *ReportService) GenerateReport(ctx context.Context, data []byte, clientName string) domain.RunResult {
	s.runsStarted.Inc()

	result := s.pipeline.Run(ctx, data, clientName)

	if result.Success {
		s.runsSucceeded.Inc()
		s.chartsShipped.Add(float64(result.Contents.Charts))
		s.pdfsShipped.Add(float64(result.Contents.PDFs))
	} else {
		s.runsFailed.Inc()
	}
	return result
}
