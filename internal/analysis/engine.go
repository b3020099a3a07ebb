package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

// BatteryResult holds the full battery output: always exactly 22 results in
// fixed order, plus the run metadata carried forward.
type BatteryResult struct {
	Results []domain.AnalysisResult
	Meta    domain.RunMeta
}

// OKCount returns how many analyses completed with ok status.
func (b *BatteryResult) OKCount() int {
	n := 0
	for _, r := range b.Results {
		if r.Status == domain.AnalysisOK {
			n++
		}
	}
	return n
}

// ByCategory returns the results belonging to one category, in battery order.
func (b *BatteryResult) ByCategory(cat domain.Category) []domain.AnalysisResult {
	out := make([]domain.AnalysisResult, 0, len(b.Results))
	for _, r := range b.Results {
		if r.Category == cat {
			out = append(out, r)
		}
	}
	return out
}

// Engine evaluates the analysis battery over a parsed workbook.
type Engine struct {
	logger  *slog.Logger
	workers int
}

// NewEngine creates an engine. workers bounds concurrent evaluation; values
// below 1 fall back to serial execution.
func NewEngine(logger *slog.Logger, workers int) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Engine{logger: logger, workers: workers}
}

// Run evaluates all 22 analyses. Each analysis writes only its own slot, so
// the battery can run concurrently without locks. Per-analysis failures are
// converted to insufficient-data or error results; Run itself never fails.
func (e *Engine) Run(ctx context.Context, wb *parsing.Workbook) *BatteryResult {
	defs := Battery()
	results := make([]domain.AnalysisResult, len(defs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			results[i] = e.evaluate(gctx, def, wb)
			return nil
		})
	}
	// Workers never return errors; failures live inside the result slots.
	_ = g.Wait()

	e.logger.InfoContext(ctx, "analysis battery complete",
		slog.Int("total", len(results)),
		slog.Int("ok", (&BatteryResult{Results: results}).OKCount()))

	return &BatteryResult{Results: results, Meta: wb.Meta}
}

// evaluate runs one analysis, converting panics and compute errors into a
// degraded result so the other 21 slots always proceed.
func (e *Engine) evaluate(ctx context.Context, def Definition, wb *parsing.Workbook) (result domain.AnalysisResult) {
	result = domain.AnalysisResult{
		ID:       def.ID,
		Slug:     def.Slug,
		Name:     def.Name,
		Category: def.Category,
		Status:   domain.AnalysisOK,
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "analysis panicked",
				slog.Int("analysis_id", def.ID),
				slog.String("slug", def.Slug),
				slog.Any("panic", r))
			result.Status = domain.AnalysisError
			result.Err = fmt.Sprintf("analysis panicked: %v", r)
			result.Payload = nil
		}
	}()

	payload, err := def.Compute(wb)
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			result.Status = domain.AnalysisInsufficientData
		} else {
			result.Status = domain.AnalysisError
		}
		result.Err = err.Error()
		e.logger.WarnContext(ctx, "analysis degraded",
			slog.Int("analysis_id", def.ID),
			slog.String("slug", def.Slug),
			slog.String("status", string(result.Status)),
			slog.String("error", err.Error()))
		return result
	}

	result.Payload = payload
	return result
}
