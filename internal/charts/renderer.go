// Package charts renders one PNG per ok analysis result.
package charts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"breakupscli/pkg/contracts/domain"
)

// RenderReport is the per-chart outcome list plus aggregate counts.
type RenderReport struct {
	Artifacts        []domain.ChartArtifact
	TotalCharts      int
	SuccessfulCharts int
}

// Successful returns only the artifacts that were actually written.
func (r *RenderReport) Successful() []domain.ChartArtifact {
	out := make([]domain.ChartArtifact, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		if a.Succeeded() {
			out = append(out, a)
		}
	}
	return out
}

// PathFor returns the chart path for an analysis id, empty when not rendered.
func (r *RenderReport) PathFor(analysisID int) string {
	for _, a := range r.Artifacts {
		if a.AnalysisID == analysisID && a.Succeeded() {
			return a.Path
		}
	}
	return ""
}

// Renderer converts analysis payloads into print-resolution chart images.
type Renderer struct {
	logger *slog.Logger
	width  int
	height int
}

// NewRenderer creates a renderer with the given pixel dimensions. Zero
// dimensions fall back to 1600×900.
func NewRenderer(logger *slog.Logger, width, height int) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if width <= 0 {
		width = 1600
	}
	if height <= 0 {
		height = 900
	}
	return &Renderer{logger: logger, width: width, height: height}
}

// renderable is satisfied by every go-chart top-level chart type.
type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// Render attempts one chart per analysis slot. Non-ok results and per-chart
// render failures are recorded and never stop the remaining charts.
func (r *Renderer) Render(ctx context.Context, results []domain.AnalysisResult, dir string) *RenderReport {
	report := &RenderReport{TotalCharts: len(results)}

	for _, result := range results {
		artifact := domain.ChartArtifact{AnalysisID: result.ID}

		if result.Status != domain.AnalysisOK || result.Payload == nil {
			artifact.Err = fmt.Sprintf("analysis not rendered: status %s", result.Status)
			report.Artifacts = append(report.Artifacts, artifact)
			continue
		}
		if ctx.Err() != nil {
			artifact.Err = fmt.Sprintf("render cancelled: %v", ctx.Err())
			report.Artifacts = append(report.Artifacts, artifact)
			continue
		}

		path := filepath.Join(dir, fmt.Sprintf("analysis_%02d_%s.png", result.ID, result.Slug))
		if err := r.renderOne(result, path); err != nil {
			artifact.Err = err.Error()
			r.logger.WarnContext(ctx, "chart render failed",
				slog.Int("analysis_id", result.ID),
				slog.String("slug", result.Slug),
				slog.String("error", err.Error()))
		} else {
			artifact.Path = path
			report.SuccessfulCharts++
		}
		report.Artifacts = append(report.Artifacts, artifact)
	}

	r.logger.InfoContext(ctx, "chart rendering complete",
		slog.Int("attempted", report.TotalCharts),
		slog.Int("successful", report.SuccessfulCharts))

	return report
}

func (r *Renderer) renderOne(result domain.AnalysisResult, path string) (err error) {
	defer func() {
		// go-chart panics on some degenerate inputs (single-point ranges).
		if rec := recover(); rec != nil {
			err = fmt.Errorf("chart render panicked: %v", rec)
			os.Remove(path)
		}
	}()

	graph, err := r.chartFor(result)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// chartFor picks a chart shape per payload type: histograms and comparisons
// as bars, share breakdowns as donuts, per-item delta lists as lines.
func (r *Renderer) chartFor(result domain.AnalysisResult) (renderable, error) {
	switch p := result.Payload.(type) {
	case domain.BedroomDistribution:
		var bars []chart.Value
		for _, beds := range sortedKeys(p.SaleCounts) {
			bars = append(bars, chart.Value{Label: fmt.Sprintf("%dbd sale", beds), Value: float64(p.SaleCounts[beds])})
		}
		for _, beds := range sortedKeys(p.LeaseCounts) {
			bars = append(bars, chart.Value{Label: fmt.Sprintf("%dbd lease", beds), Value: float64(p.LeaseCounts[beds])})
		}
		return r.barChart(result.Name, bars)

	case domain.HOAFeeAnalysis:
		return r.donutChart(result.Name, []chart.Value{
			{Label: "With HOA", Value: float64(p.WithHOA)},
			{Label: "No HOA", Value: float64(p.WithoutHOA)},
		})

	case domain.STRPremium:
		return r.barChart(result.Name, []chart.Value{
			{Label: "STR eligible", Value: p.AvgPriceEligible},
			{Label: "Not eligible", Value: p.AvgPriceIneligible},
		})

	case domain.RenovationDistribution:
		var bars []chart.Value
		for _, tier := range []domain.RenovationTier{domain.RenovationFull, domain.RenovationPartial, domain.RenovationNone, domain.RenovationUnknown} {
			if n := p.Sale[tier] + p.Lease[tier]; n > 0 {
				bars = append(bars, chart.Value{Label: string(tier), Value: float64(n)})
			}
		}
		return r.barChart(result.Name, bars)

	case domain.CompSourceBreakdown:
		return r.donutChart(result.Name, []chart.Value{
			{Label: "Direct", Value: float64(p.Direct)},
			{Label: "Indirect", Value: float64(p.Indirect)},
		})

	case domain.SqftVariance:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Below -20%", Value: float64(p.Sale.Below + p.Lease.Below)},
			{Label: "Within ±20%", Value: float64(p.Sale.Within + p.Lease.Within)},
			{Label: "Above +20%", Value: float64(p.Sale.Above + p.Lease.Above)},
		})

	case domain.PriceVariance:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Estimated value", Value: p.ReferenceValue},
			{Label: "Avg sale", Value: p.Sale.AvgPrice},
			{Label: "Avg lease", Value: p.Lease.AvgPrice},
		})

	case domain.LeaseVsSale:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Sale comps", Value: float64(p.SaleCount)},
			{Label: "Lease comps", Value: float64(p.LeaseCount)},
		})

	case domain.PropertyRadarAggregate:
		return r.barChart(result.Name, []chart.Value{
			{Label: "PropertyRadar", Value: p.AvgRadarPrice},
			{Label: "Standard", Value: p.AvgStandardPrice},
		})

	case domain.PropertyRadarDeltas:
		xs := make([]float64, len(p.Items))
		ys := make([]float64, len(p.Items))
		for i, item := range p.Items {
			xs[i] = float64(i + 1)
			ys[i] = item.DeltaPct
		}
		return r.lineChart(result.Name, xs, ys)

	case domain.BedroomMatchPrecision:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Exact", Value: float64(p.Sale.Exact.Count + p.Lease.Exact.Count)},
			{Label: "±1 bed", Value: float64(p.Sale.PlusMinusOne.Count + p.Lease.PlusMinusOne.Count)},
			{Label: "Other", Value: float64(p.Sale.Other.Count + p.Lease.Other.Count)},
		})

	case domain.PriceTrends:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Trailing 12mo", Value: p.Trailing12Avg},
			{Label: "Trailing 36mo", Value: p.Trailing36Avg},
		})

	case domain.CompReliability:
		return r.donutChart(result.Name, []chart.Value{
			{Label: "Direct", Value: float64(p.DirectCount)},
			{Label: "Indirect", Value: float64(p.IndirectCount)},
		})

	case domain.AbsorptionRate:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Sale active", Value: float64(p.Sale.Active)},
			{Label: "Sale closed", Value: float64(p.Sale.Closed)},
			{Label: "Lease active", Value: float64(p.Lease.Active)},
			{Label: "Lease closed", Value: float64(p.Lease.Closed)},
		})

	case domain.PendingRatio:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Sale active", Value: float64(p.Sale.Active)},
			{Label: "Sale pending", Value: float64(p.Sale.Pending)},
			{Label: "Lease active", Value: float64(p.Lease.Active)},
			{Label: "Lease pending", Value: float64(p.Lease.Pending)},
		})

	case domain.RenovationImpact:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Unrenovated", Value: p.BaselineAvg},
			{Label: "Partial", Value: p.Partial.Avg},
			{Label: "Full", Value: p.Full.Avg},
		})

	case domain.PriceSpreadIQR:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Sale Q1", Value: p.Sale.Q1},
			{Label: "Sale median", Value: p.Sale.Median},
			{Label: "Sale Q3", Value: p.Sale.Q3},
			{Label: "Lease median", Value: p.Lease.Median},
		})

	case domain.DistributionTails:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Below fence", Value: float64(p.Sale.BelowLower + p.Lease.BelowLower)},
			{Label: "In range", Value: float64(p.Sale.Count + p.Lease.Count - p.Sale.BelowLower - p.Sale.AboveUpper - p.Lease.BelowLower - p.Lease.AboveUpper)},
			{Label: "Above fence", Value: float64(p.Sale.AboveUpper + p.Lease.AboveUpper)},
		})

	case domain.ExpectedNOI:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Gross income", Value: p.GrossIncome},
			{Label: "Expenses", Value: p.OperatingExpenses},
			{Label: "NOI", Value: p.NOI},
		})

	case domain.ImprovedNOI:
		return r.barChart(result.Name, []chart.Value{
			{Label: "Base NOI", Value: p.BaseNOI},
			{Label: "Improved NOI", Value: p.ImprovedNOI},
		})
	}

	return nil, fmt.Errorf("no chart mapping for payload kind %s", result.Payload.PayloadKind())
}

func (r *Renderer) barChart(title string, bars []chart.Value) (renderable, error) {
	filtered := make([]chart.Value, 0, len(bars))
	for _, b := range bars {
		if b.Value != 0 {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no non-zero values to chart")
	}
	// Equal-valued bars collapse the autodetected range to a zero span, which
	// go-chart rejects. Anchor the axis at zero and pad the top.
	lo, hi := 0.0, 0.0
	for _, b := range filtered {
		if b.Value < lo {
			lo = b.Value
		}
		if b.Value > hi {
			hi = b.Value
		}
	}
	return chart.BarChart{
		Title:    title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: 80,
		Bars:     filtered,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.1},
		},
	}, nil
}

func (r *Renderer) donutChart(title string, values []chart.Value) (renderable, error) {
	filtered := make([]chart.Value, 0, len(values))
	for _, v := range values {
		if v.Value > 0 {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no non-zero values to chart")
	}
	return chart.DonutChart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		Values: filtered,
	}, nil
}

func (r *Renderer) lineChart(title string, xs, ys []float64) (renderable, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("need at least two points for a line chart")
	}
	// Flat series collapse the autodetected Y range to a zero span, which
	// go-chart rejects. Pad the range explicitly.
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return chart.Chart{
		Title:  title,
		Width:  r.width,
		Height: r.height,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}, nil
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
