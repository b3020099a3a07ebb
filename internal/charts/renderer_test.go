package charts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakupscli/pkg/contracts/domain"
)

func okResult(id int, slug string, payload domain.Payload) domain.AnalysisResult {
	return domain.AnalysisResult{
		ID: id, Slug: slug, Name: slug, Category: domain.CategoryCharacteristics,
		Status: domain.AnalysisOK, Payload: payload,
	}
}

func TestRenderer_Render(t *testing.T) {
	dir := t.TempDir()
	renderer := NewRenderer(nil, 800, 450)

	results := []domain.AnalysisResult{
		okResult(1, "bedroom_distribution", domain.BedroomDistribution{
			SaleCounts: map[int]int{2: 4, 3: 10, 4: 6}, SaleTotal: 20,
			LeaseCounts: map[int]int{3: 5},
		}),
		okResult(2, "hoa_fee_analysis", domain.HOAFeeAnalysis{WithHOA: 8, WithoutHOA: 12}),
		{ID: 3, Slug: "str_premium", Name: "STR", Category: domain.CategoryCharacteristics,
			Status: domain.AnalysisInsufficientData, Err: "insufficient data"},
		okResult(8, "lease_vs_sale", domain.LeaseVsSale{SaleCount: 100, LeaseCount: 35}),
	}

	report := renderer.Render(context.Background(), results, dir)

	assert.Equal(t, 4, report.TotalCharts)
	assert.Equal(t, 3, report.SuccessfulCharts)
	require.Len(t, report.Artifacts, 4)

	// Fixed naming convention.
	first := report.Artifacts[0]
	assert.True(t, first.Succeeded())
	assert.Equal(t, filepath.Join(dir, "analysis_01_bedroom_distribution.png"), first.Path)

	info, err := os.Stat(first.Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// Non-ok slot records a reason and writes nothing.
	skipped := report.Artifacts[2]
	assert.False(t, skipped.Succeeded())
	assert.Contains(t, skipped.Err, "insufficient-data")
	assert.Empty(t, report.PathFor(3))

	assert.NotEmpty(t, report.PathFor(8))
	assert.Len(t, report.Successful(), 3)
}

func TestRenderer_UniformValuesStillRender(t *testing.T) {
	dir := t.TempDir()
	renderer := NewRenderer(nil, 400, 300)

	// Every value identical: the bar and line ranges must not collapse.
	results := []domain.AnalysisResult{
		okResult(8, "lease_vs_sale", domain.LeaseVsSale{SaleCount: 5, LeaseCount: 5}),
		okResult(10, "propertyradar_deltas", domain.PropertyRadarDeltas{
			Items: []domain.RadarDelta{
				{Address: "1 Oak St", Price: 500000, EstimatedValue: 500000, DeltaPct: 0},
				{Address: "2 Elm St", Price: 480000, EstimatedValue: 480000, DeltaPct: 0},
				{Address: "3 Pine St", Price: 510000, EstimatedValue: 510000, DeltaPct: 0},
			},
		}),
		okResult(12, "price_trends", domain.PriceTrends{Trailing12Avg: 450000, Trailing36Avg: 450000}),
	}

	report := renderer.Render(context.Background(), results, dir)

	assert.Equal(t, 3, report.SuccessfulCharts)
	for _, a := range report.Artifacts {
		assert.True(t, a.Succeeded(), "analysis %d: %s", a.AnalysisID, a.Err)
	}
}

func TestRenderer_EmptyPayloadIsRecordedNotFatal(t *testing.T) {
	dir := t.TempDir()
	renderer := NewRenderer(nil, 400, 300)

	// All-zero donut cannot be charted.
	results := []domain.AnalysisResult{
		okResult(2, "hoa_fee_analysis", domain.HOAFeeAnalysis{}),
		okResult(8, "lease_vs_sale", domain.LeaseVsSale{SaleCount: 5, LeaseCount: 2}),
	}

	report := renderer.Render(context.Background(), results, dir)

	assert.Equal(t, 1, report.SuccessfulCharts)
	assert.False(t, report.Artifacts[0].Succeeded())
	assert.NotEmpty(t, report.Artifacts[0].Err)
	assert.True(t, report.Artifacts[1].Succeeded())
}
