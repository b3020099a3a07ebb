package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func saleComp(addr string, price float64, beds int) domain.PropertyRecord {
	close := time.Now().AddDate(0, -3, 0)
	return domain.PropertyRecord{
		Address:    addr,
		Kind:       domain.ListingKindSale,
		Price:      fptr(price),
		Bedrooms:   iptr(beds),
		SquareFeet: fptr(1800),
		Status:     domain.StatusClosed,
		Renovation: domain.RenovationNone,
		Source:     domain.SourceDirect,
		CloseDate:  &close,
	}
}

func leaseComp(addr string, rent float64, beds int) domain.PropertyRecord {
	r := saleComp(addr, 0, beds)
	r.Kind = domain.ListingKindLease
	r.Price = nil
	r.MonthlyRent = fptr(rent)
	return r
}

func testWorkbook(saleCount, leaseCount int) *parsing.Workbook {
	wb := &parsing.Workbook{
		Subject: domain.SubjectProperty{
			Record: domain.PropertyRecord{
				Kind:       domain.ListingKindSale,
				Bedrooms:   iptr(3),
				SquareFeet: fptr(1800),
			},
			EstimatedValue:    fptr(500000),
			GrossIncome:       fptr(48000),
			OperatingExpenses: fptr(12000),
			RenovationCost:    fptr(60000),
			ImprovedIncome:    fptr(60000),
		},
		Meta: domain.RunMeta{AnalysisDate: time.Now(), TotalProperties: saleCount, LeaseCount: leaseCount},
	}
	for i := 0; i < saleCount; i++ {
		wb.Records = append(wb.Records, saleComp(fmt.Sprintf("%d Sale St", i), 450000+float64(i)*1000, 2+i%3))
	}
	for i := 0; i < leaseCount; i++ {
		wb.Records = append(wb.Records, leaseComp(fmt.Sprintf("%d Lease Ave", i), 2000+float64(i)*25, 2+i%3))
	}
	return wb
}

func TestBattery_FixedShape(t *testing.T) {
	defs := Battery()
	require.Len(t, defs, BatterySize)

	wantCategories := map[domain.Category]int{
		domain.CategoryCharacteristics: 5,
		domain.CategoryPositioning:     5,
		domain.CategoryTimeLocation:    4,
		domain.CategoryActivity:        2,
		domain.CategoryFinancial:       6,
	}
	got := map[domain.Category]int{}
	lastCat := ""
	for i, def := range defs {
		assert.Equal(t, i+1, def.ID, "battery ids must be 1..22 in order")
		got[def.Category]++
		// Category order must be A..E, never interleaved.
		assert.GreaterOrEqual(t, string(def.Category), lastCat)
		lastCat = string(def.Category)
	}
	assert.Equal(t, wantCategories, got)
}

func TestEngine_AlwaysReturns22Results(t *testing.T) {
	engine := NewEngine(nil, 4)

	for _, tc := range []struct {
		name string
		wb   *parsing.Workbook
	}{
		{"populated", testWorkbook(30, 10)},
		{"empty records", testWorkbook(0, 0)},
		{"no subject", &parsing.Workbook{Meta: domain.RunMeta{AnalysisDate: time.Now()}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			battery := engine.Run(context.Background(), tc.wb)
			require.Len(t, battery.Results, BatterySize)
			for i, r := range battery.Results {
				assert.Equal(t, i+1, r.ID)
				assert.NotEmpty(t, r.Slug)
				assert.Contains(t, []domain.AnalysisStatus{
					domain.AnalysisOK, domain.AnalysisInsufficientData, domain.AnalysisError,
				}, r.Status)
				if r.Status == domain.AnalysisOK {
					assert.NotNil(t, r.Payload, "ok result %d must carry a payload", r.ID)
				}
			}
		})
	}
}

func TestEngine_LeaseVsSaleCounts(t *testing.T) {
	battery := NewEngine(nil, 8).Run(context.Background(), testWorkbook(100, 35))

	var payload domain.LeaseVsSale
	found := false
	for _, r := range battery.Results {
		if p, ok := r.Payload.(domain.LeaseVsSale); ok {
			payload = p
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, 100, payload.SaleCount)
	assert.Equal(t, 35, payload.LeaseCount)
	assert.Equal(t, 100, battery.Meta.TotalProperties)
	assert.Equal(t, 35, battery.Meta.LeaseCount)
}

func TestEngine_NOIFailureDoesNotSpreadToOtherSlots(t *testing.T) {
	wb := testWorkbook(20, 5)
	wb.Subject.GrossIncome = nil // force expected_noi and improved_noi down

	battery := NewEngine(nil, 8).Run(context.Background(), wb)
	require.Len(t, battery.Results, BatterySize)

	byID := map[int]domain.AnalysisResult{}
	for _, r := range battery.Results {
		byID[r.ID] = r
	}
	assert.Equal(t, domain.AnalysisInsufficientData, byID[21].Status)
	assert.Equal(t, domain.AnalysisInsufficientData, byID[22].Status)
	assert.Equal(t, domain.AnalysisOK, byID[8].Status, "lease_vs_sale must be unaffected")
	assert.Equal(t, domain.AnalysisOK, byID[15].Status, "absorption_rate must be unaffected")
}

func TestComputeExpectedNOI(t *testing.T) {
	wb := testWorkbook(1, 0)
	payload, err := computeExpectedNOI(wb)
	require.NoError(t, err)

	noi := payload.(domain.ExpectedNOI)
	assert.Equal(t, 36000.0, noi.NOI)
	assert.InDelta(t, 7.2, noi.CapRatePct, 0.001)
}

func TestComputeImprovedNOI(t *testing.T) {
	wb := testWorkbook(1, 0)
	payload, err := computeImprovedNOI(wb)
	require.NoError(t, err)

	imp := payload.(domain.ImprovedNOI)
	assert.Equal(t, 36000.0, imp.BaseNOI)
	assert.Equal(t, 48000.0, imp.ImprovedNOI)
	assert.InDelta(t, 20.0, imp.ROIPct, 0.001) // 12000 lift on 60000 cost
	assert.InDelta(t, 5.0, imp.PaybackYears, 0.001)
}

func TestComputeHOAFees_PriceAveragesUseSaleCompsOnly(t *testing.T) {
	wb := &parsing.Workbook{}
	hoaSale := saleComp("1 HOA Ct", 500000, 3)
	hoaSale.HasHOA = true
	hoaSale.HOAFee = fptr(250)
	hoaLease := leaseComp("2 HOA Ct", 2400, 2)
	hoaLease.HasHOA = true
	hoaLease.HOAFee = fptr(150)
	wb.Records = append(wb.Records, hoaSale, hoaLease, saleComp("3 Free St", 400000, 3))

	payload, err := computeHOAFees(wb)
	require.NoError(t, err)

	hoa := payload.(domain.HOAFeeAnalysis)
	assert.Equal(t, 2, hoa.WithHOA)
	assert.Equal(t, 1, hoa.WithoutHOA)
	assert.Equal(t, 200.0, hoa.AverageFee)
	assert.Equal(t, 500000.0, hoa.AvgPriceWith, "lease rents must not dilute the sale average")
	assert.Equal(t, 400000.0, hoa.AvgPriceWithout)
}

func TestComputeRenovationImpact(t *testing.T) {
	wb := &parsing.Workbook{}
	add := func(price float64, tier domain.RenovationTier) {
		r := saleComp(fmt.Sprintf("%f", price), price, 3)
		r.Renovation = tier
		wb.Records = append(wb.Records, r)
	}
	add(400000, domain.RenovationNone)
	add(420000, domain.RenovationNone)
	add(500000, domain.RenovationFull)
	add(450000, domain.RenovationPartial)

	payload, err := computeRenovationImpactSale(wb)
	require.NoError(t, err)

	impact := payload.(domain.RenovationImpact)
	assert.Equal(t, 2, impact.BaselineCount)
	assert.Equal(t, 410000.0, impact.BaselineAvg)
	assert.InDelta(t, 21.95, impact.Full.DeltaPct, 0.01)
	assert.InDelta(t, 9.76, impact.Partial.DeltaPct, 0.01)
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 3.0, quantile(values, 0.5))
	assert.Equal(t, 2.0, quantile(values, 0.25))
	assert.Equal(t, 4.0, quantile(values, 0.75))
	assert.Equal(t, 1.0, quantile(values, 0))
	assert.Equal(t, 5.0, quantile(values, 1))
	assert.Equal(t, 0.0, quantile(nil, 0.5))

	q := quartiles([]float64{10, 20, 30, 40})
	assert.Equal(t, q.Q3-q.Q1, q.IQR)
}

func TestTailCounts(t *testing.T) {
	// One far outlier above a tight cluster.
	values := []float64{100, 101, 102, 103, 104, 500}
	side := tailCounts(values)
	assert.Equal(t, 6, side.Count)
	assert.Equal(t, 1, side.AboveUpper)
	assert.Equal(t, 0, side.BelowLower)
}

func TestComputeAbsorptionAndPending(t *testing.T) {
	wb := &parsing.Workbook{}
	statuses := []domain.ListingStatus{
		domain.StatusActive, domain.StatusActive, domain.StatusClosed,
		domain.StatusClosed, domain.StatusClosed, domain.StatusPending,
	}
	for i, st := range statuses {
		r := saleComp(fmt.Sprintf("%d St", i), 400000, 3)
		r.Status = st
		wb.Records = append(wb.Records, r)
	}

	payload, err := computeAbsorption(wb)
	require.NoError(t, err)
	abs := payload.(domain.AbsorptionRate)
	assert.Equal(t, 2, abs.Sale.Active)
	assert.Equal(t, 3, abs.Sale.Closed)
	assert.InDelta(t, 0.6, abs.Sale.Rate, 0.001)

	payload, err = computePendingRatio(wb)
	require.NoError(t, err)
	pend := payload.(domain.PendingRatio)
	assert.Equal(t, 1, pend.Sale.Pending)
	assert.InDelta(t, 1.0/3.0, pend.Sale.Ratio, 0.001)
}

func TestComputeReliability(t *testing.T) {
	wb := &parsing.Workbook{Meta: domain.RunMeta{AnalysisDate: time.Now()}}
	for i := 0; i < 8; i++ {
		r := saleComp(fmt.Sprintf("%d St", i), 400000, 3)
		if i >= 6 {
			r.Source = domain.SourceIndirect
		}
		if i >= 4 {
			r.Status = domain.StatusActive
		}
		wb.Records = append(wb.Records, r)
	}

	payload, err := computeReliability(wb)
	require.NoError(t, err)
	rel := payload.(domain.CompReliability)
	assert.Equal(t, 6, rel.DirectCount)
	assert.Equal(t, 2, rel.IndirectCount)
	assert.Equal(t, 4, rel.ClosedCount)
	// 0.7*75 + 0.3*50
	assert.InDelta(t, 67.5, rel.Score, 0.001)

	_, err = computeReliability(&parsing.Workbook{})
	assert.ErrorIs(t, err, ErrInsufficientData)
}
