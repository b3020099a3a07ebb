package pdf

import (
	"fmt"
	"strings"

	"breakupscli/pkg/contracts/domain"
)

// Insight produces the one-sentence narrative shown under each analysis
// heading. Degraded slots get an explicit shortfall sentence so the report
// never silently omits a battery member.
func Insight(result domain.AnalysisResult) string {
	if result.Status != domain.AnalysisOK || result.Payload == nil {
		if result.Status == domain.AnalysisInsufficientData {
			return "Not enough comparable data was available to compute this analysis."
		}
		return fmt.Sprintf("This analysis could not be computed: %s.", result.Err)
	}

	switch p := result.Payload.(type) {
	case domain.BedroomDistribution:
		return fmt.Sprintf("The comp set contains %d sale and %d lease listings with known bedroom counts, concentrated at %s bedrooms.",
			p.SaleTotal, p.LeaseTotal, modeLabel(p.SaleCounts))

	case domain.HOAFeeAnalysis:
		return fmt.Sprintf("%d of the comps carry HOA obligations averaging %s per month; HOA properties average %s against %s for non-HOA properties.",
			p.WithHOA, money(p.AverageFee), money(p.AvgPriceWith), money(p.AvgPriceWithout))

	case domain.STRPremium:
		return fmt.Sprintf("Short-term-rental eligible comps (%d) average %s, a %.1f%% premium over the %d ineligible comps at %s.",
			p.EligibleCount, money(p.AvgPriceEligible), p.PremiumPct, p.IneligibleCount, money(p.AvgPriceIneligible))

	case domain.RenovationDistribution:
		return fmt.Sprintf("Sale-side renovation mix: %d fully renovated, %d partially updated, %d original condition.",
			p.Sale[domain.RenovationFull], p.Sale[domain.RenovationPartial], p.Sale[domain.RenovationNone])

	case domain.CompSourceBreakdown:
		return fmt.Sprintf("%.0f%% of the comp set is direct (%d direct, %d indirect), with %d records sourced from PropertyRadar.",
			p.DirectPct, p.Direct, p.Indirect, p.PropertyRadar)

	case domain.SqftVariance:
		return fmt.Sprintf("Against the subject's %.0f sq ft, %d sale comps fall within ±%.0f%% while %d run larger and %d smaller.",
			p.SubjectSqFt, p.Sale.Within, p.TolerancePct, p.Sale.Above, p.Sale.Below)

	case domain.PriceVariance:
		return fmt.Sprintf("Sale comps average %s against the %s estimated value, a mean deviation of %.1f%%.",
			money(p.Sale.AvgPrice), money(p.ReferenceValue), p.Sale.AvgDeltaPct)

	case domain.LeaseVsSale:
		return fmt.Sprintf("The set holds %d sale comps averaging %s and %d lease comps averaging %s per month.",
			p.SaleCount, money(p.AvgSalePrice), p.LeaseCount, money(p.AvgLeaseRent))

	case domain.PropertyRadarAggregate:
		return fmt.Sprintf("PropertyRadar comps (%d) average %s, %.1f%% off the %d standard comps at %s.",
			p.RadarCount, money(p.AvgRadarPrice), p.DeltaPct, p.StandardCount, money(p.AvgStandardPrice))

	case domain.PropertyRadarDeltas:
		return fmt.Sprintf("Per-comp PropertyRadar pricing deviates from estimated values across %d records.", len(p.Items))

	case domain.BedroomMatchPrecision:
		return fmt.Sprintf("%d sale comps match the subject's %d bedrooms exactly (avg %s) and %d fall within one bedroom (avg %s).",
			p.Sale.Exact.Count, p.SubjectBedrooms, money(p.Sale.Exact.AvgPrice),
			p.Sale.PlusMinusOne.Count, money(p.Sale.PlusMinusOne.AvgPrice))

	case domain.PriceTrends:
		direction := "appreciated"
		pct := p.AppreciationPct
		if pct < 0 {
			direction = "declined"
			pct = -pct
		}
		return fmt.Sprintf("Trailing-12-month closings average %s versus %s over 36 months; prices have %s %.1f%%.",
			money(p.Trailing12Avg), money(p.Trailing36Avg), direction, pct)

	case domain.CompReliability:
		scope := "Across the full comp set"
		if p.WindowMonths > 0 {
			scope = fmt.Sprintf("Across comps from the last %d months", p.WindowMonths)
		}
		return fmt.Sprintf("%s, the reliability score is %.0f/100 (%d direct of %d total, %d closed).",
			scope, p.Score, p.DirectCount, p.TotalCount, p.ClosedCount)

	case domain.AbsorptionRate:
		return fmt.Sprintf("Sale side shows %d active and %d closed listings for a %.0f%% absorption rate; lease side runs %.0f%%.",
			p.Sale.Active, p.Sale.Closed, p.Sale.Rate*100, p.Lease.Rate*100)

	case domain.PendingRatio:
		return fmt.Sprintf("%d of %d non-closed sale listings are pending (%.0f%%), a direct read on current demand.",
			p.Sale.Pending, p.Sale.Active+p.Sale.Pending, p.Sale.Ratio*100)

	case domain.RenovationImpact:
		return fmt.Sprintf("On the %s side, full renovations lift prices %.1f%% and partial updates %.1f%% over the %d unrenovated comps averaging %s.",
			p.Side, p.Full.DeltaPct, p.Partial.DeltaPct, p.BaselineCount, money(p.BaselineAvg))

	case domain.PriceSpreadIQR:
		return fmt.Sprintf("Sale prices span %s to %s around a %s median (IQR %s).",
			money(p.Sale.Q1), money(p.Sale.Q3), money(p.Sale.Median), money(p.Sale.IQR))

	case domain.DistributionTails:
		return fmt.Sprintf("Of %d priced sale comps, %d fall below and %d above the 1.5×IQR fences.",
			p.Sale.Count, p.Sale.BelowLower, p.Sale.AboveUpper)

	case domain.ExpectedNOI:
		return fmt.Sprintf("At %s gross income and %s expenses, expected NOI is %s for a %.2f%% cap rate.",
			money(p.GrossIncome), money(p.OperatingExpenses), money(p.NOI), p.CapRatePct)

	case domain.ImprovedNOI:
		return fmt.Sprintf("A %s renovation lifts NOI from %s to %s, a %.1f%% return with a %.1f-year payback.",
			money(p.RenovationCost), money(p.BaseNOI), money(p.ImprovedNOI), p.ROIPct, p.PaybackYears)
	}

	return "See the accompanying chart for details."
}

func money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.0f", v)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := "$" + strings.Join(parts, ",")
	if neg {
		return "-" + out
	}
	return out
}

func modeLabel(counts map[int]int) string {
	best, bestCount := 0, -1
	for beds, n := range counts {
		if n > bestCount || (n == bestCount && beds < best) {
			best, bestCount = beds, n
		}
	}
	if bestCount <= 0 {
		return "no"
	}
	return fmt.Sprintf("%d", best)
}
