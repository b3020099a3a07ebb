package analysis

import (
	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

// Category E: renovation lift vs the unrenovated baseline, quantile spread,
// outlier tails, and the NOI/cap-rate scenarios for the subject.

func renovationImpact(records []domain.PropertyRecord, side domain.ListingKind) (domain.Payload, error) {
	var baseline, full, partial []float64
	for _, r := range records {
		price, ok := r.PriceValue()
		if !ok {
			continue
		}
		switch r.Renovation {
		case domain.RenovationFull:
			full = append(full, price)
		case domain.RenovationPartial:
			partial = append(partial, price)
		case domain.RenovationNone:
			baseline = append(baseline, price)
		}
	}

	if len(baseline) == 0 || (len(full) == 0 && len(partial) == 0) {
		return nil, ErrInsufficientData
	}

	payload := domain.RenovationImpact{
		Side:          side,
		BaselineCount: len(baseline),
		BaselineAvg:   mean(baseline),
	}
	payload.Full = domain.GroupDelta{
		Count:    len(full),
		Avg:      mean(full),
		DeltaPct: pctDelta(mean(full), payload.BaselineAvg),
	}
	payload.Partial = domain.GroupDelta{
		Count:    len(partial),
		Avg:      mean(partial),
		DeltaPct: pctDelta(mean(partial), payload.BaselineAvg),
	}
	return payload, nil
}

func computeRenovationImpactSale(wb *parsing.Workbook) (domain.Payload, error) {
	return renovationImpact(wb.SaleRecords(), domain.ListingKindSale)
}

func computeRenovationImpactLease(wb *parsing.Workbook) (domain.Payload, error) {
	return renovationImpact(wb.LeaseRecords(), domain.ListingKindLease)
}

func computePriceSpread(wb *parsing.Workbook) (domain.Payload, error) {
	sale := prices(wb.SaleRecords())
	lease := prices(wb.LeaseRecords())
	if len(sale) == 0 && len(lease) == 0 {
		return nil, ErrInsufficientData
	}
	return domain.PriceSpreadIQR{
		Sale:  quartiles(sale),
		Lease: quartiles(lease),
	}, nil
}

func computeDistributionTails(wb *parsing.Workbook) (domain.Payload, error) {
	sale := prices(wb.SaleRecords())
	lease := prices(wb.LeaseRecords())
	if len(sale) == 0 && len(lease) == 0 {
		return nil, ErrInsufficientData
	}
	return domain.DistributionTails{
		Sale:  tailCounts(sale),
		Lease: tailCounts(lease),
	}, nil
}

func computeExpectedNOI(wb *parsing.Workbook) (domain.Payload, error) {
	s := wb.Subject
	if s.GrossIncome == nil || s.OperatingExpenses == nil {
		return nil, ErrInsufficientData
	}

	payload := domain.ExpectedNOI{
		GrossIncome:       *s.GrossIncome,
		OperatingExpenses: *s.OperatingExpenses,
		NOI:               *s.GrossIncome - *s.OperatingExpenses,
	}
	if s.EstimatedValue != nil && *s.EstimatedValue > 0 {
		payload.CapRatePct = payload.NOI / *s.EstimatedValue * 100
	}
	return payload, nil
}

func computeImprovedNOI(wb *parsing.Workbook) (domain.Payload, error) {
	s := wb.Subject
	if s.GrossIncome == nil || s.OperatingExpenses == nil ||
		s.RenovationCost == nil || s.ImprovedIncome == nil {
		return nil, ErrInsufficientData
	}
	if *s.RenovationCost <= 0 {
		return nil, ErrInsufficientData
	}

	baseNOI := *s.GrossIncome - *s.OperatingExpenses
	improvedNOI := *s.ImprovedIncome - *s.OperatingExpenses
	lift := improvedNOI - baseNOI

	payload := domain.ImprovedNOI{
		RenovationCost: *s.RenovationCost,
		BaseNOI:        baseNOI,
		ImprovedNOI:    improvedNOI,
		ROIPct:         lift / *s.RenovationCost * 100,
	}
	if lift > 0 {
		payload.PaybackYears = *s.RenovationCost / lift
	}
	return payload, nil
}
