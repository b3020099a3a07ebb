package analysis

import (
	"time"

	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

// Category C: tiered grouping with per-tier averages, trailing-window price
// aggregation and the comp reliability ratio.

func computeBedroomMatch(wb *parsing.Workbook) (domain.Payload, error) {
	if wb.Subject.Record.Bedrooms == nil {
		return nil, ErrInsufficientData
	}
	subject := *wb.Subject.Record.Bedrooms

	side := func(records []domain.PropertyRecord) domain.MatchSide {
		var exact, close, other []float64
		s := domain.MatchSide{}
		for _, r := range records {
			if r.Bedrooms == nil {
				continue
			}
			price, hasPrice := r.PriceValue()
			diff := *r.Bedrooms - subject
			if diff < 0 {
				diff = -diff
			}
			switch diff {
			case 0:
				s.Exact.Count++
				if hasPrice {
					exact = append(exact, price)
				}
			case 1:
				s.PlusMinusOne.Count++
				if hasPrice {
					close = append(close, price)
				}
			default:
				s.Other.Count++
				if hasPrice {
					other = append(other, price)
				}
			}
		}
		s.Exact.AvgPrice = mean(exact)
		s.PlusMinusOne.AvgPrice = mean(close)
		s.Other.AvgPrice = mean(other)
		return s
	}

	return domain.BedroomMatchPrecision{
		SubjectBedrooms: subject,
		Sale:            side(wb.SaleRecords()),
		Lease:           side(wb.LeaseRecords()),
	}, nil
}

func computePriceTrends(wb *parsing.Workbook) (domain.Payload, error) {
	now := wb.Meta.AnalysisDate
	if now.IsZero() {
		now = time.Now()
	}
	cut12 := now.AddDate(0, -12, 0)
	cut36 := now.AddDate(0, -36, 0)

	var win12, win36 []float64
	for _, r := range wb.SaleRecords() {
		if r.Status != domain.StatusClosed || r.CloseDate == nil {
			continue
		}
		price, ok := r.PriceValue()
		if !ok {
			continue
		}
		if r.CloseDate.After(cut36) {
			win36 = append(win36, price)
			if r.CloseDate.After(cut12) {
				win12 = append(win12, price)
			}
		}
	}

	if len(win36) == 0 {
		return nil, ErrInsufficientData
	}

	payload := domain.PriceTrends{
		Trailing12Avg:   mean(win12),
		Trailing12Count: len(win12),
		Trailing36Avg:   mean(win36),
		Trailing36Count: len(win36),
	}
	payload.AppreciationPct = pctDelta(payload.Trailing12Avg, payload.Trailing36Avg)
	return payload, nil
}

// Reliability weighs the direct-comp share at 70% and the closed share at 30%:
// a comp pool that is mostly direct and mostly closed deals is trustworthy.
const (
	directWeight = 0.7
	closedWeight = 0.3
)

func reliabilityOver(records []domain.PropertyRecord, windowMonths int) (domain.Payload, error) {
	if len(records) == 0 {
		return nil, ErrInsufficientData
	}
	payload := domain.CompReliability{WindowMonths: windowMonths}
	for _, r := range records {
		payload.TotalCount++
		if r.Source == domain.SourceDirect {
			payload.DirectCount++
		} else {
			payload.IndirectCount++
		}
		if r.Status == domain.StatusClosed {
			payload.ClosedCount++
		}
	}
	directPct := ratio(float64(payload.DirectCount), float64(payload.TotalCount)) * 100
	closedPct := ratio(float64(payload.ClosedCount), float64(payload.TotalCount)) * 100
	payload.Score = directWeight*directPct + closedWeight*closedPct
	return payload, nil
}

func computeReliability(wb *parsing.Workbook) (domain.Payload, error) {
	return reliabilityOver(wb.Records, 0)
}

const recentWindowMonths = 6

func computeRecentReliability(wb *parsing.Workbook) (domain.Payload, error) {
	now := wb.Meta.AnalysisDate
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := now.AddDate(0, -recentWindowMonths, 0)

	recent := make([]domain.PropertyRecord, 0, len(wb.Records))
	for _, r := range wb.Records {
		date := r.ListDate
		if date == nil {
			date = r.CloseDate
		}
		if date != nil && date.After(cutoff) {
			recent = append(recent, r)
		}
	}
	return reliabilityOver(recent, recentWindowMonths)
}
