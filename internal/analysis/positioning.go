package analysis

import (
	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

// Category B: bucketed counts and deltas against the subject's reference
// values, plus the PropertyRadar comparisons.

const sqftTolerancePct = 20.0

func computeSqftVariance(wb *parsing.Workbook) (domain.Payload, error) {
	if wb.Subject.Record.SquareFeet == nil || *wb.Subject.Record.SquareFeet <= 0 {
		return nil, ErrInsufficientData
	}
	subject := *wb.Subject.Record.SquareFeet

	bucket := func(records []domain.PropertyRecord) domain.VarianceSide {
		side := domain.VarianceSide{}
		var sqfts []float64
		lower := subject * (1 - sqftTolerancePct/100)
		upper := subject * (1 + sqftTolerancePct/100)
		for _, r := range records {
			if r.SquareFeet == nil {
				continue
			}
			sqfts = append(sqfts, *r.SquareFeet)
			switch {
			case *r.SquareFeet < lower:
				side.Below++
			case *r.SquareFeet > upper:
				side.Above++
			default:
				side.Within++
			}
		}
		side.AvgSqFt = mean(sqfts)
		return side
	}

	return domain.SqftVariance{
		SubjectSqFt:  subject,
		TolerancePct: sqftTolerancePct,
		Sale:         bucket(wb.SaleRecords()),
		Lease:        bucket(wb.LeaseRecords()),
	}, nil
}

func computePriceVariance(wb *parsing.Workbook) (domain.Payload, error) {
	if wb.Subject.EstimatedValue == nil || *wb.Subject.EstimatedValue <= 0 {
		return nil, ErrInsufficientData
	}
	ref := *wb.Subject.EstimatedValue

	side := func(records []domain.PropertyRecord) domain.DeltaSide {
		vals := prices(records)
		var deltas []float64
		for _, v := range vals {
			deltas = append(deltas, pctDelta(v, ref))
		}
		return domain.DeltaSide{
			Count:       len(vals),
			AvgPrice:    mean(vals),
			AvgDeltaPct: mean(deltas),
		}
	}

	return domain.PriceVariance{
		ReferenceValue: ref,
		Sale:           side(wb.SaleRecords()),
		Lease:          side(wb.LeaseRecords()),
	}, nil
}

func computeLeaseVsSale(wb *parsing.Workbook) (domain.Payload, error) {
	sale := wb.SaleRecords()
	lease := wb.LeaseRecords()
	return domain.LeaseVsSale{
		SaleCount:    len(sale),
		LeaseCount:   len(lease),
		AvgSalePrice: mean(prices(sale)),
		AvgLeaseRent: mean(prices(lease)),
	}, nil
}

func computeRadarAggregate(wb *parsing.Workbook) (domain.Payload, error) {
	var radar, standard []float64
	payload := domain.PropertyRadarAggregate{}

	for _, r := range wb.SaleRecords() {
		price, ok := r.PriceValue()
		if r.PropertyRadar {
			payload.RadarCount++
			if ok {
				radar = append(radar, price)
			}
		} else {
			payload.StandardCount++
			if ok {
				standard = append(standard, price)
			}
		}
	}

	if payload.RadarCount == 0 {
		return nil, ErrInsufficientData
	}

	payload.AvgRadarPrice = mean(radar)
	payload.AvgStandardPrice = mean(standard)
	payload.DeltaPct = pctDelta(payload.AvgRadarPrice, payload.AvgStandardPrice)
	return payload, nil
}

func computeRadarDeltas(wb *parsing.Workbook) (domain.Payload, error) {
	payload := domain.PropertyRadarDeltas{}
	for _, r := range wb.Records {
		if !r.PropertyRadar {
			continue
		}
		price, ok := r.PriceValue()
		if !ok || r.EstimatedValue == nil || *r.EstimatedValue <= 0 {
			continue
		}
		payload.Items = append(payload.Items, domain.RadarDelta{
			Address:        r.Address,
			Price:          price,
			EstimatedValue: *r.EstimatedValue,
			DeltaPct:       pctDelta(price, *r.EstimatedValue),
		})
	}
	if len(payload.Items) == 0 {
		return nil, ErrInsufficientData
	}
	return payload, nil
}
