package analysis

import (
	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

// Category A: frequency counts, group averages and percentage premiums over
// the raw comp characteristics.

func computeBedroomDistribution(wb *parsing.Workbook) (domain.Payload, error) {
	payload := domain.BedroomDistribution{
		SaleCounts:  map[int]int{},
		LeaseCounts: map[int]int{},
	}
	for _, r := range wb.SaleRecords() {
		if r.Bedrooms != nil {
			payload.SaleCounts[*r.Bedrooms]++
			payload.SaleTotal++
		}
	}
	for _, r := range wb.LeaseRecords() {
		if r.Bedrooms != nil {
			payload.LeaseCounts[*r.Bedrooms]++
			payload.LeaseTotal++
		}
	}
	return payload, nil
}

func computeHOAFees(wb *parsing.Workbook) (domain.Payload, error) {
	payload := domain.HOAFeeAnalysis{}
	var fees, withPrices, withoutPrices []float64

	for _, r := range wb.Records {
		if r.HasHOA {
			payload.WithHOA++
			if r.HOAFee != nil {
				fees = append(fees, *r.HOAFee)
			}
		} else {
			payload.WithoutHOA++
		}
	}
	// Price averages compare sale comps only; lease rents live on a different
	// scale and would skew the with/without split.
	for _, r := range wb.SaleRecords() {
		price, ok := r.PriceValue()
		if !ok {
			continue
		}
		if r.HasHOA {
			withPrices = append(withPrices, price)
		} else {
			withoutPrices = append(withoutPrices, price)
		}
	}

	payload.AverageFee = mean(fees)
	payload.AvgPriceWith = mean(withPrices)
	payload.AvgPriceWithout = mean(withoutPrices)
	return payload, nil
}

func computeSTRPremium(wb *parsing.Workbook) (domain.Payload, error) {
	var eligible, ineligible []float64
	payload := domain.STRPremium{}

	for _, r := range wb.SaleRecords() {
		price, ok := r.PriceValue()
		if r.STREligible {
			payload.EligibleCount++
			if ok {
				eligible = append(eligible, price)
			}
		} else {
			payload.IneligibleCount++
			if ok {
				ineligible = append(ineligible, price)
			}
		}
	}

	if len(eligible) == 0 || len(ineligible) == 0 {
		return nil, ErrInsufficientData
	}

	payload.AvgPriceEligible = mean(eligible)
	payload.AvgPriceIneligible = mean(ineligible)
	payload.PremiumPct = pctDelta(payload.AvgPriceEligible, payload.AvgPriceIneligible)
	return payload, nil
}

func computeRenovationDistribution(wb *parsing.Workbook) (domain.Payload, error) {
	payload := domain.RenovationDistribution{
		Sale:  map[domain.RenovationTier]int{},
		Lease: map[domain.RenovationTier]int{},
	}
	for _, r := range wb.SaleRecords() {
		payload.Sale[r.Renovation]++
	}
	for _, r := range wb.LeaseRecords() {
		payload.Lease[r.Renovation]++
	}
	return payload, nil
}

func computeCompSourceBreakdown(wb *parsing.Workbook) (domain.Payload, error) {
	payload := domain.CompSourceBreakdown{}
	for _, r := range wb.Records {
		if r.Source == domain.SourceDirect {
			payload.Direct++
		} else {
			payload.Indirect++
		}
		if r.PropertyRadar {
			payload.PropertyRadar++
		} else {
			payload.Standard++
		}
	}
	payload.DirectPct = ratio(float64(payload.Direct), float64(len(wb.Records))) * 100
	return payload, nil
}
