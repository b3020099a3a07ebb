package analysis

import (
	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

// Category D: listing status counts and their derived ratios.

func computeAbsorption(wb *parsing.Workbook) (domain.Payload, error) {
	side := func(records []domain.PropertyRecord) domain.AbsorptionSide {
		s := domain.AbsorptionSide{}
		for _, r := range records {
			switch r.Status {
			case domain.StatusActive:
				s.Active++
			case domain.StatusClosed:
				s.Closed++
			}
		}
		s.Rate = ratio(float64(s.Closed), float64(s.Active+s.Closed))
		return s
	}

	return domain.AbsorptionRate{
		Sale:  side(wb.SaleRecords()),
		Lease: side(wb.LeaseRecords()),
	}, nil
}

func computePendingRatio(wb *parsing.Workbook) (domain.Payload, error) {
	side := func(records []domain.PropertyRecord) domain.PendingSide {
		s := domain.PendingSide{}
		for _, r := range records {
			switch r.Status {
			case domain.StatusActive:
				s.Active++
			case domain.StatusPending:
				s.Pending++
			}
		}
		s.Ratio = ratio(float64(s.Pending), float64(s.Active+s.Pending))
		return s
	}

	return domain.PendingRatio{
		Sale:  side(wb.SaleRecords()),
		Lease: side(wb.LeaseRecords()),
	}, nil
}
