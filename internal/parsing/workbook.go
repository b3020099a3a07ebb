package parsing

import (
	"breakupscli/pkg/contracts/domain"
)

// Workbook is the parsed form of one uploaded comparables workbook. It owns
// the immutable record set every later stage reads from, plus the original
// bytes so the packager can ship the source file unmodified.
type Workbook struct {
	Records []domain.PropertyRecord
	Subject domain.SubjectProperty
	Meta    domain.RunMeta
	Source  []byte
}

// SaleRecords returns the sale-side comparables.
func (w *Workbook) SaleRecords() []domain.PropertyRecord {
	return w.byKind(domain.ListingKindSale)
}

// LeaseRecords returns the lease-side comparables.
func (w *Workbook) LeaseRecords() []domain.PropertyRecord {
	return w.byKind(domain.ListingKindLease)
}

func (w *Workbook) byKind(kind domain.ListingKind) []domain.PropertyRecord {
	out := make([]domain.PropertyRecord, 0, len(w.Records))
	for _, r := range w.Records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
