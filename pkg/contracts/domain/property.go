package domain

import (
	"time"
)

// ListingKind distinguishes sale comparables from lease comparables.
type ListingKind string

const (
	ListingKindSale  ListingKind = "sale"
	ListingKindLease ListingKind = "lease"
)

// ListingStatus represents the market status of a listing.
type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusPending ListingStatus = "pending"
	StatusClosed  ListingStatus = "closed"
	StatusUnknown ListingStatus = "unknown"
)

// RenovationTier represents how much of a property has been renovated.
type RenovationTier string

const (
	RenovationFull    RenovationTier = "full"
	RenovationPartial RenovationTier = "partial"
	RenovationNone    RenovationTier = "none"
	RenovationUnknown RenovationTier = "unknown"
)

// CompSource distinguishes direct comparables (same micro-market, close match)
// from indirect ones pulled from a wider search radius.
type CompSource string

const (
	SourceDirect   CompSource = "direct"
	SourceIndirect CompSource = "indirect"
)

// PropertyRecord is one comparable or subject listing parsed from the uploaded
// workbook. Records are immutable once parsed; optional numeric fields are
// pointers so an absent cell is distinguishable from a genuine zero.
type PropertyRecord struct {
	Address string      `json:"address" validate:"required"`
	City    string      `json:"city,omitempty"`
	APN     string      `json:"apn,omitempty"`
	Kind    ListingKind `json:"kind"`

	Price          *float64 `json:"price,omitempty"`
	EstimatedValue *float64 `json:"estimated_value,omitempty"`
	MonthlyRent    *float64 `json:"monthly_rent,omitempty"`

	Bedrooms   *int     `json:"bedrooms,omitempty"`
	Bathrooms  *float64 `json:"bathrooms,omitempty"`
	SquareFeet *float64 `json:"square_feet,omitempty"`
	LotSqFt    *float64 `json:"lot_sqft,omitempty"`
	YearBuilt  *int     `json:"year_built,omitempty"`

	HasHOA      bool     `json:"has_hoa"`
	HOAFee      *float64 `json:"hoa_fee,omitempty"`
	STREligible bool     `json:"str_eligible"`

	Renovation RenovationTier `json:"renovation"`
	Status     ListingStatus  `json:"status"`
	Source     CompSource     `json:"source"`

	// PropertyRadar marks records sourced from the PropertyRadar data service
	// rather than the MLS feed.
	PropertyRadar bool `json:"property_radar"`

	ListDate  *time.Time `json:"list_date,omitempty"`
	CloseDate *time.Time `json:"close_date,omitempty"`

	// Assessor enrichment, joined by address/APN.
	AssessedValue *float64 `json:"assessed_value,omitempty"`
	AnnualTax     *float64 `json:"annual_tax,omitempty"`
}

// PriceValue returns the best available price for the record: close price for
// sale comps, monthly rent for lease comps. The bool reports availability.
func (r PropertyRecord) PriceValue() (float64, bool) {
	if r.Kind == ListingKindLease {
		if r.MonthlyRent != nil {
			return *r.MonthlyRent, true
		}
		if r.Price != nil {
			return *r.Price, true
		}
		return 0, false
	}
	if r.Price != nil {
		return *r.Price, true
	}
	return 0, false
}

// IsRenovated reports whether the record carries any renovation work.
func (r PropertyRecord) IsRenovated() bool {
	return r.Renovation == RenovationFull || r.Renovation == RenovationPartial
}

// SubjectProperty carries the subject listing and the valuation assumptions
// pulled from the workbook's analysis sheet. The income fields feed the NOI
// analyses and may be absent.
type SubjectProperty struct {
	Record            PropertyRecord `json:"record"`
	EstimatedValue    *float64       `json:"estimated_value,omitempty"`
	GrossIncome       *float64       `json:"gross_income,omitempty"`
	OperatingExpenses *float64       `json:"operating_expenses,omitempty"`
	RenovationCost    *float64       `json:"renovation_cost,omitempty"`
	ImprovedIncome    *float64       `json:"improved_income,omitempty"`
}
