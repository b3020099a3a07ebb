package domain

import (
	"encoding/json"
)

// Category groups the fixed analysis battery into its five report themes.
type Category string

const (
	CategoryCharacteristics Category = "A"
	CategoryPositioning     Category = "B"
	CategoryTimeLocation    Category = "C"
	CategoryActivity        Category = "D"
	CategoryFinancial       Category = "E"
)

// CategoryName returns the display name used in report headings.
func (c Category) CategoryName() string {
	switch c {
	case CategoryCharacteristics:
		return "Property Characteristics"
	case CategoryPositioning:
		return "Market Positioning"
	case CategoryTimeLocation:
		return "Time & Location"
	case CategoryActivity:
		return "Market Activity"
	case CategoryFinancial:
		return "Financial Impact"
	}
	return string(c)
}

// AnalysisStatus is the outcome of a single analysis slot.
type AnalysisStatus string

const (
	AnalysisOK               AnalysisStatus = "ok"
	AnalysisInsufficientData AnalysisStatus = "insufficient-data"
	AnalysisError            AnalysisStatus = "error"
)

// Payload is the closed set of analysis result shapes. Every analysis produces
// exactly one of the concrete types below; consumers switch on the concrete
// type rather than guessing at map keys.
type Payload interface {
	PayloadKind() string
}

// AnalysisResult is the common envelope around one analysis payload. Exactly
// 22 results are produced per run, in battery order, regardless of individual
// failures; a failed slot keeps its envelope with a nil payload.
type AnalysisResult struct {
	ID       int            `json:"id"`
	Slug     string         `json:"slug"`
	Name     string         `json:"name"`
	Category Category       `json:"category"`
	Status   AnalysisStatus `json:"status"`
	Err      string         `json:"error,omitempty"`
	Payload  Payload        `json:"payload,omitempty"`
}

// MarshalJSON adds the payload kind next to the payload so the JSON dump is
// self-describing without reflection on the consumer side.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type alias AnalysisResult
	out := struct {
		alias
		PayloadKind string `json:"payload_kind,omitempty"`
	}{alias: alias(r)}
	if r.Payload != nil {
		out.PayloadKind = r.Payload.PayloadKind()
	}
	return json.Marshal(out)
}

// --- Category A: Property Characteristics ---

// BedroomDistribution is a bedroom-count histogram per listing side.
type BedroomDistribution struct {
	SaleCounts  map[int]int `json:"sale_counts"`
	LeaseCounts map[int]int `json:"lease_counts"`
	SaleTotal   int         `json:"sale_total"`
	LeaseTotal  int         `json:"lease_total"`
}

func (BedroomDistribution) PayloadKind() string { return "bedroom_distribution" }

// HOAFeeAnalysis compares comps with and without HOA obligations.
type HOAFeeAnalysis struct {
	WithHOA         int     `json:"with_hoa"`
	WithoutHOA      int     `json:"without_hoa"`
	AverageFee      float64 `json:"average_fee"`
	AvgPriceWith    float64 `json:"avg_price_with"`
	AvgPriceWithout float64 `json:"avg_price_without"`
}

func (HOAFeeAnalysis) PayloadKind() string { return "hoa_fee_analysis" }

// STRPremium measures the price premium of short-term-rental eligible comps.
type STRPremium struct {
	EligibleCount      int     `json:"eligible_count"`
	IneligibleCount    int     `json:"ineligible_count"`
	AvgPriceEligible   float64 `json:"avg_price_eligible"`
	AvgPriceIneligible float64 `json:"avg_price_ineligible"`
	PremiumPct         float64 `json:"premium_pct"`
}

func (STRPremium) PayloadKind() string { return "str_premium" }

// RenovationDistribution counts comps per renovation tier per side.
type RenovationDistribution struct {
	Sale  map[RenovationTier]int `json:"sale"`
	Lease map[RenovationTier]int `json:"lease"`
}

func (RenovationDistribution) PayloadKind() string { return "renovation_distribution" }

// CompSourceBreakdown classifies comps by sourcing.
type CompSourceBreakdown struct {
	Direct        int     `json:"direct"`
	Indirect      int     `json:"indirect"`
	PropertyRadar int     `json:"property_radar"`
	Standard      int     `json:"standard"`
	DirectPct     float64 `json:"direct_pct"`
}

func (CompSourceBreakdown) PayloadKind() string { return "comp_source_breakdown" }

// --- Category B: Market Positioning ---

// VarianceSide buckets one listing side against the subject square footage.
type VarianceSide struct {
	Within  int     `json:"within"`
	Above   int     `json:"above"`
	Below   int     `json:"below"`
	AvgSqFt float64 `json:"avg_sqft"`
}

// SqftVariance buckets comps into ±20% of the subject square footage.
type SqftVariance struct {
	SubjectSqFt  float64      `json:"subject_sqft"`
	TolerancePct float64      `json:"tolerance_pct"`
	Sale         VarianceSide `json:"sale"`
	Lease        VarianceSide `json:"lease"`
}

func (SqftVariance) PayloadKind() string { return "sqft_variance" }

// DeltaSide summarizes one listing side's deviation from a reference value.
type DeltaSide struct {
	Count       int     `json:"count"`
	AvgPrice    float64 `json:"avg_price"`
	AvgDeltaPct float64 `json:"avg_delta_pct"`
}

// PriceVariance compares comp prices against the subject's estimated value.
type PriceVariance struct {
	ReferenceValue float64   `json:"reference_value"`
	Sale           DeltaSide `json:"sale"`
	Lease          DeltaSide `json:"lease"`
}

func (PriceVariance) PayloadKind() string { return "price_variance" }

// LeaseVsSale contrasts the two comp pools.
type LeaseVsSale struct {
	SaleCount    int     `json:"sale_count"`
	LeaseCount   int     `json:"lease_count"`
	AvgSalePrice float64 `json:"avg_sale_price"`
	AvgLeaseRent float64 `json:"avg_lease_rent"`
}

func (LeaseVsSale) PayloadKind() string { return "lease_vs_sale" }

// PropertyRadarAggregate contrasts PropertyRadar-sourced comps with standard ones.
type PropertyRadarAggregate struct {
	RadarCount       int     `json:"radar_count"`
	StandardCount    int     `json:"standard_count"`
	AvgRadarPrice    float64 `json:"avg_radar_price"`
	AvgStandardPrice float64 `json:"avg_standard_price"`
	DeltaPct         float64 `json:"delta_pct"`
}

func (PropertyRadarAggregate) PayloadKind() string { return "propertyradar_aggregate" }

// RadarDelta is one PropertyRadar comp's deviation from its estimated value.
type RadarDelta struct {
	Address        string  `json:"address"`
	Price          float64 `json:"price"`
	EstimatedValue float64 `json:"estimated_value"`
	DeltaPct       float64 `json:"delta_pct"`
}

// PropertyRadarDeltas lists the per-comp PropertyRadar comparison.
type PropertyRadarDeltas struct {
	Items []RadarDelta `json:"items"`
}

func (PropertyRadarDeltas) PayloadKind() string { return "propertyradar_deltas" }

// --- Category C: Time & Location ---

// MatchTier is one bedroom-match precision bucket.
type MatchTier struct {
	Count    int     `json:"count"`
	AvgPrice float64 `json:"avg_price"`
}

// MatchSide groups one listing side into exact / ±1 / other bedroom matches.
type MatchSide struct {
	Exact        MatchTier `json:"exact"`
	PlusMinusOne MatchTier `json:"plus_minus_one"`
	Other        MatchTier `json:"other"`
}

// BedroomMatchPrecision tiers comps by bedroom match against the subject.
type BedroomMatchPrecision struct {
	SubjectBedrooms int       `json:"subject_bedrooms"`
	Sale            MatchSide `json:"sale"`
	Lease           MatchSide `json:"lease"`
}

func (BedroomMatchPrecision) PayloadKind() string { return "bedroom_match_precision" }

// PriceTrends aggregates trailing-window closed prices.
type PriceTrends struct {
	Trailing12Avg   float64 `json:"trailing_12_avg"`
	Trailing12Count int     `json:"trailing_12_count"`
	Trailing36Avg   float64 `json:"trailing_36_avg"`
	Trailing36Count int     `json:"trailing_36_count"`
	AppreciationPct float64 `json:"appreciation_pct"`
}

func (PriceTrends) PayloadKind() string { return "price_trends" }

// CompReliability scores the comp set on direct share and closed share.
// WindowMonths is zero for the all-time variant and the trailing window length
// for the recent variant.
type CompReliability struct {
	WindowMonths  int     `json:"window_months,omitempty"`
	DirectCount   int     `json:"direct_count"`
	IndirectCount int     `json:"indirect_count"`
	ClosedCount   int     `json:"closed_count"`
	TotalCount    int     `json:"total_count"`
	Score         float64 `json:"score"`
}

func (CompReliability) PayloadKind() string { return "comp_reliability" }

// --- Category D: Market Activity ---

// AbsorptionSide holds active/closed counts and the absorption rate for one side.
type AbsorptionSide struct {
	Active int     `json:"active"`
	Closed int     `json:"closed"`
	Rate   float64 `json:"rate"`
}

// AbsorptionRate reports market absorption per listing side.
type AbsorptionRate struct {
	Sale  AbsorptionSide `json:"sale"`
	Lease AbsorptionSide `json:"lease"`
}

func (AbsorptionRate) PayloadKind() string { return "absorption_rate" }

// PendingSide holds active/pending counts and the pending ratio for one side.
type PendingSide struct {
	Active  int     `json:"active"`
	Pending int     `json:"pending"`
	Ratio   float64 `json:"ratio"`
}

// PendingRatio reports pending pressure per listing side.
type PendingRatio struct {
	Sale  PendingSide `json:"sale"`
	Lease PendingSide `json:"lease"`
}

func (PendingRatio) PayloadKind() string { return "pending_ratio" }

// --- Category E: Financial Impact ---

// GroupDelta is one renovation tier's average against the unrenovated baseline.
type GroupDelta struct {
	Count    int     `json:"count"`
	Avg      float64 `json:"avg"`
	DeltaPct float64 `json:"delta_pct"`
}

// RenovationImpact measures the price lift of full and partial renovations on
// one listing side.
type RenovationImpact struct {
	Side          ListingKind `json:"side"`
	BaselineCount int         `json:"baseline_count"`
	BaselineAvg   float64     `json:"baseline_avg"`
	Full          GroupDelta  `json:"full"`
	Partial       GroupDelta  `json:"partial"`
}

func (RenovationImpact) PayloadKind() string { return "renovation_impact" }

// Quartiles holds the quartile statistics of one side's price distribution.
type Quartiles struct {
	Count  int     `json:"count"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`
}

// PriceSpreadIQR reports quartile spread per listing side.
type PriceSpreadIQR struct {
	Sale  Quartiles `json:"sale"`
	Lease Quartiles `json:"lease"`
}

func (PriceSpreadIQR) PayloadKind() string { return "price_spread_iqr" }

// TailSide counts prices beyond the 1.5×IQR fences on one side.
type TailSide struct {
	Count      int     `json:"count"`
	BelowLower int     `json:"below_lower"`
	AboveUpper int     `json:"above_upper"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// DistributionTails reports outlier counts per listing side.
type DistributionTails struct {
	Sale  TailSide `json:"sale"`
	Lease TailSide `json:"lease"`
}

func (DistributionTails) PayloadKind() string { return "distribution_tails" }

// ExpectedNOI is the subject's current net operating income and cap rate.
type ExpectedNOI struct {
	GrossIncome       float64 `json:"gross_income"`
	OperatingExpenses float64 `json:"operating_expenses"`
	NOI               float64 `json:"noi"`
	CapRatePct        float64 `json:"cap_rate_pct"`
}

func (ExpectedNOI) PayloadKind() string { return "expected_noi" }

// ImprovedNOI models the subject's post-renovation income scenario.
type ImprovedNOI struct {
	RenovationCost float64 `json:"renovation_cost"`
	BaseNOI        float64 `json:"base_noi"`
	ImprovedNOI    float64 `json:"improved_noi"`
	ROIPct         float64 `json:"roi_pct"`
	PaybackYears   float64 `json:"payback_years"`
}

func (ImprovedNOI) PayloadKind() string { return "improved_noi" }
