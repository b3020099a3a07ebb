package analysis

import (
	"errors"

	"breakupscli/internal/parsing"
	"breakupscli/pkg/contracts/domain"
)

// ErrInsufficientData marks an analysis that cannot be computed from the
// available records. It degrades the slot's status instead of failing the run.
var ErrInsufficientData = errors.New("insufficient data")

// Definition is the static metadata for one analysis in the battery: id,
// naming, category, and a pure compute function over the parsed workbook.
type Definition struct {
	ID       int
	Slug     string
	Name     string
	Category domain.Category
	Compute  func(wb *parsing.Workbook) (domain.Payload, error)
}

// Battery returns the fixed 22-analysis battery in report order. The slice is
// rebuilt per call so callers cannot mutate shared state.
func Battery() []Definition {
	return []Definition{
		// Category A: Property Characteristics
		{1, "bedroom_distribution", "Bedroom Distribution", domain.CategoryCharacteristics, computeBedroomDistribution},
		{2, "hoa_fee_analysis", "HOA Fee Analysis", domain.CategoryCharacteristics, computeHOAFees},
		{3, "str_premium", "Short-Term Rental Premium", domain.CategoryCharacteristics, computeSTRPremium},
		{4, "renovation_distribution", "Renovation Tier Distribution", domain.CategoryCharacteristics, computeRenovationDistribution},
		{5, "comp_source_breakdown", "Comp Source Classification", domain.CategoryCharacteristics, computeCompSourceBreakdown},

		// Category B: Market Positioning
		{6, "sqft_variance", "Square Footage Variance", domain.CategoryPositioning, computeSqftVariance},
		{7, "price_variance", "Price vs Estimated Value", domain.CategoryPositioning, computePriceVariance},
		{8, "lease_vs_sale", "Lease vs Sale Comparison", domain.CategoryPositioning, computeLeaseVsSale},
		{9, "propertyradar_aggregate", "PropertyRadar Comp Aggregate", domain.CategoryPositioning, computeRadarAggregate},
		{10, "propertyradar_deltas", "PropertyRadar Per-Comp Deltas", domain.CategoryPositioning, computeRadarDeltas},

		// Category C: Time & Location
		{11, "bedroom_match_precision", "Bedroom Match Precision", domain.CategoryTimeLocation, computeBedroomMatch},
		{12, "price_trends", "Trailing Price Trends", domain.CategoryTimeLocation, computePriceTrends},
		{13, "comp_reliability", "Comp Reliability Score", domain.CategoryTimeLocation, computeReliability},
		{14, "recent_comp_reliability", "Recent Comp Reliability", domain.CategoryTimeLocation, computeRecentReliability},

		// Category D: Market Activity
		{15, "absorption_rate", "Absorption Rate", domain.CategoryActivity, computeAbsorption},
		{16, "pending_ratio", "Pending Ratio", domain.CategoryActivity, computePendingRatio},

		// Category E: Financial Impact
		{17, "renovation_impact_sale", "Renovation Impact (Sale)", domain.CategoryFinancial, computeRenovationImpactSale},
		{18, "renovation_impact_lease", "Renovation Impact (Lease)", domain.CategoryFinancial, computeRenovationImpactLease},
		{19, "price_spread_iqr", "Price Spread (IQR)", domain.CategoryFinancial, computePriceSpread},
		{20, "distribution_tails", "Distribution Tails", domain.CategoryFinancial, computeDistributionTails},
		{21, "expected_noi", "Expected NOI", domain.CategoryFinancial, computeExpectedNOI},
		{22, "improved_noi", "Improved NOI", domain.CategoryFinancial, computeImprovedNOI},
	}
}

// BatterySize is the fixed number of analyses per run.
const BatterySize = 22
