package domain

import (
	"strings"
)

// The source workbooks carry free-text cells for status, renovation state and
// comp sourcing. Classification is keyword-based with a fixed precedence order:
// the first rule that matches wins, so "pending - backup offers" classifies as
// pending even though it also contains "offer".

var statusRules = []struct {
	status   ListingStatus
	keywords []string
}{
	{StatusPending, []string{"pending", "under contract", "contingent"}},
	{StatusClosed, []string{"closed", "sold", "leased", "settled"}},
	{StatusActive, []string{"active", "for sale", "for rent", "available", "new listing"}},
}

// ClassifyStatus maps a free-text status cell to a ListingStatus.
func ClassifyStatus(text string) ListingStatus {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return StatusUnknown
	}
	for _, rule := range statusRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.status
			}
		}
	}
	return StatusUnknown
}

var renovationRules = []struct {
	tier     RenovationTier
	keywords []string
}{
	{RenovationFull, []string{"full", "fully", "complete", "gut", "remodeled", "turnkey"}},
	{RenovationPartial, []string{"partial", "updated", "some updates", "kitchen", "bath"}},
	{RenovationNone, []string{"none", "original", "as-is", "as is", "fixer", "no updates"}},
}

// ClassifyRenovation maps a free-text renovation cell to a RenovationTier.
// Full outranks partial: "fully remodeled kitchen" is a full renovation.
func ClassifyRenovation(text string) RenovationTier {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return RenovationUnknown
	}
	for _, rule := range renovationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.tier
			}
		}
	}
	return RenovationUnknown
}

// ClassifySource maps a free-text comp-source cell to a CompSource. Anything
// not explicitly marked indirect counts as direct, matching how analysts tag
// their sheets (only the wider-radius comps get annotated).
func ClassifySource(text string) CompSource {
	s := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range []string{"indirect", "secondary", "wide", "outside area"} {
		if strings.Contains(s, kw) {
			return SourceIndirect
		}
	}
	return SourceDirect
}

// IsPropertyRadarSource reports whether a source cell marks a PropertyRadar
// record.
func IsPropertyRadarSource(text string) bool {
	s := strings.ToLower(strings.TrimSpace(text))
	return strings.Contains(s, "propertyradar") || strings.Contains(s, "property radar") ||
		strings.Contains(s, "radar")
}
