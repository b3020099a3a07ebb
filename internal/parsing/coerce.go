package parsing

import (
	"strconv"
	"strings"
	"time"
)

// Cell coercion follows a strict default policy: a blank or unparseable cell
// yields nil (absent), never zero and never an error. Ingestion only fails on
// structural problems (missing sheets), not on dirty cells.

func coerceFloat(cell string) *float64 {
	s := cleanNumeric(cell)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func coerceInt(cell string) *int {
	s := cleanNumeric(cell)
	if s == "" {
		return nil
	}
	// Bedroom counts sometimes arrive as "3.0".
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	i := int(v)
	return &i
}

func coerceBool(cell string) bool {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "yes", "y", "true", "1", "x":
		return true
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"1/2/06",
}

func coerceDate(cell string) *time.Time {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	// Excel serial date numbers show up when the cell lost its date format.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 20000 && serial < 80000 {
		t := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).Add(time.Duration(serial * 24 * float64(time.Hour)))
		return &t
	}
	return nil
}

func cleanNumeric(cell string) string {
	s := strings.TrimSpace(cell)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	if s == "-" || s == "N/A" || strings.EqualFold(s, "n/a") {
		return ""
	}
	return s
}

// normalizeAddress builds the join key used to match assessor rows onto comps.
func normalizeAddress(addr string) string {
	s := strings.ToLower(strings.TrimSpace(addr))
	s = strings.Join(strings.Fields(s), " ")
	for _, r := range []string{".", ","} {
		s = strings.ReplaceAll(s, r, "")
	}
	return s
}
