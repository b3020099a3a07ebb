package analysis

import (
	"sort"

	"breakupscli/pkg/contracts/domain"
)

// prices extracts the available price values (close price or monthly rent,
// depending on side) from a record set.
func prices(records []domain.PropertyRecord) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := r.PriceValue(); ok && v > 0 {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile computes the q-th quantile (0..1) by linear interpolation between
// closest ranks. The input need not be sorted.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lower := int(pos)
	frac := pos - float64(lower)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// pctDelta returns the percentage change from base to value; zero base yields
// zero rather than infinity.
func pctDelta(value, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (value - base) / base * 100
}

// ratio returns num/den as a plain ratio, zero-safe.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// quartiles computes Q1/median/Q3/IQR over the given values.
func quartiles(values []float64) domain.Quartiles {
	return domain.Quartiles{
		Count:  len(values),
		Q1:     quantile(values, 0.25),
		Median: quantile(values, 0.5),
		Q3:     quantile(values, 0.75),
		IQR:    quantile(values, 0.75) - quantile(values, 0.25),
	}
}

// tailCounts counts values beyond the 1.5×IQR fences.
func tailCounts(values []float64) domain.TailSide {
	q := quartiles(values)
	side := domain.TailSide{
		Count:      len(values),
		LowerBound: q.Q1 - 1.5*q.IQR,
		UpperBound: q.Q3 + 1.5*q.IQR,
	}
	for _, v := range values {
		if v < side.LowerBound {
			side.BelowLower++
		} else if v > side.UpperBound {
			side.AboveUpper++
		}
	}
	return side
}
