package domain

import (
	"math"
	"sort"
)

// quantile computes the linearly-interpolated p-th percentile (p in
// [0,100]) of an already-sorted slice. Backs the IQR filter's Q1/Q3 and
// the bootstrap's 2.5/97.5 CI bounds.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// median returns the median of vs, copying and sorting internally.
func median(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	cp := append([]float64(nil), vs...)
	sort.Float64s(cp)
	return quantile(cp, 50)
}

// mean returns the arithmetic mean of vs.
func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// trimmedMean drops the top and bottom `frac` fraction of sorted values
// (at least one value is always kept) and averages the remainder.
func trimmedMean(vs []float64, frac float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	cp := append([]float64(nil), vs...)
	sort.Float64s(cp)
	n := len(cp)
	trim := int(float64(n) * frac)
	if trim > 0 && n-2*trim < 1 {
		trim = (n - 1) / 2
	}
	if trim < 0 {
		trim = 0
	}
	lo, hi := trim, n-trim
	if hi <= lo {
		lo, hi = 0, n
	}
	return mean(cp[lo:hi])
}

// iqrBounds returns the [lower, upper] Tukey fence for vs using
// multiplier k, plus the Q1/Q3 used to derive it.
func iqrBounds(vs []float64, k float64) (lower, upper, q1, q3 float64) {
	cp := append([]float64(nil), vs...)
	sort.Float64s(cp)
	q1 = quantile(cp, 25)
	q3 = quantile(cp, 75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr, q1, q3
}
