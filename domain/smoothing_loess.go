package domain

import "math"

// channelSelectors lists every channel smoothed and trend-fitted
// independently.
var channelSelectors = []struct {
	name string
	get  func(Point) *float64
	set  func(*Point, *float64)
}{
	{"fat_ox", func(p Point) *float64 { return p.FatOx }, func(p *Point, v *float64) { p.FatOx = v }},
	{"cho_ox", func(p Point) *float64 { return p.ChoOx }, func(p *Point, v *float64) { p.ChoOx = v }},
	{"rer", func(p Point) *float64 { return p.RER }, func(p *Point, v *float64) { p.RER = v }},
	{"vo2_rel", func(p Point) *float64 { return p.VO2Rel }, func(p *Point, v *float64) { p.VO2Rel = v }},
	{"vo2", func(p Point) *float64 { return p.VO2 }, func(p *Point, v *float64) { p.VO2 = v }},
	{"vco2", func(p Point) *float64 { return p.VCO2 }, func(p *Point, v *float64) { p.VCO2 = v }},
	{"hr", func(p Point) *float64 { return p.HR }, func(p *Point, v *float64) { p.HR = v }},
}

// Smooth applies local-regression smoothing to the binned series on the
// workload axis, one channel at a time, with the configured
// bandwidth (adaptive or fixed). Emits one point per binned workload
// (no resampling); count is left nil. Returns the warnings accumulated
// for channels that fall below the 4-non-null minimum.
func Smooth(binned Series, cfg Config) (Series, []string) {
	out := make(Series, len(binned))
	for idx, p := range binned {
		out[idx] = Point{Power: p.Power}
	}
	if len(binned) == 0 {
		return out, nil
	}

	xs := make([]float64, len(binned))
	for idx, p := range binned {
		xs[idx] = p.Power
	}

	frac := cfg.LoessFrac
	if cfg.AdaptiveLoess {
		frac = clamp(4.0/float64(len(binned)), 0.15, 0.5)
	}

	var warnings []string
	for _, ch := range channelSelectors {
		ys := make([]float64, len(binned))
		nonNull := 0
		for idx, p := range binned {
			if v := ch.get(p); v != nil {
				ys[idx] = *v
				nonNull++
			} else {
				ys[idx] = math.NaN()
			}
		}
		if nonNull < 4 {
			warnings = append(warnings, "sub4_points:"+ch.name)
			continue
		}

		fitted := smoothChannel(xs, ys, frac, cfg.SmoothingMethod)
		for idx := range out {
			v := fitted[idx]
			if math.IsNaN(v) {
				continue
			}
			if ch.name == "rer" && (v < 0.5 || v > 1.5) {
				continue
			}
			vv := v
			ch.set(&out[idx], &vv)
		}
	}
	return out, warnings
}

func smoothChannel(xs, ys []float64, frac float64, method SmoothingMethod) []float64 {
	switch method {
	case SmoothMovingAvg:
		return movingAverage(xs, ys, frac)
	case SmoothSavGol:
		return savitzkyGolay(xs, ys, frac)
	default:
		return loessFit(xs, ys, frac)
	}
}

// movingAverage averages the frac-nearest-neighbor window around each
// point, ignoring NaNs, as a simpler alternative to LOESS.
func movingAverage(xs, ys []float64, frac float64) []float64 {
	n := len(xs)
	out := make([]float64, n)
	k := int(math.Ceil(frac * float64(n)))
	if k < 1 {
		k = 1
	}
	half := k / 2
	for idx := range xs {
		lo, hi := idx-half, idx+half
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		var sum float64
		var count int
		for j := lo; j <= hi; j++ {
			if !math.IsNaN(ys[j]) {
				sum += ys[j]
				count++
			}
		}
		if count == 0 {
			out[idx] = math.NaN()
		} else {
			out[idx] = sum / float64(count)
		}
	}
	return out
}

// savitzkyGolay approximates a Savitzky-Golay filter with a local
// quadratic least-squares fit over a uniform frac-sized window,
// evaluated at the window center — Savitzky-Golay's defining property
// without a fixed-coefficient convolution table (irregular workload
// spacing after binning rules that out).
func savitzkyGolay(xs, ys []float64, frac float64) []float64 {
	n := len(xs)
	out := make([]float64, n)
	k := int(math.Ceil(frac * float64(n)))
	if k < 3 {
		k = 3
	}
	half := k / 2
	for idx, x0 := range xs {
		lo, hi := idx-half, idx+half
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		out[idx] = quadraticFitAt(xs[lo:hi+1], ys[lo:hi+1], x0)
	}
	return out
}

// quadraticFitAt fits y = a + b*x + c*x^2 by OLS over the non-NaN pairs
// and evaluates at x0; falls back to the local mean when the system is
// degenerate.
func quadraticFitAt(xs, ys []float64, x0 float64) float64 {
	coeffs, ok := polyfitOLS(xs, ys, 2)
	if !ok {
		return movingAverage([]float64{x0}, []float64{localMean(ys)}, 1.0)[0]
	}
	return evalPoly(coeffs, x0)
}

func localMean(ys []float64) float64 {
	var sum float64
	var n int
	for _, y := range ys {
		if !math.IsNaN(y) {
			sum += y
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
