package domain

import "math"

// fixedDegreeChannels lists the channels that always use a fixed
// quadratic trend; fat_ox/cho_ox/rer use the configured degree-selection
// policy instead.
var fixedDegreeChannels = map[string]int{
	"vo2":     2,
	"vco2":    2,
	"hr":      2,
	"vo2_rel": 2,
}

// FitTrend fits a polynomial of workload to each smoothed channel and
// evaluates it back at every binned workload, replacing the
// channel's value with the fitted one. vo2/vco2/hr/vo2_rel are always
// fit at degree 2. fat_ox/cho_ox/rer use a fixed degree 3 unless
// cfg.AdaptivePolynomial selects a degree in [1,4] by leave-one-out
// cross-validated RMSE, falling back to degree 2 when no candidate has
// enough points.
func FitTrend(smoothed Series, cfg Config) Series {
	out := make(Series, len(smoothed))
	for idx, p := range smoothed {
		out[idx] = Point{Power: p.Power}
	}
	if len(smoothed) == 0 {
		return out
	}

	xs := make([]float64, len(smoothed))
	for idx, p := range smoothed {
		xs[idx] = p.Power
	}

	fitChannel := func(name string, sel func(Point) *float64, set func(*Point, *float64)) {
		ys := make([]float64, len(smoothed))
		nonNull := 0
		for idx, p := range smoothed {
			if v := sel(p); v != nil {
				ys[idx] = *v
				nonNull++
			} else {
				ys[idx] = math.NaN()
			}
		}
		if nonNull < 3 {
			return
		}

		degree, fixed := fixedDegreeChannels[name]
		if !fixed {
			if cfg.AdaptivePolynomial {
				degree = selectDegreeLOOCV(xs, ys)
			} else {
				degree = 3
			}
		}

		coeffs, ok := polyfitOLS(xs, ys, degree)
		if !ok {
			return
		}
		for idx := range out {
			v := evalPoly(coeffs, xs[idx])
			if name == "rer" && (v < 0.5 || v > 1.5) {
				continue
			}
			vv := v
			set(&out[idx], &vv)
		}
	}

	fitChannel("fat_ox", func(p Point) *float64 { return p.FatOx }, func(p *Point, v *float64) { p.FatOx = v })
	fitChannel("cho_ox", func(p Point) *float64 { return p.ChoOx }, func(p *Point, v *float64) { p.ChoOx = v })
	fitChannel("rer", func(p Point) *float64 { return p.RER }, func(p *Point, v *float64) { p.RER = v })
	fitChannel("vo2_rel", func(p Point) *float64 { return p.VO2Rel }, func(p *Point, v *float64) { p.VO2Rel = v })
	fitChannel("vo2", func(p Point) *float64 { return p.VO2 }, func(p *Point, v *float64) { p.VO2 = v })
	fitChannel("vco2", func(p Point) *float64 { return p.VCO2 }, func(p *Point, v *float64) { p.VCO2 = v })
	fitChannel("hr", func(p Point) *float64 { return p.HR }, func(p *Point, v *float64) { p.HR = v })

	return out
}

// selectDegreeLOOCV picks the degree in [1,4] minimizing leave-one-out
// cross-validated RMSE over the non-NaN (x,y) pairs, falling back to
// degree 2 when no candidate degree has enough points to fit (n <= d+2
// for every candidate).
func selectDegreeLOOCV(xs, ys []float64) int {
	var px, py []float64
	for idx, y := range ys {
		if !math.IsNaN(y) {
			px = append(px, xs[idx])
			py = append(py, y)
		}
	}
	n := len(px)

	bestDegree := 0
	bestRMSE := math.Inf(1)
	for d := 1; d <= 4; d++ {
		if n <= d+2 {
			continue
		}
		rmse, ok := loocvRMSE(px, py, d)
		if !ok {
			continue
		}
		if rmse < bestRMSE {
			bestRMSE = rmse
			bestDegree = d
		}
	}
	if bestDegree == 0 {
		return 2
	}
	return bestDegree
}

func loocvRMSE(xs, ys []float64, degree int) (float64, bool) {
	n := len(xs)
	var sumSq float64
	var count int
	for holdOut := 0; holdOut < n; holdOut++ {
		trainX := make([]float64, 0, n-1)
		trainY := make([]float64, 0, n-1)
		for idx := 0; idx < n; idx++ {
			if idx == holdOut {
				continue
			}
			trainX = append(trainX, xs[idx])
			trainY = append(trainY, ys[idx])
		}
		coeffs, ok := polyfitOLS(trainX, trainY, degree)
		if !ok {
			continue
		}
		pred := evalPoly(coeffs, xs[holdOut])
		residual := pred - ys[holdOut]
		sumSq += residual * residual
		count++
	}
	if count == 0 {
		return 0, false
	}
	return math.Sqrt(sumSq / float64(count)), true
}

// polyfitOLS fits y = c0 + c1*x + ... + c_degree*x^degree by ordinary
// least squares over the non-NaN pairs, solving the normal equations
// with Gaussian elimination. Returns false when there are too few
// points or the system is singular. No external linear-algebra
// dependency is used here; a hand-rolled normal-equations solve keeps
// this package free of I/O and third-party state, matching the rest of
// the pipeline's numeric kernels.
func polyfitOLS(xs, ys []float64, degree int) ([]float64, bool) {
	var px, py []float64
	for idx, y := range ys {
		if !math.IsNaN(y) {
			px = append(px, xs[idx])
			py = append(py, y)
		}
	}
	n := len(px)
	terms := degree + 1
	if n < terms {
		return nil, false
	}

	// Build the (terms x terms) normal-equation matrix A^T A and the
	// (terms) vector A^T y, where row i of A is [1, x, x^2, ..., x^degree].
	ata := make([][]float64, terms)
	aty := make([]float64, terms)
	for i := 0; i < terms; i++ {
		ata[i] = make([]float64, terms)
	}
	for idx := 0; idx < n; idx++ {
		powers := make([]float64, terms)
		p := 1.0
		for k := 0; k < terms; k++ {
			powers[k] = p
			p *= px[idx]
		}
		for i := 0; i < terms; i++ {
			aty[i] += powers[i] * py[idx]
			for j := 0; j < terms; j++ {
				ata[i][j] += powers[i] * powers[j]
			}
		}
	}

	return gaussianSolve(ata, aty)
}

// gaussianSolve solves A x = b via Gaussian elimination with partial
// pivoting. Returns false on a singular (or near-singular) matrix.
func gaussianSolve(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, true
}

// evalPoly evaluates c0 + c1*x + ... + c_d*x^d via Horner's method.
func evalPoly(coeffs []float64, x float64) float64 {
	result := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = result*x + coeffs[i]
	}
	return result
}
