package domain

import "math"

type loessSample struct{ x, y float64 }

// loessFit evaluates locally-weighted linear regression with tri-cube
// weights at every x in xs, using only the (x,y) pairs where y is
// non-NaN, windowed to the frac nearest neighbors of the evaluation
// point. Returns NaN everywhere when fewer than 2 non-NaN samples are
// available. Weighted sums are reduced to a 2x2 normal-equations system
// and solved directly rather than via an iterative reweighting loop,
// since tri-cube distance weights (unlike Huber residual weights) don't
// depend on the fit itself.
func loessFit(xs, ys []float64, frac float64) []float64 {
	n := len(xs)
	out := make([]float64, n)

	var valid []loessSample
	for idx := 0; idx < n; idx++ {
		if !math.IsNaN(ys[idx]) {
			valid = append(valid, loessSample{xs[idx], ys[idx]})
		}
	}
	if len(valid) < 2 {
		for idx := range out {
			out[idx] = math.NaN()
		}
		return out
	}

	k := int(math.Ceil(frac * float64(len(valid))))
	if k < 2 {
		k = 2
	}
	if k > len(valid) {
		k = len(valid)
	}

	for idx, x0 := range xs {
		neighbors := nearestK(valid, x0, k)
		bandwidth := 0.0
		for _, nb := range neighbors {
			d := math.Abs(nb.x - x0)
			if d > bandwidth {
				bandwidth = d
			}
		}
		if bandwidth == 0 {
			bandwidth = 1e-9
		}

		var sw, swx, swy, swxx, swxy float64
		for _, nb := range neighbors {
			u := math.Abs(nb.x-x0) / bandwidth
			if u >= 1 {
				continue
			}
			w := math.Pow(1-u*u*u, 3) // tri-cube
			sw += w
			swx += w * nb.x
			swy += w * nb.y
			swxx += w * nb.x * nb.x
			swxy += w * nb.x * nb.y
		}
		if sw < 1e-12 {
			// Every neighbor sits at the bandwidth distance and gets zero
			// tri-cube weight; fall back to their unweighted mean.
			var sum float64
			for _, nb := range neighbors {
				sum += nb.y
			}
			out[idx] = sum / float64(len(neighbors))
			continue
		}
		meanX := swx / sw
		meanY := swy / sw
		denom := swxx - sw*meanX*meanX
		if math.Abs(denom) < 1e-12 {
			out[idx] = meanY
			continue
		}
		slope := (swxy - sw*meanX*meanY) / denom
		intercept := meanY - slope*meanX
		out[idx] = intercept + slope*x0
	}
	return out
}

// nearestK returns the k samples of valid nearest to x0 by |x-x0|,
// ascending by distance. n is small (bin count, tens of elements), so
// an insertion sort keyed on distance is adequate.
func nearestK(valid []loessSample, x0 float64, k int) []loessSample {
	sorted := append([]loessSample(nil), valid...)
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && math.Abs(sorted[j-1].x-x0) > math.Abs(sorted[j].x-x0) {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
			j--
		}
	}
	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k]
}
