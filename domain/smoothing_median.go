package domain

import "sort"

// SlidingMedian sorts points by power (stable), then replaces fat_ox
// and cho_ox at each position with the median over the
// centered odd-sized window, computed from non-null members only. Skips
// when disabled or when there are fewer points than the window.
func SlidingMedian(series Series, cfg Config) Series {
	out := make(Series, len(series))
	copy(out, series)
	if !cfg.SlidingMedianEnabled || len(out) < cfg.SlidingMedianWindow {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Power < out[j].Power })

	half := cfg.SlidingMedianWindow / 2
	fat := make([]*float64, len(out))
	cho := make([]*float64, len(out))
	for idx := range out {
		lo := idx - half
		hi := idx + half
		if lo < 0 {
			lo = 0
		}
		if hi > len(out)-1 {
			hi = len(out) - 1
		}
		fat[idx] = windowMedian(out, lo, hi, func(p Point) *float64 { return p.FatOx })
		cho[idx] = windowMedian(out, lo, hi, func(p Point) *float64 { return p.ChoOx })
	}
	for idx := range out {
		out[idx].FatOx = fat[idx]
		out[idx].ChoOx = cho[idx]
	}
	return out
}

func windowMedian(series Series, lo, hi int, sel func(Point) *float64) *float64 {
	var vals []float64
	for k := lo; k <= hi; k++ {
		if v := sel(series[k]); v != nil {
			vals = append(vals, *v)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	m := median(vals)
	return &m
}
