package domain

import (
	"math"
	"sort"
)

// Bin assigns points to fixed-width workload bins, merges sparse bins
// into their nearest qualifying neighbor until a fixed point, then
// aggregates each surviving bin per channel. Each emitted point's Power
// is the bin's center (floor + BinSizeW/2), not its floor.
func Bin(series Series, cfg Config) Series {
	binOf := func(power float64) float64 {
		return math.Floor(power/cfg.BinSizeW) * cfg.BinSizeW
	}

	members := map[float64][]Point{}
	for _, p := range series {
		b := binOf(p.Power)
		members[b] = append(members[b], p)
	}

	members = mergeSparseBins(members, cfg.MinBinCount, cfg.BinSizeW)

	bins := make([]float64, 0, len(members))
	for b := range members {
		bins = append(bins, b)
	}
	sort.Float64s(bins)

	out := make(Series, 0, len(bins))
	for _, b := range bins {
		pts := members[b]
		count := len(pts)
		out = append(out, Point{
			Power: b + cfg.BinSizeW/2,
			FatOx: aggregateChannel(pts, cfg.Aggregation, func(p Point) *float64 { return p.FatOx }),
			ChoOx: aggregateChannel(pts, cfg.Aggregation, func(p Point) *float64 { return p.ChoOx }),
			RER:   aggregateChannel(pts, cfg.Aggregation, func(p Point) *float64 { return p.RER }),
			VO2Rel: aggregateChannel(pts, cfg.Aggregation, func(p Point) *float64 { return p.VO2Rel }),
			VO2:   aggregateChannel(pts, cfg.Aggregation, func(p Point) *float64 { return p.VO2 }),
			VCO2:  aggregateChannel(pts, cfg.Aggregation, func(p Point) *float64 { return p.VCO2 }),
			HR:    aggregateChannel(pts, cfg.Aggregation, func(p Point) *float64 { return p.HR }),
			Count: i(count),
		})
	}
	return out
}

// mergeSparseBins reassigns members of any bin with fewer than
// minCount points to the nearest bin (by center distance, ties go to
// the lower workload) that has at least minCount points, iterating
// until no further merge changes anything. Bins with no qualifying
// neighbor (the degenerate all-sparse case) are left as is.
func mergeSparseBins(members map[float64][]Point, minCount int, binSize float64) map[float64][]Point {
	for {
		sparse := make([]float64, 0)
		for b, pts := range members {
			if len(pts) < minCount {
				sparse = append(sparse, b)
			}
		}
		if len(sparse) == 0 {
			return members
		}
		sort.Float64s(sparse)

		changed := false
		for _, b := range sparse {
			pts, ok := members[b]
			if !ok || len(pts) >= minCount {
				continue
			}
			target, found := nearestQualifyingBin(members, b, minCount)
			if !found {
				continue
			}
			members[target] = append(members[target], pts...)
			delete(members, b)
			changed = true
		}
		if !changed {
			return members
		}
	}
}

func nearestQualifyingBin(members map[float64][]Point, from float64, minCount int) (float64, bool) {
	bestDist := math.Inf(1)
	best := 0.0
	found := false
	for b, pts := range members {
		if b == from || len(pts) < minCount {
			continue
		}
		d := math.Abs(b - from)
		if d < bestDist || (d == bestDist && b < best) {
			bestDist = d
			best = b
			found = true
		}
	}
	return best, found
}

func aggregateChannel(pts []Point, method AggregationMethod, sel func(Point) *float64) *float64 {
	var vals []float64
	for _, p := range pts {
		if v := sel(p); v != nil {
			vals = append(vals, *v)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	var result float64
	switch method {
	case AggMean:
		result = mean(vals)
	case AggTrimmedMean:
		result = trimmedMean(vals, 0.10)
	default:
		result = median(vals)
	}
	return &result
}
