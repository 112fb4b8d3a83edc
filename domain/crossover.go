package domain

import (
	"math"
	"sort"
)

// DetectCrossovers finds every sign change of fat_ox - cho_ox across
// consecutive smoothed points, linearly
// interpolates the zero-crossing workload, and ranks crossings by
// descending confidence (the magnitude of the difference-delta at the
// sign change). The primary marker is the highest-confidence crossing,
// or a null-workload marker with an empty list when none exists.
func DetectCrossovers(smoothed Series) (Crossover, []Crossover) {
	var all []Crossover
	for idx := 0; idx < len(smoothed)-1; idx++ {
		a, aOK := diffAt(smoothed[idx])
		b, bOK := diffAt(smoothed[idx+1])
		if !aOK || !bOK {
			continue
		}
		if sameSign(a, b) {
			continue
		}

		x0, x1 := smoothed[idx].Power, smoothed[idx+1].Power
		t := a / (a - b) // fraction of the way from idx to idx+1 where the line crosses zero
		crossPower := x0 + t*(x1-x0)

		fat0, cho0 := *smoothed[idx].FatOx, *smoothed[idx].ChoOx
		fat1, cho1 := *smoothed[idx+1].FatOx, *smoothed[idx+1].ChoOx
		fatValue := fat0 + t*(fat1-fat0)
		choValue := cho0 + t*(cho1-cho0)
		confidence := math.Abs(a - b)

		powerW := int(math.Round(crossPower))
		all = append(all, Crossover{
			PowerW:     &powerW,
			FatValue:   &fatValue,
			ChoValue:   &choValue,
			Confidence: &confidence,
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return *all[i].Confidence > *all[j].Confidence
	})

	if len(all) == 0 {
		return Crossover{}, nil
	}
	return all[0], all
}

func diffAt(p Point) (float64, bool) {
	if p.FatOx == nil || p.ChoOx == nil {
		return 0, false
	}
	return *p.FatOx - *p.ChoOx, true
}

func sameSign(a, b float64) bool {
	if a == 0 || b == 0 {
		return a == b
	}
	return (a > 0) == (b > 0)
}
