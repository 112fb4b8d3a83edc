package domain

import (
	"math"
	"math/rand"
	"sort"
)

// FatMaxResult carries the FatMax marker plus the warnings raised along
// the way (boundary plateau, degenerate bootstrap).
type FatMaxResult struct {
	Marker   FatMaxMarker
	Warnings []string
}

// DetectFatMax locates the maximum-fat-oxidation workload on the
// smoothed series, its surrounding zone, and
// optionally a bootstrap confidence interval for both. Returns
// ErrFatMaxUndefined when the smoothed fat_ox channel is entirely
// null; binned/smoothed series remain usable by the caller regardless.
func DetectFatMax(binned, smoothed Series, cfg Config, seed int64) (FatMaxResult, error) {
	idx, mfo, ok := argmaxFatOx(smoothed)
	if !ok {
		return FatMaxResult{}, newErr(ErrFatMaxUndefined, "smoothed fat_ox channel is entirely null")
	}

	wStar := int(math.Round(smoothed[idx].Power))
	var warnings []string
	if idx == 0 || idx == len(smoothed)-1 {
		warnings = append(warnings, "boundary_fatmax")
	}

	zoneMin, zoneMax := fatMaxZone(smoothed, idx, mfo, cfg.FatMaxZoneThreshold)

	marker := FatMaxMarker{
		PowerW:   wStar,
		MFO:      mfo,
		ZoneMinW: zoneMin,
		ZoneMaxW: zoneMax,
	}

	if cfg.FatMaxBootstrapEnabled && len(binned) > 0 {
		lower, upper, plower, pupper, bootOK := bootstrapFatMaxCI(binned, cfg, seed)
		if bootOK {
			marker.MFOCILower = &lower
			marker.MFOCIUpper = &upper
			powerLower := plower
			powerUpper := pupper
			marker.PowerCILower = &powerLower
			marker.PowerCIUpper = &powerUpper
		} else {
			warnings = append(warnings, "bootstrap_degenerate")
		}
	}

	return FatMaxResult{Marker: marker, Warnings: warnings}, nil
}

func argmaxFatOx(series Series) (int, float64, bool) {
	best := -1
	bestVal := math.Inf(-1)
	for idx, p := range series {
		if p.FatOx == nil {
			continue
		}
		if *p.FatOx > bestVal {
			bestVal = *p.FatOx
			best = idx
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return best, bestVal, true
}

// fatMaxZone walks left and right from idx, including every contiguous
// workload whose fat_ox stays at or above threshold*mfo, and returns
// the outermost qualifying workloads as integers.
func fatMaxZone(series Series, idx int, mfo, threshold float64) (int, int) {
	cutoff := threshold * mfo
	lo := idx
	for lo > 0 {
		v := series[lo-1].FatOx
		if v == nil || *v < cutoff {
			break
		}
		lo--
	}
	hi := idx
	for hi < len(series)-1 {
		v := series[hi+1].FatOx
		if v == nil || *v < cutoff {
			break
		}
		hi++
	}
	return int(math.Round(series[lo].Power)), int(math.Round(series[hi].Power))
}

// bootstrapFatMaxCI resamples the binned series with replacement B
// times, re-smooths each resample with the configured bandwidth policy,
// recomputes MFO and its workload, and returns the 2.5/97.5 percentile
// bounds of both distributions. Emits ok=false when fewer than half the
// resamples produce a usable MFO (non-fatal bootstrap degeneracy).
func bootstrapFatMaxCI(binned Series, cfg Config, seed int64) (mfoLo, mfoHi, powerLo, powerHi float64, ok bool) {
	rng := rand.New(rand.NewSource(seed))
	n := len(binned)
	iterations := cfg.FatMaxBootstrapIterations
	if iterations <= 0 {
		return 0, 0, 0, 0, false
	}

	var mfos, powers []float64
	for iter := 0; iter < iterations; iter++ {
		resample := make(Series, n)
		for k := 0; k < n; k++ {
			resample[k] = binned[rng.Intn(n)]
		}
		sort.Slice(resample, func(i, j int) bool { return resample[i].Power < resample[j].Power })

		smoothedResample, _ := Smooth(resample, cfg)
		idx, mfo, found := argmaxFatOx(smoothedResample)
		if !found {
			continue
		}
		mfos = append(mfos, mfo)
		powers = append(powers, smoothedResample[idx].Power)
	}

	if 2*len(mfos) < iterations {
		return 0, 0, 0, 0, false
	}

	sort.Float64s(mfos)
	sort.Float64s(powers)
	return quantile(mfos, 2.5), quantile(mfos, 97.5),
		quantile(powers, 2.5), quantile(powers, 97.5), true
}
