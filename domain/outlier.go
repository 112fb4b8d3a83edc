package domain

// FilterOutliers removes breath-level outliers using Tukey-fence bounds
// on fat_ox and cho_ox independently, generalized from a fixed ±3σ
// winsorize into a configurable k·IQR fence. A point is dropped iff any
// of its non-null oxidation values fall outside the fence. Skipped when
// disabled or when fewer than 10 points remain.
func FilterOutliers(series Series, cfg Config) Series {
	if !cfg.OutlierEnabled || len(series) < 10 {
		out := make(Series, len(series))
		copy(out, series)
		return out
	}

	var fatVals, choVals []float64
	for _, p := range series {
		if p.FatOx != nil {
			fatVals = append(fatVals, *p.FatOx)
		}
		if p.ChoOx != nil {
			choVals = append(choVals, *p.ChoOx)
		}
	}

	var fatLo, fatHi, choLo, choHi float64
	haveFat := len(fatVals) > 0
	haveCho := len(choVals) > 0
	if haveFat {
		fatLo, fatHi, _, _ = iqrBounds(fatVals, cfg.OutlierIQRMultiplier)
	}
	if haveCho {
		choLo, choHi, _, _ = iqrBounds(choVals, cfg.OutlierIQRMultiplier)
	}

	out := make(Series, 0, len(series))
	for _, p := range series {
		if haveFat && p.FatOx != nil && (*p.FatOx < fatLo || *p.FatOx > fatHi) {
			continue
		}
		if haveCho && p.ChoOx != nil && (*p.ChoOx < choLo || *p.ChoOx > choHi) {
			continue
		}
		out = append(out, p)
	}
	return out
}
