package domain

// ExtractPoints is a pure projection of filtered breaths into processed
// (power, channel...) tuples. Preserves order and never drops a
// breath — every input breath yields exactly one point.
func ExtractPoints(breaths []Breath) Series {
	out := make(Series, 0, len(breaths))
	for _, b := range breaths {
		p := Point{
			Power:  b.Watts,
			FatOx:  f64(b.FatOx),
			ChoOx:  f64(b.ChoOx),
			RER:    f64(b.RER),
			VO2:    f64(b.VO2),
			VCO2:   f64(b.VCO2),
			HR:     f64(b.HR),
		}
		if b.BodyMassKg != nil && *b.BodyMassKg > 0 {
			p.VO2Rel = f64(b.VO2 / *b.BodyMassKg)
		}
		out = append(out, p)
	}
	return out
}

// CapResult reports how many points had a channel nulled by ApplyHardCap.
type CapResult struct {
	FatCapped int
	ChoCapped int
}

// ApplyHardCap nulls out physiologically impossible oxidation values on
// a copy of series. Points themselves are retained; only the offending
// channel is nulled. A no-op when capping is disabled.
func ApplyHardCap(series Series, cfg Config) (Series, CapResult) {
	out := make(Series, len(series))
	copy(out, series)
	var res CapResult
	if !cfg.PhysiologicalCapEnabled {
		return out, res
	}
	for idx := range out {
		p := out[idx]
		if p.FatOx != nil && *p.FatOx > cfg.FatCap {
			p.FatOx = nil
			res.FatCapped++
		}
		if p.ChoOx != nil && *p.ChoOx > cfg.ChoCap {
			p.ChoOx = nil
			res.ChoCapped++
		}
		out[idx] = p
	}
	return out, res
}
