package domain

import "sort"

// windowThresholds holds the protocol-dependent start threshold and
// recovery cutoff fraction used by auto-detection.
type windowThresholds struct {
	startThresholdW float64
	recoveryCutoff  float64
}

func thresholdsFor(p ProtocolType) windowThresholds {
	switch p {
	case ProtocolRamp:
		return windowThresholds{startThresholdW: 30, recoveryCutoff: 0.70}
	case ProtocolStep, ProtocolGraded:
		return windowThresholds{startThresholdW: 20, recoveryCutoff: 0.85}
	default:
		return windowThresholds{startThresholdW: 20, recoveryCutoff: 0.75}
	}
}

// SelectWindow chooses the analyzable window (manual trim or
// auto-detect), then applies the phase and min-power filters. Validates
// inputs up front and returns a single WindowInvalid error rather than a
// partial result, collapsed into one pure function since there's no
// multi-stage gate to thread through.
func SelectWindow(breaths []Breath, cfg Config) ([]Breath, TrimRange, error) {
	sorted := make([]Breath, len(breaths))
	copy(sorted, breaths)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TimeSec < sorted[j].TimeSec })

	var trim TrimRange
	var windowed []Breath

	if cfg.TrimStartSec != nil && cfg.TrimEndSec != nil {
		start, end := *cfg.TrimStartSec, *cfg.TrimEndSec
		if end <= start {
			return nil, TrimRange{}, newErr(ErrWindowInvalid, "trim_end_sec %.1f <= trim_start_sec %.1f", end, start)
		}
		if end-start < 180 {
			return nil, TrimRange{}, newErr(ErrWindowInvalid, "trim window %.1fs shorter than minimum 180s", end-start)
		}
		trim = TrimRange{StartSec: start, EndSec: end, AutoDetected: false, MaxPowerSec: maxPowerTime(sorted, start, end)}
		for _, b := range sorted {
			if b.TimeSec >= start && b.TimeSec <= end {
				windowed = append(windowed, b)
			}
		}
	} else {
		th := thresholdsFor(cfg.ProtocolType)
		start := 0.0
		found := false
		for _, b := range sorted {
			if b.Watts > th.startThresholdW {
				start = b.TimeSec
				found = true
				break
			}
		}
		if !found && len(sorted) > 0 {
			start = sorted[0].TimeSec
		}

		maxW := -1.0
		peakSec := start
		for _, b := range sorted {
			if b.TimeSec >= start && b.Watts > maxW {
				maxW = b.Watts
				peakSec = b.TimeSec
			}
		}

		lastSec := start
		for _, b := range sorted {
			if b.TimeSec > lastSec {
				lastSec = b.TimeSec
			}
		}
		postPeak := lastSec - peakSec
		end := peakSec + th.recoveryCutoff*postPeak

		trim = TrimRange{StartSec: start, EndSec: end, AutoDetected: true, MaxPowerSec: peakSec}
		for _, b := range sorted {
			if b.TimeSec >= start && b.TimeSec <= end {
				windowed = append(windowed, b)
			}
		}
	}

	excluded := map[Phase]bool{}
	if cfg.ExcludeRest {
		excluded[PhaseRest] = true
	}
	if cfg.ExcludeWarmup {
		excluded[PhaseWarmup] = true
	}
	if cfg.ExcludeRecovery {
		excluded[PhaseRecovery] = true
	}

	filtered := windowed[:0:0]
	for _, b := range windowed {
		if excluded[b.Phase] {
			continue
		}
		if cfg.MinPowerW != nil && b.Watts < *cfg.MinPowerW {
			continue
		}
		filtered = append(filtered, b)
	}

	return filtered, trim, nil
}

func maxPowerTime(breaths []Breath, start, end float64) float64 {
	maxW := -1.0
	at := start
	for _, b := range breaths {
		if b.TimeSec < start || b.TimeSec > end {
			continue
		}
		if b.Watts > maxW {
			maxW = b.Watts
			at = b.TimeSec
		}
	}
	return at
}

// VO2MaxWindow extracts the breaths inside the optional second window,
// independent of the primary window. Returns nil, false when either
// bound is unset.
func VO2MaxWindow(breaths []Breath, cfg Config) ([]Breath, bool) {
	if cfg.VO2MaxStartSec == nil || cfg.VO2MaxEndSec == nil {
		return nil, false
	}
	start, end := *cfg.VO2MaxStartSec, *cfg.VO2MaxEndSec
	var out []Breath
	for _, b := range breaths {
		if b.TimeSec >= start && b.TimeSec <= end {
			out = append(out, b)
		}
	}
	return out, true
}
