package domain

import "testing"

func breathSeq(n int, wattsAt func(i int) float64) []Breath {
	out := make([]Breath, n)
	for i := 0; i < n; i++ {
		out[i] = Breath{TimeSec: float64(i * 10), Watts: wattsAt(i), Phase: PhaseExercise}
	}
	return out
}

func TestSelectWindow(t *testing.T) {
	t.Run("manual_trim", func(t *testing.T) {
		breaths := breathSeq(40, func(i int) float64 { return float64(i) * 5 })
		start, end := 50.0, 300.0
		cfg := DefaultConfig()
		cfg.TrimStartSec = &start
		cfg.TrimEndSec = &end

		filtered, trim, err := SelectWindow(breaths, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if trim.AutoDetected {
			t.Errorf("expected manual trim, got auto-detected")
		}
		for _, b := range filtered {
			if b.TimeSec < start || b.TimeSec > end {
				t.Errorf("breath at %v outside trim window [%v, %v]", b.TimeSec, start, end)
			}
		}
	})

	t.Run("manual_trim_too_short_is_invalid", func(t *testing.T) {
		breaths := breathSeq(10, func(i int) float64 { return float64(i) * 10 })
		start, end := 0.0, 60.0
		cfg := DefaultConfig()
		cfg.TrimStartSec = &start
		cfg.TrimEndSec = &end

		_, _, err := SelectWindow(breaths, cfg)
		if !IsKind(err, ErrWindowInvalid) {
			t.Fatalf("expected WindowInvalid, got %v", err)
		}
	})

	t.Run("manual_trim_end_before_start_is_invalid", func(t *testing.T) {
		breaths := breathSeq(10, func(i int) float64 { return float64(i) * 10 })
		start, end := 300.0, 100.0
		cfg := DefaultConfig()
		cfg.TrimStartSec = &start
		cfg.TrimEndSec = &end

		_, _, err := SelectWindow(breaths, cfg)
		if !IsKind(err, ErrWindowInvalid) {
			t.Fatalf("expected WindowInvalid, got %v", err)
		}
	})

	t.Run("auto_detect_excludes_phases", func(t *testing.T) {
		breaths := []Breath{
			{TimeSec: 0, Watts: 0, Phase: PhaseRest},
			{TimeSec: 10, Watts: 10, Phase: PhaseWarmup},
			{TimeSec: 20, Watts: 50, Phase: PhaseExercise},
			{TimeSec: 30, Watts: 100, Phase: PhaseExercise},
			{TimeSec: 40, Watts: 150, Phase: PhasePeak},
			{TimeSec: 50, Watts: 80, Phase: PhaseRecovery},
			{TimeSec: 60, Watts: 20, Phase: PhaseRecovery},
		}
		cfg := DefaultConfig()

		filtered, trim, err := SelectWindow(breaths, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !trim.AutoDetected {
			t.Errorf("expected auto-detected trim range")
		}
		for _, b := range filtered {
			if b.Phase == PhaseRest || b.Phase == PhaseWarmup || b.Phase == PhaseRecovery {
				t.Errorf("expected phase %q excluded by default config", b.Phase)
			}
		}
	})

	t.Run("min_power_filter", func(t *testing.T) {
		breaths := breathSeq(20, func(i int) float64 { return float64(i) * 10 })
		minPower := 100.0
		cfg := DefaultConfig()
		cfg.ExcludeRest, cfg.ExcludeWarmup, cfg.ExcludeRecovery = false, false, false
		cfg.MinPowerW = &minPower

		filtered, _, err := SelectWindow(breaths, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, b := range filtered {
			if b.Watts < minPower {
				t.Errorf("breath at %vW below min_power_w %v", b.Watts, minPower)
			}
		}
	})
}

func TestVO2MaxWindow(t *testing.T) {
	breaths := breathSeq(30, func(i int) float64 { return float64(i) * 10 })

	t.Run("unset_bounds_returns_false", func(t *testing.T) {
		_, ok := VO2MaxWindow(breaths, DefaultConfig())
		if ok {
			t.Errorf("expected ok=false when bounds unset")
		}
	})

	t.Run("extracts_window", func(t *testing.T) {
		start, end := 100.0, 200.0
		cfg := DefaultConfig()
		cfg.VO2MaxStartSec = &start
		cfg.VO2MaxEndSec = &end

		window, ok := VO2MaxWindow(breaths, cfg)
		if !ok {
			t.Fatalf("expected ok=true")
		}
		for _, b := range window {
			if b.TimeSec < start || b.TimeSec > end {
				t.Errorf("breath at %v outside window [%v, %v]", b.TimeSec, start, end)
			}
		}
	})
}
