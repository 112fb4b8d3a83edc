package analysis

import (
	"testing"

	"metacore/domain"
)

func syntheticBreaths(n int) []domain.Breath {
	out := make([]domain.Breath, n)
	for i := 0; i < n; i++ {
		watts := float64(i) * 5
		out[i] = domain.Breath{
			TimeSec: float64(i * 10),
			Watts:   watts,
			VO2:     1200 + 10*watts,
			VCO2:    1000 + 9*watts,
			HR:      100 + 0.5*watts,
			RER:     0.8 + 0.001*watts,
			FatOx:   0.5 - 0.002*watts,
			ChoOx:   0.3 + 0.003*watts,
			Phase:   domain.PhaseExercise,
		}
	}
	return out
}

func TestOrchestratorRunHappyPath(t *testing.T) {
	o := NewOrchestrator(1, nil)
	breaths := syntheticBreaths(40)

	result, err := o.Run(breaths, domain.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AlgorithmVersion != AlgorithmVersion {
		t.Errorf("expected algorithm version %q, got %q", AlgorithmVersion, result.AlgorithmVersion)
	}
	if len(result.Binned) == 0 {
		t.Errorf("expected binned series populated")
	}
	if len(result.Smoothed) == 0 {
		t.Errorf("expected smoothed series populated")
	}
	if result.Stats.ExerciseDataPoints == 0 {
		t.Errorf("expected exercise data points counted")
	}
}

func TestOrchestratorRunRejectsInvalidConfig(t *testing.T) {
	o := NewOrchestrator(1, nil)
	cfg := domain.DefaultConfig()
	cfg.BinSizeW = 1000 // outside [5,30]

	_, err := o.Run(syntheticBreaths(40), cfg)
	if !domain.IsKind(err, domain.ErrConfigInvalid) {
		t.Fatalf("expected ConfigInvalid, got %v", err)
	}
}

func TestOrchestratorRunInsufficientData(t *testing.T) {
	o := NewOrchestrator(1, nil)
	_, err := o.Run(syntheticBreaths(3), domain.DefaultConfig())
	if !domain.IsKind(err, domain.ErrInsufficientData) {
		t.Fatalf("expected InsufficientData, got %v", err)
	}
}

func TestOrchestratorRunFlatZeroFatOxStillDefinesFatMax(t *testing.T) {
	o := NewOrchestrator(1, nil)
	breaths := make([]domain.Breath, 20)
	for i := range breaths {
		breaths[i] = domain.Breath{
			TimeSec: float64(i * 10),
			Watts:   float64(i) * 5,
			VO2:     1200,
			VCO2:    1000,
			HR:      120,
			RER:     0.85,
			FatOx:   0, // always zero; never nulled (cap disabled below, and 0 is under it anyway)
			ChoOx:   0.3,
			Phase:   domain.PhaseExercise,
		}
	}
	cfg := domain.DefaultConfig()
	cfg.PhysiologicalCapEnabled = false
	cfg.OutlierEnabled = false

	result, err := o.Run(breaths, cfg)
	// A flat-zero fat_ox channel still has a defined argmax (all equal),
	// so this exercises the non-error path; FatMax should be populated.
	if err != nil && !domain.IsKind(err, domain.ErrFatMaxUndefined) {
		t.Fatalf("unexpected error kind: %v", err)
	}
	if err == nil && result.FatMax == nil {
		t.Errorf("expected FatMax populated when fat_ox channel is defined")
	}
}

func TestOrchestratorRunComputesVO2Max(t *testing.T) {
	o := NewOrchestrator(1, nil)
	breaths := syntheticBreaths(60)
	vo2Start, vo2End := 50.0, 150.0
	cfg := domain.DefaultConfig()
	cfg.VO2MaxStartSec = &vo2Start
	cfg.VO2MaxEndSec = &vo2End

	result, err := o.Run(breaths, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.VO2MaxMetrics == nil {
		t.Fatalf("expected VO2MaxMetrics populated")
	}
	if result.VO2MaxMetrics.VO2Max <= 0 {
		t.Errorf("expected positive VO2Max, got %v", result.VO2MaxMetrics.VO2Max)
	}
}
