// Package analysis orchestrates the domain pipeline stages into a
// single deterministic run: window selection, point extraction,
// filtering, smoothing, trend fitting, and marker detection.
package analysis

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"metacore/domain"
)

// AlgorithmVersion is stamped onto every AnalysisResult; bump it
// whenever a stage's numeric behavior changes in a way that would
// invalidate a previously persisted Record.
const AlgorithmVersion = "1.2.0"

// Orchestrator runs the full metabolism analysis pipeline.
type Orchestrator struct {
	seed    int64
	metrics *Metrics
}

// NewOrchestrator builds an Orchestrator. seed drives the bootstrap
// PRNG so that identical (breaths, config, seed) always produce an
// identical result. metrics may be nil, in which case instrumentation
// is skipped.
func NewOrchestrator(seed int64, metrics *Metrics) *Orchestrator {
	return &Orchestrator{seed: seed, metrics: metrics}
}

// Run executes every pipeline stage in order and assembles the result.
// Non-fatal conditions (physiological cap hits, all-sparse bins,
// boundary FatMax, sparse channels, degenerate bootstrap) are folded
// into ProcessingWarnings rather than failing the run; only
// WindowInvalid/ConfigInvalid/InsufficientData abort it. FatMaxUndefined
// does not stop the remaining stages: it is returned together with the
// fully assembled result, whose FatMax marker is nil.
func (o *Orchestrator) Run(breaths []domain.Breath, rawCfg domain.Config) (domain.AnalysisResult, error) {
	started := time.Now()
	cfg := rawCfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("analysis config rejected")
		o.metrics.ObserveFailure(domain.ErrConfigInvalid.String())
		return domain.AnalysisResult{}, err
	}

	result := domain.AnalysisResult{
		Config:           cfg,
		AlgorithmVersion: AlgorithmVersion,
	}

	windowed, trim, err := domain.SelectWindow(breaths, cfg)
	if err != nil {
		log.Error().Err(err).Msg("window selection failed")
		o.metrics.ObserveFailure(domain.ErrWindowInvalid.String())
		return domain.AnalysisResult{}, err
	}
	result.TrimRange = trim
	result.Stats.TotalDataPoints = len(breaths)
	result.Stats.ExerciseDataPoints = len(windowed)
	if len(windowed) < 10 {
		o.metrics.ObserveFailure(domain.ErrInsufficientData.String())
		return domain.AnalysisResult{}, &domain.AnalysisError{
			Kind:    domain.ErrInsufficientData,
			Message: "fewer than 10 breaths in the analyzable window",
		}
	}

	raw := domain.ExtractPoints(windowed)
	capped, capRes := domain.ApplyHardCap(raw, cfg)
	if capRes.FatCapped > 0 || capRes.ChoCapped > 0 {
		log.Debug().Int("fat_capped", capRes.FatCapped).Int("cho_capped", capRes.ChoCapped).
			Msg("physiological cap nulled values")
	}
	if capRes.FatCapped > 0 {
		result.ProcessingWarnings = append(result.ProcessingWarnings, fmt.Sprintf("physiological_cap:fat_ox:%d", capRes.FatCapped))
	}
	if capRes.ChoCapped > 0 {
		result.ProcessingWarnings = append(result.ProcessingWarnings, fmt.Sprintf("physiological_cap:cho_ox:%d", capRes.ChoCapped))
	}
	result.Raw = capped

	filtered := domain.FilterOutliers(capped, cfg)
	medianed := domain.SlidingMedian(filtered, cfg)

	binned := domain.Bin(medianed, cfg)
	result.Binned = binned
	result.Stats.BinnedDataPoints = len(binned)
	// After merging, any bin still below MinBinCount means no bin qualified.
	if len(binned) > 0 && binned[0].Count != nil && *binned[0].Count < cfg.MinBinCount {
		result.ProcessingWarnings = append(result.ProcessingWarnings, "all_sparse_bins")
	}

	smoothed, smoothWarnings := domain.Smooth(binned, cfg)
	result.Smoothed = smoothed
	result.ProcessingWarnings = append(result.ProcessingWarnings, smoothWarnings...)

	result.Trend = domain.FitTrend(smoothed, cfg)

	fatMaxRes, err := domain.DetectFatMax(binned, smoothed, cfg, o.seed)
	if err != nil {
		log.Warn().Err(err).Msg("fatmax undefined")
		result.ProcessingWarnings = append(result.ProcessingWarnings, "fatmax_undefined")
	} else {
		marker := fatMaxRes.Marker
		result.FatMax = &marker
		result.ProcessingWarnings = append(result.ProcessingWarnings, fatMaxRes.Warnings...)
	}

	primary, all := domain.DetectCrossovers(smoothed)
	result.Crossover = primary
	result.AllCrossovers = all

	if vo2Breaths, ok := domain.VO2MaxWindow(breaths, cfg); ok {
		metrics := computeVO2Max(vo2Breaths)
		result.VO2MaxMetrics = metrics
	}

	elapsed := time.Since(started)
	log.Info().
		Dur("elapsed", elapsed).
		Int("breaths", len(breaths)).
		Int("bins", len(binned)).
		Strs("warnings", result.ProcessingWarnings).
		Msg("metabolism analysis complete")
	o.metrics.Observe(elapsed.Seconds(), result.ProcessingWarnings)
	if cfg.FatMaxBootstrapEnabled && o.metrics != nil {
		o.metrics.BootstrapIterations.Add(float64(cfg.FatMaxBootstrapIterations))
	}

	var finalErr error
	if err != nil {
		finalErr = err
	}
	return result, finalErr
}

// computeVO2Max reduces the hybrid-protocol second window to its peak
// metrics: max VO2 (and VO2/kg when body mass is known), max HR, and
// the time at which the VO2 peak occurred.
func computeVO2Max(breaths []domain.Breath) *domain.VO2MaxMetrics {
	if len(breaths) == 0 {
		return nil
	}
	var peak domain.Breath
	maxVO2 := -1.0
	maxHR := -1.0
	for _, b := range breaths {
		if b.VO2 > maxVO2 {
			maxVO2 = b.VO2
			peak = b
		}
		if b.HR > maxHR {
			maxHR = b.HR
		}
	}
	metrics := &domain.VO2MaxMetrics{
		VO2Max:  maxVO2,
		HRMax:   maxHR,
		TimeSec: peak.TimeSec,
	}
	if peak.BodyMassKg != nil && *peak.BodyMassKg > 0 {
		metrics.VO2MaxRel = maxVO2 / *peak.BodyMassKg
	}
	return metrics
}
