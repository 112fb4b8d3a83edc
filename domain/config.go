package domain

// Config carries every pipeline tunable. Every field has a default in
// DefaultConfig: a single flat, YAML-tagged struct with a Default...()
// constructor, a WithDefaults fill for partial configs, and a Validate
// pass.
type Config struct {
	BinSizeW              float64           `yaml:"bin_size_w"`
	Aggregation           AggregationMethod `yaml:"aggregation"`
	LoessFrac             float64           `yaml:"loess_frac"`
	SmoothingMethod       SmoothingMethod   `yaml:"smoothing_method"`
	ExcludeRest           bool              `yaml:"exclude_rest"`
	ExcludeWarmup         bool              `yaml:"exclude_warmup"`
	ExcludeRecovery       bool              `yaml:"exclude_recovery"`
	MinPowerW             *float64          `yaml:"min_power_w"`
	TrimStartSec          *float64          `yaml:"trim_start_sec"`
	TrimEndSec            *float64          `yaml:"trim_end_sec"`
	VO2MaxStartSec        *float64          `yaml:"vo2max_start_sec"`
	VO2MaxEndSec          *float64          `yaml:"vo2max_end_sec"`
	FatMaxZoneThreshold   float64           `yaml:"fatmax_zone_threshold"`
	OutlierIQRMultiplier  float64           `yaml:"outlier_iqr_multiplier"`
	OutlierEnabled        bool              `yaml:"outlier_enabled"`
	MinBinCount           int               `yaml:"min_bin_count"`
	AdaptiveLoess         bool              `yaml:"adaptive_loess"`
	AdaptivePolynomial    bool              `yaml:"adaptive_polynomial"`
	ProtocolType          ProtocolType      `yaml:"protocol_type"`
	PhysiologicalCapEnabled bool            `yaml:"physiological_cap_enabled"`
	FatCap                float64           `yaml:"fat_cap"`
	ChoCap                float64           `yaml:"cho_cap"`
	SlidingMedianEnabled  bool              `yaml:"sliding_median_enabled"`
	SlidingMedianWindow   int               `yaml:"sliding_median_window"`
	FatMaxBootstrapEnabled bool             `yaml:"fatmax_bootstrap_enabled"`
	FatMaxBootstrapIterations int           `yaml:"fatmax_bootstrap_iterations"`
}

// DefaultConfig returns the pipeline's default configuration.
func DefaultConfig() Config {
	return Config{
		BinSizeW:                  10,
		Aggregation:               AggMedian,
		LoessFrac:                 0.25,
		SmoothingMethod:           SmoothLOESS,
		ExcludeRest:               true,
		ExcludeWarmup:             true,
		ExcludeRecovery:           true,
		FatMaxZoneThreshold:       0.90,
		OutlierIQRMultiplier:      1.5,
		OutlierEnabled:            true,
		MinBinCount:               3,
		AdaptiveLoess:             true,
		AdaptivePolynomial:        true,
		ProtocolType:              ProtocolNone,
		PhysiologicalCapEnabled:   true,
		FatCap:                    2.0,
		ChoCap:                    8.0,
		SlidingMedianEnabled:      true,
		SlidingMedianWindow:       5,
		FatMaxBootstrapEnabled:    false,
		FatMaxBootstrapIterations: 500,
	}
}

// WithDefaults fills zero-valued numeric and string fields of a
// partially-populated Config with the default for that field. Boolean
// fields and the nullable pointer fields are left as supplied: an unset
// boolean stays false, even where DefaultConfig has it true
// (exclude_*, outlier_enabled, adaptive_*, physiological_cap_enabled,
// sliding_median_enabled).
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.BinSizeW == 0 {
		c.BinSizeW = d.BinSizeW
	}
	if c.Aggregation == "" {
		c.Aggregation = d.Aggregation
	}
	if c.LoessFrac == 0 {
		c.LoessFrac = d.LoessFrac
	}
	if c.SmoothingMethod == "" {
		c.SmoothingMethod = d.SmoothingMethod
	}
	if c.FatMaxZoneThreshold == 0 {
		c.FatMaxZoneThreshold = d.FatMaxZoneThreshold
	}
	if c.OutlierIQRMultiplier == 0 {
		c.OutlierIQRMultiplier = d.OutlierIQRMultiplier
	}
	if c.MinBinCount == 0 {
		c.MinBinCount = d.MinBinCount
	}
	if c.FatCap == 0 {
		c.FatCap = d.FatCap
	}
	if c.ChoCap == 0 {
		c.ChoCap = d.ChoCap
	}
	if c.SlidingMedianWindow == 0 {
		c.SlidingMedianWindow = d.SlidingMedianWindow
	}
	if c.FatMaxBootstrapIterations == 0 {
		c.FatMaxBootstrapIterations = d.FatMaxBootstrapIterations
	}
	return c
}

// Validate checks every field against its declared range and returns a
// ConfigInvalid AnalysisError naming the first offender, or a
// WindowInvalid AnalysisError when the trim and vo2max windows overlap.
func (c Config) Validate() error {
	if c.BinSizeW < 5 || c.BinSizeW > 30 {
		return newErr(ErrConfigInvalid, "bin_size_w %.1f outside [5, 30]", c.BinSizeW)
	}
	switch c.Aggregation {
	case AggMedian, AggMean, AggTrimmedMean:
	default:
		return newErr(ErrConfigInvalid, "aggregation %q invalid", c.Aggregation)
	}
	if c.LoessFrac < 0.1 || c.LoessFrac > 0.5 {
		return newErr(ErrConfigInvalid, "loess_frac %.2f outside [0.1, 0.5]", c.LoessFrac)
	}
	switch c.SmoothingMethod {
	case SmoothLOESS, SmoothSavGol, SmoothMovingAvg:
	default:
		return newErr(ErrConfigInvalid, "smoothing_method %q invalid", c.SmoothingMethod)
	}
	if c.MinPowerW != nil && (*c.MinPowerW < 0 || *c.MinPowerW > 200) {
		return newErr(ErrConfigInvalid, "min_power_w %.1f outside [0, 200]", *c.MinPowerW)
	}
	if c.FatMaxZoneThreshold < 0.5 || c.FatMaxZoneThreshold > 1.0 {
		return newErr(ErrConfigInvalid, "fatmax_zone_threshold %.2f outside [0.5, 1.0]", c.FatMaxZoneThreshold)
	}
	if c.MinBinCount < 1 {
		return newErr(ErrConfigInvalid, "min_bin_count %d must be >= 1", c.MinBinCount)
	}
	switch c.ProtocolType {
	case ProtocolNone, ProtocolRamp, ProtocolStep, ProtocolGraded:
	default:
		return newErr(ErrConfigInvalid, "protocol_type %q invalid", c.ProtocolType)
	}
	if c.SlidingMedianWindow%2 == 0 {
		return newErr(ErrConfigInvalid, "sliding_median_window %d must be odd", c.SlidingMedianWindow)
	}
	if c.TrimStartSec != nil && c.TrimEndSec != nil {
		if c.VO2MaxStartSec != nil && c.VO2MaxEndSec != nil {
			if windowsOverlap(*c.TrimStartSec, *c.TrimEndSec, *c.VO2MaxStartSec, *c.VO2MaxEndSec) {
				return newErr(ErrWindowInvalid, "vo2max window overlaps primary trim window")
			}
		}
	}
	if c.FatMaxBootstrapIterations < 1 {
		return newErr(ErrConfigInvalid, "fatmax_bootstrap_iterations %d must be >= 1", c.FatMaxBootstrapIterations)
	}
	return nil
}

func windowsOverlap(aStart, aEnd, bStart, bEnd float64) bool {
	return aStart < bEnd && bStart < aEnd
}
