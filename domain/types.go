// Package domain implements the metabolism analysis core: the pure,
// single-threaded transformation pipeline that turns breath-by-breath
// gas-exchange measurements into a denoised fat/carbohydrate oxidation
// profile and the FatMax/Crossover markers derived from it.
package domain

import "time"

// Phase tags a breath with its place in the exercise protocol.
type Phase string

const (
	PhaseRest      Phase = "rest"
	PhaseWarmup    Phase = "warmup"
	PhaseExercise  Phase = "exercise"
	PhasePeak      Phase = "peak"
	PhaseRecovery  Phase = "recovery"
	PhaseUnset     Phase = ""
)

// Breath is one breath-by-breath measurement. Immutable; keys unique by
// TimeSec. Owned by the caller and only borrowed by the core.
type Breath struct {
	TimeSec    float64  `json:"time_sec"`
	Watts      float64  `json:"watts"`
	VO2        float64  `json:"vo2"`  // mL/min
	VCO2       float64  `json:"vco2"` // mL/min
	HR         float64  `json:"hr"`
	RER        float64  `json:"rer"`
	FatOx      float64  `json:"fat_ox"` // g/min
	ChoOx      float64  `json:"cho_ox"` // g/min
	Phase      Phase    `json:"phase"`
	BodyMassKg *float64 `json:"body_mass_kg,omitempty"` // optional, enables VO2/kg
}

// Point is a processed (power, channel...) tuple. Any channel may be
// nil to mean "not available at this workload". Count is populated only
// for binned points.
type Point struct {
	Power    float64
	FatOx    *float64
	ChoOx    *float64
	RER      *float64
	VO2Rel   *float64
	VO2      *float64
	VCO2     *float64
	HR       *float64
	Count    *int
}

// Series is an ordered sequence of processed points. Binned, smoothed
// and trend series are sorted strictly by Power; a raw series from
// ExtractPoints keeps the breaths' order.
type Series []Point

// ProtocolType overrides window-selection thresholds.
type ProtocolType string

const (
	ProtocolNone   ProtocolType = ""
	ProtocolRamp   ProtocolType = "ramp"
	ProtocolStep   ProtocolType = "step"
	ProtocolGraded ProtocolType = "graded"
)

// AggregationMethod selects how raw points are combined into a bin.
type AggregationMethod string

const (
	AggMedian       AggregationMethod = "median"
	AggMean         AggregationMethod = "mean"
	AggTrimmedMean  AggregationMethod = "trimmed_mean"
)

// SmoothingMethod selects the local-regression family used to smooth
// the binned series.
type SmoothingMethod string

const (
	SmoothLOESS     SmoothingMethod = "loess"
	SmoothSavGol    SmoothingMethod = "savgol"
	SmoothMovingAvg SmoothingMethod = "moving_avg"
)

// TrimRange describes the analyzable window chosen during selection,
// whether supplied manually or auto-detected.
type TrimRange struct {
	StartSec     float64
	EndSec       float64
	AutoDetected bool
	MaxPowerSec  float64
}

// FatMaxMarker is the maximum-fat-oxidation point and its surrounding
// zone, with optional bootstrap confidence bounds.
type FatMaxMarker struct {
	PowerW      int
	MFO         float64
	ZoneMinW    int
	ZoneMaxW    int
	MFOCILower  *float64
	MFOCIUpper  *float64
	PowerCILower *float64
	PowerCIUpper *float64
}

// Crossover is one fat/cho sign-change point.
type Crossover struct {
	PowerW     *int // nil when undefined
	FatValue   *float64
	ChoValue   *float64
	Confidence *float64
}

// Stats summarizes the pipeline run.
type Stats struct {
	TotalDataPoints    int
	ExerciseDataPoints int
	BinnedDataPoints   int
}

// VO2MaxMetrics is the optional hybrid-protocol second window's derived
// values, reported independently of the primary analysis.
type VO2MaxMetrics struct {
	VO2Max    float64
	VO2MaxRel float64
	HRMax     float64
	TimeSec   float64
}

// AnalysisResult is the core's external output shape; field names are
// fixed for interoperability with stored records and API consumers.
type AnalysisResult struct {
	Config              Config
	Raw                 Series
	Binned              Series
	Smoothed            Series
	Trend               Series
	FatMax              *FatMaxMarker
	Crossover           Crossover
	AllCrossovers       []Crossover
	VO2MaxMetrics       *VO2MaxMetrics
	Stats               Stats
	TrimRange           TrimRange
	ProcessingWarnings  []string
	AlgorithmVersion    string
}

// Record mirrors AnalysisResult one-to-one plus persistence identity.
type Record struct {
	TestID    string
	Result    AnalysisResult
	CreatedAt time.Time
	UpdatedAt time.Time
}

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }
