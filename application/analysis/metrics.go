package analysis

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the Prometheus collectors the orchestrator feeds: a
// histogram for run duration, counters for warning and error classes.
type Metrics struct {
	RunDuration        prometheus.Histogram
	WarningsTotal      *prometheus.CounterVec
	BootstrapIterations prometheus.Counter
	RunsFailedTotal    *prometheus.CounterVec
}

// NewMetrics registers and returns a fresh Metrics bundle against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metacore",
			Subsystem: "analysis",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a full metabolism analysis run.",
			Buckets:   prometheus.DefBuckets,
		}),
		WarningsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metacore",
			Subsystem: "analysis",
			Name:      "processing_warnings_total",
			Help:      "Count of non-fatal processing warnings emitted by stage.",
		}, []string{"warning"}),
		BootstrapIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "metacore",
			Subsystem: "analysis",
			Name:      "bootstrap_iterations_total",
			Help:      "Total FatMax bootstrap resamples executed across all runs.",
		}),
		RunsFailedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metacore",
			Subsystem: "analysis",
			Name:      "runs_failed_total",
			Help:      "Count of analysis runs that returned a fatal error, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.RunDuration, m.WarningsTotal, m.BootstrapIterations, m.RunsFailedTotal)
	return m
}

// Observe records one run's duration and warnings against m.
func (m *Metrics) Observe(durationSeconds float64, warnings []string) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(durationSeconds)
	for _, w := range warnings {
		m.WarningsTotal.WithLabelValues(w).Inc()
	}
}

// ObserveFailure records a fatal run outcome against m.
func (m *Metrics) ObserveFailure(kind string) {
	if m == nil {
		return
	}
	m.RunsFailedTotal.WithLabelValues(kind).Inc()
}
