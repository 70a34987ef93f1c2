package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pass outcomes used as the "outcome" label.
const (
	OutcomeCommitted  = "committed"
	OutcomeSuperseded = "superseded"
	OutcomeFailed     = "failed"
)

// MetricsConfig configures the engine metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vango").
	Namespace string

	// Subsystem is the metrics subsystem (default: "fiber").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass and commit duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the engine metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vango",
		Subsystem: "fiber",
		// Render passes are sub-millisecond to tens of milliseconds.
		Buckets:  []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		Registry: prometheus.DefaultRegisterer,
	}
}

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	passes         *prometheus.CounterVec
	passDuration   prometheus.Histogram
	commitDuration prometheus.Histogram
	units          prometheus.Counter
	yields         prometheus.Counter
	mutations      *prometheus.CounterVec
	hostErrors     prometheus.Counter
	inFlight       prometheus.Gauge
}

// NewMetrics creates and registers the engine metrics. Registering twice
// with the same registry panics, so create one Metrics per registry and
// share it between engines.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_total",
			Help:        "Render passes by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Time from render request to commit or failure",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		commitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Time spent applying a commit to the host tree",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		units: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "units_total",
			Help:        "Fibers processed",
			ConstLabels: config.ConstLabels,
		}),

		yields: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "yields_total",
			Help:        "Times a render pass yielded to the scheduler",
			ConstLabels: config.ConstLabels,
		}),

		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_mutations_total",
			Help:        "Host tree mutations by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		hostErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_errors_total",
			Help:        "Host mutations that returned an error",
			ConstLabels: config.ConstLabels,
		}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passes_in_flight",
			Help:        "Render passes currently building",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// PassStarted records the start of a render pass.
func (m *Metrics) PassStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

// PassFinished records the end of a pass with one of the Outcome constants.
func (m *Metrics) PassFinished(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.passes.WithLabelValues(outcome).Inc()
	m.passDuration.Observe(d.Seconds())
}

// Unit records one processed fiber.
func (m *Metrics) Unit() {
	if m == nil {
		return
	}
	m.units.Inc()
}

// Yield records a pass suspending until the next idle slice.
func (m *Metrics) Yield() {
	if m == nil {
		return
	}
	m.yields.Inc()
}

// Mutation records a host call. failed marks calls that returned an error.
func (m *Metrics) Mutation(op string, failed bool) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
	if failed {
		m.hostErrors.Inc()
	}
}

// Commit records the time spent applying a commit.
func (m *Metrics) Commit(d time.Duration) {
	if m == nil {
		return
	}
	m.commitDuration.Observe(d.Seconds())
}
