package fiber

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/fiber/pkg/telemetry"
)

// Config configures an Engine.
type Config struct {
	// Logger receives pass lifecycle logs.
	// Default: slog.Default() with component=fiber.
	Logger *slog.Logger

	// YieldThreshold is the remaining idle time below which a pass stops
	// and waits for the next idle slice. Default: 1ms.
	YieldThreshold time.Duration

	// MaxRenderPhaseUpdates bounds how many times state setters called while
	// a component is rendering may restart the same pass before it fails.
	// Default: 25.
	MaxRenderPhaseUpdates int

	// Metrics records engine metrics. Nil disables them.
	Metrics *telemetry.Metrics

	// Tracer creates pass and commit spans.
	// Default: the global tracer named telemetry.DefaultTracerName.
	Tracer trace.Tracer

	// OnError is called with the error of every failed pass, including
	// passes started by state setters. Superseded passes are not reported.
	OnError func(error)

	// OnCommit is called after every commit, once the engine is idle again.
	// It may call Render.
	OnCommit func(CommitStats)
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		YieldThreshold:        time.Millisecond,
		MaxRenderPhaseUpdates: 25,
	}
}

// Option configures an Engine.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithYieldThreshold sets the yield threshold.
func WithYieldThreshold(d time.Duration) Option {
	return func(c *Config) {
		c.YieldThreshold = d
	}
}

// WithMaxRenderPhaseUpdates sets the render-phase update bound.
func WithMaxRenderPhaseUpdates(n int) Option {
	return func(c *Config) {
		c.MaxRenderPhaseUpdates = n
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithTracer sets the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = t
	}
}

// WithOnError sets the failed-pass callback.
func WithOnError(fn func(error)) Option {
	return func(c *Config) {
		c.OnError = fn
	}
}

// WithOnCommit sets the commit callback.
func WithOnCommit(fn func(CommitStats)) Option {
	return func(c *Config) {
		c.OnCommit = fn
	}
}
