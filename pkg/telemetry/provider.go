package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracingConfig configures NewTracerProvider.
type TracingConfig struct {
	// ServiceName is recorded as the service.name resource attribute.
	ServiceName string

	// ServiceVersion is recorded as the service.version resource attribute.
	ServiceVersion string

	// Writer receives spans as JSON, one per line. Nil discards them.
	Writer io.Writer

	// SamplingRate is the fraction of passes traced, from 0 to 1.
	// Default: 1.
	SamplingRate float64

	// Exporter overrides the stdout exporter, e.g. with an in-memory one
	// in tests. Spans are exported synchronously.
	Exporter sdktrace.SpanExporter
}

// NewTracerProvider builds an SDK tracer provider that exports pass and
// commit spans. Callers own the provider and must Shutdown it to flush.
func NewTracerProvider(cfg TracingConfig) (*sdktrace.TracerProvider, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "vfiber"
	}
	if cfg.SamplingRate <= 0 || cfg.SamplingRate > 1 {
		cfg.SamplingRate = 1
	}

	exporter := cfg.Exporter
	if exporter == nil {
		w := cfg.Writer
		if w == nil {
			w = io.Discard
		}
		var err error
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("telemetry: stdout exporter: %w", err)
		}
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))),
		sdktrace.WithSyncer(exporter),
	), nil
}

// InstallGlobal sets tp as the global tracer provider, so Tracer() returns
// its tracer, and returns tp.Shutdown.
func InstallGlobal(tp *sdktrace.TracerProvider) func(context.Context) error {
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
