package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the tracer used when the engine is not given one.
const DefaultTracerName = "vango/fiber"

// Tracer returns the tracer named DefaultTracerName from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(DefaultTracerName)
}

// StartPass starts the span covering one render pass, from request to
// commit or failure.
func StartPass(ctx context.Context, t trace.Tracer, engineID string, gen uint64, reason string) (context.Context, trace.Span) {
	if t == nil {
		t = Tracer()
	}
	return t.Start(ctx, "fiber.pass",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("fiber.engine_id", engineID),
			attribute.Int64("fiber.generation", int64(gen)),
			attribute.String("fiber.reason", reason),
		),
	)
}

// StartCommit starts the span covering the commit of a pass. ctx should be
// the context returned by StartPass.
func StartCommit(ctx context.Context, t trace.Tracer, gen uint64) (context.Context, trace.Span) {
	if t == nil {
		t = Tracer()
	}
	return t.Start(ctx, "fiber.commit",
		trace.WithAttributes(attribute.Int64("fiber.generation", int64(gen))),
	)
}

// End records err on span, sets its status and ends it.
func End(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
