// Package telemetry instruments the render engine with Prometheus metrics
// and OpenTelemetry spans.
//
// Metrics follow the vango naming scheme (namespace "vango", subsystem
// "fiber"):
//   - vango_fiber_passes_total{outcome}: render passes by outcome
//   - vango_fiber_pass_duration_seconds: request to commit (or failure)
//   - vango_fiber_commit_duration_seconds: time spent applying a commit
//   - vango_fiber_units_total: fibers processed
//   - vango_fiber_yields_total: times a pass yielded to the scheduler
//   - vango_fiber_host_mutations_total{op}: host calls by kind
//   - vango_fiber_host_errors_total: failed host calls
//   - vango_fiber_passes_in_flight: 1 while a pass is building
//
// Spans use the global tracer provider; nothing is exported unless the
// application installs one:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
package telemetry
