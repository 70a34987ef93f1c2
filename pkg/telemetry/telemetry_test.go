package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.PassStarted()
	if got := gaugeValue(t, m.inFlight); got != 1 {
		t.Errorf("passes_in_flight = %v, want 1", got)
	}
	m.Unit()
	m.Unit()
	m.Yield()
	m.Mutation("set_property", false)
	m.Mutation("set_property", true)
	m.Commit(time.Millisecond)
	m.PassFinished(OutcomeCommitted, 2*time.Millisecond)

	if got := gaugeValue(t, m.inFlight); got != 0 {
		t.Errorf("passes_in_flight = %v, want 0", got)
	}
	if got := counterValue(t, m.units); got != 2 {
		t.Errorf("units_total = %v, want 2", got)
	}
	if got := counterValue(t, m.yields); got != 1 {
		t.Errorf("yields_total = %v, want 1", got)
	}
	if got := counterValue(t, m.mutations.WithLabelValues("set_property")); got != 2 {
		t.Errorf("host_mutations_total = %v, want 2", got)
	}
	if got := counterValue(t, m.hostErrors); got != 1 {
		t.Errorf("host_errors_total = %v, want 1", got)
	}
	if got := counterValue(t, m.passes.WithLabelValues(OutcomeCommitted)); got != 1 {
		t.Errorf("passes_total{committed} = %v, want 1", got)
	}
	if got := histogramCount(t, m.commitDuration); got != 1 {
		t.Errorf("commit_duration_seconds count = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.PassStarted()
	m.Unit()
	m.Yield()
	m.Mutation("append_child", true)
	m.Commit(time.Millisecond)
	m.PassFinished(OutcomeFailed, time.Millisecond)
}

func TestRegistryGathersNamespacedNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("app"), WithSubsystem("ui"))
	m.Unit()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "app_ui_units_total" {
			found = true
		}
	}
	if !found {
		t.Error("app_ui_units_total not gathered")
	}
}

func TestSpansWithGlobalProvider(t *testing.T) {
	ctx, span := StartPass(context.Background(), nil, "engine-1", 3, "render")
	if span == nil {
		t.Fatal("StartPass returned nil span")
	}
	if !trace.SpanFromContext(ctx).SpanContext().Equal(span.SpanContext()) {
		t.Error("pass span not stored in context")
	}
	_, commit := StartCommit(ctx, nil, 3)
	End(commit, nil, attribute.Int("fiber.mutations", 4))
	End(span, errors.New("boom"))
	End(nil, nil)
}
