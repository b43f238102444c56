package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
)

func newTestSink(t *testing.T) (*PrometheusSink, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg, zerolog.Nop())
	return sink, reg
}

func getCounterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func getHistogramCount(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) uint64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				if matchLabels(m.GetLabel(), labels) {
					return m.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	return 0
}

func getCounterVecValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			for _, m := range mf.GetMetric() {
				if matchLabels(m.GetLabel(), labels) {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; !ok || v != p.GetValue() {
			return false
		}
	}
	return true
}

func TestPrometheusSink_Registration(t *testing.T) {
	// Should not panic or error with a fresh registry.
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg, zerolog.Nop())
	if sink == nil {
		t.Fatal("NewPrometheusSink returned nil")
	}
}

func TestPrometheusSink_OperationCompleted(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.OperationCompleted(OperationPreview, OutcomeSuccess, 2*time.Millisecond)
	sink.OperationCompleted(OperationPreview, OutcomeSuccess, 3*time.Millisecond)
	sink.OperationCompleted(OperationPreview, "invalid_cron", time.Millisecond)

	ok := getCounterVecValue(t, reg, "cronpreview_operations_total",
		map[string]string{"operation": "preview", "outcome": "success"})
	if ok != 2 {
		t.Errorf("operation=preview,outcome=success = %v, want 2", ok)
	}

	invalid := getCounterVecValue(t, reg, "cronpreview_operations_total",
		map[string]string{"operation": "preview", "outcome": "invalid_cron"})
	if invalid != 1 {
		t.Errorf("operation=preview,outcome=invalid_cron = %v, want 1", invalid)
	}

	observed := getHistogramCount(t, reg, "cronpreview_operation_duration_seconds",
		map[string]string{"operation": "preview"})
	if observed != 3 {
		t.Errorf("operation_duration sample count = %d, want 3", observed)
	}
}

func TestPrometheusSink_ExecutionsComputed(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.ExecutionsComputed(5)
	sink.ExecutionsComputed(10)

	val := getCounterValue(t, reg, "cronpreview_executions_computed_total")
	if val != 15 {
		t.Errorf("executions_computed_total = %v, want 15", val)
	}
}

func TestPrometheusSink_CacheMetrics(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.CacheLookup(CacheHit)
	sink.CacheLookup(CacheMiss)
	sink.CacheLookup(CacheHit)
	sink.CacheCircuitOpen()

	hits := getCounterVecValue(t, reg, "cronpreview_cache_lookups_total",
		map[string]string{"result": "hit"})
	if hits != 2 {
		t.Errorf("result=hit = %v, want 2", hits)
	}

	misses := getCounterVecValue(t, reg, "cronpreview_cache_lookups_total",
		map[string]string{"result": "miss"})
	if misses != 1 {
		t.Errorf("result=miss = %v, want 1", misses)
	}

	open := getCounterValue(t, reg, "cronpreview_cache_circuit_open_total")
	if open != 1 {
		t.Errorf("cache_circuit_open_total = %v, want 1", open)
	}
}

func TestPrometheusSink_HTTPRequestLabels(t *testing.T) {
	sink, reg := newTestSink(t)

	sink.HTTPRequestCompleted("/preview", StatusClass2xx, 10*time.Millisecond)
	sink.HTTPRequestCompleted("/preview", StatusClass4xx, 5*time.Millisecond)

	val1 := getCounterVecValue(t, reg, "cronpreview_http_requests_total",
		map[string]string{"route": "/preview", "status_class": "2xx"})
	if val1 != 1 {
		t.Errorf("route=/preview,status=2xx = %v, want 1", val1)
	}

	val2 := getCounterVecValue(t, reg, "cronpreview_http_requests_total",
		map[string]string{"route": "/preview", "status_class": "4xx"})
	if val2 != 1 {
		t.Errorf("route=/preview,status=4xx = %v, want 1", val2)
	}
}

func TestPrometheusSink_DuplicateRegistration_NoPanic(t *testing.T) {
	// Registering metrics twice with the same registry should not panic.
	// The second registration will fail, but should be handled gracefully.
	reg := prometheus.NewRegistry()

	sink1 := NewPrometheusSink(reg, zerolog.Nop())
	if sink1 == nil {
		t.Fatal("first NewPrometheusSink returned nil")
	}

	// Second registration will fail for all metrics, but should not panic.
	sink2 := NewPrometheusSink(reg, zerolog.Nop())
	if sink2 == nil {
		t.Fatal("second NewPrometheusSink returned nil")
	}
	sink2.CacheLookup(CacheHit)
}

// Verify PrometheusSink implements Sink interface.
var _ Sink = (*PrometheusSink)(nil)
