package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPortalMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPortalMetrics(reg)
	m.Observe("cancel", OutcomeSuccess)
	m.Observe("cancel", OutcomeSuccess)
	m.Observe("payment", OutcomeInvalid)
	m.ObserveLatency("load", 20*time.Millisecond)

	if got := testutil.ToFloat64(m.operations.WithLabelValues("cancel", OutcomeSuccess)); got != 2 {
		t.Fatalf("expected 2 cancels, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("payment", OutcomeInvalid)); got != 1 {
		t.Fatalf("expected 1 invalid payment, got %v", got)
	}
	if n := testutil.CollectAndCount(m.latency); n != 1 {
		t.Fatalf("expected one latency series, got %d", n)
	}
}

func TestPortalMetricsNilSafe(t *testing.T) {
	var m *PortalMetrics
	m.Observe("load", OutcomeFailed)
	m.ObserveLatency("load", time.Second)
}
