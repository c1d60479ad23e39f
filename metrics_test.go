package goSession

import (
	"testing"
	"time"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricOTPRequested)
	m.Observe(MetricVerifyLatency, 10*time.Millisecond)

	if got := m.Value(MetricOTPRequested); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricsCountersAccumulate(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	for i := 0; i < 5; i++ {
		m.Inc(MetricOTPVerifySuccess)
	}
	m.Inc(MetricLogout)

	if got := m.Value(MetricOTPVerifySuccess); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	snap := m.Snapshot()
	if snap.Counters[MetricOTPVerifySuccess] != 5 || snap.Counters[MetricLogout] != 1 {
		t.Fatalf("unexpected snapshot counters: %+v", snap.Counters)
	}
}

func TestMetricsLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricVerifyLatency, 3*time.Millisecond)
	m.Observe(MetricVerifyLatency, 30*time.Millisecond)
	m.Observe(MetricVerifyLatency, 2*time.Second)

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricVerifyLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	if buckets[0] != 1 || buckets[3] != 1 || buckets[7] != 1 {
		t.Fatalf("unexpected bucket distribution: %v", buckets)
	}
}

func TestMetricsHistogramRequiresOptIn(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricVerifyLatency, 10*time.Millisecond)

	snap := m.Snapshot()
	if len(snap.Histograms) != 0 {
		t.Fatalf("expected no histograms without opt-in, got %+v", snap.Histograms)
	}
}
