package perf

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	jobmetrics "github.com/atrium-hq/atrium/internal/jobs"
)

func TestBootWarmupThroughputAndReliability(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)

	// Simulate warmups that hit a still-fresh catalog cache.
	for i := 0; i < 40; i++ {
		tracker := metrics.Track("boot.cache_warmup")
		time.Sleep(5 * time.Millisecond)
		if err := tracker.End(nil); err != nil {
			t.Fatalf("unexpected error ending warm tracker: %v", err)
		}
		metrics.AddWarmedUsers("warmed", 1)
	}

	// Simulate cold runs that recompute every permission branch.
	for i := 0; i < 10; i++ {
		tracker := metrics.Track("boot.cold_warmup")
		time.Sleep(30 * time.Millisecond)
		if err := tracker.End(nil); err != nil {
			t.Fatalf("unexpected error ending cold tracker: %v", err)
		}
		metrics.AddWarmedUsers("warmed", 1)
	}

	// Inject failures so the failure counters stay honest.
	for i := 0; i < 3; i++ {
		tracker := metrics.Track("boot.cache_warmup")
		time.Sleep(5 * time.Millisecond)
		if err := tracker.End(errors.New("timeout")); err == nil {
			t.Fatal("expected error to propagate")
		}
		metrics.AddWarmedUsers("failed", 1)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "atrium_jobs_total", map[string]string{"job": "boot.cache_warmup", "status": "success"})
	failure := metricValue(t, families, "atrium_jobs_total", map[string]string{"job": "boot.cache_warmup", "status": "failure"})
	if success+failure == 0 {
		t.Fatal("no warmup executions recorded")
	}
	ratio := success / (success + failure)
	if ratio < 0.9 {
		t.Fatalf("warmup success ratio too low: %f", ratio)
	}

	coldDuration := histogramMean(t, families, "atrium_job_duration_seconds", map[string]string{"job": "boot.cold_warmup"})
	if coldDuration > 2.0 {
		t.Fatalf("cold warmup duration above budget: %f", coldDuration)
	}

	warmDuration := histogramMean(t, families, "atrium_job_duration_seconds", map[string]string{"job": "boot.cache_warmup"})
	if warmDuration > 0.5 {
		t.Fatalf("warm duration above budget: %f", warmDuration)
	}

	warmed := metricValue(t, families, "atrium_boot_warmup_users_total", map[string]string{"outcome": "warmed"})
	if warmed != 50 {
		t.Fatalf("expected 50 warmed users, got %f", warmed)
	}
	failed := metricValue(t, families, "atrium_boot_warmup_users_total", map[string]string{"outcome": "failed"})
	if failed != 3 {
		t.Fatalf("expected 3 failed users, got %f", failed)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for _, lp := range metric.GetLabel() {
		if val, ok := labels[lp.GetName()]; ok {
			if lp.GetValue() != val {
				return false
			}
		}
	}
	for key := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
