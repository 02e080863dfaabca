package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"hydrotrack/pkg/metrics"
)

func histogramSum(t *testing.T, name, operation, table string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["operation"] == operation && labels["table"] == table {
				return m.GetHistogram().GetSampleSum()
			}
		}
	}
	t.Fatalf("no %s sample for operation=%q table=%q", name, operation, table)
	return 0
}

func TestObserveDBQueryDeferredCapturesElapsedTime(t *testing.T) {
	// Deferred at the top of a repository method; the observation must
	// cover the whole method body, not the instant the defer was queued.
	func() {
		start := time.Now()
		defer metrics.ObserveDBQuery("select", "slow_queries", start)
		time.Sleep(30 * time.Millisecond)
	}()

	sum := histogramSum(t, "db_query_duration_seconds", "select", "slow_queries")
	if sum < 0.03 {
		t.Errorf("histogram sum = %v seconds for a 30ms query", sum)
	}
}

func TestObserveDBQueryAccumulates(t *testing.T) {
	metrics.ObserveDBQuery("insert", "fast_queries", time.Now())
	metrics.ObserveDBQuery("insert", "fast_queries", time.Now())

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	var found *dto.Metric
	for _, mf := range families {
		if mf.GetName() != "db_query_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "table" && lp.GetValue() == "fast_queries" {
					found = m
				}
			}
		}
	}
	if found == nil {
		t.Fatal("no samples recorded for fast_queries")
	}
	if found.GetHistogram().GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", found.GetHistogram().GetSampleCount())
	}
}
