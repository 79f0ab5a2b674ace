package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResultClass(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"200", "2xx"},
		{"301", "3xx"},
		{"404", "4xx"},
		{"503", "5xx"},
		{"UNREACHABLE", "unreachable"},
		{"ERROR", "error"},
		{"", "other"},
		{"20x", "other"},
		{"2000", "other"},
	}

	for _, tt := range tests {
		if got := ResultClass(tt.label); got != tt.want {
			t.Errorf("ResultClass(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.SetRegisteredURLs(3)
	m.ObserveCheck("200", time.Millisecond)
	m.ObserveSweep(OutcomePublished, time.Second, time.Now(), map[string]string{"a": "200"})
}

func TestMetrics_ObserveCheck(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCheck("200", time.Millisecond)
	m.ObserveCheck("204", time.Millisecond)
	m.ObserveCheck("UNREACHABLE", time.Millisecond)

	if got := testutil.ToFloat64(m.checks.WithLabelValues("2xx")); got != 2 {
		t.Errorf("checks_total{result=2xx} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.checks.WithLabelValues("unreachable")); got != 1 {
		t.Errorf("checks_total{result=unreachable} = %v, want 1", got)
	}
}

func TestMetrics_ObserveSweep(t *testing.T) {
	m := New(prometheus.NewRegistry())
	completed := time.Unix(1700000000, 0)

	m.ObserveSweep(OutcomePublished, time.Second, completed, map[string]string{
		"https://up.example":   "404",
		"https://down.example": "UNREACHABLE",
	})

	if got := testutil.ToFloat64(m.sweeps.WithLabelValues(OutcomePublished)); got != 1 {
		t.Errorf("sweeps_total{outcome=published} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.lastSweep); got != 1700000000 {
		t.Errorf("last_sweep_timestamp_seconds = %v, want 1700000000", got)
	}
	if got := testutil.ToFloat64(m.urlUp.WithLabelValues("https://up.example")); got != 1 {
		t.Errorf("url_up{up} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.urlUp.WithLabelValues("https://down.example")); got != 0 {
		t.Errorf("url_up{down} = %v, want 0", got)
	}

	// a superseded sweep counts but leaves the gauges alone
	m.ObserveSweep(OutcomeSuperseded, time.Second, time.Now(), map[string]string{"https://other.example": "200"})
	if got := testutil.ToFloat64(m.lastSweep); got != 1700000000 {
		t.Errorf("last_sweep_timestamp_seconds changed on superseded sweep: %v", got)
	}
	if got := testutil.CollectAndCount(m.urlUp); got != 2 {
		t.Errorf("url_up series = %d, want 2", got)
	}
}

func TestMetrics_PublishedSweepDropsRemovedURLs(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSweep(OutcomePublished, time.Second, time.Now(), map[string]string{"a": "200", "b": "200"})
	m.ObserveSweep(OutcomePublished, time.Second, time.Now(), map[string]string{"a": "200"})

	if got := testutil.CollectAndCount(m.urlUp); got != 1 {
		t.Errorf("url_up series = %d, want 1", got)
	}
}

func TestNew_PanicsOnDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("New() with an already-registered registry did not panic")
		}
	}()
	New(reg)
}
