// Package metrics defines the Prometheus collectors for sweeps and checks.
//
// All methods are safe on a nil *Metrics, so components can be built
// without instrumentation in tests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitecheck"

// Sweep outcomes.
const (
	OutcomePublished  = "published"
	OutcomeSuperseded = "superseded"
	OutcomeCancelled  = "cancelled"
)

// Metrics holds the collectors registered for one sitecheck instance.
type Metrics struct {
	sweeps        *prometheus.CounterVec
	sweepDuration prometheus.Histogram
	lastSweep     prometheus.Gauge
	checks        *prometheus.CounterVec
	checkDuration prometheus.Histogram
	urls          prometheus.Gauge
	urlUp         *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
// It panics if registration fails, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sweeps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweeps_total",
				Help:      "Completed sweeps by outcome",
			},
			[]string{"outcome"},
		),
		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Time to check every registered URL once",
				Buckets:   prometheus.DefBuckets,
			},
		),
		lastSweep: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_sweep_timestamp_seconds",
				Help:      "Unix time of the last published sweep",
			},
		),
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "URL checks by result class",
			},
			[]string{"result"},
		),
		checkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "check_duration_seconds",
				Help:      "Duration of a single URL check",
				Buckets:   prometheus.DefBuckets,
			},
		),
		urls: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registered_urls",
				Help:      "Distinct URLs in the registry",
			},
		),
		urlUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "url_up",
				Help:      "URL answered with an HTTP status (1) or not (0) in the last published sweep",
			},
			[]string{"url"},
		),
	}

	reg.MustRegister(m.sweeps, m.sweepDuration, m.lastSweep, m.checks, m.checkDuration, m.urls, m.urlUp)
	return m
}

// SetRegisteredURLs records the registry size.
func (m *Metrics) SetRegisteredURLs(n int) {
	if m == nil {
		return
	}
	m.urls.Set(float64(n))
}

// ObserveCheck records one URL check and its label.
func (m *Metrics) ObserveCheck(label string, d time.Duration) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(ResultClass(label)).Inc()
	m.checkDuration.Observe(d.Seconds())
}

// ObserveSweep records a finished sweep. For published sweeps the per-URL
// gauges are replaced with results.
func (m *Metrics) ObserveSweep(outcome string, d time.Duration, completedAt time.Time, results map[string]string) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(outcome).Inc()
	m.sweepDuration.Observe(d.Seconds())

	if outcome != OutcomePublished {
		return
	}
	m.lastSweep.Set(float64(completedAt.Unix()))
	m.urlUp.Reset()
	for url, label := range results {
		up := 0.0
		if isStatusCode(label) {
			up = 1
		}
		m.urlUp.WithLabelValues(url).Set(up)
	}
}

// ResultClass maps a status label to a low-cardinality class:
// "2xx".."5xx", "unreachable", "error" or "other".
func ResultClass(label string) string {
	switch {
	case label == "UNREACHABLE":
		return "unreachable"
	case label == "ERROR":
		return "error"
	case isStatusCode(label):
		return label[:1] + "xx"
	default:
		return "other"
	}
}

// isStatusCode reports whether label is a three-digit status code.
func isStatusCode(label string) bool {
	if len(label) != 3 {
		return false
	}
	for _, r := range label {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
