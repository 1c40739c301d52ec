// Package metrics tracks per-run scrape statistics with Prometheus collectors.
//
// A run is a batch job, so instead of serving /metrics the collectors are kept
// in a private registry that can be written to a node-exporter textfile at the
// end of the run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for week requests
const (
	OutcomeOK           = "ok"
	OutcomeFetchError   = "fetch_error"
	OutcomeExtractError = "extract_error"
	OutcomeTransport    = "transport_error"
)

// Metrics holds the collectors for one run.
// All operations are thread-safe.
type Metrics struct {
	registry *prometheus.Registry

	WeekRequests  *prometheus.CounterVec
	Records       prometheus.Counter
	FetchDuration prometheus.Histogram
	LastRun       prometheus.Gauge
}

// New creates a new metrics set registered in its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		WeekRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "econcal_week_requests_total",
				Help: "Calendar week requests by outcome",
			},
			[]string{"outcome"}, // ok|fetch_error|extract_error|transport_error
		),
		Records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "econcal_records_extracted_total",
			Help: "Event records extracted from calendar pages",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "econcal_week_duration_seconds",
			Help:    "Time to fetch and extract one calendar week",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "econcal_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed run",
		}),
	}

	m.registry.MustRegister(m.WeekRequests, m.Records, m.FetchDuration, m.LastRun)
	return m
}

// ObserveWeek records the outcome of one week
func (m *Metrics) ObserveWeek(outcome string, records int, d time.Duration) {
	if m == nil {
		return
	}
	m.WeekRequests.WithLabelValues(outcome).Inc()
	m.Records.Add(float64(records))
	m.FetchDuration.Observe(d.Seconds())
}

// MarkRunComplete stamps the completion time
func (m *Metrics) MarkRunComplete(t time.Time) {
	if m == nil {
		return
	}
	m.LastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes all collectors in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
