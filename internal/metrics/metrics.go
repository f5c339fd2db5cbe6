// Package metrics exposes Prometheus collectors for the watcher service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcome labels.
const (
	OutcomeFound      = "found"
	OutcomeNotFound   = "not_found"
	OutcomeFetchError = "fetch_error"
)

var (
	runsTotal            *prometheus.CounterVec
	matchesFoundTotal    prometheus.Counter
	fetchDurationSeconds prometheus.Histogram
	deliveriesTotal      *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refurbwatch_runs_total",
				Help: "Total number of watcher runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		matchesFoundTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "refurbwatch_matches_found_total",
				Help: "Total number of apparent listings extracted across all runs.",
			},
		)

		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "refurbwatch_fetch_duration_seconds",
				Help:    "Histogram of storefront fetch latencies.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		deliveriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refurbwatch_notify_deliveries_total",
				Help: "Total notification deliveries, labeled by channel and status.",
			},
			[]string{"channel", "status"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun records one completed run.
func ObserveRun(outcome string, fetchDuration time.Duration) {
	runsTotal.WithLabelValues(outcome).Inc()
	if fetchDuration > 0 {
		fetchDurationSeconds.Observe(fetchDuration.Seconds())
	}
}

// ObserveMatches records the number of listings a run extracted.
func ObserveMatches(n int) {
	if n > 0 {
		matchesFoundTotal.Add(float64(n))
	}
}

// ObserveDelivery records one notification delivery attempt.
func ObserveDelivery(channel string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	deliveriesTotal.WithLabelValues(channel, status).Inc()
}
