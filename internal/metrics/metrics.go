package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache metrics
	pollTotal    *prometheus.CounterVec
	pollDuration *prometheus.HistogramVec
	staleness    *prometheus.GaugeVec

	// Mutation metrics
	mutationTotal *prometheus.CounterVec

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// Init registers all Prometheus metrics. Called once at startup when metrics
// are enabled (watch --metrics-addr); every recording function is a no-op
// until then.
func Init() {
	metricsOnce.Do(func() {
		pollTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storectl_poll_total",
				Help: "Total number of cache poll fetches",
			},
			[]string{"key", "outcome"},
		)

		pollDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storectl_poll_duration_seconds",
				Help:    "Duration of cache poll fetches in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"key"},
		)

		staleness = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "storectl_cache_staleness_seconds",
				Help: "Seconds since the last successful fetch per cache key class",
			},
			[]string{"key"},
		)

		mutationTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storectl_mutation_total",
				Help: "Total number of store mutations issued",
			},
			[]string{"op", "outcome"},
		)

		metricsRegistered = true
	})
}

// KeyClass collapses per-store cache keys into a bounded label set:
// "stores", "store", or "audit".
func KeyClass(key string) string {
	if strings.HasSuffix(key, ":audit") {
		return "audit"
	}
	if strings.HasPrefix(key, "store:") {
		return "store"
	}
	return key
}

// RecordPoll records one cache fetch and its outcome ("ok", "stale", "gone",
// or "error").
func RecordPoll(key, outcome string, durationSeconds float64) {
	if !metricsRegistered {
		return
	}
	class := KeyClass(key)
	if pollTotal != nil {
		pollTotal.WithLabelValues(class, outcome).Inc()
	}
	if pollDuration != nil {
		pollDuration.WithLabelValues(class).Observe(durationSeconds)
	}
}

// SetStaleness records how far behind the cached value for a key is.
func SetStaleness(key string, seconds float64) {
	if !metricsRegistered || staleness == nil {
		return
	}
	staleness.WithLabelValues(KeyClass(key)).Set(seconds)
}

// RecordMutation records a create or delete and its outcome.
func RecordMutation(op, outcome string) {
	if !metricsRegistered || mutationTotal == nil {
		return
	}
	mutationTotal.WithLabelValues(op, outcome).Inc()
}
