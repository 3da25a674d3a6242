// Package metrics holds the Prometheus collectors exported by signalvane.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcome labels.
const (
	OutcomeRefreshed = "refreshed"
	OutcomeCached    = "cached"
	OutcomeError     = "error"
)

// Fetch cache result labels.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalvane",
			Name:      "refreshes_total",
			Help:      "Total number of refresh checks, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	refreshDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "signalvane",
			Name:      "refresh_seconds",
			Help:      "Refresh pipeline latency in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	fetchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalvane",
			Name:      "fetch_cache_total",
			Help:      "Upstream fetch cache lookups, partitioned by source and result.",
		},
		[]string{"source", "result"},
	)

	sourceFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalvane",
			Name:      "source_failures_total",
			Help:      "Upstream fetch failures, partitioned by source.",
		},
		[]string{"source"},
	)

	narrativesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "signalvane",
			Name:      "narratives",
			Help:      "Number of narratives produced by the last successful refresh.",
		},
	)
)

// Register attaches signalvane collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		refreshesTotal,
		refreshDurationSeconds,
		fetchCacheTotal,
		sourceFailuresTotal,
		narrativesGauge,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRefresh records a refresh check. Only refreshed and failed runs feed the latency histogram.
func ObserveRefresh(duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeRefreshed, OutcomeCached:
	default:
		outcome = OutcomeError
	}
	refreshesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeCached {
		return
	}
	if duration < 0 {
		duration = 0
	}
	refreshDurationSeconds.Observe(duration.Seconds())
}

// ObserveFetchCache records a fetch cache lookup for source.
func ObserveFetchCache(source string, hit bool) {
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	fetchCacheTotal.WithLabelValues(source, result).Inc()
}

// ObserveSourceFailure records a failed upstream fetch.
func ObserveSourceFailure(source string) {
	sourceFailuresTotal.WithLabelValues(source).Inc()
}

// SetNarratives records the narrative count of the last successful refresh.
func SetNarratives(n int) {
	narrativesGauge.Set(float64(n))
}
