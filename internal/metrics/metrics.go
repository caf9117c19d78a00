package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalyticsComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_computations_total",
			Help: "Total number of analytics computations by operation",
		},
		[]string{"operation"},
	)

	AnalyticsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_computation_duration_seconds",
			Help:    "Duration of analytics computations in seconds, including document fetch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_lookups_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"},
	)

	DocumentsUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_uploaded_total",
			Help: "Uploaded documents by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveComputation records one computation of operation that started at start.
func ObserveComputation(operation string, start time.Time) {
	AnalyticsComputations.WithLabelValues(operation).Inc()
	AnalyticsDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveCacheLookup matches cache.Observer.
func ObserveCacheLookup(_ string, hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}
