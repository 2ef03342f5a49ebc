package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "luppa"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of searches by strategy and outcome",
		},
		[]string{"strategy", "status"}, // status: "ok" / "cached" / "error"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds, cache lookups included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"strategy"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Search cache lookups by result",
		},
		[]string{"result"}, // "hit" / "miss" / "skip" / "error"
	)

	ViewRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_view_refresh_total",
			Help:      "Materialized search view refreshes by outcome",
		},
		[]string{"status"},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers the search metrics with the default registry.
// Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(SearchCacheTotal)
		prometheus.MustRegister(ViewRefreshTotal)
	})
}
