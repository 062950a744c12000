package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search pipeline Prometheus metrics.
var (
	// ResourceBuildsTotal counts shared-handle constructions. A healthy process
	// shows exactly one "ok" per resource per configuration.
	ResourceBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourquery",
			Name:      "resource_builds_total",
			Help:      "Shared resource constructions by outcome",
		},
		[]string{"resource", "result"}, // result: "ok" / "error"
	)

	IndexChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourquery",
			Name:      "index_checks_total",
			Help:      "Vector index availability checks by outcome",
		},
		[]string{"result"}, // "present" / "missing" / "error"
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourquery",
			Name:      "search_requests_total",
			Help:      "Tour searches by output mode and outcome code",
		},
		[]string{"mode", "outcome"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tourquery",
			Name:      "search_duration_seconds",
			Help:      "End-to-end tour search duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tourquery",
			Name:      "search_results",
			Help:      "Documents returned per successful search",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers the search pipeline metrics. Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(ResourceBuildsTotal)
		prometheus.MustRegister(IndexChecksTotal)
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(SearchResults)
	})
}
