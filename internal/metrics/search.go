package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and narrator Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchd",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"status"}, // "ok" / "empty" / "degraded" / "error"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "matchd",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	CandidatesScoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "matchd",
			Name:      "candidates_scored_total",
			Help:      "Total candidates evaluated by the scoring policy",
		},
	)

	NarratorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchd",
			Name:      "narrator_requests_total",
			Help:      "Total narrator analysis requests",
		},
		[]string{"status"}, // "success" / "error"
	)

	BackfillUpdatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "matchd",
			Name:      "backfill_updated_total",
			Help:      "Total candidate vectors regenerated by backfill",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(CandidatesScoredTotal)
	prometheus.MustRegister(NarratorRequestsTotal)
	prometheus.MustRegister(BackfillUpdatedTotal)
	searchMetricsRegistered = true
}
