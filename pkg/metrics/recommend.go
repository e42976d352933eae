package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendation endpoint
	RecommendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommend_latency_seconds",
		Help:    "Latency of the recommendation endpoint",
		Buckets: prometheus.DefBuckets,
	})

	// Total recommendation requests served, by request type
	RecommendTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommend_requests_total",
		Help: "Total recommendation requests served",
	}, []string{"request_type"})

	// Requests answered with a reduced scorer set
	RecommendDegradedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_degraded_total",
		Help: "Recommendations served with a reduced scorer set",
	})

	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_cache_hits_total",
		Help: "Result cache hits",
	})

	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_cache_misses_total",
		Help: "Result cache misses",
	})
)

func Init() {
	prometheus.MustRegister(
		RecommendDuration,
		RecommendTotal,
		RecommendDegradedTotal,
		CacheHits,
		CacheMisses,
	)
}
