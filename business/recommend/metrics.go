package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScorerTimeoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_scorer_timeouts_total",
			Help: "Count of scorer invocations abandoned after exceeding their time budget.",
		},
		[]string{"scorer"},
	)

	ColdStartServedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_coldstart_served_total",
			Help: "Recommendations answered by the cold-start resolver.",
		},
	)
)

func init() {
	prometheus.MustRegister(ScorerTimeoutsTotal, ColdStartServedTotal)
}
