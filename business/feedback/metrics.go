package feedback

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FeedbackEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_events_total",
			Help: "Count of feedback events by event type and outcome (applied, replay, partial).",
		},
		[]string{"event_type", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(FeedbackEventsTotal)
}
