package services

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Assistant pipeline metrics
	AssistantRequests prometheus.Counter
	RequestLatency    prometheus.Histogram
	ActionOutcomes    *prometheus.CounterVec
	ParseFallbacks    prometheus.Counter

	// Session metrics
	SweepDeletions prometheus.Counter
}

// InitMetrics initializes the Prometheus metrics and registers a gauge
// fed from the session manager's store counts.
func InitMetrics(sessions *SessionManager) *Metrics {
	metrics := &Metrics{
		AssistantRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maru_assistant_requests_total",
			Help: "Total number of assistant requests processed",
		}),

		RequestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "maru_assistant_request_duration_seconds",
			Help:    "Assistant request latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60}, // LLM calls dominate
		}),

		ActionOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "maru_actions_total",
			Help: "Total number of executed actions by intent and status",
		}, []string{"intent", "status"}),

		ParseFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maru_parse_fallbacks_total",
			Help: "Total number of requests that degraded to the fallback action",
		}),

		SweepDeletions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "maru_session_sweep_deletions_total",
			Help: "Total number of sessions removed by the expiry sweep",
		}),
	}

	if sessions != nil {
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "maru_sessions_active",
				Help: "Current number of stored sessions",
			},
			func() float64 {
				return float64(sessions.GetActiveSessionCount(context.Background()))
			},
		))
	}

	return metrics
}
