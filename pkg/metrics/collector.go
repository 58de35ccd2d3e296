// Package metrics exposes Prometheus collectors for the flow engine and
// the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rechargehub/cardflow/internal/flow"
)

var (
	stepTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_step_transitions_total",
			Help: "Total number of flow step transitions labeled by journey, from and to",
		},
		[]string{"journey", "from", "to"},
	)
	paymentOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_payment_outcomes_total",
			Help: "Total number of resolved payment outcomes",
		},
		[]string{"outcome"},
	)
	pipelineEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_pipelines_total",
			Help: "Total number of processing pipeline lifecycle events",
		},
		[]string{"kind", "event"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flow_active_sessions",
			Help: "Current number of live flow sessions",
		},
	)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests labeled by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	flow.RegisterTransitionRecorder(RecordStepTransition)
	flow.RegisterOutcomeRecorder(RecordPaymentOutcome)
	flow.RegisterPipelineRecorder(RecordPipelineEvent)
	flow.RegisterSessionGauge(SetActiveSessions)
}

// RecordStepTransition increments the transition counter.
func RecordStepTransition(journey, from, to string) {
	stepTransitionsTotal.WithLabelValues(journey, from, to).Inc()
}

// RecordPaymentOutcome increments the outcome counter.
func RecordPaymentOutcome(result string) {
	if result == "" {
		result = "unknown"
	}

	paymentOutcomesTotal.WithLabelValues(result).Inc()
}

// RecordPipelineEvent increments the pipeline lifecycle counter.
func RecordPipelineEvent(kind, event string) {
	pipelineEventsTotal.WithLabelValues(kind, event).Inc()
}

// SetActiveSessions updates the live session gauge.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// RecordHTTPRequest increments request counters and records duration.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, statusLabel(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
