// Package metrics provides Prometheus metrics for the pipeline service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "brief"

var (
	// RunsTotal counts completed runs by outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	// RunsActive tracks runs currently executing.
	RunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_active",
			Help:      "Number of pipeline runs currently executing",
		},
	)

	// StageDuration tracks stage execution duration.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage", "status"}, // status: "ok", "error"
	)

	// SummarizeRequests counts summarization calls by language and status.
	SummarizeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "summarize",
			Name:      "requests_total",
			Help:      "Total summarization requests by language and status",
		},
		[]string{"language", "status"},
	)

	// DispatchTotal counts dispatch attempts by resulting status.
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "attempts_total",
			Help:      "Total dispatch attempts by status",
		},
		[]string{"status"}, // "sent", "error"
	)

	// SessionsActive tracks open sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Number of open sessions",
		},
	)

	// SSEActiveConnections tracks open state stream connections.
	SSEActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "sse_active_connections",
			Help:      "Number of open state stream connections",
		},
	)
)

var (
	// HTTPRequestsTotal counts API requests by method, route pattern, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "pattern", "status"},
	)

	// HTTPRequestDuration tracks API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "pattern"},
	)
)

// ObserveHTTP records a completed request. Unmatched requests share the
// "unmatched" pattern label.
func ObserveHTTP(method, pattern string, status int, d time.Duration) {
	if pattern == "" {
		pattern = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, pattern).Observe(d.Seconds())
}

// Status returns the status label for an error result.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
