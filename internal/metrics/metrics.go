// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guru_intake_sessions_created_total",
			Help: "Total number of intake sessions opened",
		},
	)

	SessionsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guru_intake_sessions_submitted_total",
			Help: "Total number of intake sessions submitted upstream",
		},
	)

	SessionsAbandoned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guru_intake_sessions_abandoned_total",
			Help: "Total number of intake sessions dropped without submission",
		},
		[]string{"reason"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "guru_intake_sessions_active",
			Help: "Number of intake sessions currently held in memory",
		},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guru_intake_validation_failures_total",
			Help: "Validation failures by the step they were reported on",
		},
		[]string{"step"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guru_upstream_request_duration_seconds",
			Help:    "Duration of upstream API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guru_http_requests_total",
			Help: "HTTP requests served by status class",
		},
		[]string{"method", "status"},
	)
)
