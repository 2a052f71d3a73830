// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assessment_runs_started_total",
			Help: "Total number of assessment runs started",
		},
	)

	AssessmentsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assessment_runs_completed_total",
			Help: "Total number of assessment runs that reached 100% progress",
		},
	)

	AssessmentSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_submissions_total",
			Help: "User submissions by outcome",
		},
		[]string{"outcome"},
	)

	AssessmentsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assessment_runs_active",
			Help: "Number of assessment runs held in memory",
		},
	)

	ViewRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shell_view_renders_total",
			Help: "Views rendered by the navigation shell",
		},
		[]string{"view"},
	)

	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_connections_active",
			Help: "Open assessment WebSocket connections",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
