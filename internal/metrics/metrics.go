package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TVMaze upstream metrics
var (
	TVMazeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tvmaze_requests_total",
			Help: "Total number of requests sent to the TVMaze API.",
		},
		[]string{"endpoint", "status"},
	)

	TVMazeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tvmaze_request_duration_seconds",
			Help:    "Latency of TVMaze API requests, including retries.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Widget metrics
var (
	WidgetActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_actions_total",
			Help: "Total number of widget actions by outcome (success, error, superseded).",
		},
		[]string{"action", "outcome"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "widget_active_sessions",
			Help: "Number of widget sessions currently held in memory.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TVMazeRequestsTotal,
		TVMazeRequestDuration,
		WidgetActionsTotal,
		ActiveSessions,
	)
}
