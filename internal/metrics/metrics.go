// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usermanager_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usermanager_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "usermanager_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	DirectoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usermanager_directory_operations_total",
			Help: "Directory operations by name and outcome",
		},
		[]string{"operation", "outcome"},
	)

	TokensIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usermanager_tokens_issued_total",
			Help: "Total number of bearer tokens issued",
		},
	)
)

// ObserveOperation counts one directory operation. outcome is "ok" or an error kind name.
func ObserveOperation(operation, outcome string) {
	DirectoryOperationsTotal.WithLabelValues(operation, outcome).Inc()
}
