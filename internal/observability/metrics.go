package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreatedTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "famride", Name: "rides_created_total", Help: "Total ride requests created"})
	RidesAcceptedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "famride", Name: "rides_accepted_total", Help: "Total rides accepted by a driver"})
	AcceptConflictTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "famride", Name: "accept_conflicts_total", Help: "Accept attempts lost to another driver"})
	GeocodeErrorsTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "famride", Name: "geocode_errors_total", Help: "Geocoding provider failures"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "famride", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "famride",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
