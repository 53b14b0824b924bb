package network

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scankit_explorer_requests_total",
			Help: "Total number of explorer requests by module and action",
		},
		[]string{"module", "action"},
	)

	requestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scankit_explorer_errors_total",
			Help: "Total number of explorer errors by action and type",
		},
		[]string{"action", "error_type"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scankit_explorer_request_duration_seconds",
			Help:    "Duration of explorer requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	retries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scankit_explorer_retries_total",
			Help: "Total number of retried explorer requests",
		},
		[]string{"action"},
	)

	throttleWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scankit_explorer_throttle_waits_total",
			Help: "Number of requests delayed by the rate limiter",
		},
	)

	keyRotations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scankit_explorer_key_rotations_total",
			Help: "Number of api key rotations after a rate limit response",
		},
	)
)

func requestInc(module, action string) {
	requests.WithLabelValues(module, action).Inc()
}

func requestObserve(action string, d time.Duration) {
	requestDuration.WithLabelValues(action).Observe(d.Seconds())
}

func requestError(action, errorType string) {
	requestErrors.WithLabelValues(action, errorType).Inc()
}

func retryInc(action string) {
	retries.WithLabelValues(action).Inc()
}
