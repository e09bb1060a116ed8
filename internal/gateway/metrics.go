package gateway

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks chat traffic for the /metrics endpoint.
type Metrics struct {
	// ChatRequestCounter counts chat requests by outcome.
	// Labels: status (ok|bad_request|unavailable|error)
	ChatRequestCounter *prometheus.CounterVec

	// ChatRequestDuration measures end-to-end chat latency in seconds.
	ChatRequestDuration prometheus.Histogram
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics creates and registers the gateway metrics. Registration happens
// once per process regardless of how many times it is called.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			ChatRequestCounter: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "medassist_chat_requests_total",
					Help: "Total chat requests by outcome status.",
				},
				[]string{"status"},
			),
			ChatRequestDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "medassist_chat_request_duration_seconds",
					Help:    "End-to-end chat request latency in seconds.",
					Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
				},
			),
		}
	})
	return metricsInstance
}
