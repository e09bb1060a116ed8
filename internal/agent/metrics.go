package agent

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type dispatchMetrics struct {
	ToolDispatchCounter *prometheus.CounterVec
}

var (
	metricsOnce     sync.Once
	metricsInstance *dispatchMetrics
)

func toolMetrics() *dispatchMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &dispatchMetrics{
			ToolDispatchCounter: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "medassist_tool_dispatches_total",
				Help: "Total tool dispatches by tool name and outcome.",
			}, []string{"tool", "status"}),
		}
	})
	return metricsInstance
}

func countDispatch(tool string, isError bool) {
	status := "success"
	if isError {
		status = "error"
	}
	toolMetrics().ToolDispatchCounter.WithLabelValues(tool, status).Inc()
}
