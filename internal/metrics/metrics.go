package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels RPC calls that returned a result.
	OutcomeSuccess = "success"
	// OutcomeError labels RPC calls that returned a JSON-RPC error.
	OutcomeError = "error"
)

var (
	rpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel_agents",
			Name:      "rpc_requests_total",
			Help:      "Total RPC requests handled, partitioned by agent, method and outcome.",
		},
		[]string{"agent", "method", "outcome"},
	)

	rpcDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sentinel_agents",
			Name:      "rpc_seconds",
			Help:      "RPC handling latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"agent", "method"},
	)

	flowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel_agents",
			Name:      "flows_total",
			Help:      "Completed pipeline flows, partitioned by terminal route.",
		},
		[]string{"route"},
	)
)

// Register attaches the agent collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		rpcRequestsTotal,
		rpcDurationSeconds,
		flowsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRPC records one RPC call's duration and outcome.
func ObserveRPC(agent, method string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	rpcRequestsTotal.WithLabelValues(agent, method, label).Inc()
	if duration < 0 {
		duration = 0
	}
	rpcDurationSeconds.WithLabelValues(agent, method).Observe(duration.Seconds())
}

// ObserveFlow counts a completed pipeline flow by its terminal route
// ("executed" or "escalated").
func ObserveFlow(route string) {
	flowsTotal.WithLabelValues(route).Inc()
}
