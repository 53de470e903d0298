package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Capitalisk/capitalisk-dex-http-api/metric"
)

// invokeMetrics holds Prometheus metrics for bus invocations.
type invokeMetrics struct {
	invokes  *prometheus.CounterVec   // By action and outcome
	duration *prometheus.HistogramVec // By action
}

// newInvokeMetrics creates and registers invocation metrics with the provided registry.
func newInvokeMetrics(registry *metric.MetricsRegistry) (*invokeMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &invokeMetrics{
		invokes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dexapi",
			Subsystem: "engine",
			Name:      "invokes_total",
			Help:      "Total number of engine action invocations",
		}, []string{"action", "outcome"}), // outcome: ok, invalid, error, transport

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dexapi",
			Subsystem: "engine",
			Name:      "invoke_duration_seconds",
			Help:      "Engine invocation round-trip duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
		}, []string{"action"}),
	}

	if err := registry.RegisterCounterVec("engine", "invokes", m.invokes); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("engine", "invoke_duration", m.duration); err != nil {
		return nil, err
	}

	return m, nil
}

// recordInvoke records one invocation round-trip.
func (m *invokeMetrics) recordInvoke(action, outcome string, seconds float64) {
	if m == nil {
		return
	}

	m.invokes.WithLabelValues(action, outcome).Inc()
	m.duration.WithLabelValues(action).Observe(seconds)
}
