package http

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Capitalisk/capitalisk-dex-http-api/metric"
)

// requestMetrics holds Prometheus metrics for inbound HTTP requests.
type requestMetrics struct {
	requests *prometheus.CounterVec   // By route, method, and status
	duration *prometheus.HistogramVec // By route
}

// newRequestMetrics creates and registers request metrics with the provided registry.
func newRequestMetrics(registry *metric.MetricsRegistry) (*requestMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &requestMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dexapi",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		}, []string{"route", "method", "status"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dexapi",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "HTTP request handling duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
		}, []string{"route"}),
	}

	if err := registry.RegisterCounterVec("gateway", "requests", m.requests); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("gateway", "request_duration", m.duration); err != nil {
		return nil, err
	}

	return m, nil
}

// recordRequest records one handled request.
func (m *requestMetrics) recordRequest(route, method string, status int, seconds float64) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(seconds)
}
