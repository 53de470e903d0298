package natsclient

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Capitalisk/capitalisk-dex-http-api/metric"
)

// connectionMetrics holds Prometheus metrics for the NATS connection.
// Connection gauges live in the core metric set; request counts are owned here.
type connectionMetrics struct {
	core     *metric.Metrics
	requests *prometheus.CounterVec // request/reply exchanges by outcome
}

// newConnectionMetrics creates and registers connection metrics with the provided registry.
func newConnectionMetrics(registry *metric.MetricsRegistry) (*connectionMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &connectionMetrics{
		core: registry.CoreMetrics(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dexapi",
			Subsystem: "nats",
			Name:      "requests_total",
			Help:      "Total number of NATS request/reply exchanges",
		}, []string{"outcome"}),
	}

	if err := registry.RegisterCounterVec("nats", "requests", m.requests); err != nil {
		return nil, err
	}

	return m, nil
}

// recordStatus reflects a connection status change in the gauges.
func (m *connectionMetrics) recordStatus(status ConnectionStatus) {
	if m == nil {
		return
	}
	m.core.RecordNATSStatus(status == StatusConnected)
	if status == StatusCircuitOpen {
		m.core.RecordCircuitBreakerState(1)
	} else {
		m.core.RecordCircuitBreakerState(0)
	}
}

// recordReconnect counts a successful reconnection.
func (m *connectionMetrics) recordReconnect() {
	if m == nil {
		return
	}
	m.core.RecordNATSReconnect()
}

// recordRequest counts a request/reply exchange by outcome.
func (m *connectionMetrics) recordRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// updateStats samples connection health and RTT into the gauges.
// Called periodically by the background poller. Fails gracefully when disconnected.
func (m *connectionMetrics) updateStats(client *Client) {
	if m == nil {
		return
	}

	m.core.RecordNATSStatus(client.IsHealthy())

	if rtt, err := client.RTT(); err == nil {
		m.core.RecordNATSRTT(rtt)
	}
}

// startPoller starts a background goroutine that samples connection stats periodically.
// Returns a cancel function to stop the poller.
func (m *connectionMetrics) startPoller(ctx context.Context, client *Client, interval time.Duration) context.CancelFunc {
	if m == nil {
		return func() {} // No-op if metrics disabled
	}

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.updateStats(client)
			case <-ctx.Done():
				return
			}
		}
	}()

	return cancel
}
