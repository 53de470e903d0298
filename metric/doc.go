// Package metric provides Prometheus-based metrics collection and an HTTP
// sidecar server for monitoring the DEX HTTP API gateway.
//
// The package offers a centralized metrics registry managing both core
// metrics (service status, NATS health, error counts) and component-specific
// metrics registered at construction time. It includes an HTTP server
// exposing metrics in Prometheus format alongside a liveness endpoint.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: process-level metrics automatically registered (Metrics type)
//  2. Component Registry: extensible registration for component metrics (MetricsRegistrar interface)
//  3. HTTP Server: metrics endpoint with a health check (Server type)
//
// This separates infrastructure concerns (NATS connectivity, error totals)
// from application concerns (request counters, invoke latency) while keeping
// a single scrape endpoint.
//
// # Basic Usage
//
// Setting up metrics collection and the HTTP sidecar:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry, gateway.Healthy)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Printf("metrics server error: %v", err)
//	    }
//	}()
//	defer server.Stop()
//
//	// Record core metrics
//	core := registry.CoreMetrics()
//	core.RecordServiceStatus("dex-http-api", 2)
//	core.RecordNATSStatus(true)
//
// The server exposes Prometheus-formatted metrics at
// http://localhost:9090/metrics and a health check at
// http://localhost:9090/health.
//
// # Core Metrics
//
// The registry automatically registers core metrics under the "dexapi"
// namespace:
//
//   - dexapi_service_status{service} - lifecycle state (0=stopped, 1=starting, 2=running, 3=stopping)
//   - dexapi_errors_total{service,type} - classified error counts
//   - dexapi_health_status{service} - health check results (1=healthy, 0=unhealthy)
//   - dexapi_nats_connected - NATS connection state
//   - dexapi_nats_rtt_milliseconds - NATS round-trip latency
//   - dexapi_nats_reconnects_total - NATS reconnection count
//   - dexapi_nats_circuit_breaker - circuit breaker state (0=closed, 1=open, 2=half-open)
//
// Access core metrics through the registry:
//
//	core := registry.CoreMetrics()
//	core.RecordServiceStatus("dex-http-api", 2)
//	core.RecordError("gateway", "transient")
//	core.RecordNATSStatus(true)
//	core.RecordNATSRTT(rtt)
//
// # Component Metrics
//
// Components register their own labelled metrics through the registry. The
// gateway records per-route request counts and the engine client records
// invoke latency; both register during construction:
//
//	requests := prometheus.NewCounterVec(
//	    prometheus.CounterOpts{
//	        Namespace: "dexapi",
//	        Subsystem: "gateway",
//	        Name:      "requests_total",
//	        Help:      "Total HTTP requests by route, method, and status.",
//	    },
//	    []string{"route", "method", "status"},
//	)
//	if err := registry.RegisterCounterVec("gateway", "requests", requests); err != nil {
//	    return err
//	}
//
// # MetricsRegistrar Interface
//
// Components depend on the MetricsRegistrar interface rather than the
// concrete registry, which keeps construction testable:
//
//	func NewHTTPGateway(..., opts ...Option) (*HTTPGateway, error) {
//	    // WithMetrics(registry) wires a MetricsRegistrar in
//	}
//
// # HTTP Server
//
// The sidecar serves three endpoints:
//
//   - GET /         - HTML index linking the other endpoints
//   - GET /metrics  - Prometheus-formatted metrics (path configurable)
//   - GET /health   - liveness probe, 200 when the healthy callback passes
//
// The healthy callback is optional; when nil the health endpoint always
// reports healthy. The process wires it to the gateway and NATS client so a
// dead bus connection turns the probe red.
//
// # Thread Safety
//
// All registry operations are safe for concurrent use. Registration methods
// take a mutex; metric recording is lock-free per the Prometheus client
// guarantees.
package metric
