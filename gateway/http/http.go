// Package http serves the REST surface of the DEX gateway. Each route is a
// thin translation: sanitize the query (or forward the body), make exactly
// one bus invocation, and render the result either natively or reshaped into
// the normalized exchange view. Failures classify to an HTTP status and a
// terminal JSON error body; engine internals never leak to callers.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Capitalisk/capitalisk-dex-http-api/engine"
	"github.com/Capitalisk/capitalisk-dex-http-api/errors"
	"github.com/Capitalisk/capitalisk-dex-http-api/gateway"
	"github.com/Capitalisk/capitalisk-dex-http-api/metric"
)

// HTTPGateway serves the REST API, translating each request into a single
// engine invocation. The route table and market identity are fixed at
// construction and never mutated; handlers share no other state.
type HTTPGateway struct {
	config  gateway.Config
	market  engine.MarketIdentity
	invoker engine.Invoker
	routes  []gateway.RouteSpec
	logger  *slog.Logger
	metrics *requestMetrics

	server  *http.Server
	running atomic.Bool
}

// Option configures an HTTPGateway during construction.
type Option func(*HTTPGateway) error

// WithMetrics enables Prometheus request metrics on the provided registry.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(g *HTTPGateway) error {
		m, err := newRequestMetrics(registry)
		if err != nil {
			return errors.Wrap(err, "HTTPGateway", "WithMetrics", "register request metrics")
		}
		g.metrics = m
		return nil
	}
}

// NewHTTPGateway builds a gateway from the configuration, the market identity
// resolved at startup, and the bus invoker. The configuration is validated
// and defaulted before use.
func NewHTTPGateway(cfg gateway.Config, market engine.MarketIdentity, invoker engine.Invoker, logger *slog.Logger, opts ...Option) (*HTTPGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "HTTPGateway", "NewHTTPGateway", "config validation")
	}
	if invoker == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "HTTPGateway", "NewHTTPGateway", "invoker is required")
	}
	if market.BaseSymbol == "" || market.QuoteSymbol == "" {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "HTTPGateway", "NewHTTPGateway", "market identity is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	routes := buildRoutes()
	for i := range routes {
		if err := routes[i].Validate(); err != nil {
			return nil, errors.Wrap(err, "HTTPGateway", "NewHTTPGateway",
				fmt.Sprintf("route %s %s", routes[i].Method, routes[i].Path))
		}
	}

	g := &HTTPGateway{
		config:  cfg,
		market:  market,
		invoker: invoker,
		routes:  routes,
		logger:  logger,
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Handler returns the gateway's routing handler with every route registered.
// Start serves it; tests can drive it directly.
func (g *HTTPGateway) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, route := range g.routes {
		mux.HandleFunc(route.Path, g.createRouteHandler(route))
	}
	return mux
}

// Start begins serving on the configured port. The listener runs in a
// background goroutine; Start returns once it is launched.
func (g *HTTPGateway) Start(_ context.Context) error {
	if !g.running.CompareAndSwap(false, true) {
		return errors.Wrap(errors.ErrAlreadyStarted, "HTTPGateway", "Start", "gateway already running")
	}

	tlsConfig, err := gateway.LoadTLSConfig(g.config.TLS)
	if err != nil {
		g.running.Store(false)
		return errors.Wrap(err, "HTTPGateway", "Start", "load TLS config")
	}

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", g.config.Port),
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		// Empty cert/key paths because the certificate is already loaded
		// into TLSConfig
		var err error
		if tlsConfig != nil {
			err = g.server.ListenAndServeTLS("", "")
		} else {
			err = g.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			g.logger.Error("HTTP server terminated", "error", err)
		}
	}()

	g.logger.Info("HTTP gateway listening",
		"port", g.config.Port,
		"routes", len(g.routes),
		"market", g.market.DisplayID(),
		"tls", tlsConfig != nil,
	)

	return nil
}

// Stop gracefully shuts the server down, draining in-flight requests until
// ctx expires. Stopping a gateway that never started is a no-op.
func (g *HTTPGateway) Stop(ctx context.Context) error {
	if !g.running.CompareAndSwap(true, false) {
		return nil
	}
	if g.server == nil {
		return nil
	}

	if err := g.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "HTTPGateway", "Stop", "server shutdown")
	}

	g.logger.Info("HTTP gateway stopped")
	return nil
}

// Healthy reports whether the gateway is serving.
func (g *HTTPGateway) Healthy() bool {
	return g.running.Load()
}

// createRouteHandler builds the handler for one route. The wrapper assigns
// the request ID and records request metrics; handleRoute does the work and
// reports the terminal status.
func (g *HTTPGateway) createRouteHandler(route gateway.RouteSpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := getOrGenerateRequestID(r)
		w.Header().Set("X-Request-ID", requestID)

		status := g.handleRoute(w, r, route, requestID)

		g.metrics.recordRequest(route.Path, r.Method, status, time.Since(start).Seconds())
	}
}

// handleRoute runs the full translation for one request: CORS, method check,
// dependency gate, payload build, one bus invocation, view rendering. Every
// path writes exactly one terminal response and returns its status code.
func (g *HTTPGateway) handleRoute(w http.ResponseWriter, r *http.Request, route gateway.RouteSpec, requestID string) int {
	if g.config.EnableCORS {
		g.applyCORS(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return http.StatusNoContent
		}
	}

	if r.Method != route.Method {
		g.writeError(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("method %s not allowed", r.Method))
		return http.StatusMethodNotAllowed
	}

	// Chain routes stay registered when their dependency alias is
	// unconfigured; they declare themselves unsupported instead of invoking.
	alias := g.config.AliasFor(route.Dependency)
	if alias == "" {
		g.writeError(w, http.StatusNotImplemented,
			fmt.Sprintf("the %s dependency of this route is not configured on this node", route.Dependency))
		return http.StatusNotImplemented
	}

	var payload []byte
	if route.ForwardBody {
		defer r.Body.Close()

		// Read one byte past the limit to detect oversized bodies.
		maxSize := g.config.MaxRequestSize
		body, err := io.ReadAll(io.LimitReader(r.Body, maxSize+1))
		if err != nil {
			g.writeError(w, http.StatusBadRequest, "failed to read request body")
			return http.StatusBadRequest
		}
		if int64(len(body)) > maxSize {
			g.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds maximum size of %d bytes", maxSize))
			return http.StatusRequestEntityTooLarge
		}
		payload = body
	} else {
		raw := flattenQuery(r.URL.Query())
		var params any = raw
		if route.Sanitize {
			params = SanitizeQuery(raw)
		}
		data, err := json.Marshal(params)
		if err != nil {
			return g.failRequest(w, route, requestID, err)
		}
		payload = data
	}

	ctx, cancel := context.WithTimeout(r.Context(), g.config.InvokeTimeout())
	defer cancel()

	cmd := engine.Command{Alias: alias, Action: route.Action}

	g.logger.Debug("invoking engine action",
		"request_id", requestID,
		"command", cmd.String(),
		"path", r.URL.Path,
	)

	result, err := g.invoker.Invoke(ctx, cmd, payload)
	if err != nil {
		return g.failRequest(w, route, requestID, err)
	}

	body, err := g.renderView(route.View, result)
	if err != nil {
		return g.failRequest(w, route, requestID, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		g.logger.Warn("failed to write response",
			"request_id", requestID,
			"route", route.Path,
			"error", err,
		)
	}

	return http.StatusOK
}

// failRequest classifies a handler failure, logs it, and writes the terminal
// error response. This is the only place handler failures are observed; they
// never propagate further and nothing retries.
func (g *HTTPGateway) failRequest(w http.ResponseWriter, route gateway.RouteSpec, requestID string, err error) int {
	status, message := classify(err)

	g.logger.Warn("request failed",
		"request_id", requestID,
		"route", route.Path,
		"action", route.Action,
		"status", status,
		"error", err,
	)

	g.writeError(w, status, message)
	return status
}

// renderView renders the invocation result for the route's view. Native
// passes the engine's bytes through untouched; the gdax views decode the
// result as an order list and project it into the normalized exchange shape.
func (g *HTTPGateway) renderView(view gateway.View, result json.RawMessage) ([]byte, error) {
	if view == gateway.ViewNative || view == "" {
		if len(result) == 0 {
			return []byte("null"), nil
		}
		return result, nil
	}

	var records []OrderRecord
	if err := json.Unmarshal(result, &records); err != nil {
		return nil, errors.Wrap(err, "HTTPGateway", "renderView", "decode order records")
	}

	var side string
	switch view {
	case gateway.ViewGdaxBuy:
		side = "buy"
	case gateway.ViewGdaxSell:
		side = "sell"
	}

	data, err := json.Marshal(toGdaxOrders(records, side, g.market.DisplayID()))
	if err != nil {
		return nil, errors.Wrap(err, "HTTPGateway", "renderView", "encode normalized orders")
	}
	return data, nil
}

// applyCORS sets CORS headers when the request origin is allowed. The
// wildcard origin echoes the caller's origin when one is present.
func (g *HTTPGateway) applyCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")

	allowed := ""
	for _, allowedOrigin := range g.config.CORSOrigins {
		if allowedOrigin == "*" {
			if origin != "" {
				allowed = origin
			} else {
				allowed = "*"
			}
			break
		}
		if allowedOrigin == origin {
			allowed = origin
			break
		}
	}

	if allowed == "" {
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", allowed)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeError writes the JSON error body shared by every failure response.
func (g *HTTPGateway) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"error":  message,
		"status": statusCode,
	}

	data, _ := json.Marshal(response)
	_, _ = w.Write(data)
}

// getOrGenerateRequestID extracts the request ID from the X-Request-ID header
// or generates a new one.
func getOrGenerateRequestID(r *http.Request) string {
	if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
		return requestID
	}
	return uuid.NewString()
}
