package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/Capitalisk/capitalisk-dex-http-api/engine"
	"github.com/Capitalisk/capitalisk-dex-http-api/gateway"
	"github.com/Capitalisk/capitalisk-dex-http-api/metric"
)

// fakeInvoker scripts invocation results per action and records every call.
type fakeInvoker struct {
	mu        sync.Mutex
	commands  []engine.Command
	payloads  [][]byte
	results   map[string]json.RawMessage
	errs      map[string]error
	announced []engine.Command
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{
		results: make(map[string]json.RawMessage),
		errs:    make(map[string]error),
	}
}

func (f *fakeInvoker) Invoke(_ context.Context, cmd engine.Command, payload []byte) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, cmd)
	f.payloads = append(f.payloads, payload)

	if err := f.errs[cmd.Action]; err != nil {
		return nil, err
	}
	if result, ok := f.results[cmd.Action]; ok {
		return result, nil
	}
	return nil, nil
}

func (f *fakeInvoker) Announce(_ context.Context, cmd engine.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.announced = append(f.announced, cmd)
	return nil
}

func (f *fakeInvoker) invokeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.commands)
}

func testConfig() gateway.Config {
	return gateway.Config{
		Port:        8080,
		EngineAlias: "capitalisk-dex",
		SelfAlias:   "capitalisk-dex-http-api",
	}
}

func newTestGateway(t *testing.T, cfg gateway.Config, invoker engine.Invoker, opts ...Option) *HTTPGateway {
	t.Helper()

	market := engine.MarketIdentity{BaseSymbol: "clsk", QuoteSymbol: "lsk"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	g, err := NewHTTPGateway(cfg, market, invoker, logger, opts...)
	if err != nil {
		t.Fatalf("NewHTTPGateway failed: %v", err)
	}
	return g
}

func TestRouteHandler_NativeBids(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.results["getBids"] = json.RawMessage(
		`[{"orderId":"b1","price":0.9,"size":100,"side":"bid","timestamp":1633024800000},` +
			`{"orderId":"b2","price":0.89,"size":50,"side":"bid","timestamp":1633024801000},` +
			`{"orderId":"b3","price":0.88,"size":25,"side":"bid","timestamp":1633024802000}]`)
	g := newTestGateway(t, testConfig(), invoker)

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/orders/bids?limit=10", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var records []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 native records, got %d", len(records))
	}
	// Native view passes the engine's shape through untouched.
	if records[0]["orderId"] != "b1" {
		t.Errorf("native shape altered: %v", records[0])
	}

	if invoker.invokeCount() != 1 {
		t.Fatalf("expected exactly one invocation, got %d", invoker.invokeCount())
	}
	if invoker.commands[0].String() != "capitalisk-dex:getBids" {
		t.Errorf("unexpected command %q", invoker.commands[0].String())
	}

	var payload map[string]any
	if err := json.Unmarshal(invoker.payloads[0], &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload["limit"] != float64(10) {
		t.Errorf("expected sanitized limit 10, got %v", payload["limit"])
	}
}

func TestRouteHandler_StatusQueryUnsanitized(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.results["getStatus"] = json.RawMessage(`{"version":"1.2.0"}`)
	g := newTestGateway(t, testConfig(), invoker)

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/status?limit=5", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(invoker.payloads[0], &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	// The status route forwards query values verbatim as strings.
	if payload["limit"] != "5" {
		t.Errorf("expected string limit %q, got %v", "5", payload["limit"])
	}
}

func TestRouteHandler_GdaxBids(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.results["getBids"] = json.RawMessage(
		`[{"orderId":"b1","price":0.9,"size":100,"side":"bid","timestamp":1},` +
			`{"orderId":"b2","price":0.89,"sizeRemaining":20,"size":50,"side":"bid","timestamp":2}]`)
	g := newTestGateway(t, testConfig(), invoker)

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/gdax/orders/bids", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var orders []GdaxOrder
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatalf("response is not a GDAX order array: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	for i, order := range orders {
		if order.Side != "buy" {
			t.Errorf("order %d: expected side buy, got %q", i, order.Side)
		}
		if order.ProductID != "lsk-clsk" {
			t.Errorf("order %d: expected product_id lsk-clsk, got %q", i, order.ProductID)
		}
		if order.Status != "open" || order.Settled {
			t.Errorf("order %d: expected open and unsettled, got %q settled=%v", i, order.Status, order.Settled)
		}
	}
	if orders[1].Size != "20" {
		t.Errorf("expected remaining size 20, got %q", orders[1].Size)
	}
}

func TestRouteHandler_GdaxMixedDerivesSides(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.results["getOrders"] = json.RawMessage(
		`[{"orderId":"a1","price":1.1,"size":10,"side":"ask","timestamp":1},` +
			`{"orderId":"b1","price":0.9,"size":10,"side":"bid","timestamp":2}]`)
	g := newTestGateway(t, testConfig(), invoker)

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/gdax/orders", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var orders []GdaxOrder
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if orders[0].Side != "sell" || orders[1].Side != "buy" {
		t.Errorf("expected derived sides sell/buy, got %q/%q", orders[0].Side, orders[1].Side)
	}

	// One combined invocation, never sequential bids+asks calls.
	if invoker.invokeCount() != 1 {
		t.Errorf("expected one combined invocation, got %d", invoker.invokeCount())
	}
}

func TestRouteHandler_InvalidQuery(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.errs["getOrderBook"] = &engine.InvokeError{
		Command: engine.Command{Alias: "capitalisk-dex", Action: "getOrderBook"},
		Message: "Action failed",
		Source:  &engine.SourceError{Name: engine.InvalidQueryErrorName, Message: "Depth must be an integer"},
	}
	g := newTestGateway(t, testConfig(), invoker)

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/order-book?depth=abc", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if body["error"] != "Invalid query: Depth must be an integer" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
	if body["status"] != float64(http.StatusBadRequest) {
		t.Errorf("unexpected status field: %v", body["status"])
	}
}

func TestRouteHandler_EngineFailureIsOpaque(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.errs["getBids"] = &engine.InvokeError{
		Command: engine.Command{Alias: "capitalisk-dex", Action: "getBids"},
		Message: "matching engine is rebuilding its snapshot from block 18234112",
	}
	g := newTestGateway(t, testConfig(), invoker)

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/orders/bids", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Server error") {
		t.Errorf("expected opaque body, got %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "snapshot") {
		t.Errorf("internal detail leaked: %s", w.Body.String())
	}
}

func TestRouteHandler_MalformedGdaxResult(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.results["getOrders"] = json.RawMessage(`{"not":"an array"}`)
	g := newTestGateway(t, testConfig(), invoker)

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/gdax/orders", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Server error") {
		t.Errorf("expected opaque body, got %s", w.Body.String())
	}
}

func TestRouteHandler_ChainRouteUnconfigured(t *testing.T) {
	invoker := newFakeInvoker()
	g := newTestGateway(t, testConfig(), invoker) // No chain aliases

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/chain/base/transaction",
		bytes.NewReader([]byte(`{"signed":"tx"}`))))

	if w.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", w.Code)
	}
	if invoker.invokeCount() != 0 {
		t.Errorf("unconfigured chain route must not touch the bus, got %d invocations", invoker.invokeCount())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if body["status"] != float64(http.StatusNotImplemented) {
		t.Errorf("unexpected status field: %v", body["status"])
	}
}

func TestRouteHandler_ChainRouteForwardsBody(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.results["postTransaction"] = json.RawMessage(`{"accepted":true}`)

	cfg := testConfig()
	cfg.BaseChainAlias = "capitalisk-chain"
	g := newTestGateway(t, cfg, invoker)

	signedTx := `{"type":0,"senderPublicKey":"ab12","signature":"cd34"}`
	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/chain/base/transaction",
		bytes.NewReader([]byte(signedTx))))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if invoker.commands[0].String() != "capitalisk-chain:postTransaction" {
		t.Errorf("unexpected command %q", invoker.commands[0].String())
	}
	if string(invoker.payloads[0]) != signedTx {
		t.Errorf("body not forwarded verbatim: %s", invoker.payloads[0])
	}
}

func TestRouteHandler_BodyTooLarge(t *testing.T) {
	invoker := newFakeInvoker()

	cfg := testConfig()
	cfg.BaseChainAlias = "capitalisk-chain"
	cfg.MaxRequestSize = 1024
	g := newTestGateway(t, cfg, invoker)

	oversized := bytes.Repeat([]byte("x"), 2048)
	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/chain/base/transaction",
		bytes.NewReader(oversized)))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	if invoker.invokeCount() != 0 {
		t.Errorf("oversized request must not reach the bus")
	}
}

func TestRouteHandler_MethodNotAllowed(t *testing.T) {
	invoker := newFakeInvoker()
	g := newTestGateway(t, testConfig(), invoker)

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/orders/bids", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if invoker.invokeCount() != 0 {
		t.Errorf("rejected method must not reach the bus")
	}
}

func TestRouteHandler_CORSPreflight(t *testing.T) {
	invoker := newFakeInvoker()

	cfg := testConfig()
	cfg.EnableCORS = true
	cfg.CORSOrigins = []string{"https://trade.example.com"}
	g := newTestGateway(t, cfg, invoker)

	req := httptest.NewRequest("OPTIONS", "/orders/bids", nil)
	req.Header.Set("Origin", "https://trade.example.com")
	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "https://trade.example.com" {
		t.Errorf("expected allowed origin echoed, got %q", origin)
	}
	if invoker.invokeCount() != 0 {
		t.Errorf("preflight must not reach the bus")
	}
}

func TestRouteHandler_CORSDisallowedOrigin(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.results["getBids"] = json.RawMessage(`[]`)

	cfg := testConfig()
	cfg.EnableCORS = true
	cfg.CORSOrigins = []string{"https://trade.example.com"}
	g := newTestGateway(t, cfg, invoker)

	req := httptest.NewRequest("GET", "/orders/bids", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "" {
		t.Errorf("expected no CORS headers for disallowed origin, got %q", origin)
	}
}

func TestRouteHandler_RequestID(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.results["getStatus"] = json.RawMessage(`{}`)
	g := newTestGateway(t, testConfig(), invoker)

	// Incoming IDs pass through.
	req := httptest.NewRequest("GET", "/status", nil)
	req.Header.Set("X-Request-ID", "trace-12345")
	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, req)

	if id := w.Header().Get("X-Request-ID"); id != "trace-12345" {
		t.Errorf("expected request ID passthrough, got %q", id)
	}

	// Absent IDs are generated.
	w = httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/status", nil))

	if id := w.Header().Get("X-Request-ID"); id == "" {
		t.Error("expected generated request ID")
	}
}

func TestRouteHandler_EmptyNativeResult(t *testing.T) {
	invoker := newFakeInvoker()
	g := newTestGateway(t, testConfig(), invoker)

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "null" {
		t.Errorf("expected null body for empty result, got %s", w.Body.String())
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	g := newTestGateway(t, testConfig(), newFakeInvoker())

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/does-not-exist", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestNewHTTPGateway_Validation(t *testing.T) {
	market := engine.MarketIdentity{BaseSymbol: "clsk", QuoteSymbol: "lsk"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.Port = 0
		if _, err := NewHTTPGateway(cfg, market, newFakeInvoker(), logger); err == nil {
			t.Error("expected error for invalid port")
		}
	})

	t.Run("nil invoker", func(t *testing.T) {
		if _, err := NewHTTPGateway(testConfig(), market, nil, logger); err == nil {
			t.Error("expected error for nil invoker")
		}
	})

	t.Run("incomplete market identity", func(t *testing.T) {
		if _, err := NewHTTPGateway(testConfig(), engine.MarketIdentity{BaseSymbol: "clsk"}, newFakeInvoker(), logger); err == nil {
			t.Error("expected error for incomplete market identity")
		}
	})
}

func TestStartStop(t *testing.T) {
	g := newTestGateway(t, testConfig(), newFakeInvoker())
	g.config.Port = 0 // Ephemeral port for the lifecycle test

	if g.Healthy() {
		t.Error("gateway must not report healthy before Start")
	}

	ctx := context.Background()
	if err := g.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !g.Healthy() {
		t.Error("gateway must report healthy after Start")
	}

	if err := g.Start(ctx); err == nil {
		t.Error("expected error on double Start")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := g.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if g.Healthy() {
		t.Error("gateway must not report healthy after Stop")
	}

	if err := g.Stop(stopCtx); err != nil {
		t.Errorf("second Stop must be a no-op, got %v", err)
	}
}

func TestRouteHandler_RecordsMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	invoker := newFakeInvoker()
	invoker.results["getBids"] = json.RawMessage(`[]`)
	g := newTestGateway(t, testConfig(), invoker, WithMetrics(registry))

	w := httptest.NewRecorder()
	g.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/orders/bids", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	families, err := registry.PrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	var requests *dto.MetricFamily
	for _, family := range families {
		if family.GetName() == "dexapi_gateway_requests_total" {
			requests = family
		}
	}
	if requests == nil {
		t.Fatal("dexapi_gateway_requests_total not registered")
	}

	found := false
	for _, m := range requests.GetMetric() {
		labels := map[string]string{}
		for _, label := range m.GetLabel() {
			labels[label.GetName()] = label.GetValue()
		}
		if labels["route"] == "/orders/bids" && labels["method"] == "GET" && labels["status"] == "200" {
			found = true
			if m.GetCounter().GetValue() != 1 {
				t.Errorf("expected counter 1, got %f", m.GetCounter().GetValue())
			}
		}
	}
	if !found {
		t.Error("expected requests_total sample for GET /orders/bids 200")
	}
}
