package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Capitalisk/capitalisk-dex-http-api/engine"
	"github.com/Capitalisk/capitalisk-dex-http-api/gateway"
	"github.com/Capitalisk/capitalisk-dex-http-api/natsclient"
)

// Package-level shared test client to avoid Docker resource exhaustion
var (
	sharedTestClient *natsclient.TestClient
	sharedNATSClient *natsclient.Client
)

// TestMain sets up a single shared NATS container for the end-to-end gateway tests
func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TESTS") != "" {
		// Create a single shared test client for integration tests
		testClient, err := natsclient.NewSharedTestClient(
			natsclient.WithE2EDefaults(),
		)
		if err != nil {
			panic("Failed to create shared test client: " + err.Error())
		}

		sharedTestClient = testClient
		sharedNATSClient = testClient.Client
	}

	// Run all tests
	exitCode := m.Run()

	// Cleanup integration test resources if they were created
	if sharedTestClient != nil {
		sharedTestClient.Terminate()
	}

	os.Exit(exitCode)
}

// getSharedNATSClient returns the shared NATS client for integration tests
func getSharedNATSClient(t *testing.T) *natsclient.Client {
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test. Set INTEGRATION_TESTS=1 to run.")
	}
	if sharedNATSClient == nil {
		t.Fatal("Shared NATS client not initialized - TestMain should have created it")
	}
	return sharedNATSClient
}

// TestIntegration_GatewayAgainstLiveEngine drives real HTTP requests through
// the gateway into NATS responders standing in for the DEX engine.
func TestIntegration_GatewayAgainstLiveEngine(t *testing.T) {
	natsClient := getSharedNATSClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn := natsClient.GetConnection()

	marketSub, err := conn.Subscribe("capitalisk-dex.getMarket", func(msg *nats.Msg) {
		_ = msg.Respond([]byte(`{"result":{"baseSymbol":"clsk","quoteSymbol":"lsk"}}`))
	})
	require.NoError(t, err)
	defer marketSub.Unsubscribe()

	bidsSub, err := conn.Subscribe("capitalisk-dex.getBids", func(msg *nats.Msg) {
		_ = msg.Respond([]byte(
			`{"result":[{"orderId":"b1","price":0.9,"size":100,"side":"bid","timestamp":1633024800000}]}`,
		))
	})
	require.NoError(t, err)
	defer bidsSub.Unsubscribe()

	// Engine stand-in that validates its query: non-integer depth rejects
	// with the invalid-query tag.
	orderBookSub, err := conn.Subscribe("capitalisk-dex.getOrderBook", func(msg *nats.Msg) {
		var query map[string]any
		_ = json.Unmarshal(msg.Data, &query)
		if _, ok := query["depth"].(float64); !ok {
			_ = msg.Respond([]byte(
				`{"error":{"message":"invoke failed","source":{"name":"InvalidQueryError","message":"Depth must be an integer"}}}`,
			))
			return
		}
		_ = msg.Respond([]byte(`{"result":{"bids":[],"asks":[]}}`))
	})
	require.NoError(t, err)
	defer orderBookSub.Unsubscribe()

	engineClient, err := engine.NewClient(natsClient)
	require.NoError(t, err)

	market, err := engineClient.FetchMarket(ctx, "capitalisk-dex")
	require.NoError(t, err)
	require.Equal(t, "lsk-clsk", market.DisplayID())

	cfg := gateway.Config{
		Port:        8080,
		EngineAlias: "capitalisk-dex",
		SelfAlias:   "capitalisk-dex-http-api",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g, err := NewHTTPGateway(cfg, market, engineClient, logger)
	require.NoError(t, err)

	server := httptest.NewServer(g.Handler())
	defer server.Close()

	t.Run("native bids pass through", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/orders/bids?limit=10")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t,
			`[{"orderId":"b1","price":0.9,"size":100,"side":"bid","timestamp":1633024800000}]`,
			string(body))
	})

	t.Run("gdax bids are normalized", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/gdax/orders/bids")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var orders []GdaxOrder
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
		require.Len(t, orders, 1)
		assert.Equal(t, "buy", orders[0].Side)
		assert.Equal(t, "lsk-clsk", orders[0].ProductID)
		assert.Equal(t, "open", orders[0].Status)
		assert.False(t, orders[0].Settled)
	})

	t.Run("invalid depth surfaces as 400", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/order-book?depth=abc")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Invalid query: Depth must be an integer")
	})

	t.Run("integer depth passes validation", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/order-book?depth=20")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unconfigured chain route answers 501", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/chain/base/transaction", "application/json",
			strings.NewReader(`{"signed":"tx"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	})
}
