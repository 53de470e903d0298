// Package dexapi provides an HTTP gateway for a Capitalisk DEX market maker
// node, exposing the engine's actions as a REST API over an internal NATS
// request/reply bus.
//
// # Architecture
//
// The gateway is a thin translation layer: every HTTP request becomes exactly
// one bus invocation, and every response is either the engine's JSON passed
// through verbatim or a normalized exchange-style projection of it.
//
//	┌─────────────────────────────────────┐
//	│          HTTP Clients               │  Trading UIs, bots,
//	│   (REST, JSON, CORS, request IDs)   │  monitoring tools
//	└──────────────────┬──────────────────┘
//	                   ↓
//	┌─────────────────────────────────────┐
//	│         gateway/http                │  Route table, query
//	│  sanitize → invoke → render view    │  sanitizer, GDAX views,
//	│                                     │  error classification
//	└──────────────────┬──────────────────┘
//	                   ↓ request/reply on "<alias>.<action>"
//	┌─────────────────────────────────────┐
//	│         NATS Messaging              │  Circuit breaker,
//	│   (natsclient + engine invoker)     │  reconnect/backoff
//	└──────────────────┬──────────────────┘
//	                   ↓
//	┌──────────────┬──────────────────────┐
//	│  DEX Engine  │    Chain Adapters    │  Order book, matching,
//	│ (getOrders,  │ (getBlocksFromHeight,│  per-chain state
//	│  getStatus…) │  getTransaction…)    │
//	└──────────────┴──────────────────────┘
//
// Modules on the bus are addressed by alias: the DEX engine alias answers
// market and order actions, and the optional base/quote chain adapter aliases
// answer chain actions. Routes whose adapter alias is not configured stay
// registered but answer 501 without touching the bus, so a partially
// configured node degrades predictably.
//
// # Request Translation
//
// Three small, pure transformations define the gateway's behavior:
//
// Query sanitization: the URL query becomes the invocation payload with
// "limit" and "depth" parsed to integers when they parse cleanly, and the
// legacy "senderId"/"recipientId" keys renamed to "senderAddress"/
// "recipientAddress". Unparseable values pass through as strings and are left
// to engine-side validation.
//
// View normalization: order-book routes under /gdax/ reshape engine order
// records into the fixed GDAX-style shape (product_id, side, size,
// created_at, …) that standard exchange tooling expects. Numeric fields are
// carried as strings verbatim; the gateway never does monetary arithmetic.
//
// Error classification: invalid-query rejections from the engine surface as
// 400 with the engine's own message; every other failure collapses to a
// generic 500. Engine internals never leak to callers.
//
// # Startup
//
// At startup the gateway resolves its market identity (base and quote chain
// symbols) from the engine with a single getMarket invocation, then announces
// readiness on its own "<selfAlias>:bootstrap" channel. The market identity
// is immutable for the process lifetime.
//
// # Packages
//
// Gateway:
//   - gateway: shared route and configuration types
//   - gateway/http: the HTTP component (routes, sanitizer, views, CORS)
//
// Bus:
//   - engine: Command addressing, reply-envelope decoding, market fetch
//   - natsclient: NATS connection management with circuit breaker
//
// Infrastructure:
//   - config: layered JSON configuration with environment overrides
//   - errors: classified error handling (Transient / Invalid / Fatal)
//   - metric: Prometheus metrics and the metrics/health sidecar
//   - cmd/dex-http-api: process bootstrap and graceful shutdown
//
// # Usage
//
// Basic wiring:
//
//	// Connect to the bus
//	natsClient, _ := natsclient.NewClient("nats://localhost:4222")
//	natsClient.Connect(ctx)
//
//	// Resolve the market identity once
//	engineClient, _ := engine.NewClient(natsClient)
//	market, _ := engineClient.FetchMarket(ctx, "capitalisk-dex")
//
//	// Serve the REST surface
//	gw, _ := http.NewHTTPGateway(cfg, market, engineClient, logger)
//	gw.Start(ctx)
//
// # Design Principles
//
// One invocation per request:
//   - Exactly one bus exchange per HTTP request
//   - No retries; failed invocations surface immediately
//   - Timeouts bound every invocation
//
// Verbatim passthrough:
//   - Monetary values stay strings end to end
//   - Native routes return the engine's bytes untouched
//   - Unknown query parameters forward unchanged
//
// Stateless:
//   - No sessions, no caches, no persistence
//   - The market identity is the only startup-resolved value
//   - Restart safety comes from holding nothing
//
// # Binary
//
// Build and run the gateway:
//
//	# Run with a config file
//	./bin/dex-http-api --config configs/dex.json
//
//	# Layer a production override and enable debug logging
//	./bin/dex-http-api --config base.json --config prod.json --log-level debug
//
//	# Validate configuration without starting
//	./bin/dex-http-api --config configs/dex.json --validate
package dexapi
