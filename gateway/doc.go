// Package gateway provides the shared types for the DEX HTTP gateway.
//
// The gateway bridges external REST clients and the NATS-only DEX engine:
// it accepts HTTP requests, sanitizes their query parameters, invokes the
// matching engine action over request/reply, and renders the reply either as
// native passthrough JSON or as the GDAX-style normalized exchange view.
//
// # Architecture
//
// One inbound request maps to exactly one bus invocation:
//
//	┌─────────────────┐
//	│  HTTP Client    │  GET /orders/bids?limit=10
//	└────────┬────────┘
//	         ↓
//	┌────────────────────────────────────────┐
//	│  HTTP Gateway (gateway/http)           │
//	│  route table → sanitize → invoke       │
//	└────────┬───────────────────────────────┘
//	         ↓ NATS Request/Reply  capitalisk-dex.getBids
//	┌────────────────────────────────────────┐
//	│  DEX Engine                            │
//	│  order book / matching / settlement    │
//	└────────────────────────────────────────┘
//
// # Route Declarations
//
// Routes are declarative RouteSpec values built once at startup: method,
// path, action, whether the query is sanitized, which view renders the
// result, and which bus module the action targets. The engine dependency is
// mandatory; base/quote chain dependencies are optional and their routes
// answer 501 while unconfigured.
//
// # Views
//
// Native routes pass the engine's result bytes through untouched, so numeric
// precision and field order survive exactly. The gdax views reshape order
// lists into the fixed normalized record; they are lossy display projections
// and never feed back into the engine.
//
// # Example Configuration
//
//	{
//	  "gateway": {
//	    "port": 8080,
//	    "engine_alias": "capitalisk-dex",
//	    "self_alias": "capitalisk-dex-http-api",
//	    "base_chain_alias": "clsk_chain",
//	    "quote_chain_alias": "lsk_chain",
//	    "enable_cors": true,
//	    "cors_origins": ["https://trade.example.com"],
//	    "invoke_timeout": "10s"
//	  }
//	}
//
// # Security
//
// The gateway supports:
//   - CORS with an explicit origin allowlist
//   - Request body size limits
//   - Invoke timeout limits per request
//
// Mutation control is enforced engine-side: the gateway forwards chain
// transaction bodies opaquely and adds no write semantics of its own.
package gateway
