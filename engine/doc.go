// Package engine provides the bus-invocation layer between the HTTP gateway
// and the DEX engine.
//
// The DEX engine and its chain adapters are reachable only over NATS. Every
// module instance is addressed by an alias, every operation by an action name;
// together they form a Command such as "capitalisk-dex:getOrderBook". The
// gateway performs exactly one invocation per inbound HTTP request and never
// retries a failed one.
//
// # Invocation Model
//
// An invocation is a NATS request/reply exchange:
//
//	Subject:  <alias>.<action>          (Command.Subject)
//	Display:  <alias>:<action>          (Command.String)
//	Payload:  JSON object ({} when the action takes no parameters)
//
// The announce channel is the one place the colon form appears on the wire:
// at startup the gateway publishes a fire-and-forget message on
// "<selfAlias>:bootstrap" to signal readiness, and nothing replies.
//
// # Reply Envelope
//
// Every action answers with the same envelope shape:
//
//	{
//	  "result": <JSON>,
//	  "error": {
//	    "message": "...",
//	    "source": { "name": "InvalidQueryError", "message": "..." }
//	  }
//	}
//
// A reply with a non-null error decodes to *InvokeError. The source error
// name "InvalidQueryError" tags rejections caused by bad request parameters;
// those wrap as Invalid classified errors and surface as 400 at the HTTP
// layer. Every other engine-reported failure wraps as Transient and surfaces
// as 500.
//
// # Usage
//
// Creating a client and resolving the market at startup:
//
//	invoker, err := engine.NewClient(natsClient,
//	    engine.WithMetrics(metricsRegistry),
//	)
//	if err != nil {
//	    return err
//	}
//
//	market, err := invoker.FetchMarket(ctx, cfg.EngineAlias)
//	if err != nil {
//	    return err // fatal: do not serve without a market identity
//	}
//
//	if err := invoker.Announce(ctx, engine.Command{
//	    Alias:  cfg.SelfAlias,
//	    Action: engine.ActionBootstrap,
//	}); err != nil {
//	    logger.Warn("bootstrap announce failed", "error", err)
//	}
//
// Invoking an action from a request handler:
//
//	cmd := engine.Command{Alias: cfg.EngineAlias, Action: "getBids"}
//	result, err := invoker.Invoke(ctx, cmd, payload)
//	if err != nil {
//	    var invokeErr *engine.InvokeError
//	    if errors.As(err, &invokeErr) && invokeErr.InvalidQuery() {
//	        // caller's fault: 400 with the source message
//	    }
//	    // otherwise: 500
//	}
//
// # Error Handling
//
// Failures map onto the classified error taxonomy:
//
//	transport failure (timeout, circuit open)  → Transient
//	malformed reply envelope                   → Invalid
//	engine error, source InvalidQueryError     → Invalid, InvokeError.InvalidQuery() == true
//	engine error, any other source             → Transient
//	market identity fetch failure              → Fatal (aborts startup)
//
// The HTTP layer unwraps with errors.As to *InvokeError so its 400 decision
// depends only on the invalid-query tag, never on message text.
package engine
