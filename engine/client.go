package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Capitalisk/capitalisk-dex-http-api/errors"
	"github.com/Capitalisk/capitalisk-dex-http-api/metric"
	"github.com/Capitalisk/capitalisk-dex-http-api/natsclient"
)

// Invoker is the bus surface the HTTP gateway consumes. Invoke performs one
// request/reply exchange per call; Announce is a fire-and-forget publish used
// exactly once at startup.
type Invoker interface {
	Invoke(ctx context.Context, cmd Command, payload []byte) (json.RawMessage, error)
	Announce(ctx context.Context, cmd Command) error
}

// bus is the transport surface Client needs from the NATS layer.
type bus interface {
	Request(ctx context.Context, subject string, data []byte) ([]byte, error)
	Publish(ctx context.Context, subject string, data []byte) error
}

// Client invokes DEX engine and chain adapter actions over NATS request/reply.
type Client struct {
	bus     bus
	metrics *invokeMetrics
}

// Option is a functional option for configuring the Client
type Option func(*Client) error

// WithMetrics enables invocation metrics collection using the provided registry.
// Tracks invocation counts by action and outcome, and round-trip latency.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(c *Client) error {
		if registry == nil {
			return nil // No metrics
		}

		metrics, err := newInvokeMetrics(registry)
		if err != nil {
			return err
		}

		c.metrics = metrics
		return nil
	}
}

// NewClient creates an engine client over an established NATS connection.
// Request timeouts and circuit breaking live in the NATS layer; this client
// adds envelope handling and never retries.
func NewClient(nc *natsclient.Client, opts ...Option) (*Client, error) {
	c := &Client{bus: nc}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// emptyPayload is sent for actions invoked without parameters.
var emptyPayload = []byte("{}")

// replyEnvelope is the wire shape every engine action answers with.
type replyEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *wireError      `json:"error"`
}

// wireError is the envelope's error object. Source identifies the engine-side
// error that caused the failure.
type wireError struct {
	Message string       `json:"message"`
	Source  *SourceError `json:"source"`
}

// Invoke sends one request on the command's subject and decodes the reply
// envelope. A reply carrying an error decodes to *InvokeError: invalid-query
// rejections wrap as Invalid, everything else as Transient. Exactly one bus
// exchange per call; failed invocations are never retried.
func (c *Client) Invoke(ctx context.Context, cmd Command, payload []byte) (json.RawMessage, error) {
	if len(payload) == 0 {
		payload = emptyPayload
	}

	start := time.Now()

	data, err := c.bus.Request(ctx, cmd.Subject(), payload)
	if err != nil {
		c.metrics.recordInvoke(cmd.Action, "transport", time.Since(start).Seconds())
		return nil, errors.WrapTransient(err, "engine", "Invoke", fmt.Sprintf("request %s", cmd))
	}

	var envelope replyEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.metrics.recordInvoke(cmd.Action, "error", time.Since(start).Seconds())
		return nil, errors.WrapInvalid(err, "engine", "Invoke", fmt.Sprintf("decode %s reply", cmd))
	}

	if envelope.Error != nil {
		invokeErr := &InvokeError{
			Command: cmd,
			Message: envelope.Error.Message,
			Source:  envelope.Error.Source,
		}
		if invokeErr.InvalidQuery() {
			c.metrics.recordInvoke(cmd.Action, "invalid", time.Since(start).Seconds())
			return nil, errors.WrapInvalid(invokeErr, "engine", "Invoke", fmt.Sprintf("invoke %s", cmd))
		}
		c.metrics.recordInvoke(cmd.Action, "error", time.Since(start).Seconds())
		return nil, errors.WrapTransient(invokeErr, "engine", "Invoke", fmt.Sprintf("invoke %s", cmd))
	}

	c.metrics.recordInvoke(cmd.Action, "ok", time.Since(start).Seconds())
	return envelope.Result, nil
}

// Announce publishes a fire-and-forget notification on the command's display
// channel. The bootstrap channel is addressed by the colon form
// ("<alias>:bootstrap"), not a request subject; nothing listens for a reply.
func (c *Client) Announce(ctx context.Context, cmd Command) error {
	if err := c.bus.Publish(ctx, cmd.String(), nil); err != nil {
		return errors.WrapTransient(err, "engine", "Announce", fmt.Sprintf("publish %s", cmd))
	}
	return nil
}
