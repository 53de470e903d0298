// Package errors provides standardized error handling patterns for the DEX HTTP API.
//
// # Overview
//
// The errors package implements a three-class error classification system:
// Transient (temporary, may succeed later), Invalid (bad input, never retry),
// and Fatal (unrecoverable, stop processing).
//
// Classification lets the gateway decide how to surface a failure without
// hardcoded error string matching: invalid-input errors become caller-facing
// detail, transient bus failures become opaque server errors, and fatal
// configuration errors abort startup.
//
// # Error Classification
//
// Errors are classified based on their type or content:
//
//   - Transient: Network timeouts, connection issues, circuit breaker open
//   - Invalid: Malformed input, validation failures, bad queries
//   - Fatal: Bad or missing configuration, unrecoverable startup states
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for common conditions:
//
//	if !connected {
//	    return errors.ErrNoConnection
//	}
//
// Wrap errors with context:
//
//	if err := client.Invoke(ctx, cmd, payload); err != nil {
//	    return errors.WrapTransient(err, "Client", "Invoke", "bus request")
//	}
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// This format enables consistent log parsing and operational monitoring. The
// Wrap family of functions applies the pattern while carrying classification
// through the chain:
//
//	errors.WrapTransient(err, "Component", "Method", "action")  // Retryable by callers
//	errors.WrapInvalid(err, "Component", "Method", "action")    // Validation errors
//	errors.WrapFatal(err, "Component", "Method", "action")      // Unrecoverable errors
//
// The generic Wrap() ties context to the error without assigning a class:
//
//	errors.Wrap(err, "Component", "Method", "action")
package errors
