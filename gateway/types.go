package gateway

import (
	"fmt"
	"strings"
	"time"

	"github.com/Capitalisk/capitalisk-dex-http-api/errors"
)

// View selects how a route renders the engine's result.
type View string

// Route views. Native passes the result bytes through untouched; the gdax
// views reshape order lists into the normalized exchange format with a fixed,
// derived, or mixed side.
const (
	ViewNative    View = "native"
	ViewGdaxBuy   View = "gdaxBuy"
	ViewGdaxSell  View = "gdaxSell"
	ViewGdaxMixed View = "gdaxMixed"
)

// Dependency names the bus-addressable module a route invokes.
type Dependency string

// Route dependencies. Chain dependencies are optional; routes bound to an
// unconfigured chain alias answer 501 without touching the bus.
const (
	DependencyEngine     Dependency = "engine"
	DependencyBaseChain  Dependency = "baseChain"
	DependencyQuoteChain Dependency = "quoteChain"
)

// RouteSpec declares one HTTP endpoint and the action it invokes
type RouteSpec struct {
	// Method is the HTTP method (GET, POST)
	Method string `json:"method"`

	// Path is the HTTP route path (e.g., "/orders/bids")
	Path string `json:"path"`

	// Action is the bus action name the route invokes (e.g., "getBids")
	Action string `json:"action"`

	// Sanitize applies query sanitization before the payload is built
	Sanitize bool `json:"sanitize,omitempty"`

	// View selects the response rendering (default: native)
	View View `json:"view,omitempty"`

	// Dependency selects the invoked module (default: engine)
	Dependency Dependency `json:"dependency,omitempty"`

	// ForwardBody forwards the request body as the invoke payload unmodified
	ForwardBody bool `json:"forward_body,omitempty"`
}

// Validate ensures the route spec is valid and applies defaults
func (r *RouteSpec) Validate() error {
	if r.Path == "" || !strings.HasPrefix(r.Path, "/") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "RouteSpec", "Validate",
			fmt.Sprintf("path must start with /: %q", r.Path))
	}

	validMethods := map[string]bool{
		"GET":    true,
		"POST":   true,
		"PUT":    true,
		"DELETE": true,
		"PATCH":  true,
	}
	if !validMethods[r.Method] {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "RouteSpec", "Validate",
			fmt.Sprintf("invalid HTTP method: %s", r.Method))
	}

	if r.Action == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "RouteSpec", "Validate",
			"action cannot be empty")
	}

	if r.View == "" {
		r.View = ViewNative
	}
	switch r.View {
	case ViewNative, ViewGdaxBuy, ViewGdaxSell, ViewGdaxMixed:
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "RouteSpec", "Validate",
			fmt.Sprintf("invalid view: %s", r.View))
	}

	if r.Dependency == "" {
		r.Dependency = DependencyEngine
	}
	switch r.Dependency {
	case DependencyEngine, DependencyBaseChain, DependencyQuoteChain:
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "RouteSpec", "Validate",
			fmt.Sprintf("invalid dependency: %s", r.Dependency))
	}

	return nil
}

// Config holds configuration for the HTTP gateway
type Config struct {
	// Port is the HTTP listen port
	Port int `json:"port"`

	// EngineAlias addresses the DEX engine on the bus (required)
	EngineAlias string `json:"engine_alias"`

	// SelfAlias is this gateway's own bus alias, used for the bootstrap announce
	SelfAlias string `json:"self_alias"`

	// BaseChainAlias addresses the base chain adapter; empty disables /chain/base routes
	BaseChainAlias string `json:"base_chain_alias,omitempty"`

	// QuoteChainAlias addresses the quote chain adapter; empty disables /chain/quote routes
	QuoteChainAlias string `json:"quote_chain_alias,omitempty"`

	// EnableCORS enables CORS headers (default: false, requires explicit cors_origins)
	EnableCORS bool `json:"enable_cors"`

	// CORSOrigins lists allowed CORS origins (required when EnableCORS is true)
	// Use ["*"] for development only - production should specify exact origins
	CORSOrigins []string `json:"cors_origins,omitempty"`

	// MaxRequestSize limits request body size in bytes (default: 1MB)
	MaxRequestSize int64 `json:"max_request_size,omitempty"`

	// InvokeTimeoutStr bounds one bus invocation (default: "10s")
	InvokeTimeoutStr string `json:"invoke_timeout,omitempty"`

	// TLS enables TLS on the API listener
	TLS TLSConfig `json:"tls,omitempty"`

	// invokeTimeout is the parsed duration (internal use)
	invokeTimeout time.Duration
}

// TLSConfig holds TLS settings for the API listener. Certificates are
// provisioned externally; both files are required when enabled.
type TLSConfig struct {
	Enabled    bool   `json:"enabled"`
	CertFile   string `json:"cert_file,omitempty"`
	KeyFile    string `json:"key_file,omitempty"`
	MinVersion string `json:"min_version,omitempty"` // "1.2" or "1.3"
}

// Validate ensures the gateway configuration is valid and applies defaults
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("port must be between 1 and 65535, got %d", c.Port))
	}

	if c.EngineAlias == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"engine_alias cannot be empty")
	}

	if c.SelfAlias == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"self_alias cannot be empty")
	}

	// Validate max request size
	if c.MaxRequestSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_request_size cannot be negative")
	}

	if c.MaxRequestSize == 0 {
		c.MaxRequestSize = 1024 * 1024 // 1MB default
	}

	if c.MaxRequestSize > 100*1024*1024 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_request_size cannot exceed 100MB")
	}

	// CORS requires explicit origin configuration for security
	if c.EnableCORS && len(c.CORSOrigins) == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"enable_cors requires explicit cors_origins configuration (use [\"*\"] for development only)")
	}

	// TLS requires both certificate files
	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"tls requires both cert_file and key_file")
	}

	// Parse invoke timeout
	if c.InvokeTimeoutStr == "" {
		c.invokeTimeout = 10 * time.Second // default
	} else {
		parsedTimeout, err := time.ParseDuration(c.InvokeTimeoutStr)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "Validate",
				fmt.Sprintf("invalid invoke_timeout format: %s", c.InvokeTimeoutStr))
		}
		c.invokeTimeout = parsedTimeout
	}

	// Validate timeout range (100ms to 30s)
	if c.invokeTimeout < 100*time.Millisecond || c.invokeTimeout > 30*time.Second {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"invoke_timeout must be between 100ms and 30s")
	}

	return nil
}

// InvokeTimeout returns the parsed invoke timeout duration
func (c *Config) InvokeTimeout() time.Duration {
	return c.invokeTimeout
}

// AliasFor returns the configured bus alias for a route dependency. Chain
// dependencies return "" when their alias is unconfigured.
func (c *Config) AliasFor(dep Dependency) string {
	switch dep {
	case DependencyEngine:
		return c.EngineAlias
	case DependencyBaseChain:
		return c.BaseChainAlias
	case DependencyQuoteChain:
		return c.QuoteChainAlias
	default:
		return ""
	}
}

// DefaultConfig returns default gateway configuration
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		SelfAlias:      "capitalisk-dex-http-api",
		EnableCORS:     false, // Disabled by default (requires explicit configuration)
		CORSOrigins:    []string{},
		MaxRequestSize: 1024 * 1024, // 1MB
	}
}
