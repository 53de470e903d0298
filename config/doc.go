// Package config provides configuration management for the DEX HTTP API.
//
// This package handles loading and validation of application configuration
// from layered JSON files with environment variable overrides.
//
// # Core Components
//
// Config: the complete application configuration - NATS connection details,
// gateway routing and listener settings, metrics sidecar, and logging.
//
// Loader: loads configuration with layer merging (base + overrides) and
// environment variable substitution for flexible deployment scenarios.
//
// # Basic Usage
//
// Loading configuration from files with layer merging:
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/base.json")
//	loader.AddLayer("config/production.json") // Overrides base
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Environment Variable Overrides
//
// Configuration values can be overridden using DEX_API_-prefixed environment
// variables, applied after all file layers:
//
//	# Override the engine's bus alias
//	export DEX_API_ENGINE_ALIAS="capitalisk-dex"
//
//	# Override NATS URLs (comma-separated)
//	export DEX_API_NATS_URLS="nats://server1:4222,nats://server2:4222"
//
//	# Override listener and sidecar ports
//	export DEX_API_PORT=8080
//	export DEX_API_METRICS_PORT=9090
//
// # Layer Merging
//
// Configuration layers are merged with last-wins semantics:
//
//	base.json:
//	  {"gateway": {"port": 8080, "engine_alias": "capitalisk-dex"}}
//
//	production.json:
//	  {"gateway": {"port": 443}}
//
//	Result:
//	  {"gateway": {"port": 443, "engine_alias": "capitalisk-dex"}}
//
// # Security
//
// The package includes security validation:
//   - File size limits (10MB max) to prevent memory exhaustion
//   - JSON depth validation (100 levels max) to prevent DoS attacks
//   - Path validation to prevent directory traversal
//   - Regular file checks (no symlinks or device files)
package config
