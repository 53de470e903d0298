package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPaths     configLayers
	Port            int
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

// configLayers collects repeated -config flags. Layers merge in order, later
// files overriding earlier ones.
type configLayers []string

func (c *configLayers) String() string {
	return strings.Join(*c, ",")
}

func (c *configLayers) Set(value string) error {
	if value == "" {
		return fmt.Errorf("config path cannot be empty")
	}
	*c = append(*c, value)
	return nil
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.Var(&cfg.ConfigPaths, "config",
		"Path to a configuration file; repeat to layer files (env: DEX_API_CONFIG)")

	flag.Var(&cfg.ConfigPaths, "c",
		"Path to a configuration file; repeat to layer files (env: DEX_API_CONFIG)")

	flag.IntVar(&cfg.Port, "port",
		getEnvInt("DEX_API_PORT", 0),
		"HTTP listen port, 0 to use the configured port (env: DEX_API_PORT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("DEX_API_LOG_LEVEL", ""),
		"Log level: debug, info, warn, error (env: DEX_API_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("DEX_API_LOG_FORMAT", ""),
		"Log format: json, text (env: DEX_API_LOG_FORMAT)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("DEX_API_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: DEX_API_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	// Custom usage
	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	// Environment fallback when no -config flags were given
	if len(cfg.ConfigPaths) == 0 {
		if envPath := os.Getenv("DEX_API_CONFIG"); envPath != "" {
			cfg.ConfigPaths = strings.Split(envPath, ",")
		}
	}

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	// Validate config files exist
	for _, path := range cfg.ConfigPaths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config file not found: %s", path)
		}
	}

	// Validate log level
	validLevels := []string{"", "debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// Validate log format
	validFormats := []string{"", "json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	// Validate port override
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %s", cfg.ShutdownTimeout)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - HTTP API gateway for the Capitalisk DEX

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Run with a single config file
  %s --config=/etc/dex/config.json

  # Layer a production override on top of the base config
  %s --config=base.json --config=production.json

  # Run with debug logging
  %s --log-level=debug --log-format=text

  # Run with environment variables
  export DEX_API_CONFIG=/etc/dex/config.json
  export DEX_API_ENGINE_ALIAS=capitalisk-dex
  %s

  # Validate configuration only
  %s --config=/etc/dex/config.json --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
