// Package main implements the entry point for the Capitalisk DEX HTTP API
// gateway. The gateway exposes the REST surface of a DEX market maker node,
// translating each HTTP request into a single NATS invocation against the
// DEX engine or one of its chain adapters.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Capitalisk/capitalisk-dex-http-api/config"
	"github.com/Capitalisk/capitalisk-dex-http-api/engine"
	httpgateway "github.com/Capitalisk/capitalisk-dex-http-api/gateway/http"
	"github.com/Capitalisk/capitalisk-dex-http-api/metric"
	"github.com/Capitalisk/capitalisk-dex-http-api/natsclient"
)

// Build information constants
const (
	Version   = "1.0.0"
	BuildTime = "dev"
	appName   = "dex-http-api"
)

// Service status values reported on the dexapi_service_status gauge
const (
	statusStopped  = 0
	statusStarting = 1
	statusRunning  = 2
	statusStopping = 3
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Run application with proper error handling
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	// Parse and validate CLI flags
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	// Load and validate configuration
	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	// Rebuild the root logger now that the logging section is known
	logger := resolveLogger(cliCfg, cfg)

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	// Setup core infrastructure
	ctx := context.Background()
	registry := metric.NewMetricsRegistry()
	registry.CoreMetrics().RecordServiceStatus(appName, statusStarting)

	natsClient, err := connectNATS(ctx, cfg, registry, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := natsClient.Close(context.Background()); err != nil {
			slog.Warn("Error closing NATS connection", "error", err)
		}
	}()

	engineClient, err := engine.NewClient(natsClient, engine.WithMetrics(registry))
	if err != nil {
		return fmt.Errorf("create engine client: %w", err)
	}

	// The market identity is fetched exactly once; every route serves it
	// unchanged for the lifetime of the process.
	market, err := fetchMarket(ctx, cfg, engineClient)
	if err != nil {
		return err
	}

	gw, err := httpgateway.NewHTTPGateway(cfg.Gateway, market, engineClient, logger,
		httpgateway.WithMetrics(registry))
	if err != nil {
		return fmt.Errorf("create HTTP gateway: %w", err)
	}

	metricsServer := startMetricsServer(cfg, registry, natsClient, gw)

	// Run application with signal handling
	return runWithSignalHandling(ctx, cfg, gw, engineClient, metricsServer, registry, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up bootstrap logging
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		printHelp()
		return nil, true, nil
	}

	// Bootstrap logger from flags alone; resolveLogger rebuilds it once the
	// configuration's logging section has been loaded.
	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting Capitalisk DEX HTTP API",
		"version", Version,
		"build_time", BuildTime,
		"config_layers", cliCfg.ConfigPaths.String())

	return cliCfg, false, nil
}

// initializeConfiguration loads the layered configuration and applies flag
// overrides
func initializeConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	for _, path := range cliCfg.ConfigPaths {
		loader.AddLayer(path)
	}
	loader.EnableValidation(true)

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Flags beat file and environment layers for the listen port
	if cliCfg.Port > 0 {
		cfg.Gateway.Port = cliCfg.Port
	}

	return cfg, nil
}

// resolveLogger rebuilds the root logger with the resolved logging settings.
// Flags take precedence over the configuration's logging section.
func resolveLogger(cliCfg *CLIConfig, cfg *config.Config) *slog.Logger {
	level := cliCfg.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}

	format := cliCfg.LogFormat
	if format == "" {
		format = cfg.Logging.Format
	}

	logger := setupLogger(level, format)
	slog.SetDefault(logger)
	return logger
}

// connectNATS builds the NATS client from configuration and waits for the
// connection to be ready
func connectNATS(
	ctx context.Context,
	cfg *config.Config,
	registry *metric.MetricsRegistry,
	logger *slog.Logger,
) (*natsclient.Client, error) {
	opts := []natsclient.ClientOption{
		natsclient.WithName(cfg.Gateway.SelfAlias),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithReconnectWait(cfg.NATS.ReconnectWait),
		natsclient.WithMetrics(registry),
		natsclient.WithLogger(newNATSLogger(logger)),
	}

	if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}
	if cfg.NATS.TLS.Enabled {
		opts = append(opts, natsclient.WithTLS(cfg.NATS.TLS.CertFile, cfg.NATS.TLS.KeyFile, cfg.NATS.TLS.CAFile))
	}

	natsClient, err := natsclient.NewClient(cfg.NATS.URL(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	slog.Info("Connecting to NATS", "urls", cfg.NATS.URL())
	if err := natsClient.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := natsClient.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection timeout: %w", err)
	}

	return natsClient, nil
}

// fetchMarket resolves the market identity from the configured DEX engine
func fetchMarket(ctx context.Context, cfg *config.Config, engineClient *engine.Client) (engine.MarketIdentity, error) {
	slog.Info("Resolving market identity", "engine_alias", cfg.Gateway.EngineAlias)

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Gateway.InvokeTimeout())
	defer cancel()

	market, err := engineClient.FetchMarket(fetchCtx, cfg.Gateway.EngineAlias)
	if err != nil {
		return engine.MarketIdentity{}, fmt.Errorf("fetch market identity: %w", err)
	}

	slog.Info("Market identity resolved",
		"market", market.DisplayID(),
		"base_symbol", market.BaseSymbol,
		"quote_symbol", market.QuoteSymbol)

	return market, nil
}

// startMetricsServer launches the metrics sidecar when enabled. Returns nil
// when metrics are disabled.
func startMetricsServer(
	cfg *config.Config,
	registry *metric.MetricsRegistry,
	natsClient *natsclient.Client,
	gw *httpgateway.HTTPGateway,
) *metric.Server {
	if !cfg.Metrics.Enabled {
		slog.Info("Metrics server disabled")
		return nil
	}

	// Healthy means the gateway is serving and the bus is reachable
	healthy := func() bool {
		return gw.Healthy() && natsClient.IsHealthy()
	}

	server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry, healthy)

	go func() {
		slog.Info("Metrics server listening", "address", server.Address())
		if err := server.Start(); err != nil {
			slog.Error("Metrics server terminated", "error", err)
		}
	}()

	return server
}

// announceBootstrap publishes the fire-and-forget readiness announcement on
// the gateway's own bootstrap channel. Failure is logged, never fatal.
func announceBootstrap(ctx context.Context, cfg *config.Config, engineClient *engine.Client) {
	cmd := engine.Command{Alias: cfg.Gateway.SelfAlias, Action: engine.ActionBootstrap}

	announceCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := engineClient.Announce(announceCtx, cmd); err != nil {
		slog.Warn("Bootstrap announce failed", "channel", cmd.String(), "error", err)
		return
	}

	slog.Info("Announced gateway readiness", "channel", cmd.String())
}

// runWithSignalHandling starts the gateway and handles shutdown signals
func runWithSignalHandling(
	ctx context.Context,
	cfg *config.Config,
	gw *httpgateway.HTTPGateway,
	engineClient *engine.Client,
	metricsServer *metric.Server,
	registry *metric.MetricsRegistry,
	shutdownTimeout time.Duration,
) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := gw.Start(signalCtx); err != nil {
		return fmt.Errorf("start HTTP gateway: %w", err)
	}

	announceBootstrap(signalCtx, cfg, engineClient)

	registry.CoreMetrics().RecordServiceStatus(appName, statusRunning)
	slog.Info("Capitalisk DEX HTTP API started", "port", cfg.Gateway.Port)

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	registry.CoreMetrics().RecordServiceStatus(appName, statusStopping)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := gw.Stop(shutdownCtx); err != nil {
		slog.Error("Error stopping HTTP gateway", "error", err)
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			slog.Warn("Error stopping metrics server", "error", err)
		}
	}

	registry.CoreMetrics().RecordServiceStatus(appName, statusStopped)
	slog.Info("Capitalisk DEX HTTP API shutdown complete")
	return nil
}

// printHelp prints help information
func printHelp() {
	printDetailedHelp()
}
