// Package main implements the entry point for the convertd document
// conversion gateway. convertd exposes registered document codecs over a
// single HTTP route, converting request bodies between formats through a
// shared intermediate document tree.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/wagov/convertd/codec"
	"github.com/wagov/convertd/codecregistry"
	"github.com/wagov/convertd/config"
	"github.com/wagov/convertd/gateway"
	gatewayhttp "github.com/wagov/convertd/gateway/http"
	"github.com/wagov/convertd/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "convertd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// CLI flags win over file and environment
	if cliCfg.ListenAddr != "" {
		cfg.Gateway.ListenAddr = cliCfg.ListenAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Config file logging settings apply when no CLI flag overrode them
	if !cliCfg.Debug && !flagWasSet("log-level") && !flagWasSet("log-format") &&
		(cfg.Logging.Level != cliCfg.LogLevel || cfg.Logging.Format != cliCfg.LogFormat) {
		logger = setupLogger(cfg.Logging.Level, cfg.Logging.Format)
		slog.SetDefault(logger)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid", "config_path", cliCfg.ConfigPath)
		return nil
	}

	converter, metricsRegistry, err := setupPipeline()
	if err != nil {
		return err
	}

	gw, err := gatewayhttp.NewGateway(cfg.Gateway, converter, metricsRegistry.CoreMetrics(), logger)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	return serve(cfg, gw, metricsRegistry, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting convertd (document conversion gateway)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// setupPipeline registers the built-in codecs and builds the converter
func setupPipeline() (*gateway.Converter, *metric.MetricsRegistry, error) {
	registry := codec.NewRegistry()
	if err := codecregistry.Register(registry); err != nil {
		return nil, nil, fmt.Errorf("register codecs: %w", err)
	}
	slog.Info("codecs registered", "count", registry.Len(), "formats", registry.Formats())

	converter, err := gateway.NewConverter(registry)
	if err != nil {
		return nil, nil, fmt.Errorf("create converter: %w", err)
	}

	return converter, metric.NewMetricsRegistry(), nil
}

// serve runs the gateway and metrics servers until a shutdown signal arrives
func serve(
	cfg *config.Config,
	gw *gatewayhttp.Gateway,
	metricsRegistry *metric.MetricsRegistry,
	shutdownTimeout time.Duration,
) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := gw.Start(signalCtx); err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}

	mux := http.NewServeMux()
	gw.RegisterHTTPHandlers(mux)

	server := &http.Server{
		Addr:              cfg.Gateway.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		slog.Info("gateway listening", "addr", cfg.Gateway.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("gateway server: %w", err)
		}
	}()

	var metricsServer *metric.Server
	if cfg.Metrics.MetricsEnabled() {
		metricsServer = metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, metricsRegistry)
		go func() {
			slog.Info("metrics listening", "addr", metricsServer.Address())
			if err := metricsServer.Start(); err != nil {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-signalCtx.Done():
		slog.Info("Received shutdown signal")
	case err := <-errCh:
		slog.Error("Server failed, shutting down", "error", err)
		signalCancel()
	}

	return shutdown(server, metricsServer, gw, shutdownTimeout)
}

// shutdown drains in-flight requests then stops the servers
func shutdown(
	server *http.Server,
	metricsServer *metric.Server,
	gw *gatewayhttp.Gateway,
	timeout time.Duration,
) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Gateway shutdown failed", "error", err)
		_ = server.Close()
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			slog.Warn("Metrics server stop failed", "error", err)
		}
	}

	if err := gw.Stop(timeout); err != nil {
		return fmt.Errorf("stop gateway: %w", err)
	}

	total, failed := gw.RequestStats()
	slog.Info("convertd shutdown complete", "requests_total", total, "requests_failed", failed)
	return nil
}
