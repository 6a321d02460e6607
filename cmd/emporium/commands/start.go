package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/emporiumlabs/emporium/internal/logger"
	"github.com/emporiumlabs/emporium/internal/telemetry"
	"github.com/emporiumlabs/emporium/pkg/api"
	"github.com/emporiumlabs/emporium/pkg/api/auth"
	"github.com/emporiumlabs/emporium/pkg/api/handlers"
	"github.com/emporiumlabs/emporium/pkg/config"
	"github.com/emporiumlabs/emporium/pkg/metrics"
	"github.com/spf13/cobra"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Emporium server",
	Long: `Start the Emporium server with the specified configuration.

Startup runs the bootstrap sequence first. When the bootstrap flag is
enabled, the instance migrates the catalog schema, exports the embedded v1
store into a snapshot artifact, loads it into the shared database, and
removes the legacy file before serving. If any step fails the process exits
non-zero and never serves. When the flag is disabled, the instance skips
straight to serving and performs no database writes.

By default, the server runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process supervisor.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/emporium/config.yaml.

Examples:
  # Start in background (default)
  emporium start

  # Start in foreground
  emporium start --foreground

  # Start with custom config file
  emporium start --config /etc/emporium/config.yaml

  # Start an already-seeded instance
  EMPORIUM_BOOTSTRAP_ENABLED=false emporium start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/emporium/emporium.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/emporium/emporium.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	// Handle daemon mode (background)
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "emporium",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "emporium",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	fmt.Println("Emporium - Storefront catalog server")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// Initialize metrics FIRST (before creating collectors) so that
	// metrics.IsEnabled() reports the right state during construction
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics enabled", "path", cfg.Metrics.Path)
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Connect to the catalog database and wire the bootstrap coordinator
	env, err := buildBootEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	// The readiness gate holds /health/ready at 503 until the bootstrap
	// outcome is known
	gate := api.NewReadiness()

	res, runErr := env.coord.Run(ctx)
	gate.SetResult(res)
	metrics.NewBootstrapMetrics().RecordRun(res)

	if runErr != nil {
		// A failed bootstrap must never serve: exiting non-zero here is
		// what keeps a partially-seeded instance out of the fleet
		logger.Error("Bootstrap failed, refusing to serve",
			logger.Err(runErr),
			logger.KeyRunID, res.RunID,
		)
		return fmt.Errorf("bootstrap failed: %w", runErr)
	}

	// Read-through cache for catalog queries
	cacheClient, err := config.CreateCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	defer func() {
		if err := cacheClient.Close(); err != nil {
			logger.Warn("Failed to close cache", "error", err)
		}
	}()
	metrics.RegisterCacheStats(cacheClient)
	logger.Info("Cache configured", "driver", cfg.Cache.Driver, "ttl", cfg.Cache.TTL)

	// Operator token service. Without a secret the admin surface stays
	// unmounted, so the storefront still serves reads.
	var jwtService *auth.JWTService
	if cfg.Server.JWT.Secret != "" {
		jwtService, err = auth.NewJWTService(cfg.Server.JWT.Secret, cfg.Server.JWT.Expiry)
		if err != nil {
			return fmt.Errorf("failed to create JWT service: %w", err)
		}
	} else {
		logger.Warn("No JWT secret configured, operator API disabled",
			"hint", "set server.jwt.secret or "+config.EnvAuthSecret)
	}

	apiServer := api.NewServer(cfg.Server, api.Deps{
		Catalog:      env.catalog,
		Readiness:    gate,
		History:      env.journal,
		Cache:        cacheClient,
		CacheTTL:     cfg.Cache.TTL,
		JWT:          jwtService,
		Operator:     handlers.Operator{Username: cfg.Admin.Username, PasswordHash: cfg.Admin.PasswordHash},
		HTTPMetrics:  metrics.NewHTTPMetrics(),
		StoreMetrics: metrics.NewStoreMetrics(),
	})
	logger.Info("API server configured", "port", apiServer.Port())

	// Write PID file if specified
	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	// Start server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Wait for server to shut down gracefully
		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}
