package config

import (
	"path/filepath"
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Bootstrap.Enabled is excluded: its default (true) is handled by the
//     loader because false is a meaningful explicit value
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	applyStateDirDefaults(cfg)
	cfg.Database.ApplyDefaults()
	applyLegacyDefaults(cfg)
	applyBootstrapDefaults(cfg)
	cfg.Server.ApplyDefaults()
	cfg.Cache.ApplyDefaults()
	applyMetricsDefaults(&cfg.Metrics)
	applyAdminDefaults(&cfg.Admin)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	// Enabled defaults to false (opt-in for telemetry)
	// No need to set, zero value is false

	// Default endpoint is localhost:4317 (standard OTLP gRPC port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	// Default sample rate is 1.0 (sample all traces)
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	// Apply profiling defaults
	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	// Enabled defaults to false (opt-in for profiling)
	// No need to set, zero value is false

	// Default endpoint is localhost:4040 (standard Pyroscope port)
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}

	// Default profile types include CPU, memory allocation, and goroutines
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// applyShutdownTimeoutDefaults sets shutdown timeout defaults.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyStateDirDefaults sets the instance state directory default.
// Must run before the legacy and bootstrap defaults, which derive
// paths from it.
func applyStateDirDefaults(cfg *Config) {
	if cfg.StateDir == "" {
		cfg.StateDir = DefaultStateDir()
	}
}

// applyLegacyDefaults sets legacy store defaults.
// The default SQLite path lives under the state directory, which is where a
// v1 deployment kept its embedded database.
func applyLegacyDefaults(cfg *Config) {
	cfg.Legacy.ApplyDefaults()

	if cfg.Legacy.SQLite.Path == "" {
		cfg.Legacy.SQLite.Path = filepath.Join(cfg.StateDir, "emporium.db")
	}
}

// applyBootstrapDefaults sets bootstrap defaults.
// Enabled is intentionally not touched here; see ApplyDefaults.
func applyBootstrapDefaults(cfg *Config) {
	if cfg.Bootstrap.LockTimeout == 0 {
		cfg.Bootstrap.LockTimeout = 5 * time.Minute
	}
	if cfg.Bootstrap.JournalPath == "" {
		cfg.Bootstrap.JournalPath = filepath.Join(cfg.StateDir, "journal")
	}
	if cfg.Bootstrap.Artifact.Dir == "" {
		cfg.Bootstrap.Artifact.Dir = filepath.Join(cfg.StateDir, "artifacts")
	}
	cfg.Bootstrap.Artifact.ApplyDefaults()
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Metrics ride on the main API router, so they default to enabled
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
}

// applyAdminDefaults sets admin user defaults.
func applyAdminDefaults(cfg *AdminConfig) {
	// Default username is "admin"
	if cfg.Username == "" {
		cfg.Username = "admin"
	}
	// Email and PasswordHash have no defaults - they're optional or set during init
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{},
		Bootstrap: BootstrapConfig{
			Enabled: true, // fresh instances bootstrap unless told otherwise
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Admin: AdminConfig{
			Username: "admin",
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
