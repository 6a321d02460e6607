package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/emporiumlabs/emporium/internal/bytesize"
	"github.com/emporiumlabs/emporium/pkg/api"
	"github.com/emporiumlabs/emporium/pkg/artifact"
	"github.com/emporiumlabs/emporium/pkg/cache"
	"github.com/emporiumlabs/emporium/pkg/store/catalog"
	"github.com/emporiumlabs/emporium/pkg/store/legacy"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the Emporium configuration.
//
// This structure captures static configuration aspects of the Emporium server:
//   - Logging configuration
//   - Telemetry/tracing configuration
//   - Server settings (HTTP API, shutdown timeout, metrics)
//   - Catalog database connection (shared PostgreSQL)
//   - Legacy store location (the v1 embedded database imported at bootstrap)
//   - Bootstrap behavior (flag, seed lock, export artifact)
//   - Cache configuration (read-through cache for catalog queries)
//   - Admin user setup (for initial operator login)
//
// Catalog data (products, customers, payment cards, orders) is managed
// through the REST API and stored in the shared catalog database.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (EMPORIUM_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
//
// A few operationally sensitive keys are also honored as explicit
// environment overrides regardless of whether they appear in the file:
//
//	EMPORIUM_BOOTSTRAP_ENABLED overrides Bootstrap.Enabled
//	EMPORIUM_AUTH_SECRET       overrides Server.JWT.Secret
//	EMPORIUM_DATABASE_PASSWORD overrides Database.Password
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// StateDir is the directory for instance-local state: the bootstrap
	// journal, export artifacts, and the default legacy database location.
	// Default: $XDG_STATE_HOME/emporium (or ~/.local/state/emporium)
	StateDir string `mapstructure:"state_dir" validate:"required" yaml:"state_dir"`

	// Database configures the shared catalog database (PostgreSQL).
	// This is the persistent store for products, customers, payment cards,
	// and orders once an instance has bootstrapped.
	Database catalog.Config `mapstructure:"database" yaml:"database"`

	// Legacy locates the v1 store this instance imports from during
	// bootstrap. Usually an embedded SQLite file left behind by a v1
	// deployment; a PostgreSQL source is supported for staged migrations.
	Legacy legacy.Config `mapstructure:"legacy" yaml:"legacy"`

	// Bootstrap controls the one-time migrate-and-import sequence that runs
	// before the instance starts serving.
	Bootstrap BootstrapConfig `mapstructure:"bootstrap" yaml:"bootstrap"`

	// Server contains HTTP API server configuration
	Server api.Config `mapstructure:"server" yaml:"server"`

	// Cache specifies the read-through cache for catalog queries
	Cache cache.Config `mapstructure:"cache" yaml:"cache"`

	// Metrics contains Prometheus metrics configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Admin contains initial admin user configuration
	// This is used by 'emporium init' to set up the first operator account
	Admin AdminConfig `mapstructure:"admin" yaml:"admin"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, trace data is exported to an OTLP-compatible collector
// (e.g., Jaeger, Tempo, or any OTLP receiver).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	// Default: true (for local development)
	// Set to false in production with a TLS-enabled collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// 1.0 = sample all traces, 0.5 = sample 50%, 0.0 = no sampling
	// Default: 1.0 (sample all)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
// When enabled, CPU and memory profiles are continuously sent to a Pyroscope
// server for flame graph visualization and performance analysis.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false (opt-in for profiling)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL)
	// Default: "http://localhost:4040" (standard Pyroscope port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	// Valid values: cpu, alloc_objects, alloc_space, inuse_objects, inuse_space,
	//               goroutines, mutex_count, mutex_duration, block_count, block_duration
	// Default: ["cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"]
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// BootstrapConfig controls the conditional bootstrap sequence.
//
// When Enabled is true (the default on fresh instances), startup runs schema
// migrations against the catalog database, exports the legacy store into a
// versioned snapshot artifact, loads the snapshot into the migrated schema,
// and removes the legacy file. The instance only starts serving once the
// whole sequence has succeeded. When Enabled is false, startup skips straight
// to serving and performs no writes of any kind.
type BootstrapConfig struct {
	// Enabled is the bootstrap flag for this instance.
	// Default: true
	// Override: EMPORIUM_BOOTSTRAP_ENABLED
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// LockTimeout bounds how long a starting instance waits for the
	// fleet-wide seed lock. Another instance holds the lock while it
	// imports, so this is effectively the maximum tolerated import
	// duration of a peer.
	// Default: 5m
	LockTimeout time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout"`

	// JournalPath is the directory for the instance-local bootstrap journal.
	// The journal records every bootstrap run and its outcome, and survives
	// restarts so 'emporium status' can report history.
	// Default: <state_dir>/journal
	JournalPath string `mapstructure:"journal_path" yaml:"journal_path"`

	// Artifact configures the intermediate export artifact produced between
	// the export and load steps.
	Artifact artifact.Config `mapstructure:"artifact" yaml:"artifact"`
}

// MetricsConfig configures Prometheus metrics exposition.
// Metrics are served on the main API router under Path.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and exposition are enabled
	// Default: true
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint
	// Default: "/metrics"
	Path string `mapstructure:"path" yaml:"path"`
}

// AdminConfig contains initial admin user configuration.
// This is used by 'emporium init' to pre-configure the first operator account.
type AdminConfig struct {
	// Username is the admin username
	// Default: "admin"
	Username string `mapstructure:"username" yaml:"username"`

	// Email is the admin user's email address (optional)
	Email string `mapstructure:"email" yaml:"email,omitempty"`

	// PasswordHash is the bcrypt hash of the admin password
	// Generated during 'emporium init' or can be set manually
	// Use: htpasswd -nbB "" "password" | cut -d: -f2
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (EMPORIUM_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists
	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	// If no config file was found, use defaults. Explicit environment
	// overrides still apply so a fresh instance can be steered entirely
	// through the environment.
	if !configFileFound {
		cfg := GetDefaultConfig()
		if err := applyEnvOverrides(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// Unmarshal into config struct with custom decode hooks
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Explicit environment overrides beat file values
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if the config file exists and provides user-friendly instructions if not.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: User-friendly error with instructions if config not found
func MustLoad(configPath string) (*Config, error) {
	// Determine config path
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  emporium init\n\n"+
				"Or specify a custom config file:\n"+
				"  emporium <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  emporium init --config %s",
				configPath, configPath)
		}
	}

	// Load configuration
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use yaml.Marshal directly to respect yaml tags
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with restricted permissions (0600 = owner read/write only).
	// Config files may contain password hashes and database credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Set up environment variable support
	// Environment variables use EMPORIUM_ prefix and underscores
	// Example: EMPORIUM_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("EMPORIUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bootstrap runs by default on fresh instances. The default lives here
	// rather than in ApplyDefaults because a bool zero value cannot
	// distinguish "explicitly disabled" from "unset".
	v.SetDefault("bootstrap.enabled", true)

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/emporium/config.{yaml,toml}
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml") // Primary format
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Also check for os.PathError when explicit config file doesn't exist
		if os.IsNotExist(err) {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Other errors are problems
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// Environment variables honored as explicit overrides regardless of whether
// the corresponding key appears in the config file.
const (
	EnvBootstrapEnabled = "EMPORIUM_BOOTSTRAP_ENABLED"
	EnvAuthSecret       = "EMPORIUM_AUTH_SECRET"
	EnvDatabasePassword = "EMPORIUM_DATABASE_PASSWORD"
)

// applyEnvOverrides applies the explicit environment overrides documented on
// Config. These are honored even when the key is absent from the config file,
// which viper's AutomaticEnv alone does not guarantee.
func applyEnvOverrides(cfg *Config) error {
	if raw, ok := os.LookupEnv(EnvBootstrapEnabled); ok {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvBootstrapEnabled, raw, err)
		}
		cfg.Bootstrap.Enabled = enabled
	}

	if secret, ok := os.LookupEnv(EnvAuthSecret); ok && secret != "" {
		cfg.Server.JWT.Secret = secret
	}

	if password, ok := os.LookupEnv(EnvDatabasePassword); ok && password != "" {
		cfg.Database.Password = password
	}

	return nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
// This includes ByteSize and time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts strings
// and integers to bytesize.ByteSize. This enables config files to use
// human-readable sizes like "1Gi", "500Mi", "100MB", or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to ByteSize
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse human-readable string like "1Gi", "500Mi", "100MB"
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to time.Duration
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse duration string like "30s", "5m", "1h"
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "emporium")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "emporium")
}

// DefaultStateDir returns the default instance state directory.
//
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state, or falls back to
// current directory (.) if home directory cannot be determined.
func DefaultStateDir() string {
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, "emporium")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".local", "state", "emporium")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
