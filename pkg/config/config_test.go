package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are interpreted as
// escape sequences (e.g. \U -> Unicode escape), causing parse errors.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func TestLoad_DefaultConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config
	configContent := `
logging:
  level: "INFO"

state_dir: "` + yamlSafePath(tmpDir) + `/state"

database:
  host: localhost
  database: emporium
  user: emporium

server:
  port: 8080
  jwt:
    secret: "test-secret-key-for-testing-minimum-32-chars"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected server port 8080, got %d", cfg.Server.Port)
	}

	// Bootstrap runs by default when the section is absent
	if !cfg.Bootstrap.Enabled {
		t.Error("Expected bootstrap to be enabled by default")
	}
	if cfg.Bootstrap.LockTimeout != 5*time.Minute {
		t.Errorf("Expected default lock timeout 5m, got %v", cfg.Bootstrap.LockTimeout)
	}

	// Paths derived from state_dir
	wantJournal := filepath.Join(tmpDir+"/state", "journal")
	if cfg.Bootstrap.JournalPath != wantJournal {
		t.Errorf("Expected journal path %q, got %q", wantJournal, cfg.Bootstrap.JournalPath)
	}
	wantLegacy := filepath.Join(tmpDir+"/state", "emporium.db")
	if cfg.Legacy.SQLite.Path != wantLegacy {
		t.Errorf("Expected legacy sqlite path %q, got %q", wantLegacy, cfg.Legacy.SQLite.Path)
	}
}

func TestLoad_BootstrapFlagDisabled(t *testing.T) {
	// An explicit false in the file must survive defaulting.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
state_dir: "` + yamlSafePath(tmpDir) + `/state"

bootstrap:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Bootstrap.Enabled {
		t.Error("Expected bootstrap.enabled=false from config file")
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	// This allows users to run the server without a config file for quick testing.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}

	// Verify default config is returned
	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}

	// Verify default API port and bootstrap flag
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default API port 8080, got %d", cfg.Server.Port)
	}
	if !cfg.Bootstrap.Enabled {
		t.Error("Expected bootstrap enabled in default config")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	// Write invalid YAML
	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Should return error
	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
state_dir = "` + yamlSafePath(tmpDir) + `/state"

[logging]
level = "WARN"
format = "json"

[server]
port = 8080

[server.jwt]
secret = "test-secret-key-for-testing-minimum-32-chars"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	// Verify all defaults are set
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default API port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Admin.Username != "admin" {
		t.Errorf("Expected default admin username 'admin', got %q", cfg.Admin.Username)
	}
	if !cfg.Bootstrap.Enabled {
		t.Error("Expected bootstrap enabled by default")
	}
	if cfg.Cache.Driver != "memory" {
		t.Errorf("Expected default cache driver 'memory', got %q", cfg.Cache.Driver)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Expected default metrics path '/metrics', got %q", cfg.Metrics.Path)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	if filepath.Base(dir) != "emporium" {
		t.Errorf("Expected directory name 'emporium', got %q", filepath.Base(dir))
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// Set environment variables
	_ = os.Setenv("EMPORIUM_LOGGING_LEVEL", "ERROR")
	_ = os.Setenv("EMPORIUM_SERVER_PORT", "9090")
	defer func() {
		_ = os.Unsetenv("EMPORIUM_LOGGING_LEVEL")
		_ = os.Unsetenv("EMPORIUM_SERVER_PORT")
	}()

	// Create minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

state_dir: "` + yamlSafePath(tmpDir) + `/state"

server:
  port: 8080
  jwt:
    secret: "test-secret-key-for-testing-minimum-32-chars"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify environment variables override config file
	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090 from env var, got %d", cfg.Server.Port)
	}
}

func TestLoad_BootstrapEnvOverride(t *testing.T) {
	// EMPORIUM_BOOTSTRAP_ENABLED must win even when the file says otherwise,
	// and must work without any config file at all.
	_ = os.Setenv("EMPORIUM_BOOTSTRAP_ENABLED", "false")
	defer func() { _ = os.Unsetenv("EMPORIUM_BOOTSTRAP_ENABLED") }()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
state_dir: "` + yamlSafePath(tmpDir) + `/state"

bootstrap:
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Bootstrap.Enabled {
		t.Error("Expected env var to disable bootstrap over config file")
	}

	// No config file path
	cfg, err = Load(filepath.Join(tmpDir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}
	if cfg.Bootstrap.Enabled {
		t.Error("Expected env var to disable bootstrap without config file")
	}
}

func TestLoad_BootstrapEnvOverrideInvalid(t *testing.T) {
	_ = os.Setenv("EMPORIUM_BOOTSTRAP_ENABLED", "banana")
	defer func() { _ = os.Unsetenv("EMPORIUM_BOOTSTRAP_ENABLED") }()

	tmpDir := t.TempDir()
	_, err := Load(filepath.Join(tmpDir, "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for unparsable EMPORIUM_BOOTSTRAP_ENABLED")
	}
}

func TestLoad_AuthSecretEnvOverride(t *testing.T) {
	secret := "env-secret-key-for-testing-minimum-32-chars"
	_ = os.Setenv("EMPORIUM_AUTH_SECRET", secret)
	defer func() { _ = os.Unsetenv("EMPORIUM_AUTH_SECRET") }()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
state_dir: "` + yamlSafePath(tmpDir) + `/state"

server:
  jwt:
    secret: "file-secret-key-for-testing-minimum-32-chars"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.JWT.Secret != secret {
		t.Errorf("Expected JWT secret from env var, got %q", cfg.Server.JWT.Secret)
	}
}
