package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_NilConfig(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("Expected error for nil config")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidServerPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = 70000 // Out of range

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_NegativePort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative port")
	}
}

func TestValidate_MissingStateDir(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.StateDir = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing state dir")
	}
	if !strings.Contains(err.Error(), "StateDir") {
		t.Errorf("Expected error about StateDir, got: %v", err)
	}
}

func TestValidate_TelemetryEnabledWithoutEndpoint(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for telemetry enabled without endpoint")
	}
	if !strings.Contains(err.Error(), "endpoint") {
		t.Errorf("Expected error about endpoint, got: %v", err)
	}
}

func TestValidate_TelemetrySampleRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = "localhost:4317"
	cfg.Telemetry.SampleRate = 1.5 // Out of range (should be 0.0-1.0)

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for sample rate out of range")
	}
}

func TestValidate_S3RetentionWithoutBucket(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Bootstrap.Artifact.S3.Enabled = true

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for S3 retention without bucket")
	}
	if !strings.Contains(err.Error(), "bucket") {
		t.Errorf("Expected error about bucket, got: %v", err)
	}
}

func TestValidate_LegacySQLiteWithoutPath(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Legacy.SQLite.Path = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for sqlite legacy store without path")
	}
}

func TestValidate_LegacyPostgresWithoutHost(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Legacy.Type = "postgres"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for postgres legacy store without host")
	}
}

func TestValidate_InvalidLegacyType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Legacy.Type = "mongodb"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for unknown legacy store type")
	}
}

func TestValidate_InvalidCacheDriver(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Cache.Driver = "memcached"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for unknown cache driver")
	}
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.JWT.Secret = "too-short"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for short JWT secret")
	}
	if !strings.Contains(err.Error(), "min") {
		t.Errorf("Expected 'min' validation error, got: %v", err)
	}
}

func TestValidate_PlaintextAdminPassword(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Admin.PasswordHash = "hunter2"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for non-bcrypt password hash")
	}
	if !strings.Contains(err.Error(), "bcrypt") {
		t.Errorf("Expected error mentioning bcrypt, got: %v", err)
	}
}

func TestValidate_BcryptAdminPasswordAccepted(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Admin.PasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected bcrypt hash to pass validation, got: %v", err)
	}
}

func TestValidate_MetricsPathWithoutSlash(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Path = "metrics"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for metrics path without leading slash")
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	// Test that validation accepts both uppercase and lowercase log levels
	testCases := []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"}

	for _, level := range testCases {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		err := Validate(cfg)
		if err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}

		// Validation should NOT normalize - level should remain as-is
		if cfg.Logging.Level != level {
			t.Errorf("Expected level to remain %q after validation, got %q", level, cfg.Logging.Level)
		}
	}

	// Test that normalization happens in ApplyDefaults
	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected ApplyDefaults to normalize 'info' to 'INFO', got %q", cfg.Logging.Level)
	}
}
