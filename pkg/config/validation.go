package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for errors.
//
// Struct tags handle per-field rules (required, oneof, ranges); the checks
// below cover relationships between fields that tags cannot express.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry is enabled but no endpoint is configured")
	}

	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return fmt.Errorf("profiling is enabled but no endpoint is configured")
	}

	if err := validateLegacy(cfg); err != nil {
		return err
	}

	if cfg.Bootstrap.Artifact.S3.Enabled && cfg.Bootstrap.Artifact.S3.Bucket == "" {
		return fmt.Errorf("artifact S3 retention is enabled but no bucket is configured")
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics path %q must start with /", cfg.Metrics.Path)
	}

	// Bcrypt hashes start with a $2a$/$2b$/$2y$ version marker. Catching a
	// plaintext password here beats silently rejecting every login later.
	if cfg.Admin.PasswordHash != "" && !strings.HasPrefix(cfg.Admin.PasswordHash, "$2") {
		return fmt.Errorf("admin.password_hash is not a bcrypt hash (run 'emporium init' to generate one)")
	}

	return nil
}

// validateLegacy checks that the configured legacy store type has the fields
// it needs.
func validateLegacy(cfg *Config) error {
	switch cfg.Legacy.Type {
	case "sqlite":
		if cfg.Legacy.SQLite.Path == "" {
			return fmt.Errorf("legacy store type is sqlite but no sqlite path is configured")
		}
	case "postgres":
		if cfg.Legacy.Postgres.Host == "" {
			return fmt.Errorf("legacy store type is postgres but no postgres host is configured")
		}
		if cfg.Legacy.Postgres.Database == "" {
			return fmt.Errorf("legacy store type is postgres but no postgres database is configured")
		}
	}
	return nil
}
