package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configHeader is prepended to generated configuration files.
const configHeader = `# Emporium Configuration File
#
# This file was generated by 'emporium init'. All values can be overridden
# with EMPORIUM_* environment variables (e.g. EMPORIUM_LOGGING_LEVEL=DEBUG).
#
# The bootstrap section controls the one-time migrate-and-import sequence a
# fresh instance runs before serving. Set bootstrap.enabled to false once an
# instance has been seeded, or export EMPORIUM_BOOTSTRAP_ENABLED=false.

`

// InitConfig creates a configuration file with default values at the default
// location ($XDG_CONFIG_HOME/emporium/config.yaml).
//
// Returns the path of the created file. Fails if the file already exists
// unless force is true.
func InitConfig(force bool) (string, error) {
	configPath := GetDefaultConfigPath()
	if err := InitConfigToPath(configPath, force); err != nil {
		return "", err
	}
	return configPath, nil
}

// InitConfigToPath creates a configuration file with default values at the
// given path, creating parent directories as needed.
//
// Fails if the file already exists unless force is true.
func InitConfigToPath(path string, force bool) error {
	return WriteInitialConfig(GetDefaultConfig(), path, force)
}

// WriteInitialConfig writes the given configuration to path with the
// generated-file header, creating parent directories as needed.
//
// 'emporium init' uses this to persist the scaffolded config after filling
// in the operator account and JWT secret. Fails if the file already exists
// unless force is true.
func WriteInitialConfig(cfg *Config, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	content := append([]byte(configHeader), data...)

	// 0600: generated configs carry password hashes and the JWT secret
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
