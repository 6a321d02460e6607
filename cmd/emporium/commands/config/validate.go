package config

import (
	"fmt"
	"os"

	"github.com/emporiumlabs/emporium/pkg/config"
	"github.com/emporiumlabs/emporium/pkg/store/legacy"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the Emporium configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  emporium config validate

  # Validate specific config file
  emporium config validate --config /etc/emporium/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	// Load and validate configuration
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Determine path for display
	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	// Additional validation checks
	var warnings []string

	// Check JWT secret is configured
	if cfg.Server.JWT.Secret == "" {
		warnings = append(warnings, "JWT secret not configured - operator API will be disabled")
	}

	// Check an operator account exists
	if cfg.Admin.PasswordHash == "" {
		warnings = append(warnings, "Operator password hash not set - login will fail (run 'emporium init')")
	}

	// Flagged instances need somewhere to import from; an absent file is
	// fine (the export step skips) but worth surfacing before a rollout
	if cfg.Bootstrap.Enabled && cfg.Legacy.Type == legacy.TypeSQLite {
		if _, err := os.Stat(cfg.Legacy.SQLite.Path); os.IsNotExist(err) {
			warnings = append(warnings, fmt.Sprintf("Bootstrap enabled but no legacy database at %s - import will be skipped", cfg.Legacy.SQLite.Path))
		}
	}

	// Print results
	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Catalog database: %s@%s:%d/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	fmt.Printf("  Bootstrap flag:   %t\n", cfg.Bootstrap.Enabled)
	fmt.Printf("  API port:         %d\n", cfg.Server.Port)
	fmt.Printf("  Cache driver:     %s\n", cfg.Cache.Driver)
	fmt.Printf("  Log level:        %s\n", cfg.Logging.Level)

	return nil
}
