package config

import (
	"os"

	"github.com/emporiumlabs/emporium/internal/cli/output"
	"github.com/emporiumlabs/emporium/pkg/config"
	"github.com/spf13/cobra"
)

var (
	showOutput  string
	showSecrets bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the current Emporium configuration.

By default outputs YAML format with secrets masked. Use --output to change
format and --show-secrets to print the database password, JWT secret, and
operator password hash in the clear.

Examples:
  # Show default config as YAML
  emporium config show

  # Show as JSON
  emporium config show --output json

  # Show specific config file
  emporium config show --config /etc/emporium/config.yaml`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print secret values instead of masking them")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	// Load configuration
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Parse output format
	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	display := cfg
	if !showSecrets {
		display = maskSecrets(cfg)
	}

	// Print configuration
	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, display)
	default:
		return output.PrintYAML(os.Stdout, display)
	}
}

// maskSecrets returns a copy of the config with secret values replaced.
// Empty secrets stay empty so the output still shows what is unset.
func maskSecrets(cfg *config.Config) *config.Config {
	const mask = "********"

	masked := *cfg
	if masked.Database.Password != "" {
		masked.Database.Password = mask
	}
	if masked.Server.JWT.Secret != "" {
		masked.Server.JWT.Secret = mask
	}
	if masked.Admin.PasswordHash != "" {
		masked.Admin.PasswordHash = mask
	}
	if masked.Cache.Redis.Password != "" {
		masked.Cache.Redis.Password = mask
	}
	return &masked
}
