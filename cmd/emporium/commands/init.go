package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/emporiumlabs/emporium/internal/cli/prompt"
	"github.com/emporiumlabs/emporium/pkg/config"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

const operatorPasswordMinLength = 8

var (
	initForce          bool
	initNonInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a configuration file",
	Long: `Initialize an Emporium configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/emporium/config.yaml.
Use --config to specify a custom path.

The command prompts for the initial operator account and stores only the
bcrypt hash of the chosen password. A random JWT signing secret is generated
for the operator API. Use --non-interactive to skip the prompts and scaffold
a config without an operator account.

Examples:
  # Initialize with default location
  emporium init

  # Initialize with custom path
  emporium init --config /etc/emporium/config.yaml

  # Force overwrite existing config
  emporium init --force

  # Scaffold without prompts (operator login disabled until configured)
  emporium init --non-interactive`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "Do not prompt for the operator account")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	// Check before prompting so an existing config does not cost the
	// operator a typed password
	if !initForce {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
		}
	}

	cfg := config.GetDefaultConfig()

	if !initNonInteractive {
		username, err := prompt.Input("Operator username", cfg.Admin.Username)
		if err != nil {
			return promptErr(err)
		}

		email, err := prompt.InputOptional("Operator email")
		if err != nil {
			return promptErr(err)
		}

		password, err := prompt.PasswordWithConfirmation("Operator password", "Confirm password", operatorPasswordMinLength)
		if err != nil {
			return promptErr(err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		cfg.Admin.Username = username
		cfg.Admin.Email = email
		cfg.Admin.PasswordHash = string(hash)
	} else {
		// No operator account: login stays impossible until password_hash
		// is filled in
		cfg.Admin.PasswordHash = ""
	}

	secret, err := generateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	cfg.Server.JWT.Secret = secret

	if err := config.WriteInitialConfig(cfg, configPath, initForce); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to point at your catalog database")
	fmt.Println("  2. Start the server with: emporium start")
	fmt.Printf("  3. Or specify custom config: emporium start --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  A random JWT secret has been generated for development use.")
	fmt.Println("  For production, generate a secure secret and use an environment variable:")
	fmt.Println("    # Generates a 64-character hex string (32 bytes of entropy)")
	fmt.Printf("    export %s=$(openssl rand -hex 32)\n", config.EnvAuthSecret)

	return nil
}

// promptErr maps an aborted prompt to a short message instead of the
// library's error text.
func promptErr(err error) error {
	if prompt.IsAborted(err) {
		return fmt.Errorf("aborted")
	}
	return err
}

// generateSecret returns 32 random bytes hex-encoded, matching what the
// JWT service requires as a minimum secret length.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
