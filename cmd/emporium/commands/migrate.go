package commands

import (
	"context"
	"fmt"

	"github.com/emporiumlabs/emporium/internal/logger"
	"github.com/emporiumlabs/emporium/pkg/config"
	"github.com/emporiumlabs/emporium/pkg/store/catalog"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run catalog schema migrations",
	Long: `Apply pending schema migrations to the shared catalog database.

This runs only the schema step of the bootstrap sequence: no data is
exported or imported and the legacy store is left untouched. It is useful
after upgrading Emporium when schema changes have been made, or to prepare
the shared database before rolling out flagged instances.

Schema migrations are safe to run from multiple instances; the migration
library serializes them against the shared database.

Examples:
  # Run migrations with default config
  emporium migrate

  # Run migrations with custom config
  emporium migrate --config /etc/emporium/config.yaml`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("Running schema migrations",
		"host", cfg.Database.Host,
		logger.KeyDatabase, cfg.Database.Database,
	)

	ctx := context.Background()
	store, err := catalog.New(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("migration verification failed: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema is dirty at version %d; manual repair required", version)
	}

	fmt.Printf("Migrations completed successfully (schema version: %d)\n", version)
	return nil
}
