package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql

	"github.com/emporiumlabs/emporium/pkg/store/catalog/migrations"
)

// runMigrations executes database migrations using golang-migrate.
// Uses advisory locks to ensure only one instance runs migrations at a time.
func runMigrations(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// Open database connection using database/sql (required by golang-migrate)
	db, err := sql.Open("pgx", cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Create postgres driver instance for migrations
	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "schema_migrations",
		DatabaseName:    cfg.Database,
	})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	// Create source driver from embedded filesystem
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create source driver: %w", err)
	}

	// Create migrate instance
	m, err := migrate.NewWithInstance(
		"iofs",
		sourceDriver,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	// golang-migrate uses PostgreSQL advisory locks automatically to prevent
	// concurrent migrations from multiple instances
	logger.Info("Applying migrations...")
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No migrations to apply (database is up to date)")
	} else {
		logger.Info("Migrations completed successfully")
	}

	// Get current version
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		logger.Info("No migrations applied yet")
	} else {
		logger.Info("Current schema version",
			"version", version,
			"dirty", dirty,
		)

		if dirty {
			logger.Warn("Database schema is in dirty state - manual intervention may be required")
		}
	}

	return nil
}

// RunMigrations applies all pending schema migrations against the configured
// database. Public wrapper for manual migration execution (e.g., from CLI).
func RunMigrations(ctx context.Context, cfg *Config) error {
	// Apply defaults and validate
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.Default()

	return runMigrations(ctx, cfg, logger)
}

// RunMigrations applies all pending schema migrations using the store's
// configuration. Called by the bootstrap sequence before any data is loaded.
func (s *Store) RunMigrations(ctx context.Context) error {
	return runMigrations(ctx, s.config, s.logger)
}

// SchemaVersion returns the current schema migration version and dirty flag.
//
// A database that has never been migrated reports (0, false, nil): the
// schema_migrations table does not exist yet and that is not an error.
func (s *Store) SchemaVersion(ctx context.Context) (uint, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	var version uint
	var dirty bool
	err := s.pool.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}

	return version, dirty, nil
}
