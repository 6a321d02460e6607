// Package catalog implements the PostgreSQL-backed catalog store.
//
// The catalog is the fleet-shared system of record for products, customers,
// payment cards and orders. The store never performs DDL on its own: schema
// migrations run only through RunMigrations, which the bootstrap sequence
// (or 'emporium migrate') invokes explicitly. Opening a store against an
// unmigrated database succeeds; queries against missing tables fail.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emporiumlabs/emporium/internal/logger"
	"github.com/emporiumlabs/emporium/pkg/models"
)

// Store provides access to the PostgreSQL catalog database.
type Store struct {
	// pool is the PostgreSQL connection pool
	pool *pgxpool.Pool

	// config holds the store configuration
	config *Config

	// logger for structured logging
	logger *slog.Logger
}

// New creates a new PostgreSQL-backed catalog store.
//
// The connection pool is created and pinged, but no migrations are run and
// no writes are issued. Callers that need an up-to-date schema must run
// migrations explicitly before using the store.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	// Apply defaults
	cfg.ApplyDefaults()

	log := logger.With("component", "catalog_store")

	// Create connection pool
	pool, err := createConnectionPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	store := &Store{
		pool:   pool,
		config: cfg,
		logger: log,
	}

	log.Info("Catalog store initialized",
		"host", cfg.Host,
		"database", cfg.Database,
		"max_conns", cfg.MaxConns,
	)

	return store, nil
}

// Close closes the PostgreSQL connection pool and releases resources.
func (s *Store) Close() error {
	s.logger.Info("Closing catalog store...")
	closeConnectionPool(s.pool, s.logger)
	s.logger.Info("Catalog store closed")
	return nil
}

// Healthcheck verifies the PostgreSQL connection is healthy.
//
// Used by readiness probes and the /healthz endpoint. Safe for concurrent use.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("catalog health check failed: %w", err)
	}

	return nil
}

// Counts returns the row count of every tracked table.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tables := models.TrackedTables()
	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		var n int64
		query := `SELECT COUNT(*) FROM ` + pgx.Identifier{table}.Sanitize()
		if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}

	return counts, nil
}

// withTx executes fn within a PostgreSQL transaction.
//
// If fn returns an error, the transaction is rolled back.
// If fn returns nil, the transaction is committed.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
