// Package legacy reads the v1 embedded storefront database.
//
// The first generation of Emporium ran one instance per deployment with
// an embedded SQLite database (larger v1 deployments used PostgreSQL).
// The bootstrap export step reads every tracked table through this
// store. Nothing in v2 writes through it: Open never touches the
// schema, and the Create* methods exist for provisioning v1 fixtures.
package legacy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emporiumlabs/emporium/pkg/models"
)

// ErrDatabaseNotFound indicates the configured SQLite file does not
// exist. Opening a missing file would silently create an empty
// database, and an "export" of that would look like a successful
// zero-row migration.
var ErrDatabaseNotFound = errors.New("legacy database not found")

// Store provides read access to a legacy v1 database through GORM.
type Store struct {
	db     *gorm.DB
	config *Config
}

// Open connects to an existing legacy database.
//
// For SQLite the file must already exist; use Create to provision a
// fresh v1 database. Open performs no schema changes on any backend.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid legacy store config: %w", err)
	}

	if cfg.Type == TypeSQLite {
		if _, err := os.Stat(cfg.SQLite.Path); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, cfg.SQLite.Path)
			}
			return nil, fmt.Errorf("failed to stat legacy database: %w", err)
		}
	}

	return open(cfg)
}

// Create provisions a fresh legacy database with the v1 schema.
//
// It exists for tests and for standing up demo instances that exercise
// the migration path; production instances arrive with their database
// already in place.
func Create(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid legacy store config: %w", err)
	}

	if cfg.Type == TypeSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create legacy database directory: %w", err)
		}
	}

	store, err := open(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.db.AutoMigrate(models.AllModels()...); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create legacy schema: %w", err)
	}

	return store, nil
}

func open(cfg *Config) (*Store, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case TypeSQLite:
		// WAL journal and a busy timeout so the export does not trip
		// over a straggling v1 writer during cutover.
		dsn := cfg.SQLite.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)

	case TypePostgres:
		dialector = postgres.Open(cfg.Postgres.DSN())

	default:
		return nil, fmt.Errorf("unsupported legacy store type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}

	if cfg.Type == TypePostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access underlying database: %w", err)
		}
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	}

	return &Store{db: db, config: cfg}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying database: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close legacy database: %w", err)
	}
	return nil
}

// Location describes where the legacy data lives, for logs and for the
// snapshot source field.
func (s *Store) Location() string {
	switch s.config.Type {
	case TypeSQLite:
		return fmt.Sprintf("sqlite:%s", s.config.SQLite.Path)
	case TypePostgres:
		return fmt.Sprintf("postgres:%s@%s:%d/%s",
			s.config.Postgres.User, s.config.Postgres.Host,
			s.config.Postgres.Port, s.config.Postgres.Database)
	default:
		return string(s.config.Type)
	}
}

// FileBacked reports whether the legacy database lives in instance-local
// files that bootstrap should remove after a successful import.
func (s *Store) FileBacked() bool {
	return s.config.Type == TypeSQLite
}

// RemoveFiles deletes the SQLite database file and its WAL siblings.
//
// Call it after Close. Files that are already gone are not an error,
// so a repeated cleanup is safe; any other removal failure is reported.
// For PostgreSQL there is nothing instance-local to remove.
func (s *Store) RemoveFiles() error {
	if s.config.Type != TypeSQLite {
		return nil
	}

	path := s.config.SQLite.Path
	var errs []error
	for _, f := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", f, err))
		}
	}
	return errors.Join(errs...)
}

// isUniqueConstraintError checks whether an error is a unique constraint
// violation on either backend.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// convertNotFoundError maps GORM's record-not-found to a domain error.
func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}
