package catalog

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapPgError maps PostgreSQL errors to the catalog's sentinel errors.
//
// notFound is returned for pgx.ErrNoRows; duplicate is returned for unique
// violations. A nil sentinel falls through to a generic wrapped error.
func mapPgError(err error, operation string, notFound, duplicate error) error {
	if err == nil {
		return nil
	}

	// Handle pgx.ErrNoRows (not found)
	if errors.Is(err, pgx.ErrNoRows) {
		if notFound != nil {
			return notFound
		}
		return fmt.Errorf("%s: not found", operation)
	}

	// Handle PostgreSQL-specific errors
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgErrorCode(pgErr, operation, notFound, duplicate)
	}

	// Unknown error
	return fmt.Errorf("%s: %w", operation, err)
}

// mapPgErrorCode maps PostgreSQL error codes to catalog errors
func mapPgErrorCode(pgErr *pgconn.PgError, operation string, notFound, duplicate error) error {
	// PostgreSQL error codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
	switch pgErr.Code {
	// 23505: unique_violation
	case "23505":
		if duplicate != nil {
			return duplicate
		}
		return fmt.Errorf("%s: already exists", operation)

	// 23503: foreign_key_violation
	case "23503":
		if notFound != nil {
			return fmt.Errorf("%s: referenced row missing: %w", operation, notFound)
		}
		return fmt.Errorf("%s: referenced row missing", operation)

	// 23514: check_violation
	case "23514":
		return fmt.Errorf("%s: invalid value: %s", operation, pgErr.Message)

	// 23502: not_null_violation
	case "23502":
		return fmt.Errorf("%s: missing required field %q", operation, pgErr.ColumnName)

	// 40001: serialization_failure, 40P01: deadlock_detected
	case "40001", "40P01":
		return fmt.Errorf("%s: transaction conflict, retry: %s", operation, pgErr.Message)

	// 08000-08006: connection errors
	case "08000", "08003", "08006":
		return fmt.Errorf("%s: database connection error: %s", operation, pgErr.Message)

	// Default
	default:
		return fmt.Errorf("%s: database error [%s] %s", operation, pgErr.Code, pgErr.Message)
	}
}

// isUndefinedTable reports whether err is a PostgreSQL undefined_table error.
// Seen when querying version tables on a database that has never been migrated.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}
