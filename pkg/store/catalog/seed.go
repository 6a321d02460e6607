package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/emporiumlabs/emporium/internal/logger"
	"github.com/emporiumlabs/emporium/pkg/models"
	"github.com/emporiumlabs/emporium/pkg/seed"
)

// seedLockKey is the advisory lock key serializing seed imports across the
// instance pool. The value spells "empseed" in hex.
const seedLockKey int64 = 0x656d7073656564

// AcquireSeedLock takes the session-level advisory lock that serializes seed
// imports, blocking until the lock is free or ctx expires. The returned
// release function must be called exactly once.
//
// The lock rides a dedicated pooled connection: session advisory locks
// belong to a connection, so the connection is held until release.
func (s *Store) AcquireSeedLock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection for seed lock: %w", err)
	}

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, seedLockKey); err != nil {
		conn.Release()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timed out waiting for holder", models.ErrSeedLockHeld)
		}
		return nil, fmt.Errorf("failed to acquire seed lock: %w", err)
	}

	s.logger.Debug("Seed advisory lock acquired")

	release := func() {
		// The caller's ctx may already be canceled when this runs.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := conn.Exec(unlockCtx, `SELECT pg_advisory_unlock($1)`, seedLockKey); err != nil {
			s.logger.Warn("Failed to release seed lock", logger.Err(err))
		}
		conn.Release()
	}

	return release, nil
}

// SeedApplied reports whether the data migration marker for version exists.
//
// A database without the data_migrations table (never migrated) reports
// false without error.
func (s *Store) SeedApplied(ctx context.Context, version int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var one int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM data_migrations WHERE version = $1`, version).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check seed marker: %w", err)
	}

	return true, nil
}

// SeedRecord returns the data migration marker row for version.
// Returns models.ErrSeedNotFound if no marker exists.
func (s *Store) SeedRecord(ctx context.Context, version int64) (*models.SeedImport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := `
		SELECT version, name, checksum, row_counts, applied_by, applied_at, duration_ms
		FROM data_migrations
		WHERE version = $1
	`

	var si models.SeedImport
	err := s.pool.QueryRow(ctx, query, version).Scan(
		&si.Version, &si.Name, &si.Checksum, &si.RowCounts,
		&si.AppliedBy, &si.AppliedAt, &si.DurationMs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return nil, models.ErrSeedNotFound
		}
		return nil, fmt.Errorf("failed to read seed marker: %w", err)
	}

	return &si, nil
}

// SeedRecords returns every applied data migration marker, oldest first.
// A never-migrated database returns an empty list.
func (s *Store) SeedRecords(ctx context.Context) ([]models.SeedImport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := `
		SELECT version, name, checksum, row_counts, applied_by, applied_at, duration_ms
		FROM data_migrations
		ORDER BY version
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list seed markers: %w", err)
	}
	defer rows.Close()

	var records []models.SeedImport
	for rows.Next() {
		var si models.SeedImport
		if err := rows.Scan(
			&si.Version, &si.Name, &si.Checksum, &si.RowCounts,
			&si.AppliedBy, &si.AppliedAt, &si.DurationMs,
		); err != nil {
			return nil, err
		}
		records = append(records, si)
	}

	return records, rows.Err()
}

// ImportSnapshot loads a legacy snapshot into the catalog, exactly once.
//
// The marker row is claimed first, inside the same transaction that loads
// the rows: INSERT ... ON CONFLICT DO NOTHING on the version primary key.
// Losing the claim means another instance already applied this version, and
// the import returns models.ErrSeedAlreadyApplied having written nothing.
// Winning it means the row loads and the marker commit atomically.
//
// Callers are expected to hold the seed advisory lock; the marker claim
// alone guarantees exactly-once, the lock just avoids wasted bulk loads.
func (s *Store) ImportSnapshot(ctx context.Context, snap *seed.Snapshot, appliedBy string) (*models.SeedImport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	counts := snap.RowCounts()

	s.logger.Info("Importing snapshot",
		slog.Int64(logger.KeySeedVersion, snap.SeedVersion),
		logger.Rows(snap.TotalRows()),
	)

	var appliedAt time.Time
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		// Claim the marker before touching any table. The version primary
		// key arbitrates concurrent imports.
		var claimed int64
		err := tx.QueryRow(ctx, `
			INSERT INTO data_migrations (version, name, checksum, row_counts, applied_by)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (version) DO NOTHING
			RETURNING version
		`, snap.SeedVersion, seed.CurrentName, snap.Checksum, counts, appliedBy).Scan(&claimed)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrSeedAlreadyApplied
			}
			return fmt.Errorf("failed to claim seed marker: %w", err)
		}

		if err := importProducts(ctx, tx, snap.Tables.Products); err != nil {
			return err
		}
		if err := importCustomers(ctx, tx, snap.Tables.Customers); err != nil {
			return err
		}
		if err := importPaymentCards(ctx, tx, snap.Tables.PaymentCards); err != nil {
			return err
		}
		if err := importOrders(ctx, tx, snap.Tables.Orders); err != nil {
			return err
		}

		// Imported rows carry their legacy primary keys, so the serial
		// sequences must skip past them.
		if err := bumpSequence(ctx, tx, "products", maxProductID(snap.Tables.Products)); err != nil {
			return err
		}
		if err := bumpSequence(ctx, tx, "customers", maxCustomerID(snap.Tables.Customers)); err != nil {
			return err
		}
		if err := bumpSequence(ctx, tx, "orders", maxOrderID(snap.Tables.Orders)); err != nil {
			return err
		}

		return tx.QueryRow(ctx, `
			UPDATE data_migrations
			SET duration_ms = $2
			WHERE version = $1
			RETURNING applied_at
		`, snap.SeedVersion, time.Since(start).Milliseconds()).Scan(&appliedAt)
	})
	if err != nil {
		return nil, err
	}

	result := &models.SeedImport{
		Version:    snap.SeedVersion,
		Name:       seed.CurrentName,
		Checksum:   snap.Checksum,
		RowCounts:  counts,
		AppliedBy:  appliedBy,
		AppliedAt:  appliedAt,
		DurationMs: time.Since(start).Milliseconds(),
	}

	s.logger.Info("Snapshot imported",
		slog.Int64(logger.KeySeedVersion, snap.SeedVersion),
		logger.Rows(snap.TotalRows()),
		logger.DurationMs(float64(time.Since(start).Milliseconds())),
	)

	return result, nil
}

func importProducts(ctx context.Context, tx pgx.Tx, rows []models.Product) error {
	if len(rows) == 0 {
		return nil
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"products"},
		[]string{"id", "name", "brand", "description", "price_cents", "stock", "image_url", "created_at"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			p := rows[i]
			return []any{p.ID, p.Name, p.Brand, p.Description, p.PriceCents, p.Stock, p.ImageURL, p.CreatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	return nil
}

func importCustomers(ctx context.Context, tx pgx.Tx, rows []models.Customer) error {
	if len(rows) == 0 {
		return nil
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"customers"},
		[]string{"id", "email", "full_name", "city", "state", "country", "created_at"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			c := rows[i]
			return []any{c.ID, c.Email, c.FullName, c.City, c.State, c.Country, c.CreatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to load customers: %w", err)
	}
	return nil
}

func importPaymentCards(ctx context.Context, tx pgx.Tx, rows []models.PaymentCard) error {
	if len(rows) == 0 {
		return nil
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"payment_cards"},
		[]string{"card_id", "customer_id", "email", "name_on_card", "address_city", "address_state", "address_country", "created_at"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			pc := rows[i]
			return []any{pc.CardID, pc.CustomerID, pc.Email, pc.NameOnCard, pc.AddressCity, pc.AddressState, pc.AddressCountry, pc.CreatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to load payment cards: %w", err)
	}
	return nil
}

func importOrders(ctx context.Context, tx pgx.Tx, rows []models.Order) error {
	if len(rows) == 0 {
		return nil
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"orders"},
		[]string{"id", "customer_id", "ordered_item", "quantity", "total_cents", "card_id", "address", "paid", "paid_at", "delivered", "delivered_at", "created_at"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			o := rows[i]
			return []any{o.ID, o.CustomerID, o.OrderedItem, o.Quantity, o.TotalCents, o.CardID, o.Address, o.Paid, o.PaidAt, o.Delivered, o.DeliveredAt, o.CreatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}
	return nil
}

// bumpSequence advances a table's id sequence past the highest imported key.
func bumpSequence(ctx context.Context, tx pgx.Tx, table string, maxID int64) error {
	if maxID <= 0 {
		return nil
	}

	_, err := tx.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence($1, 'id'), $2, false)`,
		table, maxID+1,
	)
	if err != nil {
		return fmt.Errorf("failed to advance %s id sequence: %w", table, err)
	}
	return nil
}

func maxProductID(rows []models.Product) int64 {
	var highest int64
	for _, r := range rows {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest
}

func maxCustomerID(rows []models.Customer) int64 {
	var highest int64
	for _, r := range rows {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest
}

func maxOrderID(rows []models.Order) int64 {
	var highest int64
	for _, r := range rows {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest
}
