package models

import "time"

// AllModels returns every entity persisted in the legacy embedded
// database, in an order that respects foreign key dependencies.
// The legacy store uses this for fixture creation.
func AllModels() []any {
	return []any{
		&Product{},
		&Customer{},
		&PaymentCard{},
		&Order{},
	}
}

// TrackedTables lists the tables carried across the v1 -> v2 data
// migration, in load order (parents before children).
func TrackedTables() []string {
	return []string{
		Product{}.TableName(),
		Customer{}.TableName(),
		PaymentCard{}.TableName(),
		Order{}.TableName(),
	}
}

// SeedImport is the marker row recording an applied data migration.
//
// It is written in the same transaction as the imported rows, so either
// both exist or neither does. Its presence is what makes re-running the
// bootstrap sequence a safe no-op.
type SeedImport struct {
	Version    int64          `json:"version"`
	Name       string         `json:"name"`
	Checksum   string         `json:"checksum"`
	RowCounts  map[string]int `json:"row_counts"`
	AppliedBy  string         `json:"applied_by"`
	AppliedAt  time.Time      `json:"applied_at"`
	DurationMs int64          `json:"duration_ms"`
}

// TotalRows returns the number of rows recorded across all tables.
func (si *SeedImport) TotalRows() int {
	total := 0
	for _, n := range si.RowCounts {
		total += n
	}
	return total
}
