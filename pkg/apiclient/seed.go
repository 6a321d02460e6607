package apiclient

import "time"

// SeedRecord is the marker row of one applied data migration.
type SeedRecord struct {
	Version    int64          `json:"version"`
	Name       string         `json:"name"`
	Checksum   string         `json:"checksum"`
	RowCounts  map[string]int `json:"row_counts"`
	AppliedBy  string         `json:"applied_by"`
	AppliedAt  time.Time      `json:"applied_at"`
	DurationMs int64          `json:"duration_ms"`
}

// TotalRows returns the number of rows recorded across all tables.
func (s *SeedRecord) TotalRows() int {
	total := 0
	for _, n := range s.RowCounts {
		total += n
	}
	return total
}

// SeedRecords returns the applied data migrations, oldest first.
func (c *Client) SeedRecords() ([]SeedRecord, error) {
	return listResources[SeedRecord](c, "/api/v1/admin/seed")
}
