// Package seed defines the versioned snapshot document that carries catalog
// data from a legacy embedded database into the shared PostgreSQL catalog.
//
// A snapshot is a single JSON document holding every tracked table plus
// enough metadata to make the import verifiable: a format version for the
// document layout, a seed version identifying the data migration it feeds,
// and a SHA-256 checksum over the table payload. The bootstrap sequence
// writes the snapshot to an artifact file between the export and reload
// steps, so a crash between steps leaves an inspectable file behind.
package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/emporiumlabs/emporium/pkg/models"
)

// FormatVersion is the snapshot document layout version. Bump only when the
// JSON structure changes incompatibly.
const FormatVersion = 1

// CurrentVersion is the data migration version the snapshot feeds. There is
// exactly one so far: the v1 legacy catalog import.
const CurrentVersion int64 = 1

// CurrentName is the human-readable name recorded in the data migration
// marker row for CurrentVersion.
const CurrentName = "legacy-catalog-import"

// Tables holds the rows of every tracked table, in load order
// (parents before children).
type Tables struct {
	Products     []models.Product     `json:"products"`
	Customers    []models.Customer    `json:"customers"`
	PaymentCards []models.PaymentCard `json:"payment_cards"`
	Orders       []models.Order       `json:"orders"`
}

// Snapshot is a full export of the legacy catalog, ready for import.
type Snapshot struct {
	FormatVersion int       `json:"format_version"`
	SeedVersion   int64     `json:"seed_version"`
	CreatedAt     time.Time `json:"created_at"`
	Source        string    `json:"source"`
	Checksum      string    `json:"checksum"`
	Tables        Tables    `json:"tables"`
}

// New builds a snapshot for the current seed version with the checksum
// already computed. Source identifies where the rows came from (usually the
// legacy database path).
func New(source string, tables Tables) (*Snapshot, error) {
	s := &Snapshot{
		FormatVersion: FormatVersion,
		SeedVersion:   CurrentVersion,
		CreatedAt:     time.Now().UTC(),
		Source:        source,
		Tables:        tables,
	}

	checksum, err := s.ComputeChecksum()
	if err != nil {
		return nil, err
	}
	s.Checksum = checksum

	return s, nil
}

// RowCounts returns the number of rows per tracked table, keyed by table name.
func (s *Snapshot) RowCounts() map[string]int {
	return map[string]int{
		models.Product{}.TableName():     len(s.Tables.Products),
		models.Customer{}.TableName():    len(s.Tables.Customers),
		models.PaymentCard{}.TableName(): len(s.Tables.PaymentCards),
		models.Order{}.TableName():       len(s.Tables.Orders),
	}
}

// TotalRows returns the number of rows across all tracked tables.
func (s *Snapshot) TotalRows() int {
	return len(s.Tables.Products) + len(s.Tables.Customers) +
		len(s.Tables.PaymentCards) + len(s.Tables.Orders)
}

// ComputeChecksum returns the hex SHA-256 of the marshaled table payload.
// The metadata fields are excluded so the checksum survives re-encoding.
func (s *Snapshot) ComputeChecksum() (string, error) {
	data, err := json.Marshal(s.Tables)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tables for checksum: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Verify checks the snapshot for integrity before import.
//
// It validates the format version, recomputes the checksum against the
// stored one, and validates every row. A snapshot that fails Verify must
// not be imported.
func (s *Snapshot) Verify() error {
	if s.FormatVersion != FormatVersion {
		return fmt.Errorf("unsupported snapshot format version %d (expected %d)", s.FormatVersion, FormatVersion)
	}
	if s.SeedVersion <= 0 {
		return fmt.Errorf("invalid seed version %d", s.SeedVersion)
	}

	checksum, err := s.ComputeChecksum()
	if err != nil {
		return err
	}
	if s.Checksum == "" {
		return fmt.Errorf("snapshot has no checksum")
	}
	if checksum != s.Checksum {
		return fmt.Errorf("snapshot checksum mismatch: computed %s, recorded %s", checksum, s.Checksum)
	}

	for i := range s.Tables.Products {
		if err := s.Tables.Products[i].Validate(); err != nil {
			return fmt.Errorf("product row %d: %w", i, err)
		}
	}
	for i := range s.Tables.Customers {
		if err := s.Tables.Customers[i].Validate(); err != nil {
			return fmt.Errorf("customer row %d: %w", i, err)
		}
	}
	for i := range s.Tables.PaymentCards {
		if err := s.Tables.PaymentCards[i].Validate(); err != nil {
			return fmt.Errorf("payment card row %d: %w", i, err)
		}
	}
	for i := range s.Tables.Orders {
		if err := s.Tables.Orders[i].Validate(); err != nil {
			return fmt.Errorf("order row %d: %w", i, err)
		}
	}

	return nil
}

// EncodeTo writes the snapshot as indented JSON.
func (s *Snapshot) EncodeTo(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// DecodeFrom reads a snapshot from r. The result is not verified; callers
// must run Verify before importing it.
func DecodeFrom(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &s, nil
}

// Filename returns the canonical artifact file name for a seed version.
func Filename(version int64) string {
	return fmt.Sprintf("seed-v%d.json", version)
}
