package seed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emporiumlabs/emporium/pkg/models"
)

func sampleTables() Tables {
	created := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	paid := created.Add(2 * time.Hour)

	return Tables{
		Products: []models.Product{
			{ID: 1, Name: "Canvas Sneaker", Brand: "Walkabout", PriceCents: 4999, Stock: 12, CreatedAt: created},
			{ID: 2, Name: "Trail Backpack", Brand: "Northbound", PriceCents: 8900, Stock: 5, CreatedAt: created},
			{ID: 3, Name: "Enamel Mug", PriceCents: 1250, Stock: 40, CreatedAt: created},
		},
		Customers: []models.Customer{
			{ID: 1, Email: "ada@example.com", FullName: "Ada Lovelace", City: "London", Country: "UK", CreatedAt: created},
			{ID: 2, Email: "grace@example.com", FullName: "Grace Hopper", City: "Arlington", State: "VA", Country: "USA", CreatedAt: created},
		},
		PaymentCards: []models.PaymentCard{
			{CardID: "card_tok_7f3a", CustomerID: 1, Email: "ada@example.com", NameOnCard: "A LOVELACE", CreatedAt: created},
		},
		Orders: []models.Order{
			{ID: 1, CustomerID: 1, OrderedItem: "Canvas Sneaker", Quantity: 1, TotalCents: 4999, CardID: "card_tok_7f3a", Paid: true, PaidAt: &paid, CreatedAt: created},
			{ID: 2, CustomerID: 2, OrderedItem: "Enamel Mug", Quantity: 2, TotalCents: 2500, CreatedAt: created},
		},
	}
}

func TestNew(t *testing.T) {
	snap, err := New("/var/lib/emporium/emporium.db", sampleTables())
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, snap.FormatVersion)
	assert.Equal(t, CurrentVersion, snap.SeedVersion)
	assert.Equal(t, "/var/lib/emporium/emporium.db", snap.Source)
	assert.NotEmpty(t, snap.Checksum)
	assert.False(t, snap.CreatedAt.IsZero())

	require.NoError(t, snap.Verify())
}

func TestRowCounts(t *testing.T) {
	snap, err := New("test", sampleTables())
	require.NoError(t, err)

	counts := snap.RowCounts()
	assert.Equal(t, 3, counts["products"])
	assert.Equal(t, 2, counts["customers"])
	assert.Equal(t, 1, counts["payment_cards"])
	assert.Equal(t, 2, counts["orders"])
	assert.Equal(t, 8, snap.TotalRows())
}

func TestRowCounts_Empty(t *testing.T) {
	snap, err := New("test", Tables{})
	require.NoError(t, err)

	counts := snap.RowCounts()
	assert.Equal(t, 0, counts["products"])
	assert.Equal(t, 0, counts["orders"])
	assert.Equal(t, 0, snap.TotalRows())

	// An empty legacy database still produces a valid snapshot.
	require.NoError(t, snap.Verify())
}

func TestVerify_ChecksumMismatch(t *testing.T) {
	snap, err := New("test", sampleTables())
	require.NoError(t, err)

	// Tamper with a row after the checksum was computed.
	snap.Tables.Products[0].PriceCents = 1

	err = snap.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestVerify_MissingChecksum(t *testing.T) {
	snap, err := New("test", sampleTables())
	require.NoError(t, err)

	snap.Checksum = ""

	err = snap.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no checksum")
}

func TestVerify_UnsupportedFormatVersion(t *testing.T) {
	snap, err := New("test", sampleTables())
	require.NoError(t, err)

	snap.FormatVersion = 99

	err = snap.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format version")
}

func TestVerify_InvalidRow(t *testing.T) {
	tables := sampleTables()
	tables.Orders = append(tables.Orders, models.Order{ID: 3, OrderedItem: "Orphan Item", Quantity: 1})

	snap, err := New("test", tables)
	require.NoError(t, err)

	err = snap.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order row 2")
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	snap, err := New("/tmp/legacy.db", sampleTables())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, snap.EncodeTo(&buf))

	decoded, err := DecodeFrom(&buf)
	require.NoError(t, err)

	require.NoError(t, decoded.Verify())
	assert.Equal(t, snap.Checksum, decoded.Checksum)
	assert.Equal(t, snap.SeedVersion, decoded.SeedVersion)
	assert.Equal(t, snap.Source, decoded.Source)
	assert.Equal(t, snap.RowCounts(), decoded.RowCounts())
	assert.Equal(t, snap.Tables.Products, decoded.Tables.Products)
	assert.Equal(t, snap.Tables.Orders, decoded.Tables.Orders)
}

func TestDecodeFrom_Garbage(t *testing.T) {
	_, err := DecodeFrom(strings.NewReader("not a snapshot"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse snapshot")
}

func TestDecodeFrom_TruncatedDocument(t *testing.T) {
	snap, err := New("test", sampleTables())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, snap.EncodeTo(&buf))

	truncated := buf.String()[:buf.Len()/2]
	_, err = DecodeFrom(strings.NewReader(truncated))
	require.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "seed-v1.json", Filename(1))
	assert.Equal(t, "seed-v42.json", Filename(42))
}
