package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"

	"github.com/emporiumlabs/emporium/pkg/models"
	"github.com/emporiumlabs/emporium/pkg/seed"
)

// testContainer manages the shared PostgreSQL container for testing
type testContainer struct {
	container testcontainers.Container
	host      string
	port      int
}

// execAdmin runs a statement against the container's base database.
// Used for CREATE/DROP DATABASE, which cannot run through a pool transaction.
func execAdmin(t *testing.T, stmt string) {
	t.Helper()

	connStr := fmt.Sprintf("postgres://emporium_test:emporium_test@%s:%d/emporium_test?sslmode=disable",
		sharedTestContainer.host, sharedTestContainer.port)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to connect to admin database: %v", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	if _, err := conn.Exec(ctx, stmt); err != nil {
		t.Fatalf("admin statement failed: %v", err)
	}
}

// setupUnmigratedStore creates a catalog store against a fresh, empty
// database with no schema applied.
func setupUnmigratedStore(t *testing.T) *Store {
	t.Helper()

	if sharedTestContainer == nil {
		t.Fatal("shared test container not initialized - TestMain() not run?")
	}

	// Each test gets its own database so exactly-once semantics can be
	// exercised from a clean slate.
	dbName := fmt.Sprintf("emporium_%s", uuid.New().String()[:8])
	execAdmin(t, fmt.Sprintf("CREATE DATABASE %s OWNER emporium_test", dbName))
	t.Cleanup(func() {
		execAdmin(t, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", dbName))
	})

	config := &Config{
		Host:     sharedTestContainer.host,
		Port:     sharedTestContainer.port,
		Database: dbName,
		User:     "emporium_test",
		Password: "emporium_test",
		SSLMode:  "disable",
		MaxConns: 10,
		MinConns: 2,
	}

	store, err := New(context.Background(), config)
	if err != nil {
		t.Fatalf("failed to create catalog store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// setupTestStore creates a catalog store against a fresh database with all
// migrations applied.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store := setupUnmigratedStore(t)
	if err := store.RunMigrations(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return store
}

// testSnapshot builds a verified snapshot with a small legacy dataset:
// three products, two customers, one card and two orders.
func testSnapshot(t *testing.T) *seed.Snapshot {
	t.Helper()

	created := time.Date(2023, 11, 2, 14, 0, 0, 0, time.UTC)
	paid := created.Add(30 * time.Minute)

	tables := seed.Tables{
		Products: []models.Product{
			{ID: 1, Name: "Canvas Sneaker", Brand: "Walkabout", Description: "Low-top canvas sneaker", PriceCents: 4999, Stock: 12, CreatedAt: created},
			{ID: 2, Name: "Trail Backpack", Brand: "Northbound", PriceCents: 8900, Stock: 5, CreatedAt: created},
			{ID: 7, Name: "Enamel Mug", PriceCents: 1250, Stock: 40, CreatedAt: created},
		},
		Customers: []models.Customer{
			{ID: 1, Email: "ada@example.com", FullName: "Ada Lovelace", City: "London", Country: "UK", CreatedAt: created},
			{ID: 3, Email: "grace@example.com", FullName: "Grace Hopper", City: "Arlington", State: "VA", Country: "USA", CreatedAt: created},
		},
		PaymentCards: []models.PaymentCard{
			{CardID: "card_tok_7f3a", CustomerID: 1, Email: "ada@example.com", NameOnCard: "A LOVELACE", AddressCity: "London", AddressCountry: "UK", CreatedAt: created},
		},
		Orders: []models.Order{
			{ID: 1, CustomerID: 1, OrderedItem: "Canvas Sneaker", Quantity: 1, TotalCents: 4999, CardID: "card_tok_7f3a", Paid: true, PaidAt: &paid, CreatedAt: created},
			{ID: 5, CustomerID: 3, OrderedItem: "Enamel Mug", Quantity: 2, TotalCents: 2500, CreatedAt: created},
		},
	}

	snap, err := seed.New("/var/lib/emporium/emporium.db", tables)
	if err != nil {
		t.Fatalf("failed to build test snapshot: %v", err)
	}
	if err := snap.Verify(); err != nil {
		t.Fatalf("test snapshot failed verification: %v", err)
	}

	return snap
}
