package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/emporiumlabs/emporium/pkg/models"
)

func TestCreateProduct(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	product := &models.Product{
		Name:       "Canvas Sneaker",
		Brand:      "Walkabout",
		PriceCents: 4999,
		Stock:      12,
	}

	if err := store.CreateProduct(ctx, product); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if product.ID == 0 {
		t.Error("Expected generated product id")
	}
	if product.CreatedAt.IsZero() {
		t.Error("Expected generated created_at")
	}

	got, err := store.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got.Name != product.Name || got.PriceCents != product.PriceCents || got.Stock != product.Stock {
		t.Errorf("Round-trip mismatch: %+v vs %+v", got, product)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetProduct(context.Background(), 12345)
	if !errors.Is(err, models.ErrProductNotFound) {
		t.Fatalf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestListProducts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	names := []string{"Canvas Sneaker", "Trail Backpack", "Enamel Mug"}
	for _, name := range names {
		if err := store.CreateProduct(ctx, &models.Product{Name: name, PriceCents: 1000, Stock: 1}); err != nil {
			t.Fatalf("CreateProduct(%s) failed: %v", name, err)
		}
	}

	products, err := store.ListProducts(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("Expected 3 products, got %d", len(products))
	}

	// Pagination.
	page, err := store.ListProducts(ctx, 2, 1)
	if err != nil {
		t.Fatalf("ListProducts with offset failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected 2 products on page, got %d", len(page))
	}
	if page[0].Name != "Trail Backpack" {
		t.Errorf("Expected second product first on page, got %q", page[0].Name)
	}
}

func TestListProducts_Empty(t *testing.T) {
	store := setupTestStore(t)

	products, err := store.ListProducts(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("Expected no products, got %d", len(products))
	}
}

func TestSearchProducts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fixtures := []models.Product{
		{Name: "Canvas Sneaker", Brand: "Walkabout", PriceCents: 4999, Stock: 5},
		{Name: "Leather Boot", Brand: "Walkabout", PriceCents: 12900, Stock: 3},
		{Name: "Enamel Mug", Brand: "Hearthware", PriceCents: 1250, Stock: 20},
	}
	for i := range fixtures {
		if err := store.CreateProduct(ctx, &fixtures[i]); err != nil {
			t.Fatalf("CreateProduct failed: %v", err)
		}
	}

	// Case-insensitive name match.
	results, err := store.SearchProducts(ctx, "sNeAkEr", 10)
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Canvas Sneaker" {
		t.Errorf("Expected single sneaker match, got %+v", results)
	}

	// Brand match covers multiple products.
	results, err = store.SearchProducts(ctx, "walkabout", 10)
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 brand matches, got %d", len(results))
	}

	// No match.
	results, err = store.SearchProducts(ctx, "nonexistent", 10)
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no matches, got %d", len(results))
	}
}
