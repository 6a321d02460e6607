package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/emporiumlabs/emporium/pkg/models"
)

type fakeOrderStore struct {
	orders map[int64]models.Order
	err    error
}

func (f *fakeOrderStore) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return &o, nil
}

func orderRouter(h *OrderHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/orders/{id}", h.Get)
	return r
}

func TestOrderGet_ReturnsOrder(t *testing.T) {
	store := &fakeOrderStore{orders: map[int64]models.Order{
		31: {ID: 31, CustomerID: 7, OrderedItem: "Walnut Desk Organizer", Quantity: 1, TotalCents: 2499, Paid: true},
	}}
	router := orderRouter(NewOrderHandler(store, nil))

	req := httptest.NewRequest("GET", "/api/v1/orders/31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var got models.Order
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.ID != 31 || got.OrderedItem != "Walnut Desk Organizer" {
		t.Errorf("Unexpected order: %+v", got)
	}
}

func TestOrderGet_NotFound_Returns404(t *testing.T) {
	router := orderRouter(NewOrderHandler(&fakeOrderStore{}, nil))

	req := httptest.NewRequest("GET", "/api/v1/orders/31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	var body ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.Code != "NOT_FOUND" {
		t.Errorf("Expected code NOT_FOUND, got %q", body.Code)
	}
}

func TestOrderGet_InvalidID_Returns400(t *testing.T) {
	router := orderRouter(NewOrderHandler(&fakeOrderStore{}, nil))

	req := httptest.NewRequest("GET", "/api/v1/orders/latest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}
