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

type fakeCustomerStore struct {
	customers map[int64]models.Customer
	orders    map[int64][]models.Order

	lastLimit  int
	lastOffset int

	err error
}

func (f *fakeCustomerStore) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.customers[id]
	if !ok {
		return nil, models.ErrCustomerNotFound
	}
	return &c, nil
}

func (f *fakeCustomerStore) ListCustomerOrders(ctx context.Context, customerID int64, limit, offset int) ([]models.Order, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	if f.err != nil {
		return nil, f.err
	}
	return f.orders[customerID], nil
}

func customerRouter(h *CustomerHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/customers/{id}", h.Get)
	r.Get("/api/v1/customers/{id}/orders", h.Orders)
	return r
}

func testCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{
		customers: map[int64]models.Customer{
			7: {ID: 7, Email: "ana@example.com", FullName: "Ana Marques", City: "Porto", Country: "PT"},
		},
		orders: map[int64][]models.Order{
			7: {
				{ID: 31, CustomerID: 7, OrderedItem: "Walnut Desk Organizer", Quantity: 1, TotalCents: 2499, Paid: true},
				{ID: 32, CustomerID: 7, OrderedItem: "Ceramic Pour-Over Set", Quantity: 2, TotalCents: 10800, Paid: true},
			},
		},
	}
}

func TestCustomerGet_ReturnsCustomer(t *testing.T) {
	router := customerRouter(NewCustomerHandler(testCustomerStore(), nil))

	req := httptest.NewRequest("GET", "/api/v1/customers/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var got models.Customer
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.ID != 7 || got.Email != "ana@example.com" {
		t.Errorf("Unexpected customer: %+v", got)
	}
}

func TestCustomerGet_NotFound_Returns404(t *testing.T) {
	router := customerRouter(NewCustomerHandler(testCustomerStore(), nil))

	req := httptest.NewRequest("GET", "/api/v1/customers/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestCustomerGet_InvalidID_Returns400(t *testing.T) {
	router := customerRouter(NewCustomerHandler(testCustomerStore(), nil))

	req := httptest.NewRequest("GET", "/api/v1/customers/seven", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCustomerOrders_ReturnsOrders(t *testing.T) {
	store := testCustomerStore()
	router := customerRouter(NewCustomerHandler(store, nil))

	req := httptest.NewRequest("GET", "/api/v1/customers/7/orders?limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var got []models.Order
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 orders, got %d", len(got))
	}
	if store.lastLimit != 10 {
		t.Errorf("Expected limit 10, got %d", store.lastLimit)
	}
}

func TestCustomerOrders_NoOrders_ReturnsEmptyList(t *testing.T) {
	store := testCustomerStore()
	store.orders = nil
	router := customerRouter(NewCustomerHandler(store, nil))

	req := httptest.NewRequest("GET", "/api/v1/customers/7/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	// Empty list, not null
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("Expected empty JSON array, got %q", body)
	}
}

func TestCustomerOrders_UnknownCustomer_Returns404(t *testing.T) {
	router := customerRouter(NewCustomerHandler(testCustomerStore(), nil))

	req := httptest.NewRequest("GET", "/api/v1/customers/99/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
