package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/emporiumlabs/emporium/pkg/metrics"
	"github.com/emporiumlabs/emporium/pkg/models"
)

// CustomerStore is the catalog surface the customer endpoints read from.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	ListCustomerOrders(ctx context.Context, customerID int64, limit, offset int) ([]models.Order, error)
}

// CustomerHandler handles storefront customer read endpoints.
type CustomerHandler struct {
	store   CustomerStore
	metrics *metrics.StoreMetrics
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(store CustomerStore, m *metrics.StoreMetrics) *CustomerHandler {
	return &CustomerHandler{store: store, metrics: m}
}

// Get handles GET /api/v1/customers/{id}.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		ServiceUnavailable(w, "Catalog store not available")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()
	customer, err := h.store.GetCustomer(r.Context(), id)
	h.metrics.ObserveQuery("GetCustomer", err, time.Since(start))
	if err != nil {
		if errors.Is(err, models.ErrCustomerNotFound) {
			NotFound(w, "Customer not found")
			return
		}
		InternalServerError(w, "Failed to get customer")
		return
	}

	WriteJSONOK(w, customer)
}

// Orders handles GET /api/v1/customers/{id}/orders.
//
// Returns 404 when the customer does not exist; an existing customer with no
// orders gets an empty list.
func (h *CustomerHandler) Orders(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		ServiceUnavailable(w, "Catalog store not available")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()
	_, err := h.store.GetCustomer(r.Context(), id)
	h.metrics.ObserveQuery("GetCustomer", err, time.Since(start))
	if err != nil {
		if errors.Is(err, models.ErrCustomerNotFound) {
			NotFound(w, "Customer not found")
			return
		}
		InternalServerError(w, "Failed to get customer")
		return
	}

	limit, offset := pagination(r)

	start = time.Now()
	orders, err := h.store.ListCustomerOrders(r.Context(), id, limit, offset)
	h.metrics.ObserveQuery("ListCustomerOrders", err, time.Since(start))
	if err != nil {
		InternalServerError(w, "Failed to list orders")
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}

	WriteJSONOK(w, orders)
}
