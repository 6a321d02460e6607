package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/emporiumlabs/emporium/pkg/metrics"
	"github.com/emporiumlabs/emporium/pkg/models"
)

// OrderStore is the catalog surface the order endpoints read from.
type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
}

// OrderHandler handles storefront order read endpoints.
type OrderHandler struct {
	store   OrderStore
	metrics *metrics.StoreMetrics
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, m *metrics.StoreMetrics) *OrderHandler {
	return &OrderHandler{store: store, metrics: m}
}

// Get handles GET /api/v1/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		ServiceUnavailable(w, "Catalog store not available")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	start := time.Now()
	order, err := h.store.GetOrder(r.Context(), id)
	h.metrics.ObserveQuery("GetOrder", err, time.Since(start))
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			NotFound(w, "Order not found")
			return
		}
		InternalServerError(w, "Failed to get order")
		return
	}

	WriteJSONOK(w, order)
}
