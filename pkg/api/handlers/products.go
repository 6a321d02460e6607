package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emporiumlabs/emporium/internal/logger"
	"github.com/emporiumlabs/emporium/pkg/cache"
	"github.com/emporiumlabs/emporium/pkg/metrics"
	"github.com/emporiumlabs/emporium/pkg/models"
)

// ProductStore is the catalog surface the product endpoints read from.
type ProductStore interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]models.Product, error)
	SearchProducts(ctx context.Context, search string, limit int) ([]models.Product, error)
}

// ProductHandler handles storefront product read endpoints.
//
// List and detail responses are cached with a TTL. Search responses are not
// cached; their key space is unbounded. Product rows only change through
// migrations and the seed import, so entries are served until the TTL lapses.
type ProductHandler struct {
	store   ProductStore
	cache   cache.Client
	ttl     time.Duration
	metrics *metrics.StoreMetrics
}

// NewProductHandler creates a new ProductHandler.
//
// cacheClient may be nil to disable response caching. m may be nil when
// metrics are disabled.
func NewProductHandler(store ProductStore, cacheClient cache.Client, ttl time.Duration, m *metrics.StoreMetrics) *ProductHandler {
	return &ProductHandler{store: store, cache: cacheClient, ttl: ttl, metrics: m}
}

// List handles GET /api/v1/products.
//
// Query parameters:
//   - limit, offset: pagination (default 50, capped at 200)
//   - q: substring search on name and brand; search results bypass the cache
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		ServiceUnavailable(w, "Catalog store not available")
		return
	}

	limit, offset := pagination(r)

	if q := r.URL.Query().Get("q"); q != "" {
		start := time.Now()
		products, err := h.store.SearchProducts(r.Context(), q, limit)
		h.metrics.ObserveQuery("SearchProducts", err, time.Since(start))
		if err != nil {
			InternalServerError(w, "Failed to search products")
			return
		}
		WriteJSONOK(w, products)
		return
	}

	key := fmt.Sprintf("products:%d:%d", limit, offset)
	if h.serveCached(w, r, key) {
		return
	}

	start := time.Now()
	products, err := h.store.ListProducts(r.Context(), limit, offset)
	h.metrics.ObserveQuery("ListProducts", err, time.Since(start))
	if err != nil {
		InternalServerError(w, "Failed to list products")
		return
	}

	h.writeAndCache(w, r, key, products)
}

// Get handles GET /api/v1/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		ServiceUnavailable(w, "Catalog store not available")
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	key := fmt.Sprintf("product:%d", id)
	if h.serveCached(w, r, key) {
		return
	}

	start := time.Now()
	product, err := h.store.GetProduct(r.Context(), id)
	h.metrics.ObserveQuery("GetProduct", err, time.Since(start))
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			NotFound(w, "Product not found")
			return
		}
		InternalServerError(w, "Failed to get product")
		return
	}

	h.writeAndCache(w, r, key, product)
}

// serveCached writes the cached response body for key, if one exists.
func (h *ProductHandler) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if h.cache == nil {
		return false
	}

	body, err := h.cache.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			logger.DebugCtx(r.Context(), "Cache read failed", logger.Err(err))
		}
		return false
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "hit")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
	return true
}

// writeAndCache writes v as JSON and stores the encoded body under key.
// Cache writes are best effort; a failed Set still serves the response.
func (h *ProductHandler) writeAndCache(w http.ResponseWriter, r *http.Request, key string, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		InternalServerError(w, "Failed to encode response")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), key, string(body), h.ttl); err != nil {
			logger.DebugCtx(r.Context(), "Cache write failed", logger.Err(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
