package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/emporiumlabs/emporium/pkg/bootstrap"
	"github.com/emporiumlabs/emporium/pkg/cache"
	"github.com/emporiumlabs/emporium/pkg/models"
)

// defaultRunsLimit bounds /admin/bootstrap/runs when no limit is given.
const defaultRunsLimit = 20

// RunHistory is the bootstrap journal surface the admin endpoints read from.
type RunHistory interface {
	Last(ctx context.Context) (*bootstrap.Result, error)
	List(ctx context.Context, limit int) ([]*bootstrap.Result, error)
}

// SeedStore reads the applied data-migration markers from the shared catalog.
type SeedStore interface {
	SeedRecords(ctx context.Context) ([]models.SeedImport, error)
}

// AdminHandler handles operator-facing administrative endpoints.
// All admin routes sit behind JWT auth.
type AdminHandler struct {
	readiness ReadinessReporter
	history   RunHistory
	seeds     SeedStore
	cache     cache.Client
}

// NewAdminHandler creates a new AdminHandler.
//
// Any dependency may be nil; the corresponding endpoint then reports 503.
func NewAdminHandler(readiness ReadinessReporter, history RunHistory, seeds SeedStore, cacheClient cache.Client) *AdminHandler {
	return &AdminHandler{readiness: readiness, history: history, seeds: seeds, cache: cacheClient}
}

// Bootstrap handles GET /api/v1/admin/bootstrap.
//
// Returns this process's bootstrap result, falling back to the newest
// journal entry when no in-memory result is available.
func (h *AdminHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	if h.readiness != nil {
		if res := h.readiness.Result(); res != nil {
			WriteJSONOK(w, res)
			return
		}
	}

	if h.history == nil {
		ServiceUnavailable(w, "Bootstrap journal not available")
		return
	}

	res, err := h.history.Last(r.Context())
	if err != nil {
		if errors.Is(err, bootstrap.ErrNoRuns) {
			NotFound(w, "No bootstrap runs recorded")
			return
		}
		InternalServerError(w, "Failed to read bootstrap journal")
		return
	}

	WriteJSONOK(w, res)
}

// BootstrapRuns handles GET /api/v1/admin/bootstrap/runs.
//
// Returns recorded bootstrap runs, newest first. The limit query parameter
// caps the number of runs returned (default 20).
func (h *AdminHandler) BootstrapRuns(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		ServiceUnavailable(w, "Bootstrap journal not available")
		return
	}

	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.history.List(r.Context(), limit)
	if err != nil {
		InternalServerError(w, "Failed to read bootstrap journal")
		return
	}

	if runs == nil {
		runs = []*bootstrap.Result{}
	}

	WriteJSONOK(w, runs)
}

// Seed handles GET /api/v1/admin/seed.
// Returns every applied data-migration marker row, ordered by version.
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if h.seeds == nil {
		ServiceUnavailable(w, "Catalog store not available")
		return
	}

	records, err := h.seeds.SeedRecords(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to read seed records")
		return
	}

	if records == nil {
		records = []models.SeedImport{}
	}

	WriteJSONOK(w, records)
}

// CacheStats handles GET /api/v1/admin/cache/stats.
func (h *AdminHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		ServiceUnavailable(w, "Cache not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.cache.Stats(ctx)
	if err != nil {
		InternalServerError(w, "Failed to read cache stats")
		return
	}

	WriteJSONOK(w, stats)
}
