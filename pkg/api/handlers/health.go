package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/emporiumlabs/emporium/pkg/bootstrap"
)

// DatabaseChecker reports catalog database connectivity.
type DatabaseChecker interface {
	Healthcheck(ctx context.Context) error
}

// ReadinessReporter reports whether this instance may serve traffic.
type ReadinessReporter interface {
	Ready() (ready bool, reason string)
	Result() *bootstrap.Result
}

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: is the server process running?
//   - Readiness probe: has bootstrap completed so traffic may be routed here?
//   - Database probe: is the shared catalog database reachable?
type HealthHandler struct {
	readiness ReadinessReporter
	db        DatabaseChecker
	started   time.Time
}

// NewHealthHandler creates a new health handler.
//
// Either dependency may be nil, in which case the corresponding probe
// reports unhealthy.
func NewHealthHandler(readiness ReadinessReporter, db DatabaseChecker) *HealthHandler {
	return &HealthHandler{readiness: readiness, db: db, started: time.Now()}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK if the server process is running. This endpoint is designed
// for Kubernetes liveness probes and should always succeed as long as the
// HTTP server is responsive. The payload carries uptime so CLI status
// commands can display it.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service":    "emporium",
		"started_at": h.started.Format(time.RFC3339),
		"uptime":     time.Since(h.started).Round(time.Second).String(),
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK only after the bootstrap coordinator has reported a
// successful run (or a clean skip when bootstrap is disabled). The fleet
// router gates traffic on this probe, so an instance joining mid-migration
// stays dark until the shared catalog is ready.
//
// Returns 503 Service Unavailable while bootstrap is pending or after it
// failed.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.readiness == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("bootstrap status unknown"))
		return
	}

	ready, reason := h.readiness.Ready()
	if !ready {
		if reason == "" {
			reason = "bootstrap has not completed"
		}
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(reason))
		return
	}

	data := map[string]interface{}{
		"bootstrap": "complete",
	}
	if res := h.readiness.Result(); res != nil {
		data["run_id"] = res.RunID
		data["schema_version"] = res.SchemaVersion
		data["seed_applied"] = res.SeedApplied
	}

	writeJSON(w, http.StatusOK, healthyResponse(data))
}

// Database handles GET /health/db - catalog database probe.
//
// Pings the catalog database with a short timeout and reports the observed
// latency. Returns 503 Service Unavailable when the database is unreachable.
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("database not configured"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Healthcheck(ctx)
	latency := time.Since(start)

	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(err.Error(), map[string]interface{}{
			"latency": latency.String(),
		}))
		return
	}

	writeJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"latency": latency.String(),
	}))
}
