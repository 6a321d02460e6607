package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emporiumlabs/emporium/pkg/bootstrap"
	"github.com/emporiumlabs/emporium/pkg/cache"
)

// The registry is process-wide and collectors register once, so this
// file drives everything through ordered test functions: disabled
// behavior first, then a single InitRegistry.

func TestCollectorsNilWhenDisabled(t *testing.T) {
	require.False(t, IsEnabled())

	assert.Nil(t, NewBootstrapMetrics())
	assert.Nil(t, NewHTTPMetrics())
	assert.Nil(t, NewStoreMetrics())

	// Nil receivers are no-ops, not panics.
	var bm *BootstrapMetrics
	bm.RecordRun(&bootstrap.Result{Success: true})

	var hm *HTTPMetrics
	hm.ObserveRequest(http.MethodGet, "/api/v1/products", 200, time.Millisecond)
	hm.TrackInFlight()()

	var sm *StoreMetrics
	sm.ObserveQuery("list_products", nil, time.Millisecond)

	// The scrape route stays registered but serves 404.
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEnabled(t *testing.T) {
	InitRegistry()
	require.True(t, IsEnabled())

	reg := GetRegistry()
	InitRegistry() // second call is a no-op
	require.Same(t, reg, GetRegistry())

	bm := NewBootstrapMetrics()
	hm := NewHTTPMetrics()
	sm := NewStoreMetrics()
	require.NotNil(t, bm)
	require.NotNil(t, hm)
	require.NotNil(t, sm)

	t.Run("bootstrap runs", func(t *testing.T) {
		bm.RecordRun(&bootstrap.Result{
			Enabled:       true,
			Success:       true,
			SeedApplied:   true,
			SchemaVersion: 4,
			Steps: []bootstrap.Step{
				{Name: bootstrap.StepMigrate, Status: bootstrap.StepRan, DurationMs: 120},
				{Name: bootstrap.StepExport, Status: bootstrap.StepRan, DurationMs: 800},
				{Name: bootstrap.StepLoad, Status: bootstrap.StepRan, DurationMs: 400},
				{Name: bootstrap.StepCleanup, Status: bootstrap.StepRan, DurationMs: 15},
			},
		})
		bm.RecordRun(&bootstrap.Result{Enabled: false, Success: true})
		bm.RecordRun(&bootstrap.Result{
			Enabled: true,
			Success: false,
			Steps: []bootstrap.Step{
				{Name: bootstrap.StepMigrate, Status: bootstrap.StepFailed},
			},
		})

		assert.Equal(t, 1.0, testutil.ToFloat64(bm.runs.WithLabelValues("success")))
		assert.Equal(t, 1.0, testutil.ToFloat64(bm.runs.WithLabelValues("disabled")))
		assert.Equal(t, 1.0, testutil.ToFloat64(bm.runs.WithLabelValues("failure")))
		assert.Equal(t, 4.0, testutil.ToFloat64(bm.schemaVersion))
		// The failed run checked the marker and found it unapplied.
		assert.Equal(t, 0.0, testutil.ToFloat64(bm.seedApplied))
		assert.Equal(t, 1.0, testutil.ToFloat64(bm.steps.WithLabelValues("migrate", "failed")))
	})

	t.Run("http requests", func(t *testing.T) {
		done := hm.TrackInFlight()
		assert.Equal(t, 1.0, testutil.ToFloat64(hm.inFlight))
		done()
		assert.Equal(t, 0.0, testutil.ToFloat64(hm.inFlight))

		hm.ObserveRequest(http.MethodGet, "/api/v1/products", 200, 12*time.Millisecond)
		hm.ObserveRequest(http.MethodGet, "/api/v1/products", 200, 7*time.Millisecond)
		hm.ObserveRequest(http.MethodGet, "/api/v1/products/{id}", 404, time.Millisecond)

		assert.Equal(t, 2.0, testutil.ToFloat64(hm.requests.WithLabelValues("GET", "/api/v1/products", "200")))
		assert.Equal(t, 1.0, testutil.ToFloat64(hm.requests.WithLabelValues("GET", "/api/v1/products/{id}", "404")))
	})

	t.Run("store queries", func(t *testing.T) {
		sm.ObserveQuery("list_products", nil, 3*time.Millisecond)
		sm.ObserveQuery("get_product", context.DeadlineExceeded, 50*time.Millisecond)

		assert.Equal(t, 1.0, testutil.ToFloat64(sm.queries.WithLabelValues("list_products", "ok")))
		assert.Equal(t, 1.0, testutil.ToFloat64(sm.queries.WithLabelValues("get_product", "error")))
	})

	t.Run("cache stats and scrape endpoint", func(t *testing.T) {
		client := cache.NewMemory("metrics-test", 0)
		defer client.Close()
		require.NoError(t, client.Set(context.Background(), "k", "v", 0))

		RegisterCacheStats(client)

		rec := httptest.NewRecorder()
		Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.Contains(t, body, "emporium_bootstrap_runs_total")
		assert.Contains(t, body, "emporium_http_requests_total")
		assert.Contains(t, body, "emporium_cache_keys 1")
		assert.Contains(t, body, "go_goroutines")
	})
}
