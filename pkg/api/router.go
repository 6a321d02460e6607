package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emporiumlabs/emporium/internal/logger"
	"github.com/emporiumlabs/emporium/pkg/api/auth"
	"github.com/emporiumlabs/emporium/pkg/api/handlers"
	authmw "github.com/emporiumlabs/emporium/pkg/api/middleware"
	"github.com/emporiumlabs/emporium/pkg/cache"
	"github.com/emporiumlabs/emporium/pkg/metrics"
)

// CatalogStore is the full catalog surface the API reads from.
// *catalog.Store satisfies it.
type CatalogStore interface {
	handlers.ProductStore
	handlers.CustomerStore
	handlers.OrderStore
	handlers.SeedStore
	handlers.DatabaseChecker
}

// Deps carries the dependencies the router wires into handlers.
//
// Optional fields may be left nil; the affected endpoints then report 503.
// When JWT is nil the operator auth and admin routes are not mounted at all,
// so the admin surface is never reachable without token validation.
type Deps struct {
	// Catalog serves storefront reads, seed records, and database health.
	Catalog CatalogStore

	// Readiness gates /health/ready on the bootstrap outcome.
	Readiness *Readiness

	// History is the instance-local bootstrap journal (optional).
	History handlers.RunHistory

	// Cache backs product read-through caching and admin stats (optional).
	Cache cache.Client

	// CacheTTL bounds product cache staleness.
	CacheTTL time.Duration

	// JWT issues and validates operator tokens (optional, see above).
	JWT *auth.JWTService

	// Operator is the configured admin account.
	Operator handlers.Operator

	// HTTPMetrics observes requests (nil when metrics are disabled).
	HTTPMetrics *metrics.HTTPMetrics

	// StoreMetrics observes catalog queries (nil when metrics are disabled).
	StoreMetrics *metrics.StoreMetrics
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Prometheus request metrics (no-op when metrics are disabled)
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health, /health/ready, /health/db - probes, unauthenticated
//   - GET /metrics - Prometheus exposition (404 when metrics are disabled)
//   - GET /api/v1/products, /api/v1/products/{id} - storefront reads
//   - GET /api/v1/customers/{id}, /api/v1/customers/{id}/orders
//   - GET /api/v1/orders/{id}
//   - POST /api/v1/auth/login - operator login
//   - GET /api/v1/auth/me, /api/v1/admin/* - operator endpoints (JWT)
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(requestMetrics(deps.HTTPMetrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(deps.Readiness, deps.Catalog)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
		r.Get("/db", healthHandler.Database)
	})

	// Prometheus exposition; serves 404 when metrics are disabled
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	productHandler := handlers.NewProductHandler(deps.Catalog, deps.Cache, deps.CacheTTL, deps.StoreMetrics)
	customerHandler := handlers.NewCustomerHandler(deps.Catalog, deps.StoreMetrics)
	orderHandler := handlers.NewOrderHandler(deps.Catalog, deps.StoreMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		// Storefront reads - unauthenticated
		r.Get("/products", productHandler.List)
		r.Get("/products/{id}", productHandler.Get)
		r.Get("/customers/{id}", customerHandler.Get)
		r.Get("/customers/{id}/orders", customerHandler.Orders)
		r.Get("/orders/{id}", orderHandler.Get)

		if deps.JWT != nil {
			authHandler := handlers.NewAuthHandler(deps.Operator, deps.JWT)
			adminHandler := handlers.NewAdminHandler(deps.Readiness, deps.History, deps.Catalog, deps.Cache)

			r.Post("/auth/login", authHandler.Login)

			// Operator routes - JWT required
			r.Group(func(r chi.Router) {
				r.Use(authmw.JWTAuth(deps.JWT))

				r.Get("/auth/me", authHandler.Me)
				r.Route("/admin", func(r chi.Router) {
					r.Get("/bootstrap", adminHandler.Bootstrap)
					r.Get("/bootstrap/runs", adminHandler.BootstrapRuns)
					r.Get("/seed", adminHandler.Seed)
					r.Get("/cache/stats", adminHandler.CacheStats)
				})
			})
		}
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			logger.RequestID(requestID),
			slog.String(logger.KeyMethod, r.Method),
			slog.String(logger.KeyPath, r.URL.Path),
			slog.String(logger.KeyClientIP, r.RemoteAddr),
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Info("API request completed",
			logger.RequestID(requestID),
			slog.String(logger.KeyMethod, r.Method),
			slog.String(logger.KeyPath, r.URL.Path),
			slog.Int(logger.KeyStatus, ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			logger.DurationMs(logger.Duration(start)),
		)
	})
}

// requestMetrics observes request counts, latencies, and the in-flight gauge.
// The route label uses the chi route pattern rather than the raw path so
// label cardinality stays bounded.
func requestMetrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			done := m.TrackInFlight()
			defer done()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// The matched pattern is only known after routing
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}

			m.ObserveRequest(r.Method, route, ww.Status(), time.Since(start))
		})
	}
}
