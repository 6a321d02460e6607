package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emporiumlabs/emporium/pkg/cache"
)

// StoreMetrics records catalog query counts and durations, observed at
// the handler layer.
type StoreMetrics struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewStoreMetrics creates the catalog query collectors.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStoreMetrics() *StoreMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &StoreMetrics{
		queries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "emporium_catalog_queries_total",
				Help: "Total number of catalog queries by operation and status",
			},
			[]string{"operation", "status"}, // status: "ok", "error"
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "emporium_catalog_query_duration_milliseconds",
				Help: "Catalog query latency in milliseconds",
				Buckets: []float64{
					1,    //
					5,    //
					10,   //
					25,   //
					50,   //
					100,  //
					250,  //
					1000, // 1s
				},
			},
			[]string{"operation"},
		),
	}
}

// ObserveQuery records one catalog query.
func (m *StoreMetrics) ObserveQuery(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.queries.WithLabelValues(operation, status).Inc()
	m.duration.WithLabelValues(operation).Observe(duration.Seconds() * 1000)
}

// RegisterCacheStats registers gauges that read live values from the
// cache client at scrape time.
func RegisterCacheStats(client cache.Client) {
	if !IsEnabled() || client == nil {
		return
	}

	reg := GetRegistry()

	stat := func(pick func(cache.Stats) int64) func() float64 {
		return func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			stats, err := client.Stats(ctx)
			if err != nil {
				return 0
			}
			return float64(pick(stats))
		}
	}

	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "emporium_cache_keys",
			Help: "Number of live keys in the cache",
		}, stat(func(s cache.Stats) int64 { return s.Keys })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "emporium_cache_hits_total",
			Help: "Cache hits reported by the backend",
		}, stat(func(s cache.Stats) int64 { return s.Hits })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "emporium_cache_misses_total",
			Help: "Cache misses reported by the backend",
		}, stat(func(s cache.Stats) int64 { return s.Misses })),
	)
}
