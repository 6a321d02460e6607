package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics records request counts, latencies, and in-flight requests
// for the API server.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewHTTPMetrics creates the HTTP collectors.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewHTTPMetrics() *HTTPMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &HTTPMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "emporium_http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status",
			},
			[]string{"method", "route", "status"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "emporium_http_request_duration_milliseconds",
				Help: "HTTP request latency in milliseconds",
				Buckets: []float64{
					1,    // cache hits
					5,    //
					10,   //
					25,   //
					50,   //
					100,  //
					250,  //
					500,  //
					1000, // 1s - slow queries
					5000, // 5s
				},
			},
			[]string{"method", "route"},
		),
		inFlight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "emporium_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),
	}
}

// ObserveRequest records one finished request. route is the chi route
// pattern, not the raw path, to keep cardinality bounded.
func (m *HTTPMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(duration.Seconds() * 1000)
}

// TrackInFlight marks a request as started and returns the matching
// done function.
func (m *HTTPMetrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.inFlight.Inc()
	return func() { m.inFlight.Dec() }
}
