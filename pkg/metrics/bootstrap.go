package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emporiumlabs/emporium/pkg/bootstrap"
)

// BootstrapMetrics records the outcome of bootstrap runs.
type BootstrapMetrics struct {
	runs          *prometheus.CounterVec
	steps         *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	schemaVersion prometheus.Gauge
	seedApplied   prometheus.Gauge
}

// NewBootstrapMetrics creates the bootstrap collectors.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewBootstrapMetrics() *BootstrapMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &BootstrapMetrics{
		runs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "emporium_bootstrap_runs_total",
				Help: "Total number of bootstrap runs by outcome",
			},
			[]string{"outcome"}, // "success", "failure", "disabled"
		),
		steps: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "emporium_bootstrap_steps_total",
				Help: "Total number of bootstrap steps by step and status",
			},
			[]string{"step", "status"},
		),
		stepDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "emporium_bootstrap_step_duration_milliseconds",
				Help: "Duration of executed bootstrap steps in milliseconds",
				Buckets: []float64{
					10,     // marker checks
					50,     //
					100,    //
					500,    //
					1000,   // 1s - small exports
					5000,   // 5s
					15000,  // 15s
					60000,  // 1m - bulk imports
					300000, // 5m
				},
			},
			[]string{"step"},
		),
		schemaVersion: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "emporium_schema_version",
				Help: "Catalog schema version after the last bootstrap run",
			},
		),
		seedApplied: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "emporium_seed_applied",
				Help: "Whether the configured seed version is applied (1) or not (0)",
			},
		),
	}
}

// RecordRun records a completed bootstrap run, successful or not.
func (m *BootstrapMetrics) RecordRun(res *bootstrap.Result) {
	if m == nil || res == nil {
		return
	}

	outcome := "success"
	switch {
	case !res.Enabled:
		outcome = "disabled"
	case !res.Success:
		outcome = "failure"
	}
	m.runs.WithLabelValues(outcome).Inc()

	for _, step := range res.Steps {
		m.steps.WithLabelValues(string(step.Name), string(step.Status)).Inc()
		if step.Status == bootstrap.StepRan {
			m.stepDuration.WithLabelValues(string(step.Name)).Observe(float64(step.DurationMs))
		}
	}

	if res.SchemaVersion > 0 {
		m.schemaVersion.Set(float64(res.SchemaVersion))
	}

	// A disabled run never queries the marker, so the gauge is only
	// meaningful on enabled runs.
	if res.Enabled {
		if res.SeedApplied {
			m.seedApplied.Set(1)
		} else {
			m.seedApplied.Set(0)
		}
	}
}
