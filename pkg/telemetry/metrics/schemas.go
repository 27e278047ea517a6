package metrics

import (
	"time"

	"cgp-hq/seqval/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SchemaMetrics tracks schema registry loads.
//
// Metrics:
//   - seqval_schemas_reloads_total: load attempts by status (success/error)
//   - seqval_schemas_reload_duration_seconds: load duration
//   - seqval_schemas_loaded: schemas in the active set
//   - seqval_schemas_last_reload_success_timestamp_seconds: time of the last good load
type SchemaMetrics struct {
	reloadsTotal   *prometheus.CounterVec
	reloadDuration prometheus.Histogram
	loaded         prometheus.Gauge
	lastSuccess    prometheus.Gauge
}

// NewSchemaMetrics creates and registers schema metrics.
func NewSchemaMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SchemaMetrics {
	sm := &SchemaMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "schemas",
				Name:      "reloads_total",
				Help:      "Total number of schema load attempts",
			},
			[]string{"status"},
		),
		reloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "schemas",
				Name:      "reload_duration_seconds",
				Help:      "Duration of schema loads in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),
		loaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "schemas",
				Name:      "loaded",
				Help:      "Number of schemas in the active set",
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "schemas",
				Name:      "last_reload_success_timestamp_seconds",
				Help:      "Unix time of the last successful schema load",
			},
		),
	}

	registry.MustRegister(sm.reloadsTotal, sm.reloadDuration, sm.loaded, sm.lastSuccess)

	return sm
}

// RecordReload records a load attempt. A failed load leaves the gauges at
// the values of the still-active set.
func (sm *SchemaMetrics) RecordReload(schemas int, duration time.Duration, err error) {
	sm.reloadDuration.Observe(duration.Seconds())
	if err != nil {
		sm.reloadsTotal.WithLabelValues("error").Inc()
		return
	}
	sm.reloadsTotal.WithLabelValues("success").Inc()
	sm.loaded.Set(float64(schemas))
	sm.lastSuccess.SetToCurrentTime()
}
