package metrics

import (
	"time"

	"cgp-hq/seqval/pkg/config"
	"cgp-hq/seqval/pkg/manifest/finding"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every seqval metric. It satisfies validator.Observer and
// registry.ReloadObserver, so it can be handed directly to sessions and to
// the schema manager.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	validation *ValidationMetrics
	schemas    *SchemaMetrics
	http       *HTTPMetrics
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	session := validator.NewSession(sch, validator.WithObserver(collector))
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets()
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		validation: NewValidationMetrics(cfg, registry),
		schemas:    NewSchemaMetrics(cfg, registry),
		http:       NewHTTPMetrics(cfg, registry),
	}
}

// Registry returns the Prometheus registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveSession records a completed validation session.
func (c *Collector) ObserveSession(schemaKey string, records int, findings []finding.Finding, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.validation.RecordSession(schemaKey, records, findings, duration)
}

// ObserveReload records a schema load attempt.
func (c *Collector) ObserveReload(schemas int, duration time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	c.schemas.RecordReload(schemas, duration, err)
}

// RecordRejected counts a manifest that could not be validated at all, e.g.
// because it was malformed or named an unknown schema.
func (c *Collector) RecordRejected(reason string) {
	if !c.config.Enabled {
		return
	}
	c.validation.RecordRejected(reason)
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.http.RecordRequest(route, method, status, duration)
}
