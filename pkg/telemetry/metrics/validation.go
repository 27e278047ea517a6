package metrics

import (
	"time"

	"cgp-hq/seqval/pkg/config"
	"cgp-hq/seqval/pkg/manifest/finding"

	"github.com/prometheus/client_golang/prometheus"
)

// Rejection reasons for RecordRejected.
const (
	RejectMalformed     = "malformed"
	RejectUnknownSchema = "unknown_schema"
	RejectTooLarge      = "too_large"
	RejectCancelled     = "cancelled"
)

// ValidationMetrics tracks validation sessions.
//
// Metrics:
//   - seqval_validation_sessions_total: sessions by schema and outcome (pass/fail)
//   - seqval_validation_findings_total: findings by schema and kind
//   - seqval_validation_records_total: body records validated by schema
//   - seqval_validation_duration_seconds: session duration by schema
//   - seqval_validation_rejected_total: manifests rejected before validation, by reason
type ValidationMetrics struct {
	sessionsTotal *prometheus.CounterVec
	findingsTotal *prometheus.CounterVec
	recordsTotal  *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	rejectedTotal *prometheus.CounterVec
}

// NewValidationMetrics creates and registers validation metrics.
func NewValidationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		sessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "sessions_total",
				Help:      "Total number of validation sessions",
			},
			[]string{"schema", "outcome"},
		),
		findingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "findings_total",
				Help:      "Total number of findings reported",
			},
			[]string{"schema", "kind"},
		),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "records_total",
				Help:      "Total number of body records validated",
			},
			[]string{"schema"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "duration_seconds",
				Help:      "Duration of validation sessions in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"schema"},
		),
		rejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "validation",
				Name:      "rejected_total",
				Help:      "Total number of manifests rejected before validation",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		vm.sessionsTotal,
		vm.findingsTotal,
		vm.recordsTotal,
		vm.duration,
		vm.rejectedTotal,
	)

	return vm
}

// RecordSession records one completed session.
func (vm *ValidationMetrics) RecordSession(schemaKey string, records int, findings []finding.Finding, duration time.Duration) {
	outcome := "pass"
	if len(findings) > 0 {
		outcome = "fail"
	}
	vm.sessionsTotal.WithLabelValues(schemaKey, outcome).Inc()
	vm.recordsTotal.WithLabelValues(schemaKey).Add(float64(records))
	vm.duration.WithLabelValues(schemaKey).Observe(duration.Seconds())

	counts := make(map[finding.Kind]int)
	for _, f := range findings {
		counts[f.Kind]++
	}
	for kind, n := range counts {
		vm.findingsTotal.WithLabelValues(schemaKey, string(kind)).Add(float64(n))
	}
}

// RecordRejected counts a rejected manifest.
func (vm *ValidationMetrics) RecordRejected(reason string) {
	vm.rejectedTotal.WithLabelValues(reason).Inc()
}
