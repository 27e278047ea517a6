package metrics

import (
	"strconv"
	"time"

	"cgp-hq/seqval/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics tracks requests served by the validation service.
//
// Metrics:
//   - seqval_http_requests_total: requests by route pattern, method and status code
//   - seqval_http_request_duration_seconds: request duration by route pattern
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics creates and registers HTTP metrics.
func NewHTTPMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HTTPMetrics {
	hm := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(hm.requestsTotal, hm.requestDuration)

	return hm
}

// RecordRequest records one request. route should be the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (hm *HTTPMetrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	hm.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	hm.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
