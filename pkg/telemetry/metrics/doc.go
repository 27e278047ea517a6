// Package metrics exposes Prometheus metrics for seqval.
//
// A single Collector records validation sessions, schema reloads and HTTP
// requests. It plugs into the rest of the system through small interfaces:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	mgr, _ := registry.NewManager(&cfg.Schemas, logger,
//		registry.WithReloadObserver(collector))
//	session := validator.NewSession(sch, validator.WithObserver(collector))
//
//	router.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// Labels are limited to schema keys, finding kinds, route patterns and
// status codes, so cardinality stays bounded by configuration.
package metrics
