// Package server provides the HTTP validation service.
//
// # Routes
//
//	POST /v1/validate          validate a manifest; ?format=text|json|csv, ?input=tsv|csv, ?name=
//	POST /v1/normalise         validate, then return the normalised manifest; ?output=json|tsv
//	GET  /v1/schemas           list the active schemas and the set fingerprint
//	GET  /v1/schemas/{key}     describe one schema
//	POST /v1/schemas/reload    re-read the schema directory
//	GET  /health               liveness
//	GET  /ready                readiness (schemas loaded)
//	GET  /version              build information
//	GET  <metrics path>        Prometheus metrics, when enabled
//
// The request body of the manifest endpoints is the manifest file itself.
// CSV is selected with ?input=csv or a text/csv Content-Type. A manifest
// with findings is reported with 200 by /v1/validate; errors are reserved
// for input that cannot be validated (400 malformed, 413 too large,
// 422 unknown schema).
//
// # Usage
//
//	checker := check.NewChecker(manager, check.WithObserver(collector))
//	srv := server.NewServer(&cfg.Server, manager, checker,
//		server.WithLogger(logger),
//		server.WithMetrics(collector, cfg.Telemetry.Metrics.Path),
//	)
//	if err := srv.Start(ctx); err != nil {
//		return err
//	}
//
// Start blocks until ctx is cancelled and then drains in-flight requests
// for up to ServerConfig.ShutdownTimeout.
package server
