// Package health provides liveness, readiness and version endpoints for the
// validation service.
//
// Readiness is the conjunction of registered component checks, run
// concurrently with a per-check timeout. The service registers SchemaCheck
// so that it reports unready until the first schema load succeeds:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("schemas", health.SchemaCheck(manager, manager.Registry()))
//
//	r.Get("/health", checker.LivenessHandler())
//	r.Get("/ready", checker.ReadinessHandler())
//	r.Get("/version", health.VersionHandler(version, commit, buildTime, manager.Version))
package health
