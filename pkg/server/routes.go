package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cgp-hq/seqval/pkg/telemetry/health"
	"cgp-hq/seqval/pkg/telemetry/tracing"
)

// setupRoutes builds the router and middleware chain.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestContext)
	r.Use(tracing.HTTPMiddleware)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health.LivenessHandler())
	r.Get("/ready", s.health.ReadinessHandler())
	r.Get("/version", health.VersionHandler(s.build.Version, s.build.Commit, s.build.BuildTime, s.schemas.Version))
	if s.metrics != nil && s.metricsPath != "" {
		r.Handle(s.metricsPath, s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/normalise", s.handleNormalise)

		r.Get("/schemas", s.handleListSchemas)
		r.Get("/schemas/{key}", s.handleGetSchema)
		r.Post("/schemas/reload", s.handleReloadSchemas)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errNotFound, http.StatusNotFound, "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return r
}
