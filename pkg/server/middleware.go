package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cgp-hq/seqval/pkg/telemetry/logging"
)

// requestContext copies chi's request ID into the logging context so every
// log line written while serving the request carries it.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = logging.WithRequestID(ctx, id)
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog logs each request and records it in the HTTP metrics under its
// route pattern.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			if s.metrics != nil {
				s.metrics.RecordHTTPRequest(route, r.Method, status, duration)
			}

			level := s.logger.DebugContext
			if status >= http.StatusInternalServerError {
				level = s.logger.WarnContext
			}
			level(r.Context(), "request served",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", duration.Milliseconds(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
