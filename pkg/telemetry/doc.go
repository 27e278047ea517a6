// Package telemetry groups the observability packages used by seqval:
//
//   - logging: slog-based structured logging with request, session and trace IDs
//   - metrics: Prometheus metrics for validation sessions, schema reloads and HTTP
//   - tracing: OpenTelemetry spans exported over OTLP/gRPC
//   - health: liveness, readiness and version endpoints
package telemetry
