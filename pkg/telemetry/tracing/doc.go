// Package tracing provides OpenTelemetry distributed tracing for seqval.
//
// Validation sessions, manifest checks and HTTP requests create spans through
// the global otel tracer provider. New installs an SDK provider that exports
// over OTLP gRPC when tracing is enabled; otherwise spans are noops.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "check.File")
//	defer span.End()
//	tracing.SetManifestAttributes(span, path, "tsv", "IMPORT-1.0")
//
// # Sampling Strategies
//
//   - always: Sample all traces (development/debugging)
//   - never: Sample no traces
//   - ratio: Sample a fraction of traces by trace ID
//
// # Trace Context Propagation
//
// HTTPMiddleware extracts W3C traceparent headers so a caller's trace continues
// through the validation service.
package tracing
