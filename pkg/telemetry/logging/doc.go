// Package logging provides structured logging for seqval.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text, and console output formats
//   - Context-aware logging with request, session and manifest fields
//   - Trace and span IDs from the active OpenTelemetry span
//   - A level that can be changed at runtime (e.g. by --verbose)
//
// # Usage
//
//	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "manifest validated", "findings", 3)
//	// ... request_id=req-123 findings=3
//
// Library packages accept a *slog.Logger; pass logger.Slog() so that their
// *Context calls are enriched the same way.
package logging
