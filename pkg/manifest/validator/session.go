package validator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cgp-hq/seqval/pkg/manifest/finding"
	"cgp-hq/seqval/pkg/manifest/schema"
	"cgp-hq/seqval/pkg/telemetry/tracing"
)

const tracerName = "cgp-hq/seqval/pkg/manifest/validator"

// Observer receives the outcome of every completed session.
type Observer interface {
	ObserveSession(schemaKey string, records int, findings []finding.Finding, duration time.Duration)
}

// Session validates one header/body pair against a schema. The schema is
// shared read-only; all counting state lives in the session's run.
type Session struct {
	id       string
	schema   *schema.Schema
	opts     Options
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithOptions sets the cell interpretation options.
func WithOptions(opts Options) SessionOption {
	return func(s *Session) { s.opts = opts }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers an observer notified when Run completes.
func WithObserver(o Observer) SessionOption {
	return func(s *Session) { s.observer = o }
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// NewSession creates a session for sch.
func NewSession(sch *schema.Schema, opts ...SessionOption) *Session {
	s := &Session{
		id:     uuid.NewString(),
		schema: sch,
		opts:   DefaultOptions(),
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run validates header and records. Header findings precede body findings.
// The only errors are a *StructuralError for input that does not fit the
// schema and the context's error if it is cancelled mid-scan.
func (s *Session) Run(ctx context.Context, header Header, records []Record) (*finding.Result, error) {
	if s.schema == nil {
		return nil, &StructuralError{Record: -1, Message: "schema is nil"}
	}

	ctx, span := s.tracer.Start(ctx, "validator.Session.Run", trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, s.id),
		attribute.String(tracing.AttrSchema, s.schema.Key()),
		attribute.Int(tracing.AttrRecords, len(records)),
	))
	defer span.End()

	start := time.Now()
	result, err := s.run(ctx, header, records)
	if err != nil {
		tracing.SetError(span, err)
		tracing.SetStatus(span, err)
		s.logger.WarnContext(ctx, "validation session failed",
			"session_id", s.id,
			"schema", s.schema.Key(),
			"error", err,
		)
		return nil, err
	}
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Int(tracing.AttrFindings, len(result.Findings)))
	tracing.SetStatus(span, nil)

	if s.observer != nil {
		s.observer.ObserveSession(s.schema.Key(), len(records), result.Findings, elapsed)
	}
	s.logger.DebugContext(ctx, "validation session completed",
		"session_id", s.id,
		"schema", s.schema.Key(),
		"records", len(records),
		"findings", len(result.Findings),
		"duration", elapsed,
	)
	return result, nil
}

func (s *Session) run(ctx context.Context, header Header, records []Record) (*finding.Result, error) {
	body := s.schema.Body()
	for i, rec := range records {
		var unknown []string
		for col := range rec {
			if !body.Has(col) {
				unknown = append(unknown, col)
			}
		}
		if len(unknown) == 0 {
			continue
		}
		sort.Strings(unknown)
		msg := fmt.Sprintf("column is not part of schema %s", s.schema.Key())
		if len(unknown) > 1 {
			msg = fmt.Sprintf("columns %s are not part of schema %s", quoteList(unknown), s.schema.Key())
		}
		return nil, &StructuralError{Record: i, Column: unknown[0], Message: msg}
	}

	findings := ValidateHeader(s.schema.Header(), header)
	bodyFindings, err := newBodyScan(body, s.opts).run(ctx, records)
	if err != nil {
		return nil, err
	}
	findings = append(findings, bodyFindings...)
	if findings == nil {
		findings = []finding.Finding{}
	}

	return &finding.Result{
		SessionID: s.id,
		Schema:    s.schema.Key(),
		Findings:  findings,
	}, nil
}

// Validate runs a single session with default options.
func Validate(ctx context.Context, sch *schema.Schema, header Header, records []Record) (*finding.Result, error) {
	return NewSession(sch).Run(ctx, header, records)
}
