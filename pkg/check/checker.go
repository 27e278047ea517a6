package check

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"cgp-hq/seqval/pkg/config"
	"cgp-hq/seqval/pkg/manifest/finding"
	"cgp-hq/seqval/pkg/manifest/reader"
	"cgp-hq/seqval/pkg/manifest/schema"
	"cgp-hq/seqval/pkg/manifest/validator"
	"cgp-hq/seqval/pkg/registry"
	"cgp-hq/seqval/pkg/telemetry/logging"
	"cgp-hq/seqval/pkg/telemetry/tracing"
)

const tracerName = "cgp-hq/seqval/pkg/check"

// Rejection reasons reported to a RejectionRecorder.
const (
	ReasonMalformed     = "malformed"
	ReasonUnknownSchema = "unknown_schema"
	ReasonTooLarge      = "too_large"
	ReasonCancelled     = "cancelled"
)

// SchemaSource resolves the schema selected by a manifest's form type and
// version. *registry.Manager and *registry.Registry both satisfy it.
type SchemaSource interface {
	Lookup(typ, version string) (*schema.Schema, error)
}

// RejectionRecorder counts manifests that never reached validation.
type RejectionRecorder interface {
	RecordRejected(reason string)
}

// Options controls how manifests are read and validated.
type Options struct {
	Reader      reader.Options
	Validator   validator.Options
	Concurrency int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Reader:      reader.Options{BodySwitch: reader.DefaultBodySwitch},
		Validator:   validator.DefaultOptions(),
		Concurrency: config.DefaultConcurrency,
	}
}

// OptionsFrom builds checker options from the validation configuration.
func OptionsFrom(cfg *config.ValidationConfig) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	opts.Reader.BodySwitch = cfg.BodySwitch
	opts.Reader.MaxRecords = cfg.MaxRecords
	opts.Validator.NullMarker = cfg.NullMarker
	if len(cfg.CompressionSuffixes) > 0 {
		opts.Validator.CompressionSuffixes = cfg.CompressionSuffixes
	}
	if cfg.Concurrency > 0 {
		opts.Concurrency = cfg.Concurrency
	}
	return opts
}

// Checker validates manifest files against the schemas of a SchemaSource.
// It is safe for concurrent use; every check runs its own session.
type Checker struct {
	schemas  SchemaSource
	opts     Options
	logger   *slog.Logger
	observer validator.Observer
	rejects  RejectionRecorder
	progress func(done, total int)
	tracer   trace.Tracer
}

// Option configures a Checker.
type Option func(*Checker)

// WithOptions replaces the read and validation options.
func WithOptions(opts Options) Option {
	return func(c *Checker) { c.opts = opts }
}

// WithLogger sets the logger passed to every session.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the observer notified of completed sessions.
func WithObserver(o validator.Observer) Option {
	return func(c *Checker) { c.observer = o }
}

// WithRejectionRecorder sets the recorder notified of rejected manifests.
func WithRejectionRecorder(r RejectionRecorder) Option {
	return func(c *Checker) { c.rejects = r }
}

// WithProgress sets a callback invoked by CheckFiles after each manifest.
// It may be called from several goroutines.
func WithProgress(fn func(done, total int)) Option {
	return func(c *Checker) { c.progress = fn }
}

// NewChecker creates a checker resolving schemas from schemas.
func NewChecker(schemas SchemaSource, opts ...Option) *Checker {
	c := &Checker{
		schemas: schemas,
		opts:    DefaultOptions(),
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Input is a manifest that has been read and matched to its schema but not
// yet validated.
type Input struct {
	Manifest *reader.Manifest
	Schema   *schema.Schema
	Records  []validator.Record
}

// Prepare reads a manifest from r and resolves its schema. The returned
// error is a *reader.StructuralError, a *registry.NotFoundError,
// reader.ErrTooManyRecords or an I/O error.
func (c *Checker) Prepare(r io.Reader, source string, format reader.Format) (*Input, error) {
	ropts := c.opts.Reader
	ropts.Format = format

	m, err := reader.Read(r, source, ropts)
	if err != nil {
		return nil, err
	}
	return c.resolve(m)
}

// PrepareFile is Prepare for a file on disk; the format comes from its extension.
func (c *Checker) PrepareFile(path string) (*Input, error) {
	m, err := reader.ReadFile(path, c.opts.Reader)
	if err != nil {
		return nil, err
	}
	return c.resolve(m)
}

func (c *Checker) resolve(m *reader.Manifest) (*Input, error) {
	sch, err := c.schemas.Lookup(m.FormType(), m.FormVersion())
	if err != nil {
		return nil, err
	}
	records, err := m.Records(sch.Body())
	if err != nil {
		return nil, err
	}
	return &Input{Manifest: m, Schema: sch, Records: records}, nil
}

// CheckReader reads, resolves and validates one manifest. Findings never
// produce an error; see Prepare for the errors that do.
func (c *Checker) CheckReader(ctx context.Context, r io.Reader, source string, format reader.Format) (*Report, error) {
	_, report, err := c.ValidateReader(ctx, r, source, format)
	return report, err
}

// CheckFile reads, resolves and validates the manifest at path.
func (c *Checker) CheckFile(ctx context.Context, path string) (*Report, error) {
	_, report, err := c.ValidateFile(ctx, path)
	return report, err
}

// ValidateReader is CheckReader that also returns the prepared input, for
// callers that write the manifest back out once it passes.
func (c *Checker) ValidateReader(ctx context.Context, r io.Reader, source string, format reader.Format) (*Input, *Report, error) {
	return c.check(ctx, source, func() (*Input, error) {
		return c.Prepare(r, source, format)
	})
}

// ValidateFile is CheckFile that also returns the prepared input.
func (c *Checker) ValidateFile(ctx context.Context, path string) (*Input, *Report, error) {
	return c.check(ctx, path, func() (*Input, error) {
		return c.PrepareFile(path)
	})
}

func (c *Checker) check(ctx context.Context, source string, prepare func() (*Input, error)) (*Input, *Report, error) {
	ctx = logging.WithManifest(ctx, source)
	ctx, span := c.tracer.Start(ctx, "check.Manifest")
	defer span.End()

	start := time.Now()
	in, err := prepare()
	if err != nil {
		c.reject(ctx, span, source, err)
		return nil, nil, err
	}
	tracing.SetManifestAttributes(span, source, string(in.Manifest.Format), in.Schema.Key())

	report, err := c.Validate(ctx, in)
	if err != nil {
		c.reject(ctx, span, source, err)
		return nil, nil, err
	}
	report.Duration = time.Since(start)

	tracing.SetResultAttributes(span, report.Records, len(report.Findings))
	tracing.SetStatus(span, nil)
	return in, report, nil
}

// Validate runs a session over a prepared input and annotates the findings
// with the source lines they refer to.
func (c *Checker) Validate(ctx context.Context, in *Input) (*Report, error) {
	opts := []validator.SessionOption{
		validator.WithOptions(c.opts.Validator),
		validator.WithLogger(c.logger),
	}
	if c.observer != nil {
		opts = append(opts, validator.WithObserver(c.observer))
	}
	session := validator.NewSession(in.Schema, opts...)
	ctx = logging.WithSessionID(ctx, session.ID())

	result, err := session.Run(ctx, in.Manifest.Header, in.Records)
	if err != nil {
		return nil, err
	}
	annotate(result.Findings, in.Manifest)

	c.logger.InfoContext(ctx, "manifest checked",
		"schema", result.Schema,
		"records", len(in.Records),
		"findings", len(result.Findings),
	)

	return &Report{
		Source:    in.Manifest.Source,
		SessionID: result.SessionID,
		Schema:    result.Schema,
		Records:   len(in.Records),
		Findings:  result.Findings,
	}, nil
}

// annotate fills Location.Line from the manifest's source positions.
func annotate(findings []finding.Finding, m *reader.Manifest) {
	for i := range findings {
		loc := &findings[i].Location
		switch loc.Section {
		case finding.SectionHeader:
			loc.Line = m.HeaderLine(loc.Field)
		case finding.SectionBody:
			loc.Line = m.RowLine(loc.Record)
		}
	}
}

func (c *Checker) reject(ctx context.Context, span trace.Span, source string, err error) {
	reason := Reason(err)
	tracing.SetError(span, err)
	tracing.SetStatus(span, err)
	if c.rejects != nil {
		c.rejects.RecordRejected(reason)
	}
	c.logger.WarnContext(ctx, "manifest rejected",
		"source", source,
		"reason", reason,
		"error", err,
	)
}

// Reason classifies an error returned by the checker.
func Reason(err error) string {
	var notFound *registry.NotFoundError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &notFound):
		return ReasonUnknownSchema
	case errors.Is(err, reader.ErrTooManyRecords), errors.As(err, &tooLarge):
		return ReasonTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCancelled
	default:
		return ReasonMalformed
	}
}
