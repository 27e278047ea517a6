package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys. Custom keys use the "seqval.*" namespace.
const (
	AttrSessionID = "seqval.session_id"
	AttrRequestID = "seqval.request_id"
	AttrSchema    = "seqval.schema"
	AttrManifest  = "seqval.manifest"
	AttrFormat    = "seqval.manifest.format"
	AttrRecords   = "seqval.records"
	AttrFindings  = "seqval.findings"
	AttrBatchSize = "seqval.batch.size"
)

// SetManifestAttributes records which manifest and schema a span works on.
func SetManifestAttributes(span trace.Span, source, format, schemaKey string) {
	attrs := []attribute.KeyValue{attribute.String(AttrManifest, source)}
	if format != "" {
		attrs = append(attrs, attribute.String(AttrFormat, format))
	}
	if schemaKey != "" {
		attrs = append(attrs, attribute.String(AttrSchema, schemaKey))
	}
	span.SetAttributes(attrs...)
}

// SetResultAttributes records the size of a validation outcome.
func SetResultAttributes(span trace.Span, records, findings int) {
	span.SetAttributes(
		attribute.Int(AttrRecords, records),
		attribute.Int(AttrFindings, findings),
	)
}
