package validator

import (
	"fmt"
	"strings"
)

// Field is one header key/value pair.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Header is the header block of a manifest. Order is significant: findings
// for unexpected and invalid labels follow it.
type Header []Field

// Get returns the value of the first field with the given label.
func (h Header) Get(label string) (string, bool) {
	for _, f := range h {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

// Map returns the header as a label to value map. Later duplicates are ignored.
func (h Header) Map() map[string]string {
	out := make(map[string]string, len(h))
	for _, f := range h {
		if _, ok := out[f.Label]; !ok {
			out[f.Label] = f.Value
		}
	}
	return out
}

// Record is one body row, keyed by column name. Trailing optional columns
// may be absent.
type Record map[string]string

// Options tunes how cells are interpreted.
type Options struct {
	// NullMarker is a cell value treated the same as an empty cell.
	NullMarker string

	// CompressionSuffixes widen a file's extension by one segment, so that
	// "reads.fastq.gz" has the extension ".fastq.gz" rather than ".gz".
	CompressionSuffixes []string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		NullMarker:          ".",
		CompressionSuffixes: []string{".gz"},
	}
}

// empty reports whether a cell holds no usable value.
func (o Options) empty(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || (o.NullMarker != "" && v == o.NullMarker)
}

// StructuralError reports input that does not fit the schema's shape, such
// as a record carrying a column outside the canonical column set. It is
// returned instead of a result and is never mixed with findings.
type StructuralError struct {
	Record  int // zero-based; -1 when not tied to a record
	Column  string
	Message string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Record < 0 {
		return fmt.Sprintf("structural error: %s", e.Message)
	}
	if e.Column != "" {
		return fmt.Sprintf("structural error: record %d column %q: %s", e.Record, e.Column, e.Message)
	}
	return fmt.Sprintf("structural error: record %d: %s", e.Record, e.Message)
}
