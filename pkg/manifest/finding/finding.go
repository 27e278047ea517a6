// Package finding defines the data-quality findings produced by manifest
// validation. A finding is not an error: a validation session always
// completes and returns every finding it discovered.
package finding

import (
	"fmt"
	"strings"
)

// Kind identifies the class of a finding.
type Kind string

const (
	KindUnexpectedField   Kind = "unexpected_field"
	KindMissingRequired   Kind = "missing_required"
	KindInvalidValue      Kind = "invalid_value"
	KindInvalidExtension  Kind = "invalid_extension"
	KindExtensionMismatch Kind = "extension_mismatch"
	KindLimitExceeded     Kind = "limit_exceeded"
	KindDuplicateValue    Kind = "duplicate_value"
)

// Kinds lists every finding kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindUnexpectedField,
		KindMissingRequired,
		KindInvalidValue,
		KindInvalidExtension,
		KindExtensionMismatch,
		KindLimitExceeded,
		KindDuplicateValue,
	}
}

// Section is the part of a manifest a finding refers to.
type Section string

const (
	SectionHeader Section = "header"
	SectionBody   Section = "body"
)

// Location identifies where a finding was raised.
type Location struct {
	Section Section `json:"section"`

	// Field is the header label or body column.
	Field string `json:"field"`

	// Record is the zero-based body record index; -1 for header findings.
	Record int `json:"record"`

	// Group is the limit_by cell value for limit findings.
	Group string `json:"group,omitempty"`

	// Line is the 1-based source line when the input came from a file; 0 otherwise.
	Line int `json:"line,omitempty"`
}

// HeaderLocation returns the location of a header field.
func HeaderLocation(label string) Location {
	return Location{Section: SectionHeader, Field: label, Record: -1}
}

// RecordLocation returns the location of a body cell.
func RecordLocation(record int, column string) Location {
	return Location{Section: SectionBody, Field: column, Record: record}
}

// String renders the location for human-readable reports.
func (l Location) String() string {
	var sb strings.Builder
	if l.Section == SectionHeader {
		sb.WriteString(fmt.Sprintf("header %q", l.Field))
	} else {
		sb.WriteString(fmt.Sprintf("record %d column %q", l.Record+1, l.Field))
		if l.Group != "" {
			sb.WriteString(fmt.Sprintf(" group %q", l.Group))
		}
	}
	if l.Line > 0 {
		sb.WriteString(fmt.Sprintf(" (line %d)", l.Line))
	}
	return sb.String()
}

// Finding is a single data-quality issue.
type Finding struct {
	Kind     Kind     `json:"kind"`
	Location Location `json:"location"`
	Message  string   `json:"message"`

	// Value is the offending cell or header value, when there is one.
	Value string `json:"value,omitempty"`
}

// String implements fmt.Stringer.
func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Location, f.Kind, f.Message)
}

// Result is the outcome of one validation session.
type Result struct {
	SessionID string    `json:"session_id"`
	Schema    string    `json:"schema"`
	Findings  []Finding `json:"findings"`
}

// OK reports whether the session produced no findings.
func (r *Result) OK() bool {
	return len(r.Findings) == 0
}

// Count returns the total number of findings.
func (r *Result) Count() int {
	return len(r.Findings)
}

// ByKind returns the findings of the given kind, in result order.
func (r *Result) ByKind(k Kind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

// HasKind reports whether at least one finding has the given kind.
func (r *Result) HasKind(k Kind) bool {
	for _, f := range r.Findings {
		if f.Kind == k {
			return true
		}
	}
	return false
}

// Summary counts findings per kind.
func (r *Result) Summary() map[Kind]int {
	out := make(map[Kind]int)
	for _, f := range r.Findings {
		out[f.Kind]++
	}
	return out
}
