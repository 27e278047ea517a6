package schema

import (
	"fmt"
	"strings"
)

// ErrorType categorizes a schema loading failure.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // document is not valid JSON/YAML
	ErrorTypeStructural ErrorType = "structural" // meta-schema violation (types, missing or unknown keys)
	ErrorTypeReference  ErrorType = "reference"  // cross-reference between sections is broken
	ErrorTypeRule       ErrorType = "rule"       // malformed value/limit rule or extension
	ErrorTypeIO         ErrorType = "io"         // schema file could not be read
)

// Error is a single problem found while loading a schema document.
type Error struct {
	Type    ErrorType
	Source  string // file or name the document came from
	Path    string // JSON pointer into the document, e.g. "/body/validate/Group_Control/0"
	Line    int    // 1-based; 0 when unknown
	Column  int    // 1-based; 0 when unknown
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.Path != "" {
		sb.WriteString(fmt.Sprintf(" at %s", e.Path))
	}
	if e.Source != "" {
		if e.Line > 0 {
			sb.WriteString(fmt.Sprintf(" (%s:%d:%d)", e.Source, e.Line, e.Column))
		} else {
			sb.WriteString(fmt.Sprintf(" (%s)", e.Source))
		}
	}
	return sb.String()
}

// Errors is the SchemaError returned by Load. Loading is fatal on any
// problem, but every problem in the document is reported at once.
type Errors struct {
	Source string
	Errors []*Error
}

func (el *Errors) add(e *Error) {
	if e.Source == "" {
		e.Source = el.Source
	}
	el.Errors = append(el.Errors, e)
}

// HasErrors returns true if the list contains any errors.
func (el *Errors) HasErrors() bool {
	return len(el.Errors) > 0
}

// HasErrorType returns true if at least one error has the given type.
func (el *Errors) HasErrorType(t ErrorType) bool {
	for _, e := range el.Errors {
		if e.Type == t {
			return true
		}
	}
	return false
}

// Error implements the error interface.
func (el *Errors) Error() string {
	if len(el.Errors) == 1 {
		return "invalid schema: " + el.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("invalid schema: %d problem(s):", len(el.Errors)))
	for _, e := range el.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is / errors.As.
func (el *Errors) Unwrap() []error {
	out := make([]error, len(el.Errors))
	for i, e := range el.Errors {
		out[i] = e
	}
	return out
}

// toError returns nil if the list is empty, otherwise the list itself.
func (el *Errors) toError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}
