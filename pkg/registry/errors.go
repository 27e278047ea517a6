package registry

import (
	"fmt"
	"strings"
)

// LoadError represents an error that occurred while reading a schema file
// from disk, before the document itself was interpreted.
type LoadError struct {
	// FilePath is the path to the file that failed to load
	FilePath string

	// Message describes the error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema file %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// NameMismatchError is returned when a schema file's name does not match the
// type and version declared in the document.
type NameMismatchError struct {
	FilePath string
	FileKey  string
	Declared string
}

// Error implements the error interface.
func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("schema file %q is named %q but declares %q", e.FilePath, e.FileKey, e.Declared)
}

// NotFoundError is returned when no schema is registered for a type and version.
type NotFoundError struct {
	Key string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Key == "-" || strings.HasPrefix(e.Key, "-") || strings.HasSuffix(e.Key, "-") {
		return fmt.Sprintf("no schema for %q: form type and form version must both be set", e.Key)
	}
	return fmt.Sprintf("no schema registered for %q", e.Key)
}

// RegistryError represents an error that occurred during registry operations.
type RegistryError struct {
	// Key is the schema key involved in the error
	Key string

	// Operation is the operation that failed (e.g., "register", "replace")
	Operation string

	// Message describes the registry error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("registry error for schema %q during %s: %s", e.Key, e.Operation, e.Message)
	}
	return fmt.Sprintf("registry error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *RegistryError) Unwrap() error {
	return e.Cause
}

// ErrorList contains multiple errors that occurred while loading a directory.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *ErrorList) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if there are no errors, the single error if there is one,
// or the ErrorList itself if there are multiple errors.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
