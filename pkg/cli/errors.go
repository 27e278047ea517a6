package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFindings = 1 // at least one manifest produced findings
	ExitError    = 2 // bad usage or configuration, or a manifest could not be validated
)

// ConfigError represents an error in configuration or command-line usage.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// FindingsError is returned by commands whose output has already reported
// findings; it only carries the exit status.
type FindingsError struct {
	Manifests int
	Findings  int
}

func (e *FindingsError) Error() string {
	return fmt.Sprintf("%d findings in %d manifests", e.Findings, e.Manifests)
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var fe *FindingsError
	if errors.As(err, &fe) {
		return ExitFindings
	}
	return ExitError
}
