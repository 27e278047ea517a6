package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("format", "unsupported output format")

	expected := "config error in format: unsupported output format"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandError(t *testing.T) {
	underlying := errors.New("no schemas available")
	err := NewCommandError("serve", underlying)

	expected := "command serve failed: no schemas available"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is() should see through CommandError")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"findings", &FindingsError{Manifests: 1, Findings: 3}, ExitFindings},
		{"wrapped findings", fmt.Errorf("validate: %w", &FindingsError{Manifests: 2, Findings: 1}), ExitFindings},
		{"config", NewConfigError("format", "bad"), ExitError},
		{"command", NewCommandError("lint", errors.New("boom")), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
