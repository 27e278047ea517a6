package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSchemas(&cfg.Schemas)...)
	errs = append(errs, validateValidation(&cfg.Validation)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateSchemas(cfg *SchemasConfig) []FieldError {
	var errs []FieldError

	if cfg.DisableBuiltin && cfg.Directory == "" {
		errs = append(errs, FieldError{
			Field:   "schemas.directory",
			Message: "a schema directory is required when built-in schemas are disabled",
		})
	}
	if (cfg.Watch || cfg.RescanSchedule != "") && cfg.Directory == "" {
		errs = append(errs, FieldError{
			Field:   "schemas.directory",
			Message: "watching or rescanning requires a schema directory",
		})
	}
	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "schemas.debounce_interval",
			Message: "debounce interval must be non-negative",
		})
	}
	if cfg.RescanSchedule != "" {
		if _, err := cron.ParseStandard(cfg.RescanSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "schemas.rescan_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}
	if cfg.MaxFileSize < 0 {
		errs = append(errs, FieldError{
			Field:   "schemas.max_file_size",
			Message: "max file size must be non-negative",
		})
	}

	return errs
}

func validateValidation(cfg *ValidationConfig) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(cfg.BodySwitch) == "" {
		errs = append(errs, FieldError{
			Field:   "validation.body_switch",
			Message: "body switch is required",
		})
	}
	for i, s := range cfg.CompressionSuffixes {
		if len(s) < 2 || !strings.HasPrefix(s, ".") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("validation.compression_suffixes[%d]", i),
				Message: fmt.Sprintf("suffix %q must start with '.'", s),
			})
		}
	}
	if cfg.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "validation.max_records",
			Message: "max records must be non-negative",
		})
	}
	if cfg.Concurrency < 1 {
		errs = append(errs, FieldError{
			Field:   "validation.concurrency",
			Message: "concurrency must be at least 1",
		})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be non-negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}
	switch cfg.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json, text, or console)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}
	for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
		if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q (must be always, never, or ratio)", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "sample ratio must be between 0.0 and 1.0",
			})
		}
		if cfg.Tracing.Exporter != "otlp" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.exporter",
				Message: fmt.Sprintf("unsupported exporter %q (must be otlp)", cfg.Tracing.Exporter),
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
	}

	return errs
}
