package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// Fields missing from the file keep their default values. The result is
// validated; use LoadConfigWithEnvOverrides to also apply environment
// variables.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SEQVAL_SECTION_FIELD (e.g., SEQVAL_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from defaults.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format SEQVAL_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Schema overrides
	if val := os.Getenv("SEQVAL_SCHEMAS_DIRECTORY"); val != "" {
		cfg.Schemas.Directory = val
	}
	if val := os.Getenv("SEQVAL_SCHEMAS_DISABLE_BUILTIN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Schemas.DisableBuiltin = b
		}
	}
	if val := os.Getenv("SEQVAL_SCHEMAS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Schemas.Watch = b
		}
	}
	if val := os.Getenv("SEQVAL_SCHEMAS_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Schemas.DebounceInterval = d
		}
	}
	if val := os.Getenv("SEQVAL_SCHEMAS_RESCAN_SCHEDULE"); val != "" {
		cfg.Schemas.RescanSchedule = val
	}

	// Validation overrides
	if val := os.Getenv("SEQVAL_VALIDATION_NULL_MARKER"); val != "" {
		cfg.Validation.NullMarker = val
	}
	if val := os.Getenv("SEQVAL_VALIDATION_COMPRESSION_SUFFIXES"); val != "" {
		cfg.Validation.CompressionSuffixes = splitList(val)
	}
	if val := os.Getenv("SEQVAL_VALIDATION_BODY_SWITCH"); val != "" {
		cfg.Validation.BodySwitch = val
	}
	if val := os.Getenv("SEQVAL_VALIDATION_MAX_RECORDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Validation.MaxRecords = i
		}
	}
	if val := os.Getenv("SEQVAL_VALIDATION_CONCURRENCY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Validation.Concurrency = i
		}
	}

	// Server overrides
	if val := os.Getenv("SEQVAL_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("SEQVAL_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("SEQVAL_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("SEQVAL_SERVER_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxBodyBytes = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("SEQVAL_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SEQVAL_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SEQVAL_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SEQVAL_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("SEQVAL_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("SEQVAL_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("SEQVAL_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// splitList splits a comma-separated environment value.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
