package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seqval.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Validation.NullMarker != DefaultNullMarker {
		t.Errorf("NullMarker = %q, want %q", cfg.Validation.NullMarker, DefaultNullMarker)
	}
	if len(cfg.Validation.CompressionSuffixes) != 1 || cfg.Validation.CompressionSuffixes[0] != ".gz" {
		t.Errorf("CompressionSuffixes = %v, want [.gz]", cfg.Validation.CompressionSuffixes)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
	if cfg.Telemetry.Tracing.Enabled {
		t.Error("tracing should be disabled by default")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default configuration should be valid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
schemas:
  directory: /etc/seqval/schemas
  watch: true
  rescan_schedule: "*/10 * * * *"
validation:
  null_marker: "NA"
  max_records: 10
server:
  listen_address: "0.0.0.0:9000"
telemetry:
  logging:
    level: debug
    format: json
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Schemas.Directory != "/etc/seqval/schemas" || !cfg.Schemas.Watch {
		t.Errorf("schemas = %+v", cfg.Schemas)
	}
	if cfg.Schemas.DebounceInterval != DefaultSchemasDebounceInterval {
		t.Errorf("DebounceInterval = %v, want default", cfg.Schemas.DebounceInterval)
	}
	if cfg.Validation.NullMarker != "NA" || cfg.Validation.MaxRecords != 10 {
		t.Errorf("validation = %+v", cfg.Validation)
	}
	if cfg.Validation.BodySwitch != DefaultBodySwitch {
		t.Errorf("BodySwitch = %q, want default", cfg.Validation.BodySwitch)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("ListenAddress = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout = %v, want default", cfg.Server.ReadTimeout)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Telemetry.Logging)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics.enabled: false should be honoured")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "schemas: [unclosed",
			wantErr: "failed to parse",
		},
		{
			name:    "invalid cron",
			content: "schemas:\n  directory: /tmp\n  rescan_schedule: \"not a schedule\"\n",
			wantErr: "schemas.rescan_schedule",
		},
		{
			name:    "watch without directory",
			content: "schemas:\n  watch: true\n",
			wantErr: "schemas.directory",
		},
		{
			name:    "bad log level",
			content: "telemetry:\n  logging:\n    level: verbose\n",
			wantErr: "telemetry.logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "validation:\n  null_marker: \"NA\"\n")

	t.Setenv("SEQVAL_VALIDATION_NULL_MARKER", "-")
	t.Setenv("SEQVAL_VALIDATION_COMPRESSION_SUFFIXES", ".gz, .bz2")
	t.Setenv("SEQVAL_VALIDATION_CONCURRENCY", "8")
	t.Setenv("SEQVAL_SERVER_READ_TIMEOUT", "5s")
	t.Setenv("SEQVAL_TELEMETRY_METRICS_ENABLED", "false")
	t.Setenv("SEQVAL_VALIDATION_MAX_RECORDS", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Validation.NullMarker != "-" {
		t.Errorf("NullMarker = %q, want %q", cfg.Validation.NullMarker, "-")
	}
	if got := cfg.Validation.CompressionSuffixes; len(got) != 2 || got[1] != ".bz2" {
		t.Errorf("CompressionSuffixes = %v", got)
	}
	if cfg.Validation.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Validation.Concurrency)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics should be disabled by environment")
	}
	if cfg.Validation.MaxRecords != DefaultMaxRecords {
		t.Errorf("unparseable override should be ignored, MaxRecords = %d", cfg.Validation.MaxRecords)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("SEQVAL_SCHEMAS_DIRECTORY", "/srv/schemas")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Schemas.Directory != "/srv/schemas" {
		t.Errorf("Directory = %q", cfg.Schemas.Directory)
	}
}

func TestLoadConfigWithEnvOverrides_RevalidatesOverrides(t *testing.T) {
	t.Setenv("SEQVAL_VALIDATION_CONCURRENCY", "-1")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil {
		t.Fatal("expected validation error after override")
	}
	if !strings.Contains(err.Error(), "after environment overrides") {
		t.Errorf("error = %q", err.Error())
	}
}
