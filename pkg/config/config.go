package config

import "time"

// Config is the root configuration structure for seqval.
// It contains the schema source, validation tuning, the HTTP service and
// telemetry settings.
type Config struct {
	// Schemas controls where manifest schemas come from and how they are
	// kept up to date.
	Schemas SchemasConfig `yaml:"schemas"`

	// Validation contains manifest parsing and validation settings.
	Validation ValidationConfig `yaml:"validation"`

	// Server contains HTTP validation service configuration.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SchemasConfig contains configuration for the schema registry.
type SchemasConfig struct {
	// Directory holds schema documents (.json, .yaml, .yml) named
	// "<type>-<version>". Schemas found here override built-in schemas with
	// the same key. Empty means built-in schemas only.
	Directory string `yaml:"directory"`

	// DisableBuiltin drops the schemas embedded in the binary.
	// Default: false
	DisableBuiltin bool `yaml:"disable_builtin"`

	// AllowNameMismatch accepts schema files whose name does not match the
	// type and version declared inside them.
	// Default: false
	AllowNameMismatch bool `yaml:"allow_name_mismatch"`

	// Watch enables automatic reloading when schema files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period after a file change before the
	// directory is reloaded.
	// Default: 250ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// RescanSchedule is a cron expression for periodic directory rescans,
	// e.g. "*/15 * * * *". Empty disables rescans.
	RescanSchedule string `yaml:"rescan_schedule"`

	// MaxFileSize is the largest schema document accepted, in bytes.
	// Default: 1048576 (1MB)
	MaxFileSize int64 `yaml:"max_file_size"`
}

// ValidationConfig contains manifest parsing and validation settings.
type ValidationConfig struct {
	// NullMarker is a cell value treated as empty.
	// Default: "."
	NullMarker string `yaml:"null_marker"`

	// CompressionSuffixes widen a file extension by one segment
	// ("reads.fastq.gz" has extension ".fastq.gz").
	// Default: [".gz"]
	CompressionSuffixes []string `yaml:"compression_suffixes"`

	// BodySwitch is the first heading of the body section.
	// Default: "Donor_ID"
	BodySwitch string `yaml:"body_switch"`

	// MaxRecords bounds the number of body rows per manifest (0 = unlimited).
	// Default: 100000
	MaxRecords int `yaml:"max_records"`

	// Concurrency is the number of manifests validated in parallel in batch mode.
	// Default: 4
	Concurrency int `yaml:"concurrency"`
}

// ServerConfig contains configuration for the HTTP validation service.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the size of an uploaded manifest.
	// Default: 10485760 (10MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "seqval"
	Namespace string `yaml:"namespace"`

	// DurationBuckets defines histogram buckets for validation duration (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Exporter determines the trace exporter to use.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "seqval"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
