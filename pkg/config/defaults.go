package config

import "time"

// Default values for configuration fields.
const (
	// Schema defaults
	DefaultSchemasDebounceInterval = 250 * time.Millisecond
	DefaultSchemasMaxFileSize      = int64(1 << 20)

	// Validation defaults
	DefaultNullMarker  = "."
	DefaultBodySwitch  = "Donor_ID"
	DefaultMaxRecords  = 100000
	DefaultConcurrency = 4

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = int64(10 << 20)

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsEnabled     = true
	DefaultPrometheusPath     = "/metrics"
	DefaultMetricsNamespace   = "seqval"
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingExporter    = "otlp"
	DefaultTracingServiceName = "seqval"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second
)

// DefaultCompressionSuffixes returns the default compression wrappers.
func DefaultCompressionSuffixes() []string {
	return []string{".gz"}
}

// DefaultDurationBuckets returns the default validation duration buckets.
func DefaultDurationBuckets() []float64 {
	return []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
}

// Default returns a configuration with every field at its default value.
// Boolean fields whose default is true are only set here, since a zero
// value cannot be told apart from an explicit false after unmarshalling.
func Default() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	cfg.Telemetry.Tracing.OTLP.Insecure = DefaultOTLPInsecure
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Schema defaults
	if cfg.Schemas.DebounceInterval == 0 {
		cfg.Schemas.DebounceInterval = DefaultSchemasDebounceInterval
	}
	if cfg.Schemas.MaxFileSize == 0 {
		cfg.Schemas.MaxFileSize = DefaultSchemasMaxFileSize
	}

	// Validation defaults
	if cfg.Validation.NullMarker == "" {
		cfg.Validation.NullMarker = DefaultNullMarker
	}
	if cfg.Validation.CompressionSuffixes == nil {
		cfg.Validation.CompressionSuffixes = DefaultCompressionSuffixes()
	}
	if cfg.Validation.BodySwitch == "" {
		cfg.Validation.BodySwitch = DefaultBodySwitch
	}
	if cfg.Validation.MaxRecords == 0 {
		cfg.Validation.MaxRecords = DefaultMaxRecords
	}
	if cfg.Validation.Concurrency == 0 {
		cfg.Validation.Concurrency = DefaultConcurrency
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = DefaultDurationBuckets()
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 && cfg.Telemetry.Tracing.Sampler == "ratio" {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.OTLP.Timeout == 0 {
		cfg.Telemetry.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}
