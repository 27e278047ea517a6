// Package config provides configuration management for seqval.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("seqval.yaml")
//
//  2. From a YAML file (or defaults, with an empty path) plus environment
//     variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("seqval.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SEQVAL_SECTION_FIELD.
// For example:
//
//   - SEQVAL_SCHEMAS_DIRECTORY overrides schemas.directory
//   - SEQVAL_VALIDATION_NULL_MARKER overrides validation.null_marker
//   - SEQVAL_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	schemas:
//	  directory: "/etc/seqval/schemas"
//	  watch: true
//	  rescan_schedule: "*/30 * * * *"
//
//	validation:
//	  null_marker: "."
//	  compression_suffixes: [".gz"]
//	  max_records: 50000
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
