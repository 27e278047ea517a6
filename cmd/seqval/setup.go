package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"cgp-hq/seqval/pkg/check"
	"cgp-hq/seqval/pkg/cli"
	"cgp-hq/seqval/pkg/config"
	"cgp-hq/seqval/pkg/registry"
	"cgp-hq/seqval/pkg/telemetry/logging"
	"cgp-hq/seqval/pkg/telemetry/metrics"
)

// schemaDir overrides schemas.directory for every command.
var schemaDir string

func init() {
	rootCmd.PersistentFlags().StringVar(&schemaDir, "schema-dir", "", "directory of schema documents (overrides schemas.directory)")
}

// loadConfig loads the configuration file and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("config", err.Error())
	}
	if schemaDir != "" {
		cfg.Schemas.Directory = schemaDir
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs go to the command's error
// stream so reports on stdout stay machine-readable.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	lcfg := logging.ConfigFrom(cfg.Telemetry.Logging)
	lcfg.Writer = stderr(cmd)
	logger, err := logging.New(lcfg)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	return logger, nil
}

// app is the wiring shared by the commands that check manifests.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Collector
	schemas *registry.Manager
}

// newApp loads configuration, builds the logger and metrics collector and
// loads the schema set.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	manager, err := registry.NewManager(&cfg.Schemas, logger.Slog(), registry.WithReloadObserver(collector))
	if err != nil {
		return nil, err
	}
	if err := manager.Load(); err != nil {
		return nil, cli.NewCommandError("load schemas", err)
	}

	return &app{cfg: cfg, logger: logger, metrics: collector, schemas: manager}, nil
}

// checker returns a manifest checker using the app's schemas and telemetry.
func (a *app) checker(extra ...check.Option) *check.Checker {
	opts := []check.Option{
		check.WithOptions(check.OptionsFrom(&a.cfg.Validation)),
		check.WithLogger(a.logger.Slog()),
		check.WithObserver(a.metrics),
		check.WithRejectionRecorder(a.metrics),
	}
	return check.NewChecker(a.schemas, append(opts, extra...)...)
}

// manifestExtensions are the files picked up when a directory is given.
var manifestExtensions = []string{".tsv", ".csv", ".txt"}

// expandPaths expands directories in args into the files below them with
// one of exts. Explicit file arguments are kept whatever their extension;
// hidden files and directories are skipped.
func expandPaths(args []string, exts []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != arg && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && slices.Contains(exts, strings.ToLower(filepath.Ext(path))) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
