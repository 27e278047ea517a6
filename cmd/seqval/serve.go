package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"cgp-hq/seqval/pkg/cli"
	"cgp-hq/seqval/pkg/server"
	"cgp-hq/seqval/pkg/telemetry/health"
	"cgp-hq/seqval/pkg/telemetry/tracing"
)

var serveFlags struct {
	listenAddress string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation service",
	Long: `Start the HTTP validation service.

Manifests are posted to /v1/validate for a report or to /v1/normalise for
the normalised document. The active schemas are listed at /v1/schemas and
can be reloaded with POST /v1/schemas/reload or SIGHUP. Health, readiness
and Prometheus metrics endpoints are served alongside.

When schemas.watch or schemas.rescan_schedule is set, the schema directory
is reloaded automatically; a failed reload keeps the previous schemas.

Examples:
  # Start with default config
  seqval serve

  # Start with custom config and a different address
  seqval serve --config /etc/seqval/config.yaml --listen 0.0.0.0:8080

  # Validate config and schemas without starting the server
  seqval serve --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config and schemas without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		a.cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	logger := a.logger.Slog()

	if serveFlags.dryRun {
		fmt.Fprintf(stdout(cmd), "✓ Configuration valid (%d schemas, version %s)\n",
			len(a.schemas.Schemas()), a.schemas.Version())
		return nil
	}

	tracer, err := tracing.New(&a.cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	hc := health.New(5 * time.Second)
	hc.RegisterCheck("schemas", health.SchemaCheck(a.schemas, a.schemas.Registry()))

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithHealth(hc),
		server.WithBuildInfo(server.BuildInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate}),
	}
	if a.cfg.Telemetry.Metrics.Enabled {
		opts = append(opts, server.WithMetrics(a.metrics, a.cfg.Telemetry.Metrics.Path))
	}
	srv := server.NewServer(&a.cfg.Server, a.schemas, a.checker(), opts...)

	parent := context.Background()
	if cmd != nil && cmd.Context() != nil {
		parent = cmd.Context()
	}
	ctx, cancel := cli.SetupSignalHandler(parent)
	defer cancel()

	var wg conc.WaitGroup
	defer wg.Wait()
	defer cancel()

	if a.cfg.Schemas.Directory != "" && (a.cfg.Schemas.Watch || a.cfg.Schemas.RescanSchedule != "") {
		wg.Go(func() {
			if err := a.schemas.Watch(ctx); err != nil {
				logger.Error("schema watch stopped", "error", err)
			}
		})
	}

	reload, stopReload := cli.ReloadSignal()
	defer stopReload()
	wg.Go(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-reload:
				if err := a.schemas.Reload(); err != nil {
					logger.Error("schema reload failed, keeping previous schemas", "error", err)
					continue
				}
				logger.Info("schemas reloaded", "version", a.schemas.Version())
			}
		}
	})

	logger.Info("seqval starting",
		"version", Version,
		"listen_address", a.cfg.Server.ListenAddress,
		"schemas", len(a.schemas.Schemas()),
		"schema_directory", a.cfg.Schemas.Directory,
		"tracing", tracer.Enabled(),
	)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}
