package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cgp-hq/seqval/pkg/check"
	"cgp-hq/seqval/pkg/cli"
)

var validateFlags struct {
	format      string
	quiet       bool
	progress    bool
	concurrency int
	output      string
}

var validateCmd = &cobra.Command{
	Use:   "validate [flags] PATH...",
	Short: "Validate manifests",
	Long: `Validate sequencing manifests against their schemas.

Each PATH is a manifest file (.tsv or .csv) or a directory searched for
manifests. The schema is selected by the "Form type:" and "Form version:"
header fields. Every finding is reported, not just the first.

Examples:
  # Validate one manifest
  seqval validate manifest.tsv

  # Validate a directory with 8 workers, reporting only failures
  seqval validate --concurrency 8 --quiet submissions/

  # CSV report for a spreadsheet
  seqval validate --format csv --output report.csv submissions/

  # Use site schemas alongside the built-in ones
  seqval validate --schema-dir /etc/seqval/schemas manifest.tsv`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateManifests,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "text", "report format: text, json, csv")
	validateCmd.Flags().BoolVarP(&validateFlags.quiet, "quiet", "q", false, "only report manifests with findings (text format)")
	validateCmd.Flags().BoolVar(&validateFlags.progress, "progress", false, "show a progress bar on stderr")
	validateCmd.Flags().IntVarP(&validateFlags.concurrency, "concurrency", "j", 0, "manifests validated in parallel (default from config)")
	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "", "write the report to a file instead of stdout")
}

func validateManifests(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return err
	}
	if validateFlags.concurrency < 0 {
		return cli.NewConfigError("concurrency", "must not be negative")
	}

	files, err := expandPaths(args, manifestExtensions)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	if len(files) == 0 {
		return cli.NewCommandError("validate", fmt.Errorf("no manifests found"))
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	opts := check.OptionsFrom(&a.cfg.Validation)
	if validateFlags.concurrency > 0 {
		opts.Concurrency = validateFlags.concurrency
	}
	extra := []check.Option{check.WithOptions(opts)}

	var progress cli.ProgressReporter
	if validateFlags.progress {
		progress = cli.NewProgressReporter(stderr(cmd))
		if p, ok := progress.(*cli.SimpleProgress); ok {
			extra = append(extra, check.WithProgress(p.Callback()))
		}
		progress.Start(len(files))
	}

	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}
	ctx, cancel := cli.SetupSignalHandler(ctx)
	defer cancel()

	reports := a.checker(extra...).CheckFiles(ctx, files)
	if progress != nil {
		progress.Finish()
	}

	if err := writeReports(cmd, format, reports); err != nil {
		return cli.NewCommandError("validate", err)
	}
	return batchResult(reports)
}

func writeReports(cmd *cobra.Command, format cli.OutputFormat, reports []*check.Report) error {
	formatter := cli.NewFormatter(format)
	if t, ok := formatter.(*cli.TextFormatter); ok {
		t.Quiet = validateFlags.quiet
	}

	var w io.Writer = stdout(cmd)
	if validateFlags.output != "" {
		f, err := os.Create(validateFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer f.Close()
		w = f
	}
	return formatter.FormatTo(w, reports)
}

// batchResult turns a batch summary into the command's error: rejected
// manifests take precedence over findings.
func batchResult(reports []*check.Report) error {
	s := check.Summarize(reports)
	switch {
	case s.Rejected > 0:
		return cli.NewCommandError("validate", fmt.Errorf("%d of %d manifests could not be validated", s.Rejected, s.Manifests))
	case s.Failed > 0:
		return &cli.FindingsError{Manifests: s.Failed, Findings: s.Findings}
	default:
		return nil
	}
}
