package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cgp-hq/seqval/pkg/check"
	"cgp-hq/seqval/pkg/cli"
	"cgp-hq/seqval/pkg/manifest/output"
)

var normaliseFlags struct {
	outDir  string
	convert bool
}

var normaliseCmd = &cobra.Command{
	Use:     "normalise [flags] MANIFEST...",
	Aliases: []string{"normalize"},
	Short:   "Write normalised copies of valid manifests",
	Long: `Validate manifests and write each one that passes in normalised form.

Two files are written per manifest, named after its "Our Ref:" value:
<ref>.tsv with the header and body in schema order, and <ref>.json. A
UUID is assigned when "Our Ref:" is empty. Manifests with findings are
reported and nothing is written for them.

With --convert, CSV manifests are rewritten as TSV without validation.

Examples:
  # Normalise into ./out
  seqval normalise --out out/ manifest.tsv

  # Convert a spreadsheet export to TSV
  seqval normalise --convert --out out/ manifest.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: normaliseManifests,
}

func init() {
	rootCmd.AddCommand(normaliseCmd)

	normaliseCmd.Flags().StringVarP(&normaliseFlags.outDir, "out", "o", ".", "output directory")
	normaliseCmd.Flags().BoolVar(&normaliseFlags.convert, "convert", false, "only convert to TSV, without validation")
}

func normaliseManifests(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(normaliseFlags.outDir, 0o755); err != nil {
		return cli.NewCommandError("normalise", fmt.Errorf("failed to create output directory: %w", err))
	}

	files, err := expandPaths(args, manifestExtensions)
	if err != nil {
		return cli.NewCommandError("normalise", err)
	}

	if normaliseFlags.convert {
		return convertManifests(cmd, files)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	checker := a.checker()

	ctx := context.Background()
	if cmd != nil && cmd.Context() != nil {
		ctx = cmd.Context()
	}

	w := stdout(cmd)
	var reports []*check.Report
	var failures []error

	for _, file := range files {
		in, report, err := checker.ValidateFile(ctx, file)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", file, err))
			continue
		}
		reports = append(reports, report)
		if !report.OK() {
			continue
		}

		tsvPath, jsonPath, err := output.Write(normaliseFlags.outDir, in.Schema, in.Manifest.Header, in.Records)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", file, err))
			continue
		}
		fmt.Fprintf(w, "%s -> %s, %s\n", file, tsvPath, jsonPath)
	}

	var failed []*check.Report
	for _, r := range reports {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		if err := (&cli.TextFormatter{Quiet: true}).FormatTo(w, failed); err != nil {
			return cli.NewCommandError("normalise", err)
		}
	}

	if len(failures) > 0 {
		return cli.NewCommandError("normalise", errors.Join(failures...))
	}
	if len(failed) > 0 {
		s := check.Summarize(failed)
		return &cli.FindingsError{Manifests: s.Failed, Findings: s.Findings}
	}
	return nil
}

func convertManifests(cmd *cobra.Command, files []string) error {
	w := stdout(cmd)
	var failures []error
	for _, file := range files {
		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		out, err := output.ConvertFile(file, filepath.Join(normaliseFlags.outDir, base+".tsv"))
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", file, err))
			continue
		}
		fmt.Fprintf(w, "%s -> %s\n", file, out)
	}
	if len(failures) > 0 {
		return cli.NewCommandError("normalise", errors.Join(failures...))
	}
	return nil
}
