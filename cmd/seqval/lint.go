package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cgp-hq/seqval/pkg/cli"
	"cgp-hq/seqval/pkg/manifest/schema"
	"cgp-hq/seqval/pkg/registry"
)

var lintFlags struct {
	format            string
	allowNameMismatch bool
}

var lintCmd = &cobra.Command{
	Use:   "lint [flags] PATH...",
	Short: "Validate schema documents",
	Long: `Validate manifest schema documents before they are deployed.

Each PATH is a schema document (.json, .yaml or .yml) or a directory of
them. Every problem in a document is reported with its JSON pointer and,
where known, its line and column:
  - syntax errors
  - structural errors (unknown keys, wrong types, missing sections)
  - broken references between sections (required columns not in ordered,
    unique columns not in the body, limit_by naming an unknown column)
  - malformed value rules and file extensions
  - file names that do not match the declared type and version

Examples:
  # Lint one schema
  seqval lint schemas/IMPORT-1.0.json

  # Lint a directory, JSON output for CI/CD
  seqval lint --format json schemas/`,
	Args: cobra.MinimumNArgs(1),
	RunE: lintSchemas,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.format, "format", "f", "text", "output format: text, json")
	lintCmd.Flags().BoolVar(&lintFlags.allowNameMismatch, "allow-name-mismatch", false, "accept files not named <type>-<version>")
}

// lintProblem is one problem found in a schema document.
type lintProblem struct {
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// lintResult is the outcome for one file.
type lintResult struct {
	File     string        `json:"file"`
	Key      string        `json:"key,omitempty"`
	Valid    bool          `json:"valid"`
	Problems []lintProblem `json:"problems,omitempty"`
}

func lintSchemas(cmd *cobra.Command, args []string) error {
	if lintFlags.format != "text" && lintFlags.format != "json" {
		return cli.NewConfigError("format", fmt.Sprintf("unsupported output format %q (want text or json)", lintFlags.format))
	}

	files, err := expandPaths(args, schemaExtensions)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}
	if len(files) == 0 {
		return cli.NewCommandError("lint", fmt.Errorf("no schema documents found"))
	}

	loaderConfig := registry.DefaultLoaderConfig()
	loaderConfig.RequireNameMatch = !lintFlags.allowNameMismatch
	loader := registry.NewLoader(loaderConfig)

	results := make([]lintResult, 0, len(files))
	seen := make(map[string]string)
	invalid, problems := 0, 0

	for _, file := range files {
		result := lintResult{File: file, Valid: true}

		s, err := loader.LoadFile(file)
		switch {
		case err != nil:
			result.Problems = lintProblems(err)
		default:
			result.Key = s.Key()
			if prev, dup := seen[s.Key()]; dup {
				result.Problems = []lintProblem{{
					Type:    "duplicate",
					Message: fmt.Sprintf("schema %s is also declared by %s", s.Key(), prev),
				}}
			} else {
				seen[s.Key()] = file
			}
		}

		if len(result.Problems) > 0 {
			result.Valid = false
			invalid++
			problems += len(result.Problems)
		}
		results = append(results, result)
	}

	w := stdout(cmd)
	if lintFlags.format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return cli.NewCommandError("lint", err)
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(w, "✓ %s (%s)\n", r.File, r.Key)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", r.File)
			for _, p := range r.Problems {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
		fmt.Fprintf(w, "\n%d schema documents: %d valid, %d invalid\n", len(results), len(results)-invalid, invalid)
	}

	if invalid > 0 {
		return &cli.FindingsError{Manifests: invalid, Findings: problems}
	}
	return nil
}

func (p lintProblem) String() string {
	var sb strings.Builder
	if p.Line > 0 {
		fmt.Fprintf(&sb, "%d:%d: ", p.Line, p.Column)
	}
	fmt.Fprintf(&sb, "[%s] %s", p.Type, p.Message)
	if p.Path != "" {
		fmt.Fprintf(&sb, " at %s", p.Path)
	}
	return sb.String()
}

// lintProblems flattens a loader error into problems.
func lintProblems(err error) []lintProblem {
	var schemaErrs *schema.Errors
	if errors.As(err, &schemaErrs) {
		out := make([]lintProblem, 0, len(schemaErrs.Errors))
		for _, e := range schemaErrs.Errors {
			out = append(out, lintProblem{
				Type:    string(e.Type),
				Path:    e.Path,
				Line:    e.Line,
				Column:  e.Column,
				Message: e.Message,
			})
		}
		return out
	}

	var mismatch *registry.NameMismatchError
	if errors.As(err, &mismatch) {
		return []lintProblem{{
			Type:    "name",
			Message: fmt.Sprintf("file is named %q but declares %q", mismatch.FileKey, mismatch.Declared),
		}}
	}

	return []lintProblem{{Type: string(schema.ErrorTypeIO), Message: err.Error()}}
}

var schemaExtensions = []string{".json", ".yaml", ".yml"}
