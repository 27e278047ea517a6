package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cgp-hq/seqval/pkg/cli"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "seqval",
	Short: "seqval - schema-driven sequencing manifest validator",
	Long: `seqval checks sequencing submission manifests against versioned schemas.

A manifest is a TSV or CSV file with a header section of "Label:" rows
followed by a body table. The "Form type:" and "Form version:" fields
select the schema; every problem found is reported with its location.

Schemas are built in and can be extended or overridden from a directory.

Exit status is 0 when every manifest passed, 1 when findings were reported
and 2 when a manifest or the configuration could not be processed.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the status of the result.
func Execute() {
	err := rootCmd.Execute()
	var findings *cli.FindingsError
	if err != nil && !errors.As(err, &findings) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and SEQVAL_* environment when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// stdout returns the command's output writer. Tests call RunE functions
// with a nil command.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stdout
	}
	return cmd.OutOrStdout()
}

func stderr(cmd *cobra.Command) io.Writer {
	if cmd == nil {
		return os.Stderr
	}
	return cmd.ErrOrStderr()
}
