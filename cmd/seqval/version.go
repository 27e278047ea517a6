package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"cgp-hq/seqval/pkg/manifest/schema/builtin"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information including Git commit, build date and the built-in schemas.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := stdout(cmd)
		fmt.Fprintf(w, "seqval %s\n", Version)
		fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
		fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(w, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(w, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(w, "Built-in Schemas: %v\n", builtin.Names())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
