package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cgp-hq/seqval/pkg/cli"
	"cgp-hq/seqval/pkg/registry"
)

var schemasFlags struct {
	format string
}

var schemasCmd = &cobra.Command{
	Use:   "schemas [KEY...]",
	Short: "List the active schemas",
	Long: `List the schemas manifests are validated against.

Built-in schemas are combined with the configured schema directory, where a
document overrides the built-in schema with the same key. With KEY
arguments ("<type>-<version>") only those schemas are shown, in detail.

Examples:
  # List every schema
  seqval schemas

  # Show the columns of one schema
  seqval schemas IMPORT-1.0

  # Include site schemas, JSON output
  seqval schemas --schema-dir /etc/seqval/schemas --format json`,
	RunE: listSchemas,
}

func init() {
	rootCmd.AddCommand(schemasCmd)

	schemasCmd.Flags().StringVarP(&schemasFlags.format, "format", "f", "text", "output format: text, json")
}

func listSchemas(cmd *cobra.Command, args []string) error {
	if schemasFlags.format != "text" && schemasFlags.format != "json" {
		return cli.NewConfigError("format", fmt.Sprintf("unsupported output format %q (want text or json)", schemasFlags.format))
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	infos := registry.DescribeAll(a.schemas.Schemas())
	if len(args) > 0 {
		byKey := make(map[string]registry.Info, len(infos))
		for _, info := range infos {
			byKey[info.Key] = info
		}
		selected := make([]registry.Info, 0, len(args))
		for _, key := range args {
			info, ok := byKey[key]
			if !ok {
				return cli.NewCommandError("schemas", &registry.NotFoundError{Key: key})
			}
			selected = append(selected, info)
		}
		infos = selected
	}

	w := stdout(cmd)
	if schemasFlags.format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	}

	if len(args) == 0 {
		for _, info := range infos {
			fmt.Fprintf(w, "%-20s %2d header fields  %2d body columns  %s\n",
				info.Key, len(info.HeaderExpected), len(info.BodyColumns), info.Source)
		}
		return nil
	}

	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Schema: %s\n", info.Key)
		fmt.Fprintf(w, "Source: %s\n", info.Source)
		fmt.Fprintf(w, "Header fields: %s\n", strings.Join(info.HeaderExpected, ", "))
		fmt.Fprintf(w, "Required header fields: %s\n", strings.Join(info.HeaderRequired, ", "))
		fmt.Fprintf(w, "Body columns: %s\n", strings.Join(info.BodyColumns, ", "))
		fmt.Fprintf(w, "Required body columns: %s\n", strings.Join(info.BodyRequired, ", "))
		if len(info.Unique) > 0 {
			fmt.Fprintf(w, "Unique columns: %s\n", strings.Join(info.Unique, ", "))
		}
	}
	return nil
}
