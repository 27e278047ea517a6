package main

import (
	"encoding/json"
	"strings"
	"testing"

	"cgp-hq/seqval/pkg/cli"
	"cgp-hq/seqval/pkg/registry"
)

func TestListSchemas(t *testing.T) {
	extra := t.TempDir()
	writeFile(t, extra, "EXTRA-1.0.yaml", schemaDoc("EXTRA", "1.0"))

	tests := []struct {
		name    string
		dir     string
		args    []string
		format  string
		wantOut []string
		wantErr bool
	}{
		{
			name:    "built-in schemas",
			wantOut: []string{"IMPORT-1.0", "builtin:IMPORT-1.0.json"},
		},
		{
			name:    "directory schemas are added",
			dir:     extra,
			wantOut: []string{"EXTRA-1.0", "IMPORT-1.0"},
		},
		{
			name: "one schema in detail",
			args: []string{"IMPORT-1.0"},
			wantOut: []string{
				"Schema: IMPORT-1.0",
				"Required header fields: Your Ref:, Species - Build:",
				"Unique columns: File, File_2",
			},
		},
		{
			name:    "unknown key",
			args:    []string{"NOPE-1.0"},
			wantErr: true,
		},
		{
			name:    "unknown format",
			format:  "yaml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobalFlags(t)
			schemaDir = tt.dir
			schemasFlags.format = "text"
			if tt.format != "" {
				schemasFlags.format = tt.format
			}
			cmd, out := testCmd()

			err := listSchemas(cmd, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("listSchemas() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && cli.ExitCode(err) != cli.ExitError {
				t.Errorf("exit code = %d, want %d", cli.ExitCode(err), cli.ExitError)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestListSchemas_JSON(t *testing.T) {
	resetGlobalFlags(t)
	schemasFlags.format = "json"
	t.Cleanup(func() { schemasFlags.format = "text" })
	cmd, out := testCmd()

	if err := listSchemas(cmd, nil); err != nil {
		t.Fatalf("listSchemas() error = %v", err)
	}

	var infos []registry.Info
	if err := json.Unmarshal(out.Bytes(), &infos); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(infos) != 1 || infos[0].Key != "IMPORT-1.0" || len(infos[0].BodyColumns) != 13 {
		t.Errorf("infos = %+v", infos)
	}
}
