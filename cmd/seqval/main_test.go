package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const headings = "Donor_ID\tTissue_ID\tIs_Normal\tIs_Normal_for_Donor\tIs_Normal_for_Tissue\tSample\tLibrary\tPlatform\tPlatform_Unit\tGroup_ID\tGroup_Control\tFile\tFile_2"

// manifest returns an IMPORT-1.0 manifest with one record. "X" is not an
// accepted Mark Duplicates value.
func manifest(ourRef, markDuplicates string) string {
	return "Form type:\tIMPORT\n" +
		"Form version:\t1.0\n" +
		"Our Ref:\t" + ourRef + "\n" +
		"Your Ref:\tPRJ-1\n" +
		"Species - Build:\tHUMAN - GRCh38\n" +
		"Seq Protocol:\tWGS\n" +
		"Data Type:\tDNA\n" +
		"Mark Duplicates:\t" + markDuplicates + "\n" +
		headings + "\n" +
		"D1\tT1\tY\tY\tY\tS1\tL1\tILLUMINA\tPU1\tG1\tY\tr1_1.fq.gz\tr1_2.fq.gz\n"
}

// schemaDoc returns a minimal valid schema document.
func schemaDoc(typ, version string) string {
	return fmt.Sprintf(`
type: %s
version: "%s"
header:
  expected: ["Your Ref:"]
  required: ["Your Ref:"]
  validate: {}
body:
  ordered: [Donor_ID, File]
  required: [Donor_ID]
  validate: {}
  validate_ext:
    File: [.bam]
`, typ, version)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// testCmd returns a command capturing stdout and discarding logs.
func testCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	return cmd, &out
}

// resetGlobalFlags restores the persistent flags between tests.
func resetGlobalFlags(t *testing.T) {
	t.Helper()
	cfgFile, verbose, logLevel, schemaDir = "", false, "", ""
	t.Cleanup(func() {
		cfgFile, verbose, logLevel, schemaDir = "", false, "", ""
	})
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := []string{"validate", "lint", "normalise", "schemas", "serve", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (got %v, err %v)", name, cmd, err)
		}
	}

	if cmd, _, err := rootCmd.Find([]string{"normalize"}); err != nil || cmd.Name() != "normalise" {
		t.Errorf("alias normalize should resolve to normalise, got %v (err %v)", cmd, err)
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	resetGlobalFlags(t)

	dir := t.TempDir()
	cfgFile = writeFile(t, dir, "config.yaml", "telemetry:\n  logging:\n    level: warn\n")
	schemaDir = dir

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("level = %q, want warn from file", cfg.Telemetry.Logging.Level)
	}
	if cfg.Schemas.Directory != dir {
		t.Errorf("schema directory = %q, want %q", cfg.Schemas.Directory, dir)
	}

	verbose = true
	cfg, err = loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("verbose level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	resetGlobalFlags(t)
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := loadConfig(); err == nil {
		t.Fatal("loadConfig() with a missing file should fail")
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.tsv", "")
	writeFile(t, dir, "a.csv", "")
	writeFile(t, dir, "nested/c.txt", "")
	writeFile(t, dir, "notes.md", "")
	writeFile(t, dir, ".hidden/d.tsv", "")
	explicit := writeFile(t, t.TempDir(), "manifest.dat", "")

	got, err := expandPaths([]string{dir, explicit}, manifestExtensions)
	if err != nil {
		t.Fatalf("expandPaths() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.tsv"),
		filepath.Join(dir, "nested", "c.txt"),
		explicit,
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("expandPaths() = %v, want %v", got, want)
	}

	if _, err := expandPaths([]string{filepath.Join(dir, "missing")}, manifestExtensions); err == nil {
		t.Error("expandPaths() with a missing path should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd, out := testCmd()
	versionCmd.Run(cmd, nil)

	for _, want := range []string{"seqval " + Version, "Git Commit:", "IMPORT-1.0.json"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("version output missing %q:\n%s", want, out.String())
		}
	}
}
