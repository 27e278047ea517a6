package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cgp-hq/seqval/pkg/check"
	"cgp-hq/seqval/pkg/manifest/finding"
)

// OutputFormat represents the output format for validation reports.
type OutputFormat string

const (
	// FormatText is human-readable output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is a JSON document with a summary and every report.
	FormatJSON OutputFormat = "json"
	// FormatCSV is one row per finding.
	FormatCSV OutputFormat = "csv"
)

// Formats lists the supported output formats.
func Formats() []OutputFormat {
	return []OutputFormat{FormatText, FormatJSON, FormatCSV}
}

// ParseFormat parses an output format name. The empty string means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", NewConfigError("format", fmt.Sprintf("unsupported output format %q (want text, json or csv)", s))
	}
}

// ContentType returns the HTTP media type of the format.
func (f OutputFormat) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Formatter renders validation reports.
type Formatter interface {
	Format(reports []*check.Report) ([]byte, error)
	FormatTo(w io.Writer, reports []*check.Report) error
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}

func format(f Formatter, reports []*check.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, reports); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TextFormatter writes one block per manifest followed by a summary line.
type TextFormatter struct {
	// Quiet omits passing manifests and the summary.
	Quiet bool
}

// Format converts reports to text.
func (f *TextFormatter) Format(reports []*check.Report) ([]byte, error) {
	return format(f, reports)
}

// FormatTo writes reports to w as text.
func (f *TextFormatter) FormatTo(w io.Writer, reports []*check.Report) error {
	ew := &errWriter{w: w}
	for _, r := range reports {
		switch {
		case r.Err != nil || r.Error != "":
			ew.printf("%s: ERROR (%s) %s\n", r.Source, r.Reason, r.Error)
		case len(r.Findings) == 0:
			if !f.Quiet {
				ew.printf("%s: OK (%s, %d records)\n", r.Source, r.Schema, r.Records)
			}
		default:
			ew.printf("%s: FAIL (%s, %d records, %d findings)\n", r.Source, r.Schema, r.Records, len(r.Findings))
			for _, fd := range r.Findings {
				ew.printf("  %s\n", fd)
			}
		}
	}
	if !f.Quiet {
		s := check.Summarize(reports)
		ew.printf("\n%d manifests: %d passed, %d failed, %d rejected, %d findings\n",
			s.Manifests, s.Passed, s.Failed, s.Rejected, s.Findings)
	}
	return ew.err
}

// JSONFormatter writes {"summary": ..., "reports": [...]}.
type JSONFormatter struct {
	Indent bool
}

type jsonDocument struct {
	Summary check.Summary   `json:"summary"`
	Reports []*check.Report `json:"reports"`
}

// Format converts reports to JSON.
func (f *JSONFormatter) Format(reports []*check.Report) ([]byte, error) {
	return format(f, reports)
}

// FormatTo writes reports to w as JSON.
func (f *JSONFormatter) FormatTo(w io.Writer, reports []*check.Report) error {
	if reports == nil {
		reports = []*check.Report{}
	}
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(jsonDocument{
		Summary: check.Summarize(reports),
		Reports: reports,
	})
}

// CSVHeaders are the columns written by CSVFormatter.
var CSVHeaders = []string{"source", "schema", "kind", "section", "field", "record", "group", "line", "value", "message"}

// CSVFormatter writes one row per finding. Rejected manifests produce a
// single row of kind "error"; passing manifests produce none.
type CSVFormatter struct {
	// NoHeader omits the header row.
	NoHeader bool
}

// Format converts reports to CSV.
func (f *CSVFormatter) Format(reports []*check.Report) ([]byte, error) {
	return format(f, reports)
}

// FormatTo writes reports to w as CSV.
func (f *CSVFormatter) FormatTo(w io.Writer, reports []*check.Report) error {
	csvWriter := csv.NewWriter(w)

	if !f.NoHeader {
		if err := csvWriter.Write(CSVHeaders); err != nil {
			return err
		}
	}

	for _, r := range reports {
		if r.Err != nil || r.Error != "" {
			row := []string{r.Source, r.Schema, "error", "", "", "", "", "", r.Reason, r.Error}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
			continue
		}
		for _, fd := range r.Findings {
			if err := csvWriter.Write(findingRow(r, fd)); err != nil {
				return err
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func findingRow(r *check.Report, fd finding.Finding) []string {
	record, line := "", ""
	if fd.Location.Record >= 0 {
		record = strconv.Itoa(fd.Location.Record + 1)
	}
	if fd.Location.Line > 0 {
		line = strconv.Itoa(fd.Location.Line)
	}
	return []string{
		r.Source,
		r.Schema,
		string(fd.Kind),
		string(fd.Location.Section),
		fd.Location.Field,
		record,
		fd.Location.Group,
		line,
		fd.Value,
		fd.Message,
	}
}

// errWriter keeps the first write error so formatting code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
