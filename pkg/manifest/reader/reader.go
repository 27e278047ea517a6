// Package reader parses delimited manifest files into a header block and
// body rows.
//
// A manifest is a tab- (or comma-) separated file. Rows before the body
// switch are header key/value pairs; the body switch row holds the column
// headings and every later row is a body record:
//
//	Form type:	IMPORT
//	Form version:	1.0
//	Your Ref:	PRJ-1
//	Donor_ID	Tissue_ID	...	File	File_2
//	D1	T1	...	reads_1.fq.gz	reads_2.fq.gz
//
// Blank rows and rows whose first cell is empty are ignored.
package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cgp-hq/seqval/pkg/manifest/schema"
	"cgp-hq/seqval/pkg/manifest/validator"
)

// Well-known header labels.
const (
	FormTypeLabel    = "Form type:"
	FormVersionLabel = "Form version:"
	OurRefLabel      = "Our Ref:"
)

// DefaultBodySwitch is the first heading of the body section.
const DefaultBodySwitch = "Donor_ID"

// Format is the delimiter family of a manifest file.
type Format string

const (
	FormatTSV Format = "tsv"
	FormatCSV Format = "csv"
)

// ErrTooManyRecords is returned when a manifest exceeds Options.MaxRecords.
var ErrTooManyRecords = errors.New("manifest exceeds maximum record count")

// FormatFor infers the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		return FormatTSV, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported manifest extension %q (want .tsv or .csv)", filepath.Ext(path))
	}
}

// Options controls parsing.
type Options struct {
	Format Format

	// BodySwitch is the first cell of the headings row.
	BodySwitch string

	// MaxRecords bounds the number of body rows; 0 means unlimited.
	MaxRecords int
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatTSV
	}
	if o.BodySwitch == "" {
		o.BodySwitch = DefaultBodySwitch
	}
	return o
}

// Row is one body row with its 1-based source line.
type Row struct {
	Line  int
	Cells []string
}

// Manifest is a parsed manifest file. Body rows are kept raw until a schema
// is known; see Records.
type Manifest struct {
	Source      string
	Format      Format
	Header      validator.Header
	HeaderLines []int // source line of each Header field
	Headings    []string
	HeadingLine int
	Rows        []Row
}

// FormType returns the "Form type:" header value.
func (m *Manifest) FormType() string {
	v, _ := m.Header.Get(FormTypeLabel)
	return strings.TrimSpace(v)
}

// FormVersion returns the "Form version:" header value.
func (m *Manifest) FormVersion() string {
	v, _ := m.Header.Get(FormVersionLabel)
	return strings.TrimSpace(v)
}

// SchemaKey returns the registry key selected by the form type and version.
func (m *Manifest) SchemaKey() string {
	return schema.Key(m.FormType(), m.FormVersion())
}

// HeaderLine returns the source line of the first field with label.
func (m *Manifest) HeaderLine(label string) int {
	for i, f := range m.Header {
		if f.Label == label && i < len(m.HeaderLines) {
			return m.HeaderLines[i]
		}
	}
	return 0
}

// RowLine returns the source line of body record i, or 0.
func (m *Manifest) RowLine(i int) int {
	if i < 0 || i >= len(m.Rows) {
		return 0
	}
	return m.Rows[i].Line
}

// StructuralError reports a manifest whose layout cannot be interpreted.
type StructuralError struct {
	Source  string
	Line    int
	Message string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed manifest %s:%d: %s", e.Source, e.Line, e.Message)
	}
	return fmt.Sprintf("malformed manifest %s: %s", e.Source, e.Message)
}

// ReadFile opens and parses path. The format is inferred from the extension
// unless opts.Format is set.
func ReadFile(path string, opts Options) (*Manifest, error) {
	if opts.Format == "" {
		f, err := FormatFor(path)
		if err != nil {
			return nil, err
		}
		opts.Format = f
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer fh.Close()
	return Read(fh, path, opts)
}

// Read parses a manifest from r. source names the input in errors.
func Read(r io.Reader, source string, opts Options) (*Manifest, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	switch opts.Format {
	case FormatTSV:
		cr.Comma = '\t'
	case FormatCSV:
		cr.Comma = ','
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", opts.Format)
	}

	m := &Manifest{Source: source, Format: opts.Format}
	inBody := false
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &StructuralError{Source: source, Line: pe.Line, Message: pe.Err.Error()}
			}
			return nil, fmt.Errorf("failed to read manifest: %w", err)
		}
		line, _ := cr.FieldPos(0)

		cells = trimCells(cells)
		if len(cells) == 0 || cells[0] == "" {
			continue
		}

		if !inBody {
			if cells[0] == opts.BodySwitch {
				inBody = true
				m.Headings = cells
				m.HeadingLine = line
				continue
			}
			value := ""
			if len(cells) > 1 {
				value = cells[1]
			}
			m.Header = append(m.Header, validator.Field{Label: cells[0], Value: value})
			m.HeaderLines = append(m.HeaderLines, line)
			continue
		}

		if opts.MaxRecords > 0 && len(m.Rows) >= opts.MaxRecords {
			return nil, fmt.Errorf("%s: %w (%d)", source, ErrTooManyRecords, opts.MaxRecords)
		}
		m.Rows = append(m.Rows, Row{Line: line, Cells: cells})
	}

	if !inBody {
		return nil, &StructuralError{
			Source:  source,
			Message: fmt.Sprintf("body section not found: no row starts with %q", opts.BodySwitch),
		}
	}
	return m, nil
}

// trimCells drops the trailing empty cells that spreadsheet exports pad rows with.
func trimCells(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}

// Records checks the headings against the body's canonical columns and
// converts the rows into validator records. Cells beyond a row's length are
// left absent.
func (m *Manifest) Records(body *schema.BodySpec) ([]validator.Record, error) {
	ordered := body.Ordered()
	if !equalHeadings(m.Headings, ordered) {
		return nil, &StructuralError{
			Source: m.Source,
			Line:   m.HeadingLine,
			Message: fmt.Sprintf("expected row headings %s but got %s",
				strings.Join(ordered, ", "), strings.Join(m.Headings, ", ")),
		}
	}

	records := make([]validator.Record, 0, len(m.Rows))
	for _, row := range m.Rows {
		if len(row.Cells) > len(ordered) {
			return nil, &StructuralError{
				Source:  m.Source,
				Line:    row.Line,
				Message: fmt.Sprintf("row has %d cells but only %d columns are defined", len(row.Cells), len(ordered)),
			}
		}
		rec := make(validator.Record, len(row.Cells))
		for i, cell := range row.Cells {
			rec[ordered[i]] = cell
		}
		records = append(records, rec)
	}
	return records, nil
}

func equalHeadings(headings, ordered []string) bool {
	if len(headings) != len(ordered) {
		return false
	}
	for i, h := range headings {
		if strings.TrimSpace(h) != ordered[i] {
			return false
		}
	}
	return true
}
