// Package output writes validated manifests in their normalised form: a
// canonical TSV file and a JSON document, both named after the manifest's
// "Our Ref:" value.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"cgp-hq/seqval/pkg/manifest/reader"
	"cgp-hq/seqval/pkg/manifest/schema"
	"cgp-hq/seqval/pkg/manifest/validator"
)

// Document is the JSON representation of a normalised manifest.
type Document struct {
	Header map[string]string   `json:"header"`
	Body   []map[string]string `json:"body"`
}

// AssignReference returns a copy of header whose "Our Ref:" field holds a
// value, generating a UUID when it is empty or absent, and the reference.
func AssignReference(header validator.Header) (validator.Header, string) {
	out := make(validator.Header, len(header))
	copy(out, header)
	for i := range out {
		if out[i].Label != reader.OurRefLabel {
			continue
		}
		if strings.TrimSpace(out[i].Value) == "" {
			out[i].Value = uuid.NewString()
		}
		return out, out[i].Value
	}
	ref := uuid.NewString()
	return append(out, validator.Field{Label: reader.OurRefLabel, Value: ref}), ref
}

// isFormField reports whether label is one of the schema selectors, which
// are written last.
func isFormField(label string) bool {
	return label == reader.FormTypeLabel || label == reader.FormVersionLabel
}

// WriteTSV writes header fields, then the form type and version, then the
// headings and one row per record in canonical column order. Absent cells
// are written empty.
func WriteTSV(w io.Writer, sch *schema.Schema, header validator.Header, records []validator.Record) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	for _, f := range header {
		if isFormField(f.Label) {
			continue
		}
		if err := cw.Write([]string{f.Label, f.Value}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{reader.FormTypeLabel, sch.Type()}); err != nil {
		return err
	}
	if err := cw.Write([]string{reader.FormVersionLabel, sch.Version()}); err != nil {
		return err
	}

	ordered := sch.Body().Ordered()
	if err := cw.Write(ordered); err != nil {
		return err
	}
	row := make([]string, len(ordered))
	for _, rec := range records {
		for i, col := range ordered {
			row[i] = rec[col]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// NewDocument builds the JSON representation. Form type and version are left
// out of the header map, as in the TSV they are derived from the schema.
func NewDocument(sch *schema.Schema, header validator.Header, records []validator.Record) *Document {
	doc := &Document{
		Header: make(map[string]string, len(header)),
		Body:   make([]map[string]string, 0, len(records)),
	}
	for _, f := range header {
		if isFormField(f.Label) {
			continue
		}
		if _, dup := doc.Header[f.Label]; !dup {
			doc.Header[f.Label] = f.Value
		}
	}
	ordered := sch.Body().Ordered()
	for _, rec := range records {
		m := make(map[string]string, len(ordered))
		for _, col := range ordered {
			m[col] = rec[col]
		}
		doc.Body = append(doc.Body, m)
	}
	return doc
}

// WriteJSON writes the JSON representation with sorted keys.
func WriteJSON(w io.Writer, sch *schema.Schema, header validator.Header, records []validator.Record) error {
	data, err := json.MarshalIndent(NewDocument(sch, header, records), "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Write stores the normalised TSV and JSON files in dir, named after the
// "Our Ref:" value (assigned if empty). It returns both paths.
func Write(dir string, sch *schema.Schema, header validator.Header, records []validator.Record) (tsvPath, jsonPath string, err error) {
	header, ref := AssignReference(header)
	if ref != filepath.Base(ref) || ref == "." || ref == ".." {
		return "", "", fmt.Errorf("reference %q cannot be used as a file name", ref)
	}

	tsvPath = filepath.Join(dir, ref+".tsv")
	jsonPath = filepath.Join(dir, ref+".json")

	if err := writeFile(tsvPath, func(w io.Writer) error { return WriteTSV(w, sch, header, records) }); err != nil {
		return "", "", err
	}
	if err := writeFile(jsonPath, func(w io.Writer) error { return WriteJSON(w, sch, header, records) }); err != nil {
		return "", "", err
	}
	return tsvPath, jsonPath, nil
}

// Convert rewrites a parsed manifest as TSV without validating it. Header
// rows keep their label/value pairs and body rows keep their cells.
func Convert(w io.Writer, m *reader.Manifest) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	for _, f := range m.Header {
		if err := cw.Write([]string{f.Label, f.Value}); err != nil {
			return err
		}
	}
	if err := cw.Write(m.Headings); err != nil {
		return err
	}
	for _, row := range m.Rows {
		if err := cw.Write(row.Cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ConvertFile converts the manifest at in to TSV at out. When out is empty
// the input's extension is replaced by ".tsv". TSV input is copied unless it
// is already at out. It returns the output path.
func ConvertFile(in, out string) (string, error) {
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".tsv"
	}
	if same, err := samePath(in, out); err != nil {
		return "", err
	} else if same {
		return out, nil
	}

	m, err := reader.ReadFile(in, reader.Options{})
	if err != nil {
		return "", err
	}
	if err := writeFile(out, func(w io.Writer) error { return Convert(w, m) }); err != nil {
		return "", err
	}
	return out, nil
}

func samePath(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, fmt.Errorf("failed to access input: %w", err)
	}
	bi, err := os.Stat(b)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to access output: %w", err)
	}
	return os.SameFile(ai, bi), nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
