package validator

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"cgp-hq/seqval/pkg/manifest/finding"
	"cgp-hq/seqval/pkg/manifest/schema"
)

// cancelCheckInterval is how many records are scanned between context checks.
const cancelCheckInterval = 1024

// ValidateBody checks records against the body rules. Per-record findings
// (required, value, extension, uniqueness) come first in a single forward
// scan; limit findings follow once every record has been counted.
func ValidateBody(spec *schema.BodySpec, records []Record, opts Options) []finding.Finding {
	out, _ := newBodyScan(spec, opts).run(context.Background(), records)
	return out
}

// bodyScan holds the state of one pass over a record set. Counters are never
// shared between scans.
type bodyScan struct {
	spec *schema.BodySpec
	opts Options

	required   []string
	validated  []string
	rules      map[string][]schema.Rule
	extColumns []string
	extensions map[string][]string
	unique     []string

	limits *limitTracker
	seen   map[string]finding.Location
}

func newBodyScan(spec *schema.BodySpec, opts Options) *bodyScan {
	b := &bodyScan{
		spec:       spec,
		opts:       opts,
		required:   spec.Required(),
		validated:  spec.ValidatedColumns(),
		rules:      make(map[string][]schema.Rule),
		extColumns: spec.ExtensionColumns(),
		extensions: make(map[string][]string),
		unique:     spec.Unique(),
		limits:     newLimitTracker(),
		seen:       make(map[string]finding.Location),
	}
	for _, c := range b.validated {
		b.rules[c], _ = spec.Rules(c)
	}
	for _, c := range b.extColumns {
		b.extensions[c], _ = spec.Extensions(c)
	}
	return b
}

func (b *bodyScan) run(ctx context.Context, records []Record) ([]finding.Finding, error) {
	var out []finding.Finding
	for i, rec := range records {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return out, err
			}
		}
		out = b.record(out, i, rec)
	}
	return append(out, b.limits.findings()...), nil
}

func (b *bodyScan) record(out []finding.Finding, i int, rec Record) []finding.Finding {
	for _, col := range b.required {
		if b.opts.empty(rec[col]) {
			out = append(out, finding.Finding{
				Kind:     finding.KindMissingRequired,
				Location: finding.RecordLocation(i, col),
				Message:  fmt.Sprintf("required column %q is missing or empty", col),
				Value:    rec[col],
			})
		}
	}

	for _, col := range b.validated {
		cell := rec[col]
		if b.skip(col, cell) {
			continue
		}
		rules := b.rules[col]
		r, ok := schema.Match(rules, cell)
		if !ok {
			out = append(out, finding.Finding{
				Kind:     finding.KindInvalidValue,
				Location: finding.RecordLocation(i, col),
				Message:  fmt.Sprintf("value %q is not allowed for %q; expected one of %s", cell, col, quoteList(schema.Values(rules))),
				Value:    cell,
			})
			continue
		}
		if lv, limited := r.(schema.LimitedValue); limited {
			group := rec[lv.LimitBy()]
			// Records without a group have nothing to be counted against.
			if !b.opts.empty(group) {
				b.limits.observe(i, col, group, lv)
			}
		}
	}

	// Files in one record must share an extension; only accepted
	// extensions are compared.
	var firstExt, firstCol string
	for _, col := range b.extColumns {
		cell := rec[col]
		if b.skip(col, cell) {
			continue
		}
		accepted := b.extensions[col]
		ext := FullExtension(cell, b.opts.CompressionSuffixes)
		if !slices.Contains(accepted, ext) {
			out = append(out, finding.Finding{
				Kind:     finding.KindInvalidExtension,
				Location: finding.RecordLocation(i, col),
				Message:  fmt.Sprintf("file %q has extension %q; expected one of %s", cell, ext, quoteList(accepted)),
				Value:    cell,
			})
			continue
		}
		if firstCol == "" {
			firstExt, firstCol = ext, col
			continue
		}
		if ext != firstExt {
			out = append(out, finding.Finding{
				Kind:     finding.KindExtensionMismatch,
				Location: finding.RecordLocation(i, col),
				Message:  fmt.Sprintf("file %q has extension %q but %q has %q; files in one record must match", cell, ext, firstCol, firstExt),
				Value:    cell,
			})
		}
	}

	for _, col := range b.unique {
		cell := rec[col]
		if b.opts.empty(cell) {
			continue
		}
		if prev, dup := b.seen[cell]; dup {
			out = append(out, finding.Finding{
				Kind:     finding.KindDuplicateValue,
				Location: finding.RecordLocation(i, col),
				Message:  fmt.Sprintf("value %q already used at record %d column %q", cell, prev.Record+1, prev.Field),
				Value:    cell,
			})
			continue
		}
		b.seen[cell] = finding.RecordLocation(i, col)
	}

	return out
}

// skip reports whether a cell is exempt from value and extension checks:
// empty cells are, unless the column is required.
func (b *bodyScan) skip(col, cell string) bool {
	return b.opts.empty(cell) && !b.spec.IsRequired(col)
}

// FullExtension returns the extension of a file name: its final dotted
// segment, widened by one more segment when the final one is a compression
// suffix. "reads.fastq.gz" yields ".fastq.gz", "reads.bam" yields ".bam".
func FullExtension(name string, compression []string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	ext := path.Ext(base)
	if ext == "" || !slices.Contains(compression, ext) {
		return ext
	}
	return path.Ext(strings.TrimSuffix(base, ext)) + ext
}
