package validator

import (
	"fmt"
	"strings"

	"cgp-hq/seqval/pkg/manifest/finding"
	"cgp-hq/seqval/pkg/manifest/schema"
)

// ValidateHeader checks header fields against the header rules. Findings are
// ordered: unexpected labels, then missing required labels, then invalid
// values. It never stops at the first problem.
func ValidateHeader(spec *schema.HeaderSpec, header Header) []finding.Finding {
	var out []finding.Finding

	for _, f := range header {
		if !spec.IsExpected(f.Label) {
			out = append(out, finding.Finding{
				Kind:     finding.KindUnexpectedField,
				Location: finding.HeaderLocation(f.Label),
				Message:  fmt.Sprintf("unexpected header field %q", f.Label),
				Value:    f.Value,
			})
		}
	}

	for _, label := range spec.Required() {
		if v, ok := header.Get(label); !ok || strings.TrimSpace(v) == "" {
			out = append(out, finding.Finding{
				Kind:     finding.KindMissingRequired,
				Location: finding.HeaderLocation(label),
				Message:  fmt.Sprintf("required header field %q is missing or empty", label),
			})
		}
	}

	for _, f := range header {
		allowed, restricted := spec.Allowed(f.Label)
		// Empty values are left to the required check.
		if !restricted || strings.TrimSpace(f.Value) == "" {
			continue
		}
		if !spec.Accepts(f.Label, f.Value) {
			out = append(out, finding.Finding{
				Kind:     finding.KindInvalidValue,
				Location: finding.HeaderLocation(f.Label),
				Message:  fmt.Sprintf("value %q is not allowed for %q; expected one of %s", f.Value, f.Label, quoteList(allowed)),
				Value:    f.Value,
			})
		}
	}

	return out
}

func quoteList(values []string) string {
	q := make([]string, len(values))
	for i, v := range values {
		q[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(q, ", ") + "]"
}
