package registry

import "cgp-hq/seqval/pkg/manifest/schema"

// Info is a serialisable summary of a registered schema.
type Info struct {
	Key            string   `json:"key"`
	Type           string   `json:"type"`
	Version        string   `json:"version"`
	Source         string   `json:"source"`
	HeaderExpected []string `json:"header_expected"`
	HeaderRequired []string `json:"header_required"`
	BodyColumns    []string `json:"body_columns"`
	BodyRequired   []string `json:"body_required"`
	Unique         []string `json:"unique,omitempty"`
}

// Describe summarises s.
func Describe(s *schema.Schema) Info {
	return Info{
		Key:            s.Key(),
		Type:           s.Type(),
		Version:        s.Version(),
		Source:         s.Source(),
		HeaderExpected: s.Header().Expected(),
		HeaderRequired: s.Header().Required(),
		BodyColumns:    s.Body().Ordered(),
		BodyRequired:   s.Body().Required(),
		Unique:         s.Body().Unique(),
	}
}

// DescribeAll summarises schemas in order.
func DescribeAll(schemas []*schema.Schema) []Info {
	out := make([]Info, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, Describe(s))
	}
	return out
}
