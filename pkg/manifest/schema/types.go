package schema

import "slices"

// Schema is a loaded manifest schema. It is immutable once returned by Load
// and may be shared by pointer across any number of concurrent sessions.
type Schema struct {
	typ     string
	version string
	source  string
	header  *HeaderSpec
	body    *BodySpec
}

// Type returns the document category (e.g. "IMPORT").
func (s *Schema) Type() string { return s.typ }

// Version returns the schema version string (e.g. "1.0").
func (s *Schema) Version() string { return s.version }

// Key returns the registry key "<type>-<version>".
func (s *Schema) Key() string { return Key(s.typ, s.version) }

// Source returns the path or name the schema was loaded from.
func (s *Schema) Source() string { return s.source }

// Header returns the header rules.
func (s *Schema) Header() *HeaderSpec { return s.header }

// Body returns the body rules.
func (s *Schema) Body() *BodySpec { return s.body }

// Key builds the registry key for a type and version.
func Key(typ, version string) string {
	return typ + "-" + version
}

// HeaderSpec describes the key/value header block of a manifest.
type HeaderSpec struct {
	expected    []string
	expectedSet map[string]struct{}
	required    []string
	allowed     map[string][]string
	allowedSet  map[string]map[string]struct{}
}

// Expected returns the labels that may legitimately appear, in schema order.
func (h *HeaderSpec) Expected() []string { return slices.Clone(h.expected) }

// IsExpected reports whether label is listed in expected.
func (h *HeaderSpec) IsExpected(label string) bool {
	_, ok := h.expectedSet[label]
	return ok
}

// Required returns the labels that must be present with a non-empty value.
func (h *HeaderSpec) Required() []string { return slices.Clone(h.required) }

// Allowed returns the accepted values for label. ok is false when the label
// is unrestricted.
func (h *HeaderSpec) Allowed(label string) (values []string, ok bool) {
	v, ok := h.allowed[label]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Accepts reports whether value is acceptable for label. Unrestricted labels
// accept anything.
func (h *HeaderSpec) Accepts(label, value string) bool {
	set, ok := h.allowedSet[label]
	if !ok {
		return true
	}
	_, ok = set[value]
	return ok
}

// BodySpec describes the tabular record block of a manifest.
type BodySpec struct {
	ordered     []string
	position    map[string]int
	required    []string
	requiredSet map[string]struct{}
	rules       map[string][]Rule
	extensions  map[string][]string
	unique      []string
}

// Ordered returns the canonical column sequence.
func (b *BodySpec) Ordered() []string { return slices.Clone(b.ordered) }

// Has reports whether column is part of the canonical column set.
func (b *BodySpec) Has(column string) bool {
	_, ok := b.position[column]
	return ok
}

// Position returns the zero-based canonical position of column.
func (b *BodySpec) Position(column string) (int, bool) {
	p, ok := b.position[column]
	return p, ok
}

// Required returns the columns that must be non-empty in every record.
func (b *BodySpec) Required() []string { return slices.Clone(b.required) }

// IsRequired reports whether column is required.
func (b *BodySpec) IsRequired(column string) bool {
	_, ok := b.requiredSet[column]
	return ok
}

// Rules returns the value rules for column.
func (b *BodySpec) Rules(column string) ([]Rule, bool) {
	r, ok := b.rules[column]
	if !ok {
		return nil, false
	}
	return slices.Clone(r), true
}

// ValidatedColumns returns the columns carrying value rules, in canonical order.
func (b *BodySpec) ValidatedColumns() []string {
	return b.inOrder(func(c string) bool { _, ok := b.rules[c]; return ok })
}

// Extensions returns the accepted file suffixes for column.
func (b *BodySpec) Extensions(column string) ([]string, bool) {
	e, ok := b.extensions[column]
	if !ok {
		return nil, false
	}
	return slices.Clone(e), true
}

// ExtensionColumns returns the columns carrying extension rules, in canonical order.
func (b *BodySpec) ExtensionColumns() []string {
	return b.inOrder(func(c string) bool { _, ok := b.extensions[c]; return ok })
}

// Unique returns the columns whose non-empty values share one uniqueness
// namespace across the whole input.
func (b *BodySpec) Unique() []string { return slices.Clone(b.unique) }

// LimitedRules returns every limited rule, in canonical column order.
func (b *BodySpec) LimitedRules() []ColumnRule {
	var out []ColumnRule
	for _, col := range b.ordered {
		for _, r := range b.rules[col] {
			if lv, ok := r.(LimitedValue); ok {
				out = append(out, ColumnRule{Column: col, Rule: lv})
			}
		}
	}
	return out
}

func (b *BodySpec) inOrder(keep func(string) bool) []string {
	var out []string
	for _, c := range b.ordered {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// ColumnRule pairs a limited rule with the column it constrains.
type ColumnRule struct {
	Column string
	Rule   LimitedValue
}

// Rule is one accepted value of a body column. It is either an AllowedValue
// or a LimitedValue; the variant is fixed at load time.
type Rule interface {
	// Value is the literal the cell must equal for the rule to apply.
	Value() string
	rule()
}

// AllowedValue accepts a literal value without any cardinality constraint.
type AllowedValue struct {
	value string
}

// NewAllowedValue returns an unconstrained rule for value.
func NewAllowedValue(value string) AllowedValue { return AllowedValue{value: value} }

// Value implements Rule.
func (r AllowedValue) Value() string { return r.value }

func (AllowedValue) rule() {}

// LimitedValue accepts a literal value at most Limit times within each
// distinct value of the LimitBy column.
type LimitedValue struct {
	value   string
	limit   int
	limitBy string
}

// NewLimitedValue returns a rule allowing value at most limit times per
// distinct limitBy group.
func NewLimitedValue(value string, limit int, limitBy string) LimitedValue {
	return LimitedValue{value: value, limit: limit, limitBy: limitBy}
}

// Value implements Rule.
func (r LimitedValue) Value() string { return r.value }

// Limit is the maximum number of matching records per group.
func (r LimitedValue) Limit() int { return r.limit }

// LimitBy is the grouping column.
func (r LimitedValue) LimitBy() string { return r.limitBy }

func (LimitedValue) rule() {}

// Match returns the first rule whose value equals cell.
func Match(rules []Rule, cell string) (Rule, bool) {
	for _, r := range rules {
		if r.Value() == cell {
			return r, true
		}
	}
	return nil, false
}

// Values returns the literal values of rules, in order.
func Values(rules []Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Value()
	}
	return out
}
