package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// MaxDocumentSize bounds schema files read by LoadFile.
const MaxDocumentSize = 1 << 20

// versionPattern accepts dotted numeric versions ("1", "1.0", "2.1.3").
var versionPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// document mirrors the wire format once it has passed the meta-schema.
type document struct {
	Type    string `json:"type"`
	Version string `json:"version"`
	Header  struct {
		Expected []string            `json:"expected"`
		Required []string            `json:"required"`
		Validate map[string][]string `json:"validate"`
	} `json:"header"`
	Body struct {
		Ordered     []string             `json:"ordered"`
		Required    []string             `json:"required"`
		Validate    map[string][]ruleDoc `json:"validate"`
		ValidateExt map[string][]string  `json:"validate_ext"`
		Unique      []string             `json:"unique"`
	} `json:"body"`
}

type ruleDoc struct {
	Value   *string `json:"value"`
	Limit   *int    `json:"limit"`
	LimitBy *string `json:"limit_by"`
}

// Load parses a schema document (JSON or YAML) and checks every
// cross-reference. It performs no I/O. On failure the error is an *Errors
// listing every problem found.
func Load(data []byte, source string) (*Schema, error) {
	errs := &Errors{Source: source}

	root, generic, err := decode(data)
	if err != nil {
		errs.add(&Error{Type: ErrorTypeSyntax, Message: err.Error(), Line: syntaxLine(err)})
		return nil, errs
	}
	loc := locator{root: root}

	structural, err := checkStructure(generic)
	if err != nil {
		errs.add(&Error{Type: ErrorTypeStructural, Message: err.Error()})
		return nil, errs
	}
	for _, e := range structural {
		loc.annotate(e)
		errs.add(e)
	}
	if errs.HasErrors() {
		return nil, errs
	}

	var doc document
	raw, err := json.Marshal(generic)
	if err == nil {
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil {
		errs.add(&Error{Type: ErrorTypeStructural, Message: err.Error()})
		return nil, errs
	}

	b := &builder{errs: errs, loc: loc}
	s := b.build(&doc)
	if err := errs.toError(); err != nil {
		return nil, err
	}
	s.source = source
	return s, nil
}

// LoadFile reads and loads a schema document from disk.
func LoadFile(path string) (*Schema, error) {
	ioErr := func(msg string) error {
		errs := &Errors{Source: path}
		errs.add(&Error{Type: ErrorTypeIO, Message: msg})
		return errs
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, ioErr(fmt.Sprintf("failed to access file: %v", err))
	}
	if !info.Mode().IsRegular() {
		return nil, ioErr("not a regular file")
	}
	if info.Size() > MaxDocumentSize {
		return nil, ioErr(fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), MaxDocumentSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioErr(fmt.Sprintf("failed to read file: %v", err))
	}
	if !utf8.Valid(data) {
		return nil, ioErr("file contains invalid UTF-8 encoding")
	}

	return Load(data, path)
}

// MustLoad is like Load but panics on error. It is intended for embedded
// schemas that are known to be valid.
func MustLoad(data []byte, source string) *Schema {
	s, err := Load(data, source)
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", source, err))
	}
	return s
}

// decode parses data as YAML, keeping the node tree for error positions.
// JSON that YAML rejects (e.g. tab indentation) falls back to encoding/json
// without positions.
func decode(data []byte) (*yaml.Node, any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, errors.New("document is empty")
	}

	var root yaml.Node
	if yerr := yaml.Unmarshal(data, &root); yerr != nil {
		if !looksLikeJSON(data) {
			return nil, nil, yerr
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return nil, nil, err
		}
		return nil, generic, nil
	}

	var generic any
	if err := root.Decode(&generic); err != nil {
		return nil, nil, err
	}
	return &root, generic, nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// syntaxLine extracts the line number yaml.v3 embeds in its error text.
func syntaxLine(err error) int {
	m := yamlLinePattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// locator maps JSON pointers back to YAML source positions.
type locator struct {
	root *yaml.Node
}

func (l locator) annotate(e *Error) {
	e.Line, e.Column = l.position(tokens(e.Path))
}

func (l locator) position(path []string) (int, int) {
	if l.root == nil {
		return 0, 0
	}
	node := l.root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for _, tok := range path {
		next := child(node, tok)
		if next == nil {
			break
		}
		node = next
	}
	return node.Line, node.Column
}

func child(node *yaml.Node, tok string) *yaml.Node {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == tok {
				return node.Content[i+1]
			}
		}
	case yaml.SequenceNode:
		idx, err := strconv.Atoi(tok)
		if err == nil && idx >= 0 && idx < len(node.Content) {
			return node.Content[idx]
		}
	}
	return nil
}

// builder converts a structurally valid document into a Schema, recording
// every broken cross-reference.
type builder struct {
	errs *Errors
	loc  locator
}

func (b *builder) fail(t ErrorType, path []string, format string, args ...any) {
	e := &Error{Type: t, Path: pointer(path), Message: fmt.Sprintf(format, args...)}
	b.loc.annotate(e)
	b.errs.add(e)
}

func (b *builder) build(doc *document) *Schema {
	if !versionPattern.MatchString(doc.Version) {
		b.fail(ErrorTypeStructural, []string{"version"},
			"version %q must be dotted numeric (e.g. \"1.0\")", doc.Version)
	}
	return &Schema{
		typ:     doc.Type,
		version: doc.Version,
		header:  b.buildHeader(doc),
		body:    b.buildBody(doc),
	}
}

func (b *builder) buildHeader(doc *document) *HeaderSpec {
	h := &HeaderSpec{
		expected:   doc.Header.Expected,
		allowed:    make(map[string][]string),
		allowedSet: make(map[string]map[string]struct{}),
	}
	h.expectedSet = b.labelSet(doc.Header.Expected, "header", "expected")

	h.required = b.subset(doc.Header.Required, h.expectedSet, "header", "required", "header.expected")

	for _, label := range sortedKeys(doc.Header.Validate) {
		path := []string{"header", "validate", label}
		if _, ok := h.expectedSet[label]; !ok {
			b.fail(ErrorTypeReference, path, "validated label %q is not listed in header.expected", label)
			continue
		}
		values := doc.Header.Validate[label]
		if len(values) == 0 {
			b.fail(ErrorTypeRule, path, "label %q must list at least one allowed value", label)
			continue
		}
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		h.allowed[label] = append([]string(nil), values...)
		h.allowedSet[label] = set
	}
	return h
}

func (b *builder) buildBody(doc *document) *BodySpec {
	body := &BodySpec{
		ordered:    doc.Body.Ordered,
		position:   make(map[string]int, len(doc.Body.Ordered)),
		rules:      make(map[string][]Rule),
		extensions: make(map[string][]string),
	}
	set := b.labelSet(doc.Body.Ordered, "body", "ordered")
	for i, c := range doc.Body.Ordered {
		if _, seen := body.position[c]; !seen {
			body.position[c] = i
		}
	}

	body.required = b.subset(doc.Body.Required, set, "body", "required", "body.ordered")
	body.requiredSet = make(map[string]struct{}, len(body.required))
	for _, c := range body.required {
		body.requiredSet[c] = struct{}{}
	}

	for _, col := range sortedKeys(doc.Body.Validate) {
		path := []string{"body", "validate", col}
		if _, ok := set[col]; !ok {
			b.fail(ErrorTypeReference, path, "validated column %q is not listed in body.ordered", col)
			continue
		}
		if rules := b.buildRules(col, doc.Body.Validate[col], set); rules != nil {
			body.rules[col] = rules
		}
	}

	for _, col := range sortedKeys(doc.Body.ValidateExt) {
		path := []string{"body", "validate_ext", col}
		if _, ok := set[col]; !ok {
			b.fail(ErrorTypeReference, path, "extension column %q is not listed in body.ordered", col)
			continue
		}
		suffixes := doc.Body.ValidateExt[col]
		if len(suffixes) == 0 {
			b.fail(ErrorTypeRule, path, "column %q must list at least one extension", col)
			continue
		}
		ok := true
		for i, s := range suffixes {
			if len(s) < 2 || !strings.HasPrefix(s, ".") {
				b.fail(ErrorTypeRule, append(path, strconv.Itoa(i)), "extension %q must start with '.'", s)
				ok = false
			}
		}
		if ok {
			body.extensions[col] = append([]string(nil), suffixes...)
		}
	}

	body.unique = b.subset(doc.Body.Unique, set, "body", "unique", "body.ordered")
	return body
}

func (b *builder) buildRules(col string, docs []ruleDoc, columns map[string]struct{}) []Rule {
	if len(docs) == 0 {
		b.fail(ErrorTypeRule, []string{"body", "validate", col}, "column %q must list at least one rule", col)
		return nil
	}

	rules := make([]Rule, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	valid := true
	for i, rd := range docs {
		path := []string{"body", "validate", col, strconv.Itoa(i)}
		if rd.Value == nil {
			b.fail(ErrorTypeRule, path, "rule is missing 'value'")
			valid = false
			continue
		}
		if seen[*rd.Value] {
			b.fail(ErrorTypeRule, path, "duplicate rule value %q for column %q", *rd.Value, col)
			valid = false
			continue
		}
		seen[*rd.Value] = true

		if (rd.Limit == nil) != (rd.LimitBy == nil) {
			b.fail(ErrorTypeRule, path, "'limit' and 'limit_by' must be given together")
			valid = false
			continue
		}
		if rd.Limit == nil {
			rules = append(rules, AllowedValue{value: *rd.Value})
			continue
		}
		if *rd.Limit < 1 {
			b.fail(ErrorTypeRule, append(path, "limit"), "limit must be a positive integer, got %d", *rd.Limit)
			valid = false
			continue
		}
		if _, ok := columns[*rd.LimitBy]; !ok {
			b.fail(ErrorTypeReference, append(path, "limit_by"), "limit_by column %q is not listed in body.ordered", *rd.LimitBy)
			valid = false
			continue
		}
		rules = append(rules, LimitedValue{value: *rd.Value, limit: *rd.Limit, limitBy: *rd.LimitBy})
	}
	if !valid {
		return nil
	}
	return rules
}

// labelSet indexes labels, reporting duplicates.
func (b *builder) labelSet(labels []string, section, field string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for i, l := range labels {
		if _, dup := set[l]; dup {
			b.fail(ErrorTypeReference, []string{section, field, strconv.Itoa(i)}, "duplicate label %q in %s.%s", l, section, field)
			continue
		}
		set[l] = struct{}{}
	}
	return set
}

// subset checks that every label is a member of parent and returns the
// de-duplicated labels in input order.
func (b *builder) subset(labels []string, parent map[string]struct{}, section, field, parentName string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for i, l := range labels {
		path := []string{section, field, strconv.Itoa(i)}
		if _, ok := parent[l]; !ok {
			b.fail(ErrorTypeReference, path, "%s label %q is not listed in %s", field, l, parentName)
			continue
		}
		if _, dup := seen[l]; dup {
			b.fail(ErrorTypeReference, path, "duplicate label %q in %s.%s", l, section, field)
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
