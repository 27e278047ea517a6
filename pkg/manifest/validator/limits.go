package validator

import (
	"fmt"

	"cgp-hq/seqval/pkg/manifest/finding"
	"cgp-hq/seqval/pkg/manifest/schema"
)

// groupKey identifies one limit counter: a limited column value within one
// distinct limit_by group.
type groupKey struct {
	column string
	value  string
	group  string
}

type groupCount struct {
	rule  schema.LimitedValue
	count int
	// firstOver is the index of the record that pushed the count past the
	// limit; -1 until that happens.
	firstOver int
}

// limitTracker counts limited-rule matches per group. It belongs to a single
// scan and is discarded afterwards.
type limitTracker struct {
	counts map[groupKey]*groupCount
	order  []groupKey
}

func newLimitTracker() *limitTracker {
	return &limitTracker{counts: make(map[groupKey]*groupCount)}
}

func (t *limitTracker) observe(record int, column, group string, rule schema.LimitedValue) {
	key := groupKey{column: column, value: rule.Value(), group: group}
	gc, ok := t.counts[key]
	if !ok {
		gc = &groupCount{rule: rule, firstOver: -1}
		t.counts[key] = gc
		t.order = append(t.order, key)
	}
	gc.count++
	if gc.count > rule.Limit() && gc.firstOver < 0 {
		gc.firstOver = record
	}
}

// findings emits one limit_exceeded finding per group over its limit, in
// order of the group's first appearance.
func (t *limitTracker) findings() []finding.Finding {
	var out []finding.Finding
	for _, key := range t.order {
		gc := t.counts[key]
		if gc.count <= gc.rule.Limit() {
			continue
		}
		loc := finding.RecordLocation(gc.firstOver, key.column)
		loc.Group = key.group
		out = append(out, finding.Finding{
			Kind:     finding.KindLimitExceeded,
			Location: loc,
			Message: fmt.Sprintf("%s=%q occurs %d times for %s %q; at most %d allowed",
				key.column, key.value, gc.count, gc.rule.LimitBy(), key.group, gc.rule.Limit()),
			Value: key.value,
		})
	}
	return out
}
