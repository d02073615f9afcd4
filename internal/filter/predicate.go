// Package filter narrows a row set with composable predicates. Predicates
// are ANDed and the whole set is re-evaluated on every change.
package filter

import (
	"fmt"
	"strings"

	"careerlens/internal/slots"
	"careerlens/internal/tabular"
)

// AllValue is the sentinel a UI control sends for "no constraint".
const AllValue = "all"

// Predicate decides whether a row survives filtering.
type Predicate interface {
	Match(row tabular.Row) bool
	String() string
}

// inactive reports whether a control value means "no constraint".
func inactive(v string) bool {
	v = tabular.NormalizeHeader(v)
	return v == "" || strings.EqualFold(v, AllValue)
}

type noop struct{}

func (noop) Match(tabular.Row) bool { return true }
func (noop) String() string         { return "all" }

// IsNoop reports whether p imposes no constraint.
func IsNoop(p Predicate) bool {
	if p == nil {
		return true
	}
	_, ok := p.(noop)
	return ok
}

type substring struct {
	field string
	query string
}

// Substring matches rows whose field contains query, ignoring case. The
// query is matched as typed, surrounding spaces included; a blank query
// matches everything. An empty field searches every column of the row.
func Substring(field, query string) Predicate {
	if blankQuery(query) {
		return noop{}
	}
	return substring{
		field: tabular.NormalizeHeader(field),
		query: strings.ToLower(query),
	}
}

func blankQuery(q string) bool { return strings.TrimSpace(q) == "" }

func (p substring) Match(row tabular.Row) bool {
	if p.field != "" {
		return strings.Contains(strings.ToLower(row.Text(p.field)), p.query)
	}
	found := false
	row.Each(func(_ string, v tabular.Value) {
		if !found && strings.Contains(strings.ToLower(v.String()), p.query) {
			found = true
		}
	})
	return found
}

func (p substring) String() string {
	if p.field == "" {
		return fmt.Sprintf("any field contains %q", p.query)
	}
	return fmt.Sprintf("%s contains %q", p.field, p.query)
}

type equals struct {
	field string
	key   string
}

// Equals matches rows whose field equals value after normalization,
// ignoring case.
func Equals(field, value string) Predicate {
	if inactive(value) {
		return noop{}
	}
	_, key := tabular.NormalizeCategory(value)
	return equals{field: tabular.NormalizeHeader(field), key: key}
}

func (p equals) Match(row tabular.Row) bool {
	_, key := tabular.NormalizeCategory(row.Text(p.field))
	return key == p.key
}

func (p equals) String() string { return fmt.Sprintf("%s = %q", p.field, p.key) }

type numericRange struct {
	field    string
	min, max *float64
}

// Range matches rows whose coerced field value lies in [lo, hi]. A nil
// bound is open. Unparseable cells coerce to 0 and are compared as such.
func Range(field string, lo, hi *float64) Predicate {
	if lo == nil && hi == nil {
		return noop{}
	}
	return numericRange{field: tabular.NormalizeHeader(field), min: lo, max: hi}
}

func (p numericRange) Match(row tabular.Row) bool {
	v := tabular.ValueNumber(row.Get(p.field))
	if p.min != nil && v < *p.min {
		return false
	}
	if p.max != nil && v > *p.max {
		return false
	}
	return true
}

func (p numericRange) String() string {
	lo, hi := "-inf", "+inf"
	if p.min != nil {
		lo = fmt.Sprint(*p.min)
	}
	if p.max != nil {
		hi = fmt.Sprint(*p.max)
	}
	return fmt.Sprintf("%s in [%s, %s]", p.field, lo, hi)
}

type anySlot struct {
	family slots.Family
	key    string
}

// AnySlot matches rows where some populated slot of family has a primary
// value equal to value, ignoring case and whitespace.
func AnySlot(family slots.Family, value string) Predicate {
	if inactive(value) {
		return noop{}
	}
	_, key := tabular.NormalizeCategory(value)
	return anySlot{family: family, key: key}
}

func (p anySlot) Match(row tabular.Row) bool {
	for _, rec := range slots.Expand(row, p.family) {
		if _, key := tabular.NormalizeCategory(rec.Primary); key == p.key {
			return true
		}
	}
	return false
}

func (p anySlot) String() string {
	return fmt.Sprintf("any %s slot = %q", p.family.Name, p.key)
}

// Apply returns the rows matching every predicate, in input order. The input
// slice is never modified.
func Apply(rows []tabular.Row, preds ...Predicate) []tabular.Row {
	active := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if !IsNoop(p) {
			active = append(active, p)
		}
	}
	out := make([]tabular.Row, 0, len(rows))
	for _, row := range rows {
		if matchAll(row, active) {
			out = append(out, row)
		}
	}
	return out
}

func matchAll(row tabular.Row, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Match(row) {
			return false
		}
	}
	return true
}
