package filter

import (
	"fmt"
	"sort"

	"careerlens/internal/slots"
)

// Bounds is an inclusive numeric range; nil sides are open.
type Bounds struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Criteria is the user-controlled filter state of one view.
type Criteria struct {
	Search      string            `json:"search,omitempty" yaml:"search,omitempty"`
	SearchField string            `json:"search_field,omitempty" yaml:"search_field,omitempty"`
	Equals      map[string]string `json:"equals,omitempty" yaml:"equals,omitempty"`
	Ranges      map[string]Bounds `json:"ranges,omitempty" yaml:"ranges,omitempty"`
	// Slots maps a slot family name to the primary value any slot must hold.
	Slots map[string]string `json:"slots,omitempty" yaml:"slots,omitempty"`
}

// ErrUnknownFamily is returned when criteria name a slot family the view
// does not declare.
type ErrUnknownFamily struct {
	Family string
}

func (e *ErrUnknownFamily) Error() string {
	return fmt.Sprintf("unknown slot family %q", e.Family)
}

// Compile turns criteria into predicates. Map-keyed criteria are compiled in
// key order so the result is deterministic.
func (c Criteria) Compile(families []slots.Family) ([]Predicate, error) {
	var preds []Predicate
	add := func(p Predicate) {
		if !IsNoop(p) {
			preds = append(preds, p)
		}
	}

	add(Substring(c.SearchField, c.Search))
	for _, field := range sortedKeys(c.Equals) {
		add(Equals(field, c.Equals[field]))
	}
	for _, field := range sortedKeys(c.Ranges) {
		b := c.Ranges[field]
		add(Range(field, b.Min, b.Max))
	}
	for _, name := range sortedKeys(c.Slots) {
		if inactive(c.Slots[name]) {
			continue
		}
		fam, ok := findFamily(families, name)
		if !ok {
			return nil, &ErrUnknownFamily{Family: name}
		}
		add(AnySlot(fam, c.Slots[name]))
	}
	return preds, nil
}

// IsZero reports whether the criteria impose no constraint at all.
func (c Criteria) IsZero() bool {
	if !blankQuery(c.Search) {
		return false
	}
	for _, v := range c.Equals {
		if !inactive(v) {
			return false
		}
	}
	for _, b := range c.Ranges {
		if b.Min != nil || b.Max != nil {
			return false
		}
	}
	for _, v := range c.Slots {
		if !inactive(v) {
			return false
		}
	}
	return true
}

func findFamily(families []slots.Family, name string) (slots.Family, bool) {
	for _, f := range families {
		if f.Name == name {
			return f, true
		}
	}
	return slots.Family{}, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
