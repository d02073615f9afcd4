// Package slots models numbered repeated-column groups such as
// "Company 1..10" with their co-indexed "Salary (Company N)" columns, and
// flattens them into dense per-row record lists.
package slots

import (
	"strconv"
	"strings"

	"careerlens/internal/tabular"
)

// IndexPlaceholder marks where the slot number goes in a column template.
const IndexPlaceholder = "{n}"

// Attribute is a secondary column that shares the slot index with the
// primary column.
type Attribute struct {
	Name     string
	Template string
	Numeric  bool
}

// Family describes one repeated group: a primary column template, the
// secondary attribute templates and the number of slots.
type Family struct {
	Name       string
	Primary    string
	Attributes []Attribute
	MaxSlots   int
}

// Column interpolates a template for slot i.
func Column(template string, i int) string {
	return strings.ReplaceAll(template, IndexPlaceholder, strconv.Itoa(i))
}

// PrimaryColumn returns the primary column name for slot i.
func (f Family) PrimaryColumn(i int) string { return Column(f.Primary, i) }

// Headers lists every column of the family, grouped by attribute: all
// primary columns first, then each secondary attribute for slots 1..MaxSlots.
func (f Family) Headers() []string {
	out := make([]string, 0, f.MaxSlots*(1+len(f.Attributes)))
	for i := 1; i <= f.MaxSlots; i++ {
		out = append(out, f.PrimaryColumn(i))
	}
	for _, a := range f.Attributes {
		for i := 1; i <= f.MaxSlots; i++ {
			out = append(out, Column(a.Template, i))
		}
	}
	return out
}

// Owns reports whether column belongs to the family for some slot index.
func (f Family) Owns(column string) bool {
	column = tabular.NormalizeHeader(column)
	for _, h := range f.Headers() {
		if h == column {
			return true
		}
	}
	return false
}

// PresentIn reports whether an upload carries at least the first primary
// column of the family.
func (f Family) PresentIn(columns []string) bool {
	first := f.PrimaryColumn(1)
	for _, c := range columns {
		if c == first {
			return true
		}
	}
	return false
}
