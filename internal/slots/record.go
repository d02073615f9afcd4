package slots

import (
	"strings"

	"careerlens/internal/tabular"
)

// Record is one populated slot of a row.
type Record struct {
	Index   int                `json:"index"`
	Primary string             `json:"primary"`
	Text    map[string]string  `json:"text,omitempty"`
	Numbers map[string]float64 `json:"numbers,omitempty"`
}

// Attr returns a secondary text attribute, "" when missing.
func (r Record) Attr(name string) string { return r.Text[name] }

// Number returns a numeric secondary attribute, 0 when missing.
func (r Record) Number(name string) float64 { return r.Numbers[name] }

// Expand reads slots 1..MaxSlots of row in ascending order. A slot whose
// primary cell is blank or absent is skipped entirely, so the result is dense
// and may be shorter than MaxSlots. Secondary cells are read only for
// populated slots; numeric ones go through tabular.ToNumber and default to 0.
func Expand(row tabular.Row, f Family) []Record {
	var out []Record
	for i := 1; i <= f.MaxSlots; i++ {
		primary := row.Get(f.PrimaryColumn(i))
		if primary.IsBlank() {
			continue
		}
		rec := Record{
			Index:   i,
			Primary: tabular.NormalizeHeader(primary.String()),
		}
		for _, a := range f.Attributes {
			cell := row.Get(Column(a.Template, i))
			if a.Numeric {
				if rec.Numbers == nil {
					rec.Numbers = make(map[string]float64, len(f.Attributes))
				}
				rec.Numbers[a.Name] = tabular.ValueNumber(cell)
				continue
			}
			if rec.Text == nil {
				rec.Text = make(map[string]string, len(f.Attributes))
			}
			rec.Text[a.Name] = strings.TrimSpace(cell.String())
		}
		out = append(out, rec)
	}
	return out
}

// Entry ties a slot record to the position of its row in the row set.
type Entry struct {
	Row    int
	Record Record
}

// Flatten expands every row and concatenates the records, preserving row
// order and, within a row, slot order.
func Flatten(rows []tabular.Row, f Family) []Entry {
	var out []Entry
	for i, row := range rows {
		for _, rec := range Expand(row, f) {
			out = append(out, Entry{Row: i, Record: rec})
		}
	}
	return out
}
