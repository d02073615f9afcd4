package tabular

import (
	"bytes"
	"encoding/json"
)

// Row is an ordered mapping from canonical column name to raw cell. Rows of
// one upload share their column list. A Row is never mutated after decoding.
type Row struct {
	columns []string
	values  map[string]Value
}

// NewRow builds a row over the given column order. Column names are
// normalized; when two names collide the later value wins.
func NewRow(columns []string, values map[string]Value) Row {
	cols := make([]string, 0, len(columns))
	seen := make(map[string]bool, len(columns))
	vals := make(map[string]Value, len(values))
	for _, c := range columns {
		name := NormalizeHeader(c)
		if name == "" {
			continue
		}
		if !seen[name] {
			seen[name] = true
			cols = append(cols, name)
		}
	}
	for k, v := range values {
		name := NormalizeHeader(k)
		if name == "" {
			continue
		}
		vals[name] = v
		if !seen[name] {
			seen[name] = true
			cols = append(cols, name)
		}
	}
	return Row{columns: cols, values: vals}
}

// RowFromStrings is a convenience for fixtures: header and cells are aligned
// by position, missing trailing cells are empty strings.
func RowFromStrings(header []string, cells ...string) Row {
	values := make(map[string]Value, len(header))
	for i, h := range header {
		if i < len(cells) {
			values[h] = Text(cells[i])
		} else {
			values[h] = Text("")
		}
	}
	return NewRow(header, values)
}

// Columns returns the row's column names in upload order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Get returns the cell for a column, or Absent when the row has none. The
// column name is normalized before lookup.
func (r Row) Get(column string) Value {
	if v, ok := r.values[column]; ok {
		return v
	}
	if v, ok := r.values[NormalizeHeader(column)]; ok {
		return v
	}
	return Absent()
}

// Text returns the string form of a cell ("" when absent).
func (r Row) Text(column string) string { return r.Get(column).String() }

// Has reports whether the row carries the column at all.
func (r Row) Has(column string) bool { return !r.Get(column).IsAbsent() }

// Each calls fn for every column in order.
func (r Row) Each(fn func(column string, v Value)) {
	for _, c := range r.columns {
		fn(c, r.values[c])
	}
}

// MarshalJSON writes the row as a JSON object preserving column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[c].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ColumnsOf returns the observed column universe of a row set, taken from
// its first row.
func ColumnsOf(rows []Row) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Columns()
}
