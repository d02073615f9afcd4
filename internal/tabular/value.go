package tabular

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind identifies the scalar type held by a Value.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "absent"
	}
}

// Value is a raw cell: a string, number or boolean, or absent when the row
// has no such column.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Absent returns the value of a column that does not exist in the row.
func Absent() Value { return Value{} }

// Text wraps a string cell.
func Text(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool wraps a boolean cell.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the scalar type.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the column is missing from the row.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsBlank reports whether the cell is absent or whitespace-only text.
func (v Value) IsBlank() bool {
	switch v.kind {
	case KindAbsent:
		return true
	case KindString:
		return NormalizeHeader(v.str) == ""
	default:
		return false
	}
}

// String returns the cell's string representation. Absent cells are "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Equal compares two cells by kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// MarshalJSON encodes the cell as its natural JSON scalar; absent is null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts string, number, bool or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*v = Absent()
	case trimmed == "true" || trimmed == "false":
		*v = Bool(trimmed == "true")
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = Number(f)
	}
	return nil
}
