package tabular

import (
	"math"
	"strconv"
	"strings"
)

// ToNumber applies the forgiving numeric coercion rule: every character that
// is not a digit, '.' or '-' is removed and the longest numeric prefix of the
// remainder is parsed. Anything that does not yield a finite number is 0.
//
//	ToNumber("₹12,000") == 12000
//	ToNumber("")        == 0
//	ToNumber("abc")     == 0
func ToNumber(raw string) float64 {
	f, _ := ParseNumber(raw)
	return f
}

// ParseNumber is the strict form of ToNumber: ok is false when the cell has
// no parseable number, so callers can exclude it instead of treating it as 0.
func ParseNumber(raw string) (float64, bool) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	s := numericPrefix(b.String())
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numericPrefix returns the longest prefix of s shaped like -?d*(.d*)? that
// contains at least one digit. "12.5.3" yields "12.5", "5-10" yields "5".
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}
	return strings.TrimSuffix(s[:i], ".")
}

// ValueNumber coerces a cell with ToNumber semantics. Number cells are used
// as-is.
func ValueNumber(v Value) float64 {
	f, _ := ValueParse(v)
	return f
}

// ValueParse coerces a cell with ParseNumber semantics.
func ValueParse(v Value) (float64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	case KindAbsent:
		return 0, false
	default:
		return ParseNumber(v.String())
	}
}
