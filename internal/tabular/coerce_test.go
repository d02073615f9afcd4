package tabular

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"₹12,000", 12000},
		{"", 0},
		{"abc", 0},
		{"8.5", 8.5},
		{"  7.25 LPA", 7.25},
		{"-3", -3},
		{"$1,234.50", 1234.5},
		{"12.5.3", 12.5},
		{"5-10", 5},
		{"--5", 0},
		{"-", 0},
		{".", 0},
		{".5", 0.5},
		{"5.", 5},
		{"NaN", 0},
		{"Infinity", 0},
		{"1e400", 1400},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.NotPanics(t, func() { ToNumber(tt.raw) })
			assert.Equal(t, tt.want, ToNumber(tt.raw))
		})
	}
}

func TestParseNumber(t *testing.T) {
	_, ok := ParseNumber("")
	assert.False(t, ok)
	_, ok = ParseNumber("N/A")
	assert.False(t, ok)

	f, ok := ParseNumber("0")
	assert.True(t, ok)
	assert.Equal(t, 0.0, f)

	f, ok = ParseNumber("CGPA 9.1")
	assert.True(t, ok)
	assert.Equal(t, 9.1, f)
}

func TestValueParse(t *testing.T) {
	f, ok := ValueParse(Number(4.5))
	assert.True(t, ok)
	assert.Equal(t, 4.5, f)

	_, ok = ValueParse(Number(math.Inf(1)))
	assert.False(t, ok)

	_, ok = ValueParse(Absent())
	assert.False(t, ok)

	assert.Equal(t, 0.0, ValueNumber(Bool(true)))
	assert.Equal(t, 12000.0, ValueNumber(Text("12,000")))
}
