package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: ""},
		{name: "already canonical", raw: "Company Name", want: "Company Name"},
		{name: "trims", raw: "  Dept\t", want: "Dept"},
		{name: "collapses runs", raw: "Maximum    Salary", want: "Maximum Salary"},
		{name: "non-breaking space", raw: "Job\u00a0Vertical", want: "Job Vertical"},
		{name: "mixed whitespace", raw: "Hosteller /\n Days\u00a0\u00a0scholar", want: "Hosteller / Days scholar"},
		{name: "zero width and bom", raw: "\ufeffReg\u200b Number", want: "Reg Number"},
		{name: "ideographic space", raw: "Salary\u3000(Company 1)", want: "Salary (Company 1)"},
		{name: "whitespace only", raw: " \u00a0 ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeHeader(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeHeader(got), "normalization must be idempotent")
		})
	}
}

func TestNormalizeHeader_EquivalentSpellings(t *testing.T) {
	variants := []string{
		"Organized By (Company 3)",
		"Organized\u00a0By (Company 3)",
		" Organized  By  (Company 3) ",
		"Organized\tBy\u00a0(Company\u00a03)",
	}
	want := NormalizeHeader(variants[0])
	for _, v := range variants {
		assert.Equal(t, want, NormalizeHeader(v), "variant %q", v)
	}
}

func TestNormalizeCategory(t *testing.T) {
	d1, k1 := NormalizeCategory("CSE ")
	d2, k2 := NormalizeCategory("cse")
	assert.Equal(t, "CSE", d1)
	assert.Equal(t, "cse", d2)
	assert.Equal(t, k1, k2)
}
