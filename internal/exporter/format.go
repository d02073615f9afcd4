package exporter

import (
	"fmt"
	"strings"
)

// Format is a download encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv", "xlsx" or "json" in any case. An empty string
// selects def.
func ParseFormat(s string, def Format) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return def, nil
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Filename builds a download name such as "student-template.xlsx".
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}
