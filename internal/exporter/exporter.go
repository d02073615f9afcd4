package exporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"careerlens/internal/schema"
	"careerlens/internal/tabular"
)

// Exporter serializes row sets and templates in the supported formats.
type Exporter struct {
	logger *slog.Logger
	csv    *CSVWriter
	xlsx   XLSXWriter
}

// New creates an exporter.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Exporter{logger: logger, csv: NewCSVWriter(logger)}
}

// Export writes rows with columns as the header row. Cells missing from a
// row are written empty.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format, columns []string, rows []tabular.Row) error {
	var err error
	switch format {
	case FormatCSV:
		err = e.csv.Write(w, WriteOptions{Headers: columns, Records: textRecords(columns, rows), BOMPrefix: true})
	case FormatXLSX:
		err = e.xlsx.Write(w, columns, valueRecords(columns, rows))
	case FormatJSON:
		if rows == nil {
			rows = []tabular.Row{}
		}
		err = json.NewEncoder(w).Encode(rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return err
	}

	e.logger.InfoContext(ctx, "rows exported",
		slog.String("format", string(format)),
		slog.Int("rows", len(rows)),
		slog.Int("columns", len(columns)))
	return nil
}

// TemplateDocument is the JSON form of a view's upload template.
type TemplateDocument struct {
	View     schema.ViewName `json:"view"`
	Title    string          `json:"title"`
	Headers  []string        `json:"headers"`
	Required []string        `json:"required"`
}

// Template writes the blank upload template of contract.
func (e *Exporter) Template(ctx context.Context, w io.Writer, contract schema.Contract, format Format) error {
	headers := contract.TemplateHeaders()
	switch format {
	case FormatCSV:
		return e.csv.Write(w, WriteOptions{Headers: headers, BOMPrefix: true})
	case FormatXLSX:
		return XLSXWriter{Sheet: string(contract.View)}.Write(w, headers, nil)
	case FormatJSON:
		var required []string
		for _, r := range contract.Required.Requirements() {
			required = append(required, r.Label())
		}
		return json.NewEncoder(w).Encode(TemplateDocument{
			View:     contract.View,
			Title:    contract.Title,
			Headers:  headers,
			Required: required,
		})
	default:
		return fmt.Errorf("unsupported template format %q", format)
	}
}

func textRecords(columns []string, rows []tabular.Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		rec := make([]string, len(columns))
		for j, c := range columns {
			rec[j] = r.Text(c)
		}
		out[i] = rec
	}
	return out
}

func valueRecords(columns []string, rows []tabular.Row) [][]tabular.Value {
	out := make([][]tabular.Value, len(rows))
	for i, r := range rows {
		rec := make([]tabular.Value, len(columns))
		for j, c := range columns {
			rec[j] = r.Get(c)
		}
		out[i] = rec
	}
	return out
}
