package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is the declared kind of an uploaded file.
type Format int

const (
	FormatUnknown Format = iota
	FormatDelimited
	FormatSpreadsheet
)

// String returns the format name used in logs and API payloads.
func (f Format) String() string {
	switch f {
	case FormatDelimited:
		return "delimited-text"
	case FormatSpreadsheet:
		return "spreadsheet-binary"
	default:
		return "unknown"
	}
}

// FormatFromFilename derives the declared format from the file extension.
func FormatFromFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatDelimited
	case ".xlsx", ".xlsm":
		return FormatSpreadsheet
	default:
		return FormatUnknown
	}
}

// DecoderOptions bounds what a single upload may contain.
type DecoderOptions struct {
	// MaxRows rejects uploads with more data rows; 0 means unlimited.
	MaxRows int
}

// Decoder turns raw upload bytes into rows keyed by canonical header.
type Decoder struct {
	logger  *slog.Logger
	maxRows int
}

// NewDecoder creates a decoder. A nil logger falls back to slog.Default().
func NewDecoder(logger *slog.Logger, opts DecoderOptions) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		logger:  logger.With(slog.String("component", "tabular.decoder")),
		maxRows: opts.MaxRows,
	}
}

// DecodeFile decodes data using the format implied by filename.
func (d *Decoder) DecodeFile(ctx context.Context, filename string, data []byte) ([]Row, error) {
	format := FormatFromFilename(filename)
	if format == FormatUnknown {
		return nil, unsupportedFormat(filename, filepath.Ext(filename))
	}
	return d.Decode(ctx, filename, data, format)
}

// Decode parses data in the given format. The first row supplies headers;
// every later non-blank row becomes one Row. An upload without data rows is
// a DecodeError.
func (d *Decoder) Decode(ctx context.Context, filename string, data []byte, format Format) ([]Row, error) {
	var (
		records [][]Value
		header  []string
		err     error
	)
	switch format {
	case FormatDelimited:
		header, records, err = readDelimited(data)
	case FormatSpreadsheet:
		header, records, err = readSpreadsheet(data)
	default:
		return nil, unsupportedFormat(filename, filepath.Ext(filename))
	}
	if err != nil {
		d.logger.WarnContext(ctx, "upload unreadable",
			slog.String("filename", filename),
			slog.String("format", format.String()),
			slog.String("error", err.Error()))
		return nil, unreadable(filename, err)
	}

	rows, dropped := buildRows(header, records)
	if dropped > 0 {
		d.logger.DebugContext(ctx, "cells beyond the header row ignored",
			slog.String("filename", filename),
			slog.Int("cells", dropped))
	}
	if len(rows) == 0 {
		return nil, emptyUpload(filename)
	}
	if d.maxRows > 0 && len(rows) > d.maxRows {
		return nil, tooManyRows(filename, d.maxRows)
	}

	d.logger.InfoContext(ctx, "upload decoded",
		slog.String("filename", filename),
		slog.String("format", format.String()),
		slog.Int("rows", len(rows)),
		slog.Int("columns", rows[0].Len()))
	return rows, nil
}

// buildRows aligns records to the header by position. Blank header cells are
// skipped, duplicate headers collapse to one column with the later cell
// winning, short records are padded with empty strings and all-blank records
// are dropped.
func buildRows(rawHeader []string, records [][]Value) ([]Row, int) {
	columns := make([]string, 0, len(rawHeader))
	names := make([]string, len(rawHeader))
	seen := make(map[string]bool, len(rawHeader))
	for i, h := range rawHeader {
		name := NormalizeHeader(h)
		names[i] = name
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, name)
	}
	if len(columns) == 0 {
		return nil, 0
	}

	rows := make([]Row, 0, len(records))
	dropped := 0
	for _, rec := range records {
		if blankRecord(rec) {
			continue
		}
		values := make(map[string]Value, len(columns))
		for _, c := range columns {
			values[c] = Text("")
		}
		for i, cell := range rec {
			if i >= len(names) {
				if !cell.IsBlank() {
					dropped++
				}
				continue
			}
			if names[i] == "" {
				continue
			}
			values[names[i]] = cell
		}
		rows = append(rows, Row{columns: columns, values: values})
	}
	return rows, dropped
}

func blankRecord(rec []Value) bool {
	for _, v := range rec {
		if !v.IsBlank() {
			return false
		}
	}
	return true
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readDelimited(data []byte) ([]string, [][]Value, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	records := make([][]Value, 0, len(all)-1)
	for _, rec := range all[1:] {
		cells := make([]Value, len(rec))
		for i, s := range rec {
			cells[i] = Text(s)
		}
		records = append(records, cells)
	}
	return all[0], records, nil
}

func readSpreadsheet(data []byte) ([]string, [][]Value, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}
	sheet := sheets[0]
	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, err
	}
	if len(grid) == 0 {
		return nil, nil, nil
	}

	records := make([][]Value, 0, len(grid)-1)
	for r, line := range grid[1:] {
		cells := make([]Value, len(line))
		for c, raw := range line {
			cells[c] = spreadsheetCell(f, sheet, c+1, r+2, raw)
		}
		records = append(records, cells)
	}
	return grid[0], records, nil
}

// spreadsheetCell types a raw cell. A numeric raw that round-trips through
// its canonical form is a number; the sheet's type attribute is only read
// for the ambiguous rest, "0" and "1" (booleans) or leading zeros and
// exponents (text cells such as roll numbers).
func spreadsheetCell(f *excelize.File, sheet string, col, row int, raw string) Value {
	if raw == "" {
		return Text("")
	}
	num, numErr := strconv.ParseFloat(raw, 64)
	if numErr != nil {
		return Text(raw)
	}
	if raw != "0" && raw != "1" && strconv.FormatFloat(num, 'f', -1, 64) == raw {
		return Number(num)
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Text(raw)
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return Text(raw)
	}
	switch typ {
	case excelize.CellTypeBool:
		return Bool(raw == "1")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return Number(num)
	default:
		return Text(raw)
	}
}
