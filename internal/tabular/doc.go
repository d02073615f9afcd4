// Package tabular turns uploaded placement spreadsheets into an in-memory row set.
//
// # Components
//
//  1. Header normalization: NormalizeHeader collapses whitespace (including
//     non-breaking and zero-width characters) so headers from different tools
//     compare equal.
//  2. Decoding: Decoder reads delimited text (CSV) or the first sheet of an
//     XLSX workbook and produces one Row per non-blank data line.
//  3. Numeric coercion: ToNumber and ParseNumber implement the shared
//     "strip everything but digits, '.' and '-'" rule used by filters and metrics.
//
// # Data Flow
//
//	file bytes → Decoder → []Row (canonical headers) → schema validation
//
// Rows are immutable snapshots. A new upload replaces the whole row set.
package tabular
