// Package shared holds code used across layers that belongs to no domain
// package. Today that is only the testutil subpackage:
//
//   - a buffered slog handler with assertions on captured records
//   - CSV and XLSX upload fixtures built from plain string/any rows
//
// Nothing here may import a careerlens domain package, so every package can
// use testutil in its tests without creating an import cycle.
package shared
