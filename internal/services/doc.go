// Package services implements the application layer between the HTTP
// handlers and the analysis engine.
//
// AnalysisService keeps one dataset per workspace and view. An upload is
// decoded, validated against the view's column contract and only then
// adopted; each upload draws a generation number, and a result whose
// generation is older than the adopted dataset is rejected with
// ErrSuperseded instead of overwriting newer data. Filter criteria are
// kept per view and the filtered dataset is rebuilt whenever the criteria
// or the dataset change, so metric requests read an immutable snapshot
// without holding the service lock.
//
// HealthService backs the health, readiness, liveness and version
// endpoints.
package services
