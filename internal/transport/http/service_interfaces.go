package http

import (
	"context"
	"io"

	"careerlens/internal/analysis"
	"careerlens/internal/exporter"
	"careerlens/internal/filter"
	"careerlens/internal/services"
	"careerlens/internal/tabular"
	api "careerlens/pkg/contracts/api/v1"
)

// AnalysisServiceInterface defines the analysis operations the handlers use
type AnalysisServiceInterface interface {
	Upload(ctx context.Context, workspace, view, filename string, data []byte) (api.DatasetSummary, error)
	Summary(ctx context.Context, workspace, view string) (api.DatasetSummary, error)
	Discard(ctx context.Context, workspace, view string) error

	SetFilters(ctx context.Context, workspace, view string, criteria filter.Criteria) (api.DatasetSummary, error)
	Filters(ctx context.Context, workspace, view string) (filter.Criteria, error)
	ResetFilters(ctx context.Context, workspace, view string) (api.DatasetSummary, error)

	Rows(ctx context.Context, workspace, view string) ([]string, []tabular.Row, error)
	Metrics(ctx context.Context, workspace, view string, q services.MetricsQuery) ([]analysis.Result, int, error)
	Metric(ctx context.Context, workspace, view, name string, q services.MetricsQuery) (analysis.Result, int, error)
	Export(ctx context.Context, workspace, view string, format exporter.Format, w io.Writer) (string, error)

	Template(ctx context.Context, view string, format exporter.Format, w io.Writer) (string, error)
	Views() []api.ViewInfo
}
