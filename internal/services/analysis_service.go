package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/semaphore"

	"careerlens/internal/analysis"
	"careerlens/internal/config"
	apperrors "careerlens/internal/errors"
	"careerlens/internal/exporter"
	"careerlens/internal/filter"
	"careerlens/internal/infrastructure"
	"careerlens/internal/schema"
	"careerlens/internal/tabular"
	api "careerlens/pkg/contracts/api/v1"
	"careerlens/pkg/contracts/events"
)

// EventPublisher receives dataset and filter change notifications.
type EventPublisher interface {
	Publish(ctx context.Context, workspace string, t events.MessageType, data any)
}

// AnalysisOptions carries the configured limits of the analysis service.
type AnalysisOptions struct {
	MaxRows       int
	MaxConcurrent int
	DefaultTopN   int
	MaxTopN       int
	Widths        map[string]float64
}

// AnalysisOptionsFrom builds options from configuration.
func AnalysisOptionsFrom(cfg *config.Config) AnalysisOptions {
	return AnalysisOptions{
		MaxRows:       cfg.Upload.MaxRows,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		DefaultTopN:   cfg.Analysis.DefaultTopN,
		MaxTopN:       cfg.Analysis.MaxTopN,
		Widths:        cfg.Analysis.Widths,
	}
}

// MetricsQuery selects and parameterizes metric evaluation. Zero values
// fall back to the service defaults.
type MetricsQuery struct {
	Names  []string
	TopN   int
	Widths map[string]float64
}

type viewKey struct {
	workspace string
	view      schema.ViewName
}

// loaded is an adopted upload. Everything in it is immutable.
type loaded struct {
	id         string
	filename   string
	generation uint64
	uploadedAt time.Time
	columns    []string
	rows       []tabular.Row
}

// viewState is the state of one view within one workspace. filtered is
// rebuilt whenever the dataset or the criteria change and is then only
// read.
type viewState struct {
	issued   uint64
	floor    uint64
	dataset  *loaded
	criteria filter.Criteria
	filtered *analysis.Dataset
}

// snapshot is a consistent read-only view of a viewState.
type snapshot struct {
	contract schema.Contract
	dataset  *loaded
	criteria filter.Criteria
	filtered *analysis.Dataset
}

// AnalysisService holds uploaded datasets per workspace and view, runs the
// upload pipeline and evaluates metrics over the filtered rows.
type AnalysisService struct {
	decoder   *tabular.Decoder
	exporter  *exporter.Exporter
	publisher EventPublisher
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	decodes   *semaphore.Weighted
	opts      AnalysisOptions
	logger    *slog.Logger

	mu     sync.Mutex
	states map[viewKey]*viewState
}

// AnalysisServiceOption customizes an AnalysisService.
type AnalysisServiceOption func(*AnalysisService)

// WithPublisher sets the change notification sink.
func WithPublisher(p EventPublisher) AnalysisServiceOption {
	return func(s *AnalysisService) { s.publisher = p }
}

// WithTelemetry sets the tracer and instruments. Either may be nil.
func WithTelemetry(tracer trace.Tracer, metrics *infrastructure.BusinessMetrics) AnalysisServiceOption {
	return func(s *AnalysisService) {
		if tracer != nil {
			s.tracer = tracer
		}
		s.metrics = metrics
	}
}

// NewAnalysisService creates the service.
func NewAnalysisService(opts AnalysisOptions, logger *slog.Logger, options ...AnalysisServiceOption) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = config.DefaultMaxConcurrentDecodes
	}
	if opts.DefaultTopN <= 0 {
		opts.DefaultTopN = analysis.DefaultTopN
	}
	if opts.MaxTopN < opts.DefaultTopN {
		opts.MaxTopN = opts.DefaultTopN
	}

	s := &AnalysisService{
		decoder:  tabular.NewDecoder(logger, tabular.DecoderOptions{MaxRows: opts.MaxRows}),
		exporter: exporter.New(logger),
		tracer:   noop.NewTracerProvider().Tracer("careerlens"),
		decodes:  semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		opts:     opts,
		logger:   logger.With(slog.String("component", "analysis_service")),
		states:   make(map[viewKey]*viewState),
	}
	for _, o := range options {
		o(s)
	}

	s.logger.Info("AnalysisService initialized",
		slog.Int("max_rows", opts.MaxRows),
		slog.Int("max_concurrent_decodes", opts.MaxConcurrent),
		slog.Int("default_top_n", opts.DefaultTopN))
	return s
}

func lookupContract(view string) (schema.Contract, error) {
	c, ok := schema.Lookup(view)
	if !ok {
		return schema.Contract{}, apperrors.NewNotFoundError("view", fmt.Errorf("%w: %q", ErrUnknownView, view)).
			WithContext("view", view)
	}
	return c, nil
}

func noDataset(workspace string, view schema.ViewName) error {
	return apperrors.NewNotFoundError("dataset", ErrNoDataset).
		WithContext("workspace", workspace).
		WithContext("view", string(view))
}

// Upload decodes and validates data and, when it is still the newest
// upload of the view, adopts it as the view's dataset. A failed upload
// leaves any previously adopted dataset in place. Adopting a dataset
// resets the view's filters.
func (s *AnalysisService) Upload(ctx context.Context, workspace, view, filename string, data []byte) (api.DatasetSummary, error) {
	contract, err := lookupContract(view)
	if err != nil {
		return api.DatasetSummary{}, err
	}
	key := viewKey{workspace: workspace, view: contract.View}

	ctx, span := s.tracer.Start(ctx, "analysis.upload", trace.WithAttributes(
		attribute.String("workspace", workspace),
		attribute.String("view", view),
		attribute.String("filename", filename),
		attribute.Int("bytes", len(data)),
	))
	defer span.End()

	gen := s.issue(key)
	log := s.logger.With(
		slog.String("workspace", workspace),
		slog.String("view", view),
		slog.String("filename", filename),
		slog.Uint64("generation", gen))

	if err := s.decodes.Acquire(ctx, 1); err != nil {
		return api.DatasetSummary{}, err
	}
	start := time.Now()
	rows, err := s.decoder.DecodeFile(ctx, filename, data)
	if err == nil {
		infrastructure.AddSpanEvent(ctx, "decoded", attribute.Int("rows", len(rows)))
		err = contract.Validate(rows).Err(view)
	}
	s.decodes.Release(1)
	if s.metrics != nil {
		s.metrics.DecodeDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("view", view)))
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.countUpload(ctx, view, "rejected")
		stage := "validate"
		if tabular.IsDecodeError(err) {
			stage = "decode"
		}
		log.InfoContext(ctx, "upload rejected", slog.String("stage", stage), slog.String("error", err.Error()))
		return api.DatasetSummary{}, err
	}

	ds := &loaded{
		id:         uuid.New().String(),
		filename:   filename,
		generation: gen,
		uploadedAt: time.Now().UTC(),
		columns:    tabular.ColumnsOf(rows),
		rows:       rows,
	}
	full := analysis.NewDataset(contract, ds.columns, rows)

	replaced, current, ok := s.adopt(key, ds, full)
	if !ok {
		s.countUpload(ctx, view, "superseded")
		log.InfoContext(ctx, "upload superseded", slog.Uint64("current_generation", current))
		return api.DatasetSummary{}, apperrors.NewConflictError("upload superseded by a newer dataset", ErrSuperseded).
			WithContext("generation", gen).
			WithContext("current_generation", current)
	}

	s.countUpload(ctx, view, "accepted")
	if s.metrics != nil {
		s.metrics.UploadRows.Record(ctx, int64(len(rows)), metric.WithAttributes(attribute.String("view", view)))
		if !replaced {
			s.metrics.ActiveDatasets.Add(ctx, 1)
		}
	}
	log.InfoContext(ctx, "upload accepted",
		slog.String("dataset_id", ds.id),
		slog.Int("rows", len(rows)),
		slog.Int("columns", len(ds.columns)),
		slog.Bool("replaced", replaced))

	s.publish(ctx, workspace, events.MessageTypeDatasetReplaced, events.DatasetEvent{
		View:       view,
		DatasetID:  ds.id,
		Filename:   filename,
		Generation: gen,
		Rows:       len(rows),
	})
	return summarize(workspace, snapshot{contract: contract, dataset: ds, filtered: full}), nil
}

// adopt installs ds as the dataset of key unless a newer upload already
// landed or the view was discarded after ds's upload began. Adoption
// resets the criteria.
func (s *AnalysisService) adopt(key viewKey, ds *loaded, full *analysis.Dataset) (replaced bool, current uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(key)
	if ds.generation <= st.floor || (st.dataset != nil && st.dataset.generation > ds.generation) {
		current = st.floor
		if st.dataset != nil {
			current = st.dataset.generation
		}
		return false, current, false
	}
	replaced = st.dataset != nil
	st.dataset = ds
	st.criteria = filter.Criteria{}
	st.filtered = full
	return replaced, ds.generation, true
}

// issue hands out the next generation number of a view.
func (s *AnalysisService) issue(key viewKey) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(key)
	st.issued++
	return st.issued
}

// state returns the state of key, creating it. Callers hold s.mu.
func (s *AnalysisService) state(key viewKey) *viewState {
	st, ok := s.states[key]
	if !ok {
		st = &viewState{}
		s.states[key] = st
	}
	return st
}

func (s *AnalysisService) snapshot(workspace, view string) (snapshot, error) {
	contract, err := lookupContract(view)
	if err != nil {
		return snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[viewKey{workspace: workspace, view: contract.View}]
	if !ok || st.dataset == nil {
		return snapshot{}, noDataset(workspace, contract.View)
	}
	return snapshot{
		contract: contract,
		dataset:  st.dataset,
		criteria: st.criteria,
		filtered: st.filtered,
	}, nil
}

// Summary describes the dataset held for a view.
func (s *AnalysisService) Summary(ctx context.Context, workspace, view string) (api.DatasetSummary, error) {
	snap, err := s.snapshot(workspace, view)
	if err != nil {
		return api.DatasetSummary{}, err
	}
	return summarize(workspace, snap), nil
}

func summarize(workspace string, snap snapshot) api.DatasetSummary {
	return api.DatasetSummary{
		ID:           snap.dataset.id,
		Workspace:    workspace,
		View:         string(snap.contract.View),
		Filename:     snap.dataset.filename,
		Generation:   snap.dataset.generation,
		Rows:         len(snap.dataset.rows),
		FilteredRows: snap.filtered.Len(),
		Columns:      snap.dataset.columns,
		Departments:  snap.filtered.Departments,
		SlotFamilies: slotFamilies(snap.contract, snap.dataset.columns),
		Filtered:     !snap.criteria.IsZero(),
		UploadedAt:   snap.dataset.uploadedAt,
	}
}

// slotFamilies names the repeated groups of the contract the upload carries.
func slotFamilies(contract schema.Contract, columns []string) []string {
	var out []string
	for _, f := range contract.Families {
		if f.PresentIn(columns) {
			out = append(out, f.Name)
		}
	}
	return out
}

// Discard drops the dataset and filters of a view. Discarding a view
// without a dataset is not an error. Uploads still in flight will not be
// adopted.
func (s *AnalysisService) Discard(ctx context.Context, workspace, view string) error {
	contract, err := lookupContract(view)
	if err != nil {
		return err
	}
	key := viewKey{workspace: workspace, view: contract.View}

	s.mu.Lock()
	st, ok := s.states[key]
	var had bool
	if ok {
		had = st.dataset != nil
		st.floor = st.issued
		st.dataset = nil
		st.criteria = filter.Criteria{}
		st.filtered = nil
	}
	s.mu.Unlock()

	if !had {
		return nil
	}
	if s.metrics != nil {
		s.metrics.ActiveDatasets.Add(ctx, -1)
	}
	s.logger.InfoContext(ctx, "dataset discarded",
		slog.String("workspace", workspace),
		slog.String("view", view))
	s.publish(ctx, workspace, events.MessageTypeDatasetCleared, events.DatasetEvent{View: view})
	return nil
}

// SetFilters replaces the filter criteria of a view and returns the
// summary with the new filtered row count.
func (s *AnalysisService) SetFilters(ctx context.Context, workspace, view string, criteria filter.Criteria) (api.DatasetSummary, error) {
	return s.applyFilters(ctx, workspace, view, criteria, false)
}

// ResetFilters restores the "all" filter state.
func (s *AnalysisService) ResetFilters(ctx context.Context, workspace, view string) (api.DatasetSummary, error) {
	return s.applyFilters(ctx, workspace, view, filter.Criteria{}, true)
}

func (s *AnalysisService) applyFilters(ctx context.Context, workspace, view string, criteria filter.Criteria, reset bool) (api.DatasetSummary, error) {
	snap, err := s.snapshot(workspace, view)
	if err != nil {
		return api.DatasetSummary{}, err
	}

	ctx, span := s.tracer.Start(ctx, "analysis.filter", trace.WithAttributes(
		attribute.String("workspace", workspace),
		attribute.String("view", view),
	))
	defer span.End()

	preds, err := criteria.Compile(snap.contract.Families)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return api.DatasetSummary{}, err
	}
	rows := filter.Apply(snap.dataset.rows, preds...)
	filtered := analysis.NewDataset(snap.contract, snap.dataset.columns, rows)
	span.SetAttributes(attribute.Int("predicates", len(preds)), attribute.Int("filtered_rows", len(rows)))

	s.mu.Lock()
	st := s.states[viewKey{workspace: workspace, view: snap.contract.View}]
	if st == nil || st.dataset != snap.dataset {
		s.mu.Unlock()
		if st == nil || st.dataset == nil {
			return api.DatasetSummary{}, noDataset(workspace, snap.contract.View)
		}
		return api.DatasetSummary{}, apperrors.NewConflictError("dataset replaced while filtering", ErrSuperseded).
			WithContext("view", view)
	}
	st.criteria = criteria
	st.filtered = filtered
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.FilterChanges.Add(ctx, 1, metric.WithAttributes(
			attribute.String("view", view),
			attribute.Bool("reset", reset)))
	}
	s.logger.DebugContext(ctx, "filters applied",
		slog.String("workspace", workspace),
		slog.String("view", view),
		slog.Int("predicates", len(preds)),
		slog.Int("filtered_rows", len(rows)),
		slog.Int("total_rows", len(snap.dataset.rows)))

	s.publish(ctx, workspace, events.MessageTypeFiltersChanged, events.FiltersEvent{
		View:         view,
		DatasetID:    snap.dataset.id,
		FilteredRows: len(rows),
		Reset:        reset,
	})

	snap.criteria = criteria
	snap.filtered = filtered
	return summarize(workspace, snap), nil
}

// Filters returns the current criteria of a view.
func (s *AnalysisService) Filters(ctx context.Context, workspace, view string) (filter.Criteria, error) {
	snap, err := s.snapshot(workspace, view)
	if err != nil {
		return filter.Criteria{}, err
	}
	return snap.criteria, nil
}

// Rows returns the dataset's column order and the filtered rows.
func (s *AnalysisService) Rows(ctx context.Context, workspace, view string) ([]string, []tabular.Row, error) {
	snap, err := s.snapshot(workspace, view)
	if err != nil {
		return nil, nil, err
	}
	return snap.dataset.columns, snap.filtered.Rows, nil
}

// Metrics evaluates catalogue metrics over the filtered rows. It returns
// the results in catalogue order together with the filtered row count.
func (s *AnalysisService) Metrics(ctx context.Context, workspace, view string, q MetricsQuery) ([]analysis.Result, int, error) {
	snap, err := s.snapshot(workspace, view)
	if err != nil {
		return nil, 0, err
	}
	cat, ok := analysis.CatalogueFor(snap.contract.View)
	if !ok {
		return nil, 0, apperrors.NewNotFoundError("view", fmt.Errorf("%w: %q", ErrUnknownView, view))
	}

	ctx, span := s.tracer.Start(ctx, "analysis.metrics", trace.WithAttributes(
		attribute.String("view", view),
		attribute.StringSlice("names", q.Names),
		attribute.Int("rows", snap.filtered.Len()),
	))
	defer span.End()

	start := time.Now()
	results, err := cat.Evaluate(snap.filtered, s.options(q), q.Names...)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, 0, fmt.Errorf("%w: %w", ErrUnknownMetric, err)
	}

	if s.metrics != nil {
		attrs := metric.WithAttributes(attribute.String("view", view))
		s.metrics.MetricDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		for _, r := range results {
			s.metrics.MetricEvaluations.Add(ctx, 1, metric.WithAttributes(
				attribute.String("view", view),
				attribute.String("metric", r.Name)))
		}
	}
	return results, snap.filtered.Len(), nil
}

// Metric evaluates a single named metric.
func (s *AnalysisService) Metric(ctx context.Context, workspace, view, name string, q MetricsQuery) (analysis.Result, int, error) {
	q.Names = []string{name}
	results, n, err := s.Metrics(ctx, workspace, view, q)
	if err != nil {
		return analysis.Result{}, 0, err
	}
	return results[0], n, nil
}

// options merges a query with the configured defaults. TopN is clamped to
// the configured maximum.
func (s *AnalysisService) options(q MetricsQuery) analysis.Options {
	topN := q.TopN
	if topN <= 0 {
		topN = s.opts.DefaultTopN
	}
	if topN > s.opts.MaxTopN {
		topN = s.opts.MaxTopN
	}
	widths := make(map[string]float64, len(s.opts.Widths)+len(q.Widths))
	for k, v := range s.opts.Widths {
		widths[k] = v
	}
	for k, v := range q.Widths {
		if v > 0 {
			widths[k] = v
		}
	}
	return analysis.Options{TopN: topN, Widths: widths}
}

// Export writes the filtered rows of a view in format, with columns in
// dataset order. It returns the suggested download filename.
func (s *AnalysisService) Export(ctx context.Context, workspace, view string, format exporter.Format, w io.Writer) (string, error) {
	snap, err := s.snapshot(workspace, view)
	if err != nil {
		return "", err
	}

	ctx, span := s.tracer.Start(ctx, "analysis.export", trace.WithAttributes(
		attribute.String("view", view),
		attribute.String("format", string(format)),
		attribute.Int("rows", snap.filtered.Len()),
	))
	defer span.End()

	if err := s.exporter.Export(ctx, w, format, snap.dataset.columns, snap.filtered.Rows); err != nil {
		infrastructure.RecordError(ctx, err)
		return "", apperrors.NewStorageError("write export", err).
			WithContext("view", view).
			WithContext("format", string(format))
	}
	if s.metrics != nil {
		s.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("view", view),
			attribute.String("format", string(format))))
	}
	s.logger.InfoContext(ctx, "dataset exported",
		slog.String("workspace", workspace),
		slog.String("view", view),
		slog.String("format", string(format)),
		slog.Int("rows", snap.filtered.Len()))
	return format.Filename(fmt.Sprintf("%s-%s", view, snap.dataset.id[:8])), nil
}

// Template writes the blank upload template of a view and returns its
// download filename.
func (s *AnalysisService) Template(ctx context.Context, view string, format exporter.Format, w io.Writer) (string, error) {
	contract, err := lookupContract(view)
	if err != nil {
		return "", err
	}
	if err := s.exporter.Template(ctx, w, contract, format); err != nil {
		return "", err
	}
	return format.Filename(view + "-template"), nil
}

// Views describes every analysis view.
func (s *AnalysisService) Views() []api.ViewInfo {
	contracts := schema.Contracts()
	out := make([]api.ViewInfo, 0, len(contracts))
	for _, c := range contracts {
		info := api.ViewInfo{
			View:           string(c.View),
			Title:          c.Title,
			DynamicColumns: c.Dynamic,
		}
		for _, r := range c.Required.Requirements() {
			info.Required = append(info.Required, r.Label())
		}
		for _, f := range c.Families {
			info.SlotFamilies = append(info.SlotFamilies, f.Name)
		}
		if cat, ok := analysis.CatalogueFor(c.View); ok {
			info.Metrics = cat.Names()
		}
		out = append(out, info)
	}
	return out
}

// DatasetCount returns how many views currently hold a dataset.
func (s *AnalysisService) DatasetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.states {
		if st.dataset != nil {
			n++
		}
	}
	return n
}

func (s *AnalysisService) countUpload(ctx context.Context, view, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.UploadsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("view", view),
		attribute.String("outcome", outcome)))
}

func (s *AnalysisService) publish(ctx context.Context, workspace string, t events.MessageType, data any) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, workspace, t, data)
	}
}
