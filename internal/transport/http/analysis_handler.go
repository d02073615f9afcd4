package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"careerlens/internal/analysis"
	apierrors "careerlens/internal/errors"
	"careerlens/internal/exporter"
	"careerlens/internal/middleware"
	"careerlens/internal/services"
	"careerlens/internal/validation"
	api "careerlens/pkg/contracts/api/v1"
)

// uploadField is the multipart form field carrying the spreadsheet.
const uploadField = "file"

// multipartOverhead is allowed on top of the file size limit for the
// multipart envelope.
const multipartOverhead = 1 << 20

type targetKey struct{}

// AnalysisHandler serves the per-workspace analysis API.
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	files        *validation.FileValidator
	validator    *validation.RequestValidator
	errorHandler *apierrors.ErrorHandler
	maxUpload    int64
	logger       *slog.Logger
}

// NewAnalysisHandler creates the handler. maxUpload bounds the uploaded
// file size in bytes.
func NewAnalysisHandler(
	service AnalysisServiceInterface,
	files *validation.FileValidator,
	validator *validation.RequestValidator,
	errorHandler *apierrors.ErrorHandler,
	maxUpload int64,
	logger *slog.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		files:        files,
		validator:    validator,
		errorHandler: errorHandler,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("component", "analysis_handler")),
	}
}

// Routes returns the analysis routes, to be mounted under /api/analysis.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{workspace}/{view}", func(r chi.Router) {
		r.Use(h.TargetCtx)

		r.With(middleware.MaxBodySize(h.maxUpload+multipartOverhead)).Post("/upload", h.Upload)
		r.Get("/", h.Summary)
		r.Delete("/", h.Discard)

		r.Route("/filters", func(r chi.Router) {
			r.Get("/", h.GetFilters)
			r.Put("/", h.SetFilters)
			r.Delete("/", h.ResetFilters)
		})

		r.Get("/rows", h.Rows)
		r.Get("/metrics", h.Metrics)
		r.Get("/metrics/{name}", h.Metric)
		r.Get("/export", h.Export)
	})

	return r
}

// TargetCtx validates the workspace and view path parameters.
func (h *AnalysisHandler) TargetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := api.Target{
			Workspace: chi.URLParam(r, "workspace"),
			View:      strings.ToLower(chi.URLParam(r, "view")),
		}
		if err := h.validator.Struct(target); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), targetKey{}, target)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func targetFrom(r *http.Request) api.Target {
	t, _ := r.Context().Value(targetKey{}).(api.Target)
	return t
}

// Upload handles POST /{workspace}/{view}/upload
func (h *AnalysisHandler) Upload(w http.ResponseWriter, r *http.Request) {
	t := targetFrom(r)

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		h.errorHandler.HandleError(w, r, h.bodyError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(uploadField, "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if err := h.files.CheckUpload(header.Filename, header.Size); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.bodyError(err))
		return
	}

	summary, err := h.service.Upload(r.Context(), t.Workspace, t.View, header.Filename, data)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summary)
}

// bodyError maps body read failures caused by the size limit to a
// MaxBytesError, whatever layer wrapped them.
func (h *AnalysisHandler) bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	if strings.Contains(err.Error(), "request body too large") {
		return &http.MaxBytesError{Limit: h.maxUpload}
	}
	return apierrors.InvalidRequestWithError(err)
}

// Summary handles GET /{workspace}/{view}
func (h *AnalysisHandler) Summary(w http.ResponseWriter, r *http.Request) {
	t := targetFrom(r)
	summary, err := h.service.Summary(r.Context(), t.Workspace, t.View)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Discard handles DELETE /{workspace}/{view}
func (h *AnalysisHandler) Discard(w http.ResponseWriter, r *http.Request) {
	t := targetFrom(r)
	if err := h.service.Discard(r.Context(), t.Workspace, t.View); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFilters handles GET /{workspace}/{view}/filters
func (h *AnalysisHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	t := targetFrom(r)
	criteria, err := h.service.Filters(r.Context(), t.Workspace, t.View)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.FilterRequestFrom(criteria))
}

// SetFilters handles PUT /{workspace}/{view}/filters
func (h *AnalysisHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	t := targetFrom(r)

	var req api.FilterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.SetFilters(r.Context(), t.Workspace, t.View, req.Criteria())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// ResetFilters handles DELETE /{workspace}/{view}/filters
func (h *AnalysisHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	t := targetFrom(r)
	summary, err := h.service.ResetFilters(r.Context(), t.Workspace, t.View)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Rows handles GET /{workspace}/{view}/rows
func (h *AnalysisHandler) Rows(w http.ResponseWriter, r *http.Request) {
	t := targetFrom(r)
	columns, rows, err := h.service.Rows(r.Context(), t.Workspace, t.View)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = row
	}
	render.JSON(w, r, api.RowsResponse{Columns: columns, Rows: out, Total: len(rows)})
}

// Metrics handles GET /{workspace}/{view}/metrics
func (h *AnalysisHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	t := targetFrom(r)
	q, err := h.metricsQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	results, n, err := h.service.Metrics(r.Context(), t.Workspace, t.View, q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, metricsResponse(t.View, n, results...))
}

// Metric handles GET /{workspace}/{view}/metrics/{name}
func (h *AnalysisHandler) Metric(w http.ResponseWriter, r *http.Request) {
	t := targetFrom(r)
	q, err := h.metricsQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, n, err := h.service.Metric(r.Context(), t.Workspace, t.View, chi.URLParam(r, "name"), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, metricsResponse(t.View, n, result))
}

func metricsResponse(view string, filtered int, results ...analysis.Result) api.MetricsResponse {
	out := api.MetricsResponse{View: view, FilteredRows: filtered, Metrics: make([]api.MetricResult, len(results))}
	for i, res := range results {
		out.Metrics[i] = api.MetricResult{Name: res.Name, Title: res.Title, Kind: string(res.Kind), Data: res.Data}
	}
	return out
}

// metricsQuery reads ?names=a,b&top_n=5&width.cgpa=0.25 and validates it.
func (h *AnalysisHandler) metricsQuery(r *http.Request) (services.MetricsQuery, error) {
	query := r.URL.Query()
	var req api.MetricsRequest

	for _, v := range query["names"] {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				req.Names = append(req.Names, name)
			}
		}
	}

	if v := query.Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return services.MetricsQuery{}, apierrors.ErrValidation("top_n", "top_n must be an integer")
		}
		req.TopN = n
	}

	for key, values := range query {
		field, ok := strings.CutPrefix(key, "width.")
		if !ok || len(values) == 0 {
			continue
		}
		width, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			return services.MetricsQuery{}, apierrors.ErrValidation(key, fmt.Sprintf("%s must be a number", key))
		}
		if req.Widths == nil {
			req.Widths = make(map[string]float64)
		}
		req.Widths[field] = width
	}

	if err := h.validator.Struct(req); err != nil {
		return services.MetricsQuery{}, err
	}
	return services.MetricsQuery{Names: req.Names, TopN: req.TopN, Widths: req.Widths}, nil
}

// Export handles GET /{workspace}/{view}/export?format=csv|xlsx|json
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	t := targetFrom(r)

	req := api.ExportRequest{Format: r.URL.Query().Get("format")}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(req.Format, exporter.FormatCSV)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	var buf bytes.Buffer
	filename, err := h.service.Export(r.Context(), t.Workspace, t.View, format, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	writeAttachment(w, format, filename, buf.Bytes())
}

// writeAttachment sends a fully rendered download. Rendering into memory
// first lets failures still produce a problem response.
func writeAttachment(w http.ResponseWriter, format exporter.Format, filename string, body []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
