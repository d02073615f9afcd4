package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "careerlens/internal/errors"
	"careerlens/internal/exporter"
	"careerlens/internal/validation"
	api "careerlens/pkg/contracts/api/v1"
)

// ViewsHandler serves the view catalogue and upload templates.
type ViewsHandler struct {
	service      AnalysisServiceInterface
	validator    *validation.RequestValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewViewsHandler creates a new views handler
func NewViewsHandler(service AnalysisServiceInterface, validator *validation.RequestValidator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ViewsHandler {
	return &ViewsHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "views_handler")),
	}
}

// Routes returns the view routes, to be mounted under /api/views.
func (h *ViewsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{view}/template", h.Template)
	return r
}

// List handles GET /api/views
func (h *ViewsHandler) List(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Views())
}

// Template handles GET /api/views/{view}/template?format=json|csv|xlsx
func (h *ViewsHandler) Template(w http.ResponseWriter, r *http.Request) {
	view := strings.ToLower(chi.URLParam(r, "view"))

	req := api.ExportRequest{Format: r.URL.Query().Get("format")}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(req.Format, exporter.FormatJSON)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	var buf bytes.Buffer
	filename, err := h.service.Template(r.Context(), view, format, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "template served",
		slog.String("view", view),
		slog.String("format", string(format)))

	if format == exporter.FormatJSON {
		w.Header().Set("Content-Type", format.ContentType())
		_, _ = w.Write(buf.Bytes())
		return
	}
	writeAttachment(w, format, filename, buf.Bytes())
}
