package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"careerlens/internal/analysis"
	"careerlens/internal/filter"
	"careerlens/internal/schema"
	"careerlens/internal/tabular"
)

// Common error types following RFC 7807
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeServiceDown     = "/errors/service-unavailable"
	TypeTimeout         = "/errors/timeout"
	TypeConflict        = "/errors/conflict"
	TypePayloadTooLarge = "/errors/payload-too-large"
)

// Domain-specific error types
const (
	TypeUploadDecode         = "/errors/upload/decode"
	TypeUploadMissingColumns = "/errors/upload/missing-columns"
	TypeUploadSuperseded     = "/errors/upload/superseded"
	TypeDatasetNotFound      = "/errors/dataset/not-found"
	TypeUnknownMetric        = "/errors/metric/unknown"
	TypeUnknownFamily        = "/errors/filter/unknown-family"
	TypeWebSocketUpgrade     = "/errors/websocket/upgrade-failed"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	writeProblem(w, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			path,
		)
	}

	var decodeErr *tabular.DecodeError
	if errors.As(err, &decodeErr) {
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeUploadDecode,
			"Upload Could Not Be Read",
			decodeErr.Error(),
			path,
		).WithExtension("reason", string(decodeErr.Reason))
	}

	var missingErr *schema.ValidationError
	if errors.As(err, &missingErr) {
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeUploadMissingColumns,
			"Missing Required Columns",
			missingErr.Error(),
			path,
		).WithExtension("view", missingErr.View).WithExtension("missing", missingErr.Missing)
	}

	var metricErr *analysis.UnknownMetricError
	if errors.As(err, &metricErr) {
		return NewProblemDetails(
			http.StatusNotFound,
			TypeUnknownMetric,
			"Unknown Metric",
			metricErr.Error(),
			path,
		).WithExtension("metric", metricErr.Name)
	}

	var familyErr *filter.ErrUnknownFamily
	if errors.As(err, &familyErr) {
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeUnknownFamily,
			"Unknown Slot Family",
			familyErr.Error(),
			path,
		).WithExtension("family", familyErr.Family)
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			fmt.Sprintf("The upload exceeds the %d byte limit", tooLarge.Limit),
			path,
		).WithExtension("limit", tooLarge.Limit)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, path)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		path,
	)
}

func appErrorToProblem(appErr *AppError, path string) *ProblemDetails {
	var problem *ProblemDetails
	switch appErr.Type {
	case ErrTypeNotFound:
		problem = NewProblemDetails(http.StatusNotFound, TypeDatasetNotFound, "Not Found", appErr.Message, path)
	case ErrTypeConflict:
		problem = NewProblemDetails(http.StatusConflict, TypeUploadSuperseded, "Conflict", appErr.Message, path)
	default:
		problem = NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request",
			path,
		)
	}
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST", "MISSING_PARAMETER", "INVALID_PARAMETER":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "DATASET_NOT_FOUND":
		problemType = TypeDatasetNotFound
	case "CONFLICT":
		problemType = TypeConflict
	case "PAYLOAD_TOO_LARGE":
		problemType = TypePayloadTooLarge
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "SERVICE_UNAVAILABLE":
		problemType = TypeServiceDown
	case "WEBSOCKET_UPGRADE_FAILED":
		problemType = TypeWebSocketUpgrade
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if v, ok := apiErr.Details.(ValidationErrors); ok {
		problem.WithExtension("errors", v.Errors)
	} else if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	writeProblem(w, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	writeProblem(w, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeInternal,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	writeProblem(w, problem)
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// writeProblem writes problem as application/problem+json.
func writeProblem(w http.ResponseWriter, problem *ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// JSON helper for consistent JSON responses
func (h *ErrorHandler) JSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
