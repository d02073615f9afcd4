package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"careerlens/internal/analysis"
	apierrors "careerlens/internal/errors"
	"careerlens/internal/exporter"
	"careerlens/internal/filter"
	"careerlens/internal/schema"
	"careerlens/internal/services"
	"careerlens/internal/shared/testutil"
	"careerlens/internal/tabular"
	"careerlens/internal/validation"
	api "careerlens/pkg/contracts/api/v1"
)

type mockAnalysisService struct {
	mock.Mock
}

func (m *mockAnalysisService) Upload(ctx context.Context, workspace, view, filename string, data []byte) (api.DatasetSummary, error) {
	args := m.Called(ctx, workspace, view, filename, data)
	return args.Get(0).(api.DatasetSummary), args.Error(1)
}

func (m *mockAnalysisService) Summary(ctx context.Context, workspace, view string) (api.DatasetSummary, error) {
	args := m.Called(ctx, workspace, view)
	return args.Get(0).(api.DatasetSummary), args.Error(1)
}

func (m *mockAnalysisService) Discard(ctx context.Context, workspace, view string) error {
	return m.Called(ctx, workspace, view).Error(0)
}

func (m *mockAnalysisService) SetFilters(ctx context.Context, workspace, view string, criteria filter.Criteria) (api.DatasetSummary, error) {
	args := m.Called(ctx, workspace, view, criteria)
	return args.Get(0).(api.DatasetSummary), args.Error(1)
}

func (m *mockAnalysisService) Filters(ctx context.Context, workspace, view string) (filter.Criteria, error) {
	args := m.Called(ctx, workspace, view)
	return args.Get(0).(filter.Criteria), args.Error(1)
}

func (m *mockAnalysisService) ResetFilters(ctx context.Context, workspace, view string) (api.DatasetSummary, error) {
	args := m.Called(ctx, workspace, view)
	return args.Get(0).(api.DatasetSummary), args.Error(1)
}

func (m *mockAnalysisService) Rows(ctx context.Context, workspace, view string) ([]string, []tabular.Row, error) {
	args := m.Called(ctx, workspace, view)
	return args.Get(0).([]string), args.Get(1).([]tabular.Row), args.Error(2)
}

func (m *mockAnalysisService) Metrics(ctx context.Context, workspace, view string, q services.MetricsQuery) ([]analysis.Result, int, error) {
	args := m.Called(ctx, workspace, view, q)
	return args.Get(0).([]analysis.Result), args.Int(1), args.Error(2)
}

func (m *mockAnalysisService) Metric(ctx context.Context, workspace, view, name string, q services.MetricsQuery) (analysis.Result, int, error) {
	args := m.Called(ctx, workspace, view, name, q)
	return args.Get(0).(analysis.Result), args.Int(1), args.Error(2)
}

func (m *mockAnalysisService) Export(ctx context.Context, workspace, view string, format exporter.Format, w io.Writer) (string, error) {
	args := m.Called(ctx, workspace, view, format, w)
	if body := args.String(1); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.String(0), args.Error(2)
}

func (m *mockAnalysisService) Template(ctx context.Context, view string, format exporter.Format, w io.Writer) (string, error) {
	args := m.Called(ctx, view, format, w)
	if body := args.String(1); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.String(0), args.Error(2)
}

func (m *mockAnalysisService) Views() []api.ViewInfo {
	return m.Called().Get(0).([]api.ViewInfo)
}

const testMaxUpload = 1 << 10

func newTestRouter(t *testing.T, svc *mockAnalysisService) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	errHandler := apierrors.NewErrorHandler(logger, false)
	files := validation.NewFileValidator(logger, testMaxUpload, []string{".csv", ".xlsx"})
	rv := validation.NewRequestValidator()

	r := chi.NewRouter()
	r.Mount("/api/analysis", NewAnalysisHandler(svc, files, rv, errHandler, testMaxUpload, logger).Routes())
	r.Mount("/api/views", NewViewsHandler(svc, rv, errHandler, logger).Routes())
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestAnalysisHandler_Upload(t *testing.T) {
	content := []byte("Name,Dept,Placed or Non Placed,Maximum Salary\nA,CSE,Placed,5\n")

	tests := []struct {
		name       string
		field      string
		filename   string
		content    []byte
		setup      func(m *mockAnalysisService)
		wantStatus int
		wantType   string
	}{
		{
			name:     "accepted",
			field:    "file",
			filename: "placements.csv",
			content:  content,
			setup: func(m *mockAnalysisService) {
				m.On("Upload", mock.Anything, "fall", "overview", "placements.csv", content).
					Return(api.DatasetSummary{ID: "ds-1", View: "overview", Rows: 1}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing file field",
			field:      "attachment",
			filename:   "placements.csv",
			content:    content,
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "unsupported extension",
			field:      "file",
			filename:   "placements.pdf",
			content:    content,
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeUploadDecode,
		},
		{
			name:       "too large",
			field:      "file",
			filename:   "placements.csv",
			content:    bytes.Repeat([]byte("a"), testMaxUpload+1),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   apierrors.TypePayloadTooLarge,
		},
		{
			name:     "missing columns",
			field:    "file",
			filename: "placements.csv",
			content:  content,
			setup: func(m *mockAnalysisService) {
				m.On("Upload", mock.Anything, "fall", "overview", "placements.csv", content).
					Return(api.DatasetSummary{}, &schema.ValidationError{View: "overview", Missing: []string{"Dept"}})
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeUploadMissingColumns,
		},
		{
			name:     "superseded",
			field:    "file",
			filename: "placements.csv",
			content:  content,
			setup: func(m *mockAnalysisService) {
				m.On("Upload", mock.Anything, "fall", "overview", "placements.csv", content).
					Return(api.DatasetSummary{}, apierrors.NewConflictError("upload superseded by a newer dataset", services.ErrSuperseded))
			},
			wantStatus: http.StatusConflict,
			wantType:   apierrors.TypeUploadSuperseded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAnalysisService{}
			if tt.setup != nil {
				tt.setup(svc)
			}
			body, contentType := multipartBody(t, tt.field, tt.filename, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/analysis/fall/overview/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			newTestRouter(t, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, decodeProblem(t, rec)["type"])
			} else {
				var summary api.DatasetSummary
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
				assert.Equal(t, "ds-1", summary.ID)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAnalysisHandler_SummaryAndDiscard(t *testing.T) {
	svc := &mockAnalysisService{}
	svc.On("Summary", mock.Anything, "fall", "student").
		Return(api.DatasetSummary{}, apierrors.NewNotFoundError("dataset", services.ErrNoDataset))
	svc.On("Discard", mock.Anything, "fall", "student").Return(nil)
	router := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/fall/Student", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeDatasetNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/analysis/fall/student", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	svc.AssertExpectations(t)
}

func TestAnalysisHandler_Filters(t *testing.T) {
	svc := &mockAnalysisService{}
	min := 7.5
	want := filter.Criteria{
		Equals: map[string]string{"Dept": "CSE"},
		Ranges: map[string]filter.Bounds{"CGPA": {Min: &min}},
	}
	svc.On("SetFilters", mock.Anything, "fall", "student", want).
		Return(api.DatasetSummary{Rows: 10, FilteredRows: 4, Filtered: true}, nil)
	svc.On("Filters", mock.Anything, "fall", "student").Return(want, nil)
	svc.On("ResetFilters", mock.Anything, "fall", "student").
		Return(api.DatasetSummary{Rows: 10, FilteredRows: 10}, nil)
	router := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	body := `{"equals":{"Dept":"CSE"},"ranges":{"CGPA":{"min":7.5}}}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/analysis/fall/student/filters", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary api.DatasetSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 4, summary.FilteredRows)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/fall/student/filters", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got api.FilterRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "CSE", got.Equals["Dept"])
	require.NotNil(t, got.Ranges["CGPA"].Min)
	assert.Equal(t, 7.5, *got.Ranges["CGPA"].Min)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/analysis/fall/student/filters", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	svc.AssertExpectations(t)
}

func TestAnalysisHandler_FilterRequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantType string
	}{
		{"malformed json", `{"equals":`, apierrors.TypeValidation},
		{"search too long", `{"search":"` + strings.Repeat("x", 201) + `"}`, apierrors.TypeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAnalysisService{}
			rec := httptest.NewRecorder()
			newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/analysis/fall/student/filters", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantType, decodeProblem(t, rec)["type"])
			svc.AssertNotCalled(t, "SetFilters", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAnalysisHandler_Rows(t *testing.T) {
	svc := &mockAnalysisService{}
	header := []string{"Name", "Dept"}
	rows := []tabular.Row{tabular.RowFromStrings(header, "A", "CSE")}
	svc.On("Rows", mock.Anything, "fall", "overview").Return(header, rows, nil)

	rec := httptest.NewRecorder()
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/fall/overview/rows", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"columns":["Name","Dept"],"rows":[{"Name":"A","Dept":"CSE"}],"total":1}`, rec.Body.String())
}

func TestAnalysisHandler_Metrics(t *testing.T) {
	svc := &mockAnalysisService{}
	q := services.MetricsQuery{Names: []string{"placement_summary", "salary_bands"}, TopN: 5, Widths: map[string]float64{"salary": 2}}
	svc.On("Metrics", mock.Anything, "fall", "overview", q).Return([]analysis.Result{
		{Name: "placement_summary", Title: "Placement summary", Kind: analysis.KindSummary, Data: map[string]int{"students": 3}},
	}, 3, nil)
	svc.On("Metric", mock.Anything, "fall", "overview", "nope", services.MetricsQuery{}).
		Return(analysis.Result{}, 0, &analysis.UnknownMetricError{View: schema.ViewOverview, Name: "nope"})
	router := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/analysis/fall/overview/metrics?names=placement_summary,salary_bands&top_n=5&width.salary=2", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp api.MetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.FilteredRows)
	require.Len(t, resp.Metrics, 1)
	assert.Equal(t, "summary", resp.Metrics[0].Kind)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/fall/overview/metrics/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeUnknownMetric, decodeProblem(t, rec)["type"])

	svc.AssertExpectations(t)
}

func TestAnalysisHandler_MetricsQueryErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"top_n not a number", "top_n=many"},
		{"top_n out of range", "top_n=500"},
		{"unknown width", "width.height=3"},
		{"non-positive width", "width.cgpa=0"},
		{"width not a number", "width.cgpa=wide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAnalysisService{}
			rec := httptest.NewRecorder()
			newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/fall/overview/metrics?"+tt.query, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			svc.AssertNotCalled(t, "Metrics", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAnalysisHandler_Export(t *testing.T) {
	svc := &mockAnalysisService{}
	svc.On("Export", mock.Anything, "fall", "overview", exporter.FormatCSV, mock.Anything).
		Return("overview-1234abcd.csv", "Name\nA\n", nil)
	router := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/fall/overview/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="overview-1234abcd.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Name\nA\n", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/fall/overview/export?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisHandler_InvalidWorkspace(t *testing.T) {
	svc := &mockAnalysisService{}
	rec := httptest.NewRecorder()
	long := strings.Repeat("w", 65)
	newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/"+long+"/overview", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Summary", mock.Anything, mock.Anything, mock.Anything)
}

func TestViewsHandler(t *testing.T) {
	svc := &mockAnalysisService{}
	svc.On("Views").Return([]api.ViewInfo{{View: "overview", Title: "Placement overview"}})
	svc.On("Template", mock.Anything, "student", exporter.FormatJSON, mock.Anything).
		Return("student-template.json", `{"view":"student"}`, nil)
	svc.On("Template", mock.Anything, "student", exporter.FormatXLSX, mock.Anything).
		Return("student-template.xlsx", "PK", nil)
	svc.On("Template", mock.Anything, "alumni", exporter.FormatJSON, mock.Anything).
		Return("", "", apierrors.NewNotFoundError("view", services.ErrUnknownView))
	router := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/views", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"view":"overview"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/views/student/template", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/views/student/template?format=xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "student-template.xlsx")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/views/alumni/template", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.AssertExpectations(t)
}
