package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerlens/internal/aggregate"
	"careerlens/internal/analysis"
	"careerlens/internal/exporter"
	"careerlens/internal/shared/testutil"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func overviewFile(t *testing.T, dir, name string) string {
	return writeFile(t, dir, name, testutil.CSV(t,
		[]string{"Name", "Dept", "Placed or Non Placed", "Maximum Salary", "Company 1"},
		[]string{"A", "CSE", "Placed", "5", "Acme"},
		[]string{"B", "CSE", "Not Placed", "0", ""},
		[]string{"C", "ECE", "Placed", "8", "Globex"},
	))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := overviewFile(t, dir, "good.csv")
	partial := writeFile(t, dir, "partial.csv", testutil.CSV(t,
		[]string{"Name", "Dept"},
		[]string{"A", "CSE"},
	))

	tests := []struct {
		name    string
		files   []string
		wantErr string
		want    []string
	}{
		{
			name:  "valid file",
			files: []string{good},
			want:  []string{"ok    " + good + " (3 rows, 5 columns)"},
		},
		{
			name:    "missing columns listed together",
			files:   []string{partial},
			wantErr: "1 of 1 files failed validation",
			want:    []string{"FAIL  " + partial + ": missing Placed or Non Placed, Maximum Salary"},
		},
		{
			name:    "every file is checked",
			files:   []string{good, partial},
			wantErr: "1 of 2 files failed validation",
			want:    []string{"ok    " + good, "FAIL  " + partial},
		},
		{
			name:    "unsupported extension",
			files:   []string{writeFile(t, dir, "notes.txt", []byte("Name\nA\n"))},
			wantErr: "1 of 1 files failed validation",
			want:    []string{"unsupported file type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"validate", "--view", "overview"}, tt.files...)...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

type report struct {
	File    string `json:"file"`
	Dataset struct {
		Rows         int `json:"rows"`
		FilteredRows int `json:"filtered_rows"`
	} `json:"dataset"`
	Metrics []struct {
		Name string          `json:"name"`
		Data json.RawMessage `json:"data"`
	} `json:"metrics"`
}

// metricData decodes the payload of the named metric into out.
func (r report) metricData(t *testing.T, name string, out any) {
	t.Helper()
	for _, m := range r.Metrics {
		if m.Name == name {
			require.NoError(t, json.Unmarshal(m.Data, out))
			return
		}
	}
	t.Fatalf("metric %q not in report for %s", name, r.File)
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	first := overviewFile(t, dir, "a.csv")
	second := overviewFile(t, dir, "b.csv")
	cfgPath := writeFile(t, dir, "careerlens.yaml", []byte("upload:\n  max_concurrent: 2\n"))
	outPath := filepath.Join(dir, "out", "metrics.json")

	_, err := execute(t, "analyze", "--config", cfgPath, "--view", "overview",
		"--names", "salary_bands", "--width", "salary=5", "-o", outPath,
		filepath.Join(dir, "*.csv"))
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var reports []report
	require.NoError(t, json.Unmarshal(data, &reports))

	require.Len(t, reports, 2)
	assert.Equal(t, first, reports[0].File)
	assert.Equal(t, second, reports[1].File)
	for _, r := range reports {
		assert.Equal(t, 3, r.Dataset.Rows)
		require.Len(t, r.Metrics, 1)
		assert.Equal(t, "salary_bands", r.Metrics[0].Name)
		var buckets []aggregate.Bucket
		r.metricData(t, "salary_bands", &buckets)
		var labels []string
		for _, b := range buckets {
			labels = append(labels, b.Label)
		}
		assert.Equal(t, []string{"0-5", "5-10"}, labels)
	}
}

func TestAnalyze_Filters(t *testing.T) {
	dir := t.TempDir()
	file := overviewFile(t, dir, "a.csv")
	filters := writeFile(t, dir, "filters.yaml", []byte("equals:\n  Dept: cse\n"))

	out, err := execute(t, "analyze", "--view", "overview", "--names", "placement_summary",
		"--filters", filters, file)
	require.NoError(t, err)

	var reports []report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, 3, reports[0].Dataset.Rows)
	assert.Equal(t, 2, reports[0].Dataset.FilteredRows)

	var summary analysis.PlacementSummary
	reports[0].metricData(t, "placement_summary", &summary)
	assert.Equal(t, 2, summary.Students)
	assert.Equal(t, 1, summary.Placed)
}

func TestAnalyze_LogsShareTraceID(t *testing.T) {
	dir := t.TempDir()
	file := overviewFile(t, dir, "a.csv")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"analyze", "--view", "overview", "-o", filepath.Join(dir, "out.json"), file}, &stdout, &stderr)
	require.NoError(t, err)

	ids := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(stderr.String()), "\n") {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record), line)
		msg, _ := record["msg"].(string)
		id, _ := record["trace_id"].(string)
		if id != "" {
			ids[msg] = id
		}
	}
	require.NotEmpty(t, ids["upload accepted"])
	assert.Equal(t, ids["upload accepted"], ids["output written"])
}

func TestAnalyze_Errors(t *testing.T) {
	dir := t.TempDir()
	file := overviewFile(t, dir, "a.csv")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown metric", args: []string{"--names", "nope"}, wantErr: "nope"},
		{name: "malformed width", args: []string{"--width", "salary=wide"}, wantErr: "invalid width"},
		{name: "unknown width key", args: []string{"--width", "height=2"}, wantErr: "validation"},
		{name: "top-n out of range", args: []string{"--top-n", "1000"}, wantErr: "validation"},
		{name: "unknown filter key", args: []string{"--filters", writeFile(t, dir, "bad.yaml", []byte("colour: red\n"))}, wantErr: "failed to parse filters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"analyze", "--view", "overview"}, tt.args...)
			_, err := execute(t, append(args, file)...)
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), tt.wantErr)
		})
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	file := overviewFile(t, dir, "a.csv")
	filters := writeFile(t, dir, "filters.json", []byte(`{"equals": {"Dept": "ECE"}}`))

	out, err := execute(t, "export", "--view", "overview", "--filters", filters, "-o", "-", file)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "Dept", "Placed or Non Placed", "Maximum Salary", "Company 1"},
		{"C", "ECE", "Placed", "8", "Globex"},
	}, records)
}

func TestExport_GeneratedName(t *testing.T) {
	dir := t.TempDir()
	file := overviewFile(t, dir, "a.csv")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = execute(t, "export", "--view", "overview", "--format", "xlsx", file)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "overview-*.xlsx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestTemplate(t *testing.T) {
	out, err := execute(t, "template", "--view", "company", "-o", "-")
	require.NoError(t, err)

	var doc exporter.TemplateDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "company", string(doc.View))
	assert.Contains(t, doc.Headers, "Company Name")
	assert.Contains(t, doc.Required, "Package")
}

func TestTemplate_RejectsBadRequest(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown view", args: []string{"--view", "alumni"}},
		{name: "missing view", args: nil},
		{name: "unknown format", args: []string{"--view", "student", "--format", "pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"template", "-o", "-"}, tt.args...)...)
			require.Error(t, err)
		})
	}
}
