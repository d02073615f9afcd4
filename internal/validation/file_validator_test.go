package validation

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "careerlens/internal/errors"
	"careerlens/internal/tabular"
)

var testExtensions = []string{".csv", ".XLSX", ".xls"}

func TestFileValidator_CheckUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		check    func(t *testing.T, err error)
	}{
		{name: "csv accepted", filename: "batch.csv", size: 10},
		{name: "extension match ignores case", filename: "Batch.XlSx", size: 10},
		{name: "exactly at the limit", filename: "batch.csv", size: 100},
		{
			name:     "empty name",
			filename: "  ",
			check:    validationError("file"),
		},
		{
			name:     "path traversal",
			filename: "../batch.csv",
			check:    validationError("file"),
		},
		{
			name:     "nested path",
			filename: "uploads/batch.csv",
			check:    validationError("file"),
		},
		{
			name:     "office lock file",
			filename: "~$batch.xlsx",
			check:    validationError("file"),
		},
		{
			name:     "unsupported extension",
			filename: "batch.pdf",
			size:     10,
			check: func(t *testing.T, err error) {
				var de *tabular.DecodeError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tabular.ReasonUnsupportedFormat, de.Reason)
				assert.Contains(t, de.Message, ".csv, .xlsx, .xls")
			},
		},
		{
			name:     "too large",
			filename: "batch.csv",
			size:     101,
			check: func(t *testing.T, err error) {
				var mbe *http.MaxBytesError
				require.ErrorAs(t, err, &mbe)
				assert.Equal(t, int64(100), mbe.Limit)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(slog.Default(), 100, testExtensions)
			err := v.CheckUpload(tt.filename, tt.size)
			if tt.check == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func validationError(field string) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		var apiErr *apierrors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		details, ok := apiErr.Details.(apierrors.ValidationErrors)
		require.True(t, ok)
		require.Len(t, details.Errors, 1)
		assert.Equal(t, field, details.Errors[0].Field)
	}
}

func TestFileValidator_NoSizeLimit(t *testing.T) {
	v := NewFileValidator(nil, 0, testExtensions)
	assert.NoError(t, v.CheckUpload("batch.csv", 1<<40))
}

func TestFileValidator_ValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "batch.csv")
	require.NoError(t, os.WriteFile(good, []byte("Name\nA\n"), 0644))
	wrongType := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(wrongType, []byte("x"), 0644))

	tests := []struct {
		name          string
		path          string
		errorContains string
	}{
		{name: "readable csv", path: good},
		{name: "missing file", path: filepath.Join(dir, "absent.csv"), errorContains: "does not exist"},
		{name: "directory", path: dir, errorContains: "is a directory"},
		{name: "wrong extension", path: wrongType, errorContains: "unsupported file type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(slog.Default(), 0, testExtensions)
			err := v.ValidateInputFile(tt.path)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileValidator_ResolveInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv", "~$a.xlsx", "c.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	v := NewFileValidator(slog.Default(), 0, testExtensions)

	got, err := v.ResolveInputs([]string{
		filepath.Join(dir, "*.csv"),
		filepath.Join(dir, "*.xlsx"),
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "missing.csv"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "c.xlsx"),
		filepath.Join(dir, "missing.csv"),
	}, got)

	_, err = v.ResolveInputs([]string{"[unterminated"})
	assert.ErrorContains(t, err, "bad pattern")
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(slog.Default(), 0, testExtensions)

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports", "2024")
		require.NoError(t, v.ValidateOutputDirectory(dir))
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "write probe must be removed")
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "taken")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
		assert.Error(t, v.ValidateOutputDirectory(file))
	})
}
