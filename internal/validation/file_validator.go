package validation

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apierrors "careerlens/internal/errors"
	"careerlens/internal/tabular"
)

// officeLockPrefix marks the lock files Excel leaves next to open workbooks.
const officeLockPrefix = "~$"

// FileValidator guards uploads and CLI input/output paths.
type FileValidator struct {
	logger     *slog.Logger
	maxBytes   int64
	extensions []string
}

// NewFileValidator creates a validator accepting files up to maxBytes with
// one of extensions (lowercase, with the dot). maxBytes <= 0 disables the
// size check.
func NewFileValidator(logger *slog.Logger, maxBytes int64, extensions []string) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make([]string, len(extensions))
	for i, e := range extensions {
		exts[i] = strings.ToLower(e)
	}
	return &FileValidator{
		logger:     logger.With(slog.String("component", "file_validator")),
		maxBytes:   maxBytes,
		extensions: exts,
	}
}

// CheckUpload vets an uploaded file's name and size before any bytes are parsed.
func (v *FileValidator) CheckUpload(filename string, size int64) error {
	base := filepath.Base(filename)
	switch {
	case strings.TrimSpace(filename) == "" || base == "." || base == string(filepath.Separator):
		return apierrors.ErrValidation("file", "file name is required")
	case base != filename || strings.Contains(filename, ".."):
		return apierrors.ErrValidation("file", "file name must not contain a path")
	case strings.HasPrefix(base, officeLockPrefix):
		return apierrors.ErrValidation("file", "file is a temporary Office lock file")
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !slices.Contains(v.extensions, ext) {
		v.logger.Warn("upload rejected",
			slog.String("file", filename),
			slog.String("extension", ext))
		return &tabular.DecodeError{
			Reason:   tabular.ReasonUnsupportedFormat,
			Filename: filename,
			Message:  fmt.Sprintf("unsupported file type %q, expected one of %s", ext, strings.Join(v.extensions, ", ")),
		}
	}

	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("upload rejected",
			slog.String("file", filename),
			slog.Int64("size", size),
			slog.Int64("limit", v.maxBytes))
		return &http.MaxBytesError{Limit: v.maxBytes}
	}
	return nil
}

// ValidateFile checks that path is an existing, readable regular file.
func (v *FileValidator) ValidateFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return info, nil
}

// ValidateInputFile applies ValidateFile and the upload rules to a local file.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := v.ValidateFile(path)
	if err != nil {
		return err
	}
	return v.CheckUpload(filepath.Base(path), info.Size())
}

// ResolveInputs expands glob patterns into a sorted, de-duplicated file
// list. Office lock files are skipped; a pattern matching nothing is kept
// as a literal so the caller reports it as missing.
func (v *FileValidator) ResolveInputs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if len(matches) == 0 {
			matches = []string{p}
		}
		for _, m := range matches {
			if strings.HasPrefix(filepath.Base(m), officeLockPrefix) {
				v.logger.Debug("skipping lock file", slog.String("file", m))
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	slices.Sort(out)
	return out, nil
}

// ValidateOutputDirectory ensures dir exists, creating it if needed, and is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}
