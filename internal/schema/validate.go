package schema

import (
	"errors"
	"fmt"
	"strings"

	"careerlens/internal/tabular"
)

// Result is the outcome of a validation. Failure is a normal value, never an
// error return.
type Result struct {
	OK      bool     `json:"ok"`
	Missing []string `json:"missing,omitempty"`
}

// Validate checks rows against spec using the column universe of the first
// row. Every unmet requirement is reported, in spec order.
func Validate(rows []tabular.Row, spec RequiredColumnSpec) Result {
	var columns []string
	if len(rows) > 0 {
		columns = rows[0].Columns()
	}
	return ValidateColumns(columns, spec)
}

// ValidateColumns checks an observed column list against spec.
func ValidateColumns(columns []string, spec RequiredColumnSpec) Result {
	observed := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		observed[tabular.NormalizeHeader(c)] = struct{}{}
	}

	var missing []string
	for _, req := range spec.requirements {
		if _, ok := req.Resolve(observed); !ok {
			missing = append(missing, req.Label())
		}
	}
	if len(missing) > 0 {
		return Result{OK: false, Missing: missing}
	}
	return Result{OK: true}
}

// ValidationError reports the required columns an upload lacks.
type ValidationError struct {
	View    string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s upload is missing required columns: %s", e.View, strings.Join(e.Missing, ", "))
}

// Err converts a failed result into a *ValidationError, nil when OK.
func (r Result) Err(view string) error {
	if r.OK {
		return nil
	}
	return &ValidationError{View: view, Missing: append([]string(nil), r.Missing...)}
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
