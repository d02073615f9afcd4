package tabular

import (
	"errors"
	"fmt"
	"strings"
)

// DecodeReason classifies why an upload could not be turned into rows.
type DecodeReason string

const (
	ReasonUnsupportedFormat DecodeReason = "unsupported_format"
	ReasonEmptyUpload       DecodeReason = "empty_upload"
	ReasonUnreadable        DecodeReason = "unreadable"
	ReasonTooManyRows       DecodeReason = "too_many_rows"
)

// DecodeError is returned for user-correctable upload problems. The caller
// should show Message and let the user pick another file.
type DecodeError struct {
	Reason   DecodeReason
	Filename string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %q: %s: %v", e.Filename, e.Message, e.Err)
	}
	return fmt.Sprintf("decode %q: %s", e.Filename, e.Message)
}

// Unwrap exposes the underlying parser error.
func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is (or wraps) a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func unsupportedFormat(filename, ext string) *DecodeError {
	msg := fmt.Sprintf("unsupported file type %q, upload a .csv or .xlsx file", ext)
	if strings.EqualFold(ext, ".xls") {
		msg = "legacy .xls workbooks cannot be read, save the file as .xlsx and upload it again"
	}
	return &DecodeError{
		Reason:   ReasonUnsupportedFormat,
		Filename: filename,
		Message:  msg,
	}
}

func emptyUpload(filename string) *DecodeError {
	return &DecodeError{
		Reason:   ReasonEmptyUpload,
		Filename: filename,
		Message:  "the uploaded file contains no data rows",
	}
}

func unreadable(filename string, err error) *DecodeError {
	return &DecodeError{
		Reason:   ReasonUnreadable,
		Filename: filename,
		Message:  "the file could not be read as a table",
		Err:      err,
	}
}

func tooManyRows(filename string, limit int) *DecodeError {
	return &DecodeError{
		Reason:   ReasonTooManyRows,
		Filename: filename,
		Message:  fmt.Sprintf("the file has more than %d data rows", limit),
	}
}
