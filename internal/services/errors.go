package services

import "errors"

// Analysis service errors
var (
	ErrUnknownView   = errors.New("unknown view")
	ErrUnknownMetric = errors.New("unknown metric")
	ErrNoDataset     = errors.New("no dataset uploaded")

	// ErrSuperseded is returned to an upload whose result arrived after a
	// newer upload of the same view had already been adopted.
	ErrSuperseded = errors.New("upload superseded by a newer dataset")
)
