package runs

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrCompetitorNotOffered = errors.New("competitor was not offered for this run")
	ErrNotReady             = errors.New("run is not ready for this operation")
)

// Failure codes persisted with failed runs.
const (
	ErrorCodeFetch         = "FETCH_FAILED"
	ErrorCodeNoCompetitors = "NO_COMPETITORS"
	ErrorCodeTimeout       = "TIMEOUT"
	ErrorCodeStorage       = "STORAGE_ERROR"
	ErrorCodeInternal      = "INTERNAL_ERROR"
)
