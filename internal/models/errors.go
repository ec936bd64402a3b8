package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDocument is wrapped by the ValidationError returned for a blank essay.
	ErrEmptyDocument = errors.New("document text is empty")
	// ErrRunInProgress is returned when a run is requested while another is in flight.
	ErrRunInProgress = errors.New("a benchmark run is already in progress")
	// ErrNoCompletedRun is returned by consumers that need results but the session has none.
	ErrNoCompletedRun = errors.New("no completed benchmark run")
	// ErrMissingSnapshot is wrapped by the ExportError for a page export without an image.
	ErrMissingSnapshot = errors.New("results snapshot image is missing")
)

// ValidationError rejects a request before any remote call is made.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError fails a whole run: the scoring service was unreachable,
// timed out, answered with a non-2xx status or with an unusable envelope.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("scoring service %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("scoring service %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ModelError describes why a single model has no assessment. It never fails a
// run; it only lives inside a Failure entry.
type ModelError struct {
	ModelID   ModelID
	Message   string
	Malformed bool
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %s", e.ModelID, e.Message)
}

// ExportError is returned when an artifact cannot be produced. It never
// affects the session or other exporters.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
