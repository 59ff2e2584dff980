package render

import (
	"errors"
	"fmt"
)

// ErrNoRenderableShots is returned when a request contains no shot with a
// usable source. It is a validation failure: no workspace is created.
var ErrNoRenderableShots = errors.New("render: request contains no renderable shots")

// RetrievalError is returned when a shot's remote asset could not be
// fetched. It is fatal to the whole render.
type RetrievalError struct {
	// URL is the asset URL that failed.
	URL string
	// StatusCode is the remote HTTP status, zero on transport failures.
	StatusCode int
	// Err is the underlying transport error, nil on status failures.
	Err error
}

func (e *RetrievalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// TranscodeError is returned when normalizing a shot's media fails. It is
// fatal to the whole render.
type TranscodeError struct {
	// ShotID identifies the failing shot for diagnostics.
	ShotID string
	// Err is the underlying processor error.
	Err error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode shot %s: %v", e.ShotID, e.Err)
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

// ConcatenationError is returned when the final merge step fails.
type ConcatenationError struct {
	Err error
}

func (e *ConcatenationError) Error() string {
	return fmt.Sprintf("concatenate clips: %v", e.Err)
}

func (e *ConcatenationError) Unwrap() error {
	return e.Err
}
