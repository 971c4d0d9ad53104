package grid

import (
	"errors"
	"fmt"
)

// ErrMalformedHeader indicates the six-line header could not be parsed.
var ErrMalformedHeader = errors.New("malformed grid header")

// ErrMalformedRow indicates a data row whose token count does not match NCOLS,
// or a matrix that ends before NROWS rows were read.
var ErrMalformedRow = errors.New("malformed grid row")

// InvalidParameterError is returned for non-positive tile sizes, out-of-range
// tile indices and metadata that violates the grid invariant. It is raised
// before any I/O happens.
type InvalidParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

// NewInvalidParameterError creates a new InvalidParameterError.
func NewInvalidParameterError(field string, value any, reason string) *InvalidParameterError {
	return &InvalidParameterError{Field: field, Value: value, Reason: reason}
}

// SourceUnavailableError reports that a source grid became unreadable while it
// was being sliced. The batch driver ledgers the source and moves on.
type SourceUnavailableError struct {
	SourceID string
	Err      error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable: %v", e.SourceID, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// NewSourceUnavailableError creates a new SourceUnavailableError.
func NewSourceUnavailableError(sourceID string, err error) *SourceUnavailableError {
	return &SourceUnavailableError{SourceID: sourceID, Err: err}
}

// OutputWriteError reports that a tile directory or file could not be created
// or written.
type OutputWriteError struct {
	SourceID string
	Path     string
	Err      error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("writing %q for source %q: %v", e.Path, e.SourceID, e.Err)
}

func (e *OutputWriteError) Unwrap() error {
	return e.Err
}

// NewOutputWriteError creates a new OutputWriteError.
func NewOutputWriteError(sourceID, path string, err error) *OutputWriteError {
	return &OutputWriteError{SourceID: sourceID, Path: path, Err: err}
}

// IsInvalidParameter reports whether err carries an InvalidParameterError.
func IsInvalidParameter(err error) bool {
	var target *InvalidParameterError
	return errors.As(err, &target)
}

// IsSourceUnavailable reports whether err carries a SourceUnavailableError.
func IsSourceUnavailable(err error) bool {
	var target *SourceUnavailableError
	return errors.As(err, &target)
}

// IsOutputWrite reports whether err carries an OutputWriteError.
func IsOutputWrite(err error) bool {
	var target *OutputWriteError
	return errors.As(err, &target)
}
