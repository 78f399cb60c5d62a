// Package griderrors provides error types and classification for grid
// download operations.
package griderrors

import (
	"errors"
	"fmt"
)

// Error carries context about the grid operation that failed.
// It wraps the underlying error for use with errors.Is and errors.As.
type Error struct {
	// Op is the operation that failed (e.g., "connect", "fetch", "find")
	Op string

	// Remote is the grid path involved (if applicable)
	Remote string

	// Local is the local destination path involved (if applicable)
	Local string

	// Err is the underlying error
	Err error
}

func (e *Error) Error() string {
	if e.Remote != "" && e.Local != "" {
		return fmt.Sprintf("grid.%s %s -> %s: %v", e.Op, e.Remote, e.Local, e.Err)
	}
	if e.Remote != "" {
		return fmt.Sprintf("grid.%s %s: %v", e.Op, e.Remote, e.Err)
	}
	return fmt.Sprintf("grid.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithRemote adds remote path context to an existing error.
func (e *Error) WithRemote(remote string) *Error {
	e.Remote = remote
	return e
}

// WithLocal adds local path context to an existing error.
func (e *Error) WithLocal(local string) *Error {
	e.Local = local
	return e
}

// New creates a new Error with the given operation and underlying error.
func New(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewJobError creates a new Error carrying both sides of a copy job.
func NewJobError(op, remote, local string, err error) *Error {
	return &Error{
		Op:     op,
		Remote: remote,
		Local:  local,
		Err:    err,
	}
}

// Sentinel errors for the grid failure classes.
// These can be used with errors.Is() for error checking.
var (
	// ErrConfig indicates a bad or missing configuration value; fatal to the run
	ErrConfig = errors.New("grid: invalid configuration")

	// ErrConnection indicates the grid session is unavailable
	ErrConnection = errors.New("grid: session unavailable")

	// ErrInvalidPath indicates a malformed remote path
	ErrInvalidPath = errors.New("grid: malformed remote path")

	// ErrTransfer indicates the backend copy reported failure
	ErrTransfer = errors.New("grid: transfer failed")

	// ErrQuery indicates a catalog search call errored
	ErrQuery = errors.New("grid: query failed")
)

// IsConnection reports whether err is a session-unavailable failure.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsTransfer reports whether err is a backend copy failure.
func IsTransfer(err error) bool {
	return errors.Is(err, ErrTransfer)
}
