package plugin

import (
	"errors"
	"fmt"
)

// Errors for plugin operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when a chunk or handler runs past the
	// execution timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNotFunction is returned when a called global is not a function.
	ErrNotFunction = errors.New("not a function")

	// ErrHostClosed is returned when loading into a closed host.
	ErrHostClosed = errors.New("plugin host is closed")
)

// Error wraps a failure inside a named plugin.
type Error struct {
	Plugin string
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("plugin %s: %s: %v", e.Plugin, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
