package selection

import "errors"

// Sentinel errors for selection operations.
var (
	// ErrNoRoot indicates the host has no editing root.
	ErrNoRoot = errors.New("no editing root")

	// ErrDetached indicates a node is no longer attached to the root.
	ErrDetached = errors.New("node is detached")

	// ErrInvalidRange indicates a range or position could not be resolved.
	ErrInvalidRange = errors.New("invalid range")

	// ErrNoGeometry indicates the host reports no client rects.
	ErrNoGeometry = errors.New("no geometry available")

	// ErrCanceled indicates a notification handler vetoed the transition.
	ErrCanceled = errors.New("canceled by handler")

	// ErrDestroyed indicates the coordinator was destroyed.
	ErrDestroyed = errors.New("coordinator destroyed")
)

// OperationError wraps an error with the operation that failed.
type OperationError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return "selection: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}
