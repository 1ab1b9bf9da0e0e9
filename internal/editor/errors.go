package editor

import (
	"errors"
	"fmt"
)

// Editor errors.
var (
	// ErrClosed indicates the editor was closed.
	ErrClosed = errors.New("editor closed")

	// ErrEmptyStep indicates a script step with no action.
	ErrEmptyStep = errors.New("step has no action")

	// ErrAmbiguousStep indicates a script step naming more than one action.
	ErrAmbiguousStep = errors.New("step has more than one action")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "open", "load", "step")
	Target string // Target of the operation (e.g., file path)
	Err    error  // Underlying error
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StepError reports a script step that could not be run.
type StepError struct {
	Index int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Index+1, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
