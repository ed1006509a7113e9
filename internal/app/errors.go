package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates the application is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrViewFailed indicates the view stopped accepting updates and must be
	// reopened.
	ErrViewFailed = errors.New("view failed")
)

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// OperationError represents an error from one session operation.
type OperationError struct {
	Op     string // Operation name (e.g., "new_view", "save")
	Target string // Target of the operation, usually a file path
	Err    error
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

// ViewError reports why a view stopped accepting updates. It matches
// ErrViewFailed and the underlying cause.
type ViewError struct {
	Err error
}

func (e *ViewError) Error() string {
	return "view failed: " + e.Err.Error()
}

func (e *ViewError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for ViewError.
func (e *ViewError) Is(target error) bool {
	return target == ErrViewFailed
}
