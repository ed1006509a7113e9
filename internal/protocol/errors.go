package protocol

import (
	"errors"
	"fmt"
)

// Standard errors returned by the protocol client.
var (
	// ErrShutdown indicates the client has been closed.
	ErrShutdown = errors.New("protocol client shut down")

	// ErrTimeout indicates a request did not receive a reply in time.
	ErrTimeout = errors.New("request timed out")

	// ErrNoView indicates an edit was attempted before a view was opened.
	ErrNoView = errors.New("no view open")

	// ErrMalformed indicates an incoming message did not match its shape.
	ErrMalformed = errors.New("malformed notification")
)

// MalformedError describes a notification that failed to parse.
type MalformedError struct {
	Method string
	Err    error
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed %s notification", e.Method)
	}
	return fmt.Sprintf("malformed %s notification: %v", e.Method, e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Is reports ErrMalformed as a match.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// ReplyError is an error reported in a reply.
type ReplyError struct {
	Operation string
	Message   string
}

// Error implements the error interface.
func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// TransportError wraps a failure of the underlying channel.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}
