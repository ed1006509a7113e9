package linecache

import (
	"errors"
	"fmt"

	"github.com/dshills/xiview/internal/protocol"
)

var (
	// ErrProtocolDesync indicates the ops referenced source lines the cache
	// does not have. The view can no longer be trusted and must be reopened.
	ErrProtocolDesync = errors.New("line cache out of sync with engine")

	// ErrMalformedOp indicates an op that does not match the update grammar.
	ErrMalformedOp = errors.New("malformed update op")
)

// DesyncError reports the op that ran past the end of the old cache.
type DesyncError struct {
	OpIndex     int
	Op          protocol.OpKind
	N           int
	SourceIndex int
	SourceLen   int
}

// Error implements the error interface.
func (e *DesyncError) Error() string {
	return fmt.Sprintf("op %d (%s %d) at source line %d exceeds cache of %d lines",
		e.OpIndex, e.Op, e.N, e.SourceIndex, e.SourceLen)
}

// Unwrap returns ErrProtocolDesync.
func (e *DesyncError) Unwrap() error {
	return ErrProtocolDesync
}

// MalformedOpError reports an op that could not be interpreted.
type MalformedOpError struct {
	OpIndex int
	Op      protocol.OpKind
	Reason  string
	Err     error
}

// Error implements the error interface.
func (e *MalformedOpError) Error() string {
	msg := fmt.Sprintf("op %d (%s): %s", e.OpIndex, e.Op, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause, if any.
func (e *MalformedOpError) Unwrap() error {
	return e.Err
}

// Is reports ErrMalformedOp as a match.
func (e *MalformedOpError) Is(target error) bool {
	return target == ErrMalformedOp
}
