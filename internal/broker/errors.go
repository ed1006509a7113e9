package broker

import (
	"errors"
	"fmt"
)

// Standard errors returned by the broker.
var (
	// ErrCoreClosed indicates the engine connection has been closed.
	ErrCoreClosed = errors.New("engine connection closed")

	// ErrUnknownOperation indicates a host envelope with an unsupported operation.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidEnvelope indicates a host or engine message that is not valid JSON
	// or lacks a required field.
	ErrInvalidEnvelope = errors.New("invalid envelope")
)

// RPCError represents a JSON-RPC error returned by the engine.
type RPCError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}
