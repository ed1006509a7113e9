package app

import (
	"errors"
	"testing"

	"github.com/dshills/xiview/internal/renderer/linecache"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "op only",
			err:      &OperationError{Op: "save"},
			expected: "save",
		},
		{
			name:     "op and target",
			err:      &OperationError{Op: "new_view", Target: "/path/file.txt"},
			expected: "new_view /path/file.txt",
		},
		{
			name:     "full error chain",
			err:      &OperationError{Op: "save", Target: "/path/file.txt", Err: errors.New("disk full")},
			expected: "save /path/file.txt: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = '%s', expected '%s'", result, tt.expected)
			}
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &OperationError{Op: "save", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}

	var nilErr *OperationError
	if nilErr.Unwrap() != nil {
		t.Error("expected nil unwrap on nil receiver")
	}
}

func TestViewError_Is(t *testing.T) {
	cause := &linecache.DesyncError{OpIndex: 2, N: 5, SourceIndex: 1, SourceLen: 3}
	err := error(&ViewError{Err: cause})

	if !errors.Is(err, ErrViewFailed) {
		t.Error("expected ViewError to match ErrViewFailed")
	}
	if !errors.Is(err, linecache.ErrProtocolDesync) {
		t.Error("expected ViewError to match the desync cause")
	}
	var de *linecache.DesyncError
	if !errors.As(err, &de) || de.OpIndex != 2 {
		t.Error("expected errors.As to reach the DesyncError")
	}
}

func TestInitError(t *testing.T) {
	inner := errors.New("no tty")
	err := &InitError{Component: "backend", Err: inner}

	if err.Error() != "init backend: no tty" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}
