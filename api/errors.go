// Package api
// Author: momentics <momentics@gmail.com>
//
// Error taxonomy shared by the buffer pool, message and queue layers.

package api

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	// ErrCodeNoBuffers: the pool or a chain could not be grown and reclamation failed.
	ErrCodeNoBuffers
	// ErrCodeInvalidArgs: out-of-range offset, length, priority or slot.
	ErrCodeInvalidArgs
	// ErrCodeAlreadyQueued: the message is already linked into a queue.
	ErrCodeAlreadyQueued
	// ErrCodeNotFound: the message is not linked into the queue it was removed from.
	ErrCodeNotFound
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeNoBuffers:
		return "no buffers"
	case ErrCodeInvalidArgs:
		return "invalid arguments"
	case ErrCodeAlreadyQueued:
		return "already queued"
	case ErrCodeNotFound:
		return "not found"
	default:
		return fmt.Sprintf("error code %d", int(c))
	}
}

// Common errors used across the library. Match them with errors.Is; decorated
// copies returned by WithContext compare equal by code.
var (
	ErrNoBuffers     = NewError(ErrCodeNoBuffers, "insufficient message buffers")
	ErrInvalidArgs   = NewError(ErrCodeInvalidArgs, "invalid arguments")
	ErrAlreadyQueued = NewError(ErrCodeAlreadyQueued, "message already queued")
	ErrNotFound      = NewError(ErrCodeNotFound, "message not found in queue")
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a copy of the error with an additional context entry.
// The receiver is left untouched so package-level sentinels stay immutable.
func (e *Error) WithContext(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Error{Code: e.Code, Message: e.Message, Context: ctx}
}

// CodeOf extracts the ErrorCode from err or anything it wraps, or ErrCodeOK
// for nil and foreign errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeOK
}
