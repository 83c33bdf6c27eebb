// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package upstream

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrAuthChain      = errors.New("upstream: authentication chain failed")
	ErrUnauthorized   = errors.New("upstream: unauthorized")
	ErrUpstreamStatus = errors.New("upstream: unexpected HTTP status")
	ErrDecode         = errors.New("upstream: invalid response format or malformed data")
	ErrResolution     = errors.New("upstream: expected field missing from response")
	ErrUnavailable    = errors.New("upstream: host unreachable or transport failure")
)

// Error is a rich error type that wraps the sentinel errors with context.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Err       error // Nested lower-level error (e.g. net.Error)
}

// NewError builds an *Error. status may be zero when no response was received.
func NewError(sentinel error, operation string, status int, err error) *Error {
	return &Error{Sentinel: sentinel, Operation: operation, Status: status, Err: err}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the nested cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}

// IsUnauthorized reports whether err was caused by an upstream 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
