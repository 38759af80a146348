// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

package rfb

import (
	"errors"
	"fmt"
)

// ErrorCode identifies which of the protocol's error kinds an RFBError
// carries.
type ErrorCode int

const (
	// ErrIo indicates an underlying byte-channel failure. Non-recoverable
	// for the session.
	ErrIo ErrorCode = iota
	// ErrUnexpected indicates a protocol-framing violation: an unknown tag,
	// an out-of-range enum value, a malformed version string, and similar.
	ErrUnexpected
	// ErrServer indicates a peer-initiated rejection carrying a
	// human-readable reason, typically a pre-handshake refusal.
	ErrServer
	// ErrAuthenticationUnavailable indicates no mutually supported security
	// type existed during negotiation.
	ErrAuthenticationUnavailable
	// ErrAuthenticationFailure indicates the handshake completed through a
	// challenge but the peer reported failure.
	ErrAuthenticationFailure
	// ErrDisconnected indicates a clean end-of-stream at a message
	// boundary, distinct from mid-message truncation.
	ErrDisconnected
)

// String returns the string representation of the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrIo:
		return "io"
	case ErrUnexpected:
		return "unexpected"
	case ErrServer:
		return "server"
	case ErrAuthenticationUnavailable:
		return "authentication_unavailable"
	case ErrAuthenticationFailure:
		return "authentication_failure"
	case ErrDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// RFBError provides structured error information with operation context,
// an error kind, and an optional wrapped cause.
type RFBError struct {
	Op      string
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *RFBError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rfb %s: %s: %s: %v", e.Code.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("rfb %s: %s: %s", e.Code.String(), e.Op, e.Message)
}

// Unwrap returns the underlying error for error chain unwrapping.
func (e *RFBError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target error by code.
func (e *RFBError) Is(target error) bool {
	var rfbErr *RFBError
	if errors.As(target, &rfbErr) {
		return e.Code == rfbErr.Code
	}
	return false
}

// NewRFBError creates a new RFBError with the specified parameters.
func NewRFBError(op string, code ErrorCode, message string, err error) *RFBError {
	return &RFBError{Op: op, Code: code, Message: message, Err: err}
}

// IsRFBError checks if an error is an RFBError and optionally matches one
// of the given codes. With no codes given, it matches any RFBError.
func IsRFBError(err error, code ...ErrorCode) bool {
	var rfbErr *RFBError
	if !errors.As(err, &rfbErr) {
		return false
	}
	if len(code) == 0 {
		return true
	}
	for _, c := range code {
		if rfbErr.Code == c {
			return true
		}
	}
	return false
}

// GetErrorCode extracts the error code from an RFBError, or -1 if err is
// not an RFBError.
func GetErrorCode(err error) ErrorCode {
	var rfbErr *RFBError
	if errors.As(err, &rfbErr) {
		return rfbErr.Code
	}
	return ErrorCode(-1)
}

// ioError wraps an I/O failure from the underlying byte channel.
func ioError(op string, err error) error {
	return NewRFBError(op, ErrIo, "i/o failure", err)
}

// unexpectedError reports a framing violation, naming the field or value
// that failed to parse (mirrors the wire-level `what` strings of the wire
// format's reference implementation: "protocol version", "security
// result", "client to server message type", and so on).
func unexpectedError(op, what string) error {
	return NewRFBError(op, ErrUnexpected, fmt.Sprintf("unexpected %s", what), nil)
}

// serverError reports a peer-initiated rejection with its reason string.
func serverError(op, reason string) error {
	return NewRFBError(op, ErrServer, reason, nil)
}

// authenticationUnavailableError reports that no mutually supported
// security type existed.
func authenticationUnavailableError(op string) error {
	return NewRFBError(op, ErrAuthenticationUnavailable, "no mutually supported security type", nil)
}

// authenticationFailureError reports a failed challenge-based handshake.
func authenticationFailureError(op, reason string) error {
	return NewRFBError(op, ErrAuthenticationFailure, reason, nil)
}

// disconnectedError reports an orderly end-of-stream at a message boundary.
func disconnectedError(op string) error {
	return NewRFBError(op, ErrDisconnected, "peer disconnected", nil)
}

// validationError reports an input-validation failure (framebuffer
// dimensions, rectangle bounds, pixel format, and similar pre-wire checks)
// using the Unexpected kind, since these are framing-adjacent violations
// the caller supplied rather than ones read off the wire.
func validationError(op, message string) error {
	return NewRFBError(op, ErrUnexpected, message, nil)
}
