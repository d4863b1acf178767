// Package domainerrors defines the coded error type used at every aggregate
// and service boundary. Stores return infrastructure sentinels
// (pkg/platform/sentinel); services and aggregates return coded errors from
// this package; the transport layer maps codes to HTTP statuses.
package domainerrors

import "errors"

// Code classifies a domain failure.
type Code string

const (
	// CodeValidation marks malformed or out-of-range input. Recoverable by
	// the caller correcting the input, never retried automatically.
	CodeValidation Code = "validation"
	// CodeInvalidTransition marks an operation requested from a state that
	// forbids it. A business-rule conflict, not a system fault.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeCapacityExceeded marks a reservation attempted with no available slot.
	CodeCapacityExceeded Code = "capacity_exceeded"
	// CodeIneligibleRegistration marks an application attempted while the
	// event is not open for registration.
	CodeIneligibleRegistration Code = "ineligible_registration"
	// CodeInvariantViolation marks an internal consistency failure. Treated
	// as fatal and logged loudly, never silently swallowed.
	CodeInvariantViolation Code = "invariant_violation"

	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeBadRequest Code = "bad_request"
	CodeInternal   Code = "internal"
)

// Error is a coded domain error. It optionally wraps a cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode, kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the outermost coded message, defaulting to empty.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
