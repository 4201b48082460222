package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error. Every failed operation returns exactly one
// kind plus a human-readable reason that callers surface verbatim.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindCapacityExceeded  Kind = "capacity_exceeded"
	KindInvalidTransition Kind = "invalid_transition"
	KindPolicyViolation   Kind = "policy_violation"
	KindForbidden         Kind = "forbidden"
)

// Error is a client-correctable validation failure, not a system fault.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// NewError returns a domain error with the given kind and reason.
func NewError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Errorf is NewError with fmt-style formatting of the reason.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, unwrapping as needed.
// The second return is false when err carries no domain error.
func KindOf(err error) (Kind, bool) {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind, true
	}
	return "", false
}
