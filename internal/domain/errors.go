package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so the HTTP boundary can map them to
// status codes without inspecting message text.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindConflict         ErrorKind = "conflict"
	KindCapacity         ErrorKind = "capacity"
	KindInvalidRange     ErrorKind = "invalid_range"
	KindNotFound         ErrorKind = "not_found"
	KindAuthorization    ErrorKind = "authorization"
	KindAlreadyCancelled ErrorKind = "already_cancelled"
	KindTooLateToCancel  ErrorKind = "too_late_to_cancel"
	KindTerminalState    ErrorKind = "terminal_state"
	KindInvalidState     ErrorKind = "invalid_state"
)

// Error is the common carrier for all domain failures.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error returns the human-readable message.
func (e *Error) Error() string {
	return e.Message
}

// NewValidationError reports missing or malformed input.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NewConflictError reports a date-range overlap or a lost concurrent write.
func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NewCapacityError reports a guest count outside the place's capacity.
func NewCapacityError(msg string) *Error {
	return &Error{Kind: KindCapacity, Message: msg}
}

// NewInvalidRangeError reports a non-positive stay duration or a past check-in.
func NewInvalidRangeError(msg string) *Error {
	return &Error{Kind: KindInvalidRange, Message: msg}
}

// NewNotFoundError reports an absent entity by type and identifier.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewAuthorizationError reports an actor that neither owns the resource nor is admin.
func NewAuthorizationError(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

// NewAlreadyCancelledError reports a cancel attempt on a cancelled booking.
func NewAlreadyCancelledError(msg string) *Error {
	return &Error{Kind: KindAlreadyCancelled, Message: msg}
}

// NewTooLateToCancelError reports a cancel attempt on or after check-in.
func NewTooLateToCancelError(msg string) *Error {
	return &Error{Kind: KindTooLateToCancel, Message: msg}
}

// NewTerminalStateError reports an edit attempt on a completed or cancelled booking.
func NewTerminalStateError(msg string) *Error {
	return &Error{Kind: KindTerminalState, Message: msg}
}

// NewInvalidStateError reports an illegal status transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf("invalid transition from %s to %s", from, to)}
}

// KindOf extracts the ErrorKind from err, unwrapping as needed.
// Returns false if err is not a domain error.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
