package services

import (
	"errors"
	"fmt"
	"time"
)

// Kind groups failures by how a caller should react to them.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindDeadline     Kind = "deadline"
	KindNotFound     Kind = "not_found"
	KindState        Kind = "state"
)

// Wire codes returned to API clients.
const (
	CodeInvalidDates       = "invalid_dates"
	CodeInvalidVehicle     = "invalid_vehicle"
	CodeBookingConflict    = "booking_conflict"
	CodeManualBlock        = "manual_block"
	CodeVehicleUnavailable = "vehicle_unavailable"
	CodeNotFound           = "not_found"
	CodeUnauthorized       = "unauthorized"
	CodeWrongStatus        = "wrong_status"
	CodeDeadlinePassed     = "deadline_passed"
	CodeAlreadyStarted     = "already_started"
	CodeInvalidPattern     = "invalid_pattern"
	CodeInvalidInput       = "invalid_input"
)

// Error is the single failure type of the booking engine. Kind drives the
// HTTP status; Code is the stable machine-readable reason.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Deadline is set for KindDeadline so callers can say when the window
	// closed.
	Deadline *time.Time
	// Conflicts is set for KindConflict.
	Conflicts []Conflict
}

func (e *Error) Error() string {
	if e.Deadline != nil {
		return fmt.Sprintf("%s: %s (deadline %s)", e.Code, e.Message, e.Deadline.Format(time.RFC3339))
	}
	return e.Code + ": " + e.Message
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code string) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

func validationError(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: msg}
}

func unauthorizedError(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: msg}
}

func stateError(code, msg string) *Error {
	return &Error{Kind: KindState, Code: code, Message: msg}
}

func deadlineError(code, msg string, deadline time.Time) *Error {
	d := deadline
	return &Error{Kind: KindDeadline, Code: code, Message: msg, Deadline: &d}
}

func conflictError(code, msg string, conflicts []Conflict) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg, Conflicts: conflicts}
}
