package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrResourceBusy is returned when another request is assigning the same
// driver or vehicle right now.
var ErrResourceBusy = errors.New("resource is being assigned by another request")

// ErrTerminalStatus rejects changes to completed or cancelled bookings.
var ErrTerminalStatus = errors.New("booking is completed or cancelled")

// ErrStatusChanged means a conditional status transition found the booking
// in a different status than expected.
var ErrStatusChanged = errors.New("booking status changed concurrently")

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

// ConflictError rejects an assignment or reschedule that would double-book a
// driver or vehicle. Windows are already formatted for display.
type ConflictError struct {
	Resource   ResourceKind
	ResourceID int64
	BookingID  string
	Windows    []string
}

func (e ConflictError) Error() string {
	msg := fmt.Sprintf("%s %d is already booked for booking %s", e.Resource, e.ResourceID, e.BookingID)
	if len(e.Windows) > 0 {
		msg += " (" + strings.Join(e.Windows, ", ") + ")"
	}
	return msg
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func AsConflict(err error) (ConflictError, bool) {
	var target ConflictError
	ok := errors.As(err, &target)
	return target, ok
}
