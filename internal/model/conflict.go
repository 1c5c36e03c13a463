package model

import (
	"errors"
	"fmt"
)

// ConflictKind enumerates the business-rule violations that can reject a
// booking. Every rejected booking surfaces exactly one kind.
type ConflictKind string

const (
	ConflictEngagementNotActive           ConflictKind = "engagement_not_active"
	ConflictOutsideEngagementWindow       ConflictKind = "outside_engagement_window"
	ConflictOutsideInstructorAvailability ConflictKind = "outside_instructor_availability"
	ConflictPractitionerDoubleBooked      ConflictKind = "practitioner_double_booked"
)

// ConflictError is a typed rejection, not a failure: callers render a precise
// message per kind instead of a generic error.
type ConflictError struct {
	Kind    ConflictKind
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("scheduling conflict (%s): %s", e.Kind, e.Message)
}

func NewConflictError(kind ConflictKind, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	// ErrInvalidStateTransition is returned for any edge outside the
	// appointment state machine, including mutations of terminal states.
	ErrInvalidStateTransition = errors.New("invalid appointment state transition")

	// ErrWindowOverlap is returned when a new availability window overlaps an
	// active window for the same instructor and weekday.
	ErrWindowOverlap = errors.New("availability window overlaps an existing active window")
)
