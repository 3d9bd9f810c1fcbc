package domain

import (
	"errors"
	"fmt"
)

// Error kinds of the scheduling engine. Callers match them with errors.Is.
var (
	ErrInvalidInterval               = errors.New("invalid interval")
	ErrMalformedGrid                 = errors.New("malformed availability grid")
	ErrLeadTimeViolation             = errors.New("lead time violation")
	ErrNotDivisibleBySessionDuration = errors.New("instant is not aligned to session duration")
	ErrPractitionerProfileIncomplete = errors.New("practitioner profile is incomplete")
	ErrNoAvailabilityAtInstant       = errors.New("practitioner has no availability at instant")
	ErrSchedulingConflict            = errors.New("scheduling conflict")
	ErrInvalidStateTransition        = errors.New("invalid state transition")

	// ErrConcurrentBooking marks a SchedulingConflict detected by the write-time re-check
	// (or by a concurrent writer holding the slot). Such conflicts are worth retrying
	// with another slot; pre-check conflicts are not.
	ErrConcurrentBooking = errors.New("slot was taken concurrently")

	// ErrPastWeek is returned when an availability edit targets a week that already passed.
	ErrPastWeek = errors.New("week is in the past")
)

// ValidationError carries the offending field and value together with the error kind.
type ValidationError struct {
	Kind   error
	Field  string
	Value  interface{}
	Reason string
}

// NewValidationError builds a ValidationError of the given kind.
func NewValidationError(kind error, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%v: %s=%v", e.Kind, e.Field, e.Value)
	}
	return fmt.Sprintf("%v: %s=%v: %s", e.Kind, e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// NewWriteConflict wraps a conflict found while committing, so that both
// ErrSchedulingConflict and ErrConcurrentBooking match.
func NewWriteConflict(field string, value interface{}, reason string) error {
	return fmt.Errorf("%w: %w", NewValidationError(ErrSchedulingConflict, field, value, reason), ErrConcurrentBooking)
}

// IsRetryableConflict reports whether err is a write-time scheduling conflict.
func IsRetryableConflict(err error) bool {
	return errors.Is(err, ErrSchedulingConflict) && errors.Is(err, ErrConcurrentBooking)
}
