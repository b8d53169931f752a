/*
errors.go - Centralized error types for the workforce core

PURPOSE:
  Validation failures are values, not panics: every admission and
  resolution operation returns one of a closed set of error kinds that
  callers can test with errors.Is / errors.As. All of them are locally
  recoverable; the caller re-prompts or retries with corrected input.

ERROR CATEGORIES:
  1. Admission errors - leave/timesheet validation failures
  2. Resolution errors - approval workflow failures
  3. Directory errors  - missing users, calendars, projects

NOTE:
  A holiday overlap is NOT an error. It is an advisory outcome carried
  by LeaveDecision (see leave.go) that requires explicit user intent to
  proceed.

SEE ALSO:
  - leave.go: produces the admission errors in order
  - approval.go: produces the resolution errors
*/
package workforce

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingField is returned when a required submission field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidDateRange is returned when a start date falls after its end date.
	ErrInvalidDateRange = errors.New("start date after end date")

	// ErrPastStartDate is returned when a leave request starts before today.
	ErrPastStartDate = errors.New("start date in the past")

	// ErrInsufficientBalance is returned when a request exceeds remaining leave.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrProjectNotFound is returned when a timesheet entry references an
	// unknown project.
	ErrProjectNotFound = errors.New("project not found")

	// ErrHoursOutOfRange is returned when logged hours are outside 0.5-24
	// or not a multiple of 0.5.
	ErrHoursOutOfRange = errors.New("hours out of range")

	// ErrNotAuthorized is returned when the approver does not manage the
	// request's owner.
	ErrNotAuthorized = errors.New("approver not authorized")

	// ErrAlreadyResolved is returned when the entity left Pending before
	// the transition could be applied. Expected under concurrent resolution.
	ErrAlreadyResolved = errors.New("request already resolved")

	// ErrInvalidDecision is returned for decisions other than Approved/Rejected.
	ErrInvalidDecision = errors.New("invalid resolution decision")

	// ErrLastCalendar is returned when deleting the only remaining calendar.
	ErrLastCalendar = errors.New("cannot delete the last holiday calendar")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrCalendarNotFound is returned when a referenced calendar doesn't exist.
	ErrCalendarNotFound = errors.New("calendar not found")

	// ErrNotFound is the generic missing-entity error for request lookups.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MissingFieldError names the field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// InsufficientBalanceError reports the shortage detected at submission.
type InsufficientBalanceError struct {
	LeaveType LeaveType
	Requested int // days
	Available int // days
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("duration (%d days) exceeds available %s leave (%d days)",
		e.Requested, e.LeaveType, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// ProjectNotFoundError names the unresolvable project reference.
type ProjectNotFoundError struct {
	ProjectID string
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("project not found: %s", e.ProjectID)
}

func (e *ProjectNotFoundError) Unwrap() error { return ErrProjectNotFound }

// HoursOutOfRangeError reports the rejected hours value.
type HoursOutOfRangeError struct {
	Hours decimal.Decimal
}

func (e *HoursOutOfRangeError) Error() string {
	return fmt.Sprintf("hours must be between 0.5 and 24 in half-hour steps, got %s", e.Hours)
}

func (e *HoursOutOfRangeError) Unwrap() error { return ErrHoursOutOfRange }

// NotAuthorizedError identifies the failed authority check.
type NotAuthorizedError struct {
	ApproverID string
	OwnerID    string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("approver %s does not manage user %s", e.ApproverID, e.OwnerID)
}

func (e *NotAuthorizedError) Unwrap() error { return ErrNotAuthorized }

// AlreadyResolvedError reports the terminal status that blocked the transition.
type AlreadyResolvedError struct {
	RequestID string
	Status    Status
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("request %s already resolved: %s", e.RequestID, e.Status)
}

func (e *AlreadyResolvedError) Unwrap() error { return ErrAlreadyResolved }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsAdmissionError reports whether err is a validation failure the
// requester can correct and resubmit.
func IsAdmissionError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrPastStartDate) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrHoursOutOfRange)
}

// IsNotFound reports whether err indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCalendarNotFound) ||
		errors.Is(err, ErrProjectNotFound)
}
