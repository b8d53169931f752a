/*
leave.go - Leave request admission and the two-phase override protocol

PURPOSE:
  The admission-control path for a new leave request. Runs the hard
  validations in a fixed order, short-circuiting on the first failure,
  then surfaces any holiday overlap as an advisory outcome the
  requester must explicitly confirm.

ADMISSION ORDER:
  1. Field presence   (start, end, reason)        -> MissingFieldError
  2. Ordering         (start <= end)              -> ErrInvalidDateRange
  3. Not in the past  (start >= today)            -> ErrPastStartDate
  4. Duration         ((end - start) + 1 days)
  5. Balance          (duration <= remaining)     -> InsufficientBalanceError
  6. Holiday overlap  (skipped when Override)     -> NeedsConfirmation outcome
  7. Admit            (new Pending request)

TWO-PHASE PROTOCOL:
  Phase 1 evaluates everything and may return overlapping holidays
  instead of a request. Phase 2 is the same call with Override set,
  issued after the requester confirms; it bypasses ONLY the overlap
  warning. Steps 1-5 always re-run, so a stale or edited second
  submission cannot skip balance or date checks. No state is held
  between the two calls; the caller carries the warning payload.

PURITY:
  The caller supplies "today" so admission is deterministic and
  testable. The validator reads calendars and balances and writes
  nothing.

SEE ALSO:
  - calendar.go: the overlap query
  - balance.go: the sufficiency check
*/
package workforce

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SUBMISSION AND OUTCOME
// =============================================================================

// LeaveSubmission is a candidate leave request.
type LeaveSubmission struct {
	StartDate time.Time
	EndDate   time.Time
	LeaveType LeaveType
	Reason    string

	// Override is the second phase of the confirm protocol: it bypasses
	// the holiday-overlap warning and nothing else.
	Override bool
}

// LeaveDecision is the outcome of a passing submission: either an
// admitted request, or the overlapping holidays the requester must
// confirm past. Exactly one of the two is set.
type LeaveDecision struct {
	// Request is the admitted Pending request. Nil when confirmation
	// is required.
	Request *LeaveRequest

	// Overlaps holds the holidays inside the requested range, ordered
	// by date, when confirmation is required.
	Overlaps []Holiday
}

// NeedsConfirmation reports whether the requester must re-submit with
// Override set (or abandon the request).
func (d *LeaveDecision) NeedsConfirmation() bool { return d.Request == nil }

// =============================================================================
// LEAVE VALIDATOR
// =============================================================================

// LeaveValidator orchestrates field validation, balance checking and
// holiday-overlap detection for candidate leave requests.
type LeaveValidator struct {
	Calendars *CalendarIndex
	Balances  BalanceLedger
}

func NewLeaveValidator(calendars *CalendarIndex) *LeaveValidator {
	return &LeaveValidator{Calendars: calendars}
}

// Submit runs the admission checks in order against the caller-supplied
// today. A hard failure returns an error; a detected overlap without
// Override returns a decision with NeedsConfirmation; otherwise the
// decision carries a new Pending request owned by the requester.
//
// The returned request is not yet persisted; the caller saves it.
func (v *LeaveValidator) Submit(
	ctx context.Context,
	requester *User,
	sub LeaveSubmission,
	today time.Time,
) (*LeaveDecision, error) {
	// 1. Required fields.
	switch {
	case sub.StartDate.IsZero():
		return nil, &MissingFieldError{Field: "startDate"}
	case sub.EndDate.IsZero():
		return nil, &MissingFieldError{Field: "endDate"}
	case strings.TrimSpace(sub.Reason) == "":
		return nil, &MissingFieldError{Field: "reason"}
	}

	start, end := DateOf(sub.StartDate), DateOf(sub.EndDate)

	// 2. Ordering.
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}

	// 3. Not in the past.
	if start.Before(DateOf(today)) {
		return nil, ErrPastStartDate
	}

	// 4-5. Inclusive duration against remaining balance.
	duration := DaysInclusive(start, end)
	if !v.Balances.HasSufficient(requester, sub.LeaveType, duration) {
		return nil, &InsufficientBalanceError{
			LeaveType: sub.LeaveType,
			Requested: duration,
			Available: v.Balances.Remaining(requester, sub.LeaveType),
		}
	}

	// 6. Holiday overlap, unless the requester already confirmed.
	if !sub.Override {
		overlaps, err := v.Calendars.ApplicableInRange(
			ctx, requester.HolidayCalendarID, requester.EmployeeType, start, end)
		if err != nil {
			return nil, err
		}
		if len(overlaps) > 0 {
			return &LeaveDecision{Overlaps: overlaps}, nil
		}
	}

	// 7. Admit.
	return &LeaveDecision{Request: &LeaveRequest{
		ID:        uuid.NewString(),
		UserID:    requester.ID,
		StartDate: start,
		EndDate:   end,
		Reason:    sub.Reason,
		LeaveType: sub.LeaveType,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}}, nil
}
