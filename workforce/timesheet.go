/*
timesheet.go - Timesheet entry admission

PURPOSE:
  Admission control for logged time entries before they enter the
  approval workflow. Structurally a smaller sibling of leave admission:
  ordered checks, first failure wins, success produces a Pending entry.

ADMISSION ORDER:
  1. Field presence  (date, description)   -> MissingFieldError
  2. Project exists                        -> ProjectNotFoundError
  3. Hours bounds    (0.5..24, step 0.5)   -> HoursOutOfRangeError
  4. Admit           (new Pending entry)

HOURS:
  Hours are decimal.Decimal so the half-hour granularity check is an
  exact modulo, not a float comparison. 0.4 fails, 0.5 passes, 24
  passes, 24.5 fails.
*/
package workforce

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Hours bounds. halfHour is also the granularity step.
var (
	minHours = decimal.New(5, -1) // 0.5
	maxHours = decimal.New(24, 0)
	halfHour = decimal.New(5, -1)
)

// ProjectSource resolves project references. Implemented by the stores.
type ProjectSource interface {
	// GetProject returns the project or a ProjectNotFoundError.
	GetProject(ctx context.Context, id string) (*Project, error)
}

// TimesheetSubmission is a candidate timesheet entry.
type TimesheetSubmission struct {
	ProjectID   string
	Date        time.Time
	Hours       decimal.Decimal
	Description string
}

// TimesheetValidator is the admission-control path for new timesheet
// entries.
type TimesheetValidator struct {
	Projects ProjectSource
}

func NewTimesheetValidator(projects ProjectSource) *TimesheetValidator {
	return &TimesheetValidator{Projects: projects}
}

// Submit validates the submission and produces a new Pending entry
// owned by the user. The entry is not yet persisted; the caller saves it.
func (v *TimesheetValidator) Submit(
	ctx context.Context,
	user *User,
	sub TimesheetSubmission,
) (*TimesheetEntry, error) {
	switch {
	case sub.Date.IsZero():
		return nil, &MissingFieldError{Field: "date"}
	case strings.TrimSpace(sub.Description) == "":
		return nil, &MissingFieldError{Field: "description"}
	}

	if _, err := v.Projects.GetProject(ctx, sub.ProjectID); err != nil {
		return nil, err
	}

	if sub.Hours.LessThan(minHours) || sub.Hours.GreaterThan(maxHours) ||
		!sub.Hours.Mod(halfHour).IsZero() {
		return nil, &HoursOutOfRangeError{Hours: sub.Hours}
	}

	return &TimesheetEntry{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		ProjectID:   sub.ProjectID,
		Date:        DateOf(sub.Date),
		Hours:       sub.Hours,
		Description: sub.Description,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
