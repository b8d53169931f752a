/*
timesheet_test.go - Specification tests for timesheet entry validation

PURPOSE:
  Documents the hour bounds (0.5 to 24 in half-hour steps), the
  project existence check, and required fields.
*/
package workforce_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/workforce-engine/workforce"
	"github.com/warp/workforce-engine/workforce/store"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func timesheetFixture(t *testing.T) (*workforce.TimesheetValidator, *workforce.User) {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveProject(ctx, workforce.Project{
		ID: "PRJ-01", Name: "Phoenix", Code: "PHX", Status: workforce.ProjectActive,
	}))

	user := &workforce.User{ID: "USR-EMP-01", Name: "Arjun Mehta", Role: workforce.RoleEmployee}
	return workforce.NewTimesheetValidator(m), user
}

func TestTimesheet_HourBounds(t *testing.T) {
	v, user := timesheetFixture(t)
	ctx := context.Background()
	day := workforce.Date(2024, time.August, 5)

	cases := []struct {
		hours string
		ok    bool
	}{
		{"0.4", false},  // below minimum
		{"0.5", true},   // minimum
		{"24", true},    // maximum
		{"24.5", false}, // above maximum
		{"7.3", false},  // not a half-hour step
		{"7.5", true},
		{"8", true},
	}

	for _, tc := range cases {
		t.Run(tc.hours, func(t *testing.T) {
			entry, err := v.Submit(ctx, user, workforce.TimesheetSubmission{
				ProjectID:   "PRJ-01",
				Date:        day,
				Hours:       decimalFromString(t, tc.hours),
				Description: "Sprint work",
			})
			if tc.ok {
				require.NoError(t, err)
				require.Equal(t, workforce.StatusPending, entry.Status)
				require.True(t, entry.Hours.Equal(decimalFromString(t, tc.hours)))
			} else {
				var rangeErr *workforce.HoursOutOfRangeError
				require.ErrorAs(t, err, &rangeErr)
				require.True(t, errors.Is(err, workforce.ErrHoursOutOfRange))
			}
		})
	}
}

func TestTimesheet_UnknownProject(t *testing.T) {
	v, user := timesheetFixture(t)

	_, err := v.Submit(context.Background(), user, workforce.TimesheetSubmission{
		ProjectID:   "PRJ-MISSING",
		Date:        workforce.Date(2024, time.August, 5),
		Hours:       decimalFromString(t, "8"),
		Description: "Orphaned work",
	})

	var projErr *workforce.ProjectNotFoundError
	require.ErrorAs(t, err, &projErr)
	require.Equal(t, "PRJ-MISSING", projErr.ProjectID)
}

func TestTimesheet_MissingFields(t *testing.T) {
	v, user := timesheetFixture(t)
	ctx := context.Background()

	_, err := v.Submit(ctx, user, workforce.TimesheetSubmission{
		ProjectID: "PRJ-01",
		Hours:     decimalFromString(t, "8"),
		// no date, no description
	})
	var missing *workforce.MissingFieldError
	require.ErrorAs(t, err, &missing)

	_, err = v.Submit(ctx, user, workforce.TimesheetSubmission{
		ProjectID:   "PRJ-01",
		Date:        workforce.Date(2024, time.August, 5),
		Hours:       decimalFromString(t, "8"),
		Description: "   ",
	})
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "description", missing.Field)
}

func TestTimesheet_AcceptedEntryIsPendingAndOwned(t *testing.T) {
	v, user := timesheetFixture(t)

	entry, err := v.Submit(context.Background(), user, workforce.TimesheetSubmission{
		ProjectID:   "PRJ-01",
		Date:        workforce.Date(2024, time.August, 5),
		Hours:       decimalFromString(t, "7.5"),
		Description: "Code review and pairing",
	})
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.Equal(t, user.ID, entry.UserID)
	require.Equal(t, workforce.StatusPending, entry.Status)
	require.False(t, entry.CreatedAt.IsZero())
}
