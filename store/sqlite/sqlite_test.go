package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/workforce-engine/store/sqlite"
	"github.com/warp/workforce-engine/workforce"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedStore(t *testing.T, s *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	for _, c := range []workforce.HolidayCalendar{
		{ID: "CAL-IND", Name: "India Office Holidays"},
		{ID: "CAL-US", Name: "US Office Holidays"},
	} {
		require.NoError(t, s.SaveCalendar(ctx, c))
	}
	require.NoError(t, s.SaveHoliday(ctx, workforce.Holiday{
		ID: "H-1", CalendarID: "CAL-IND", Date: workforce.Date(2024, time.August, 15),
		Name: "Independence Day", ApplicableTo: []workforce.EmployeeType{workforce.FullTime},
	}))
	require.NoError(t, s.SaveUser(ctx, workforce.User{
		ID: "USR-MGR-01", Name: "Priya Raman", Email: "priya@example.com",
		Role: workforce.RoleManager, EmployeeType: workforce.FullTime,
		TeamMemberIDs:     []string{"USR-EMP-01"},
		HolidayCalendarID: "CAL-IND",
		Balance:           workforce.LeaveBalance{Paid: 20, Unpaid: 10},
	}))
	require.NoError(t, s.SaveProject(ctx, workforce.Project{
		ID: "PRJ-01", Name: "Phoenix", Code: "PHX", Status: workforce.ProjectActive,
	}))
}

func TestSQLite_UserRoundTrip(t *testing.T) {
	s := newStore(t)
	seedStore(t, s)
	ctx := context.Background()

	u, err := s.GetUser(ctx, "USR-MGR-01")
	require.NoError(t, err)
	require.Equal(t, "Priya Raman", u.Name)
	require.Equal(t, workforce.RoleManager, u.Role)
	require.Equal(t, []string{"USR-EMP-01"}, u.TeamMemberIDs)
	require.Equal(t, 20, u.Balance.Paid)
	require.True(t, u.Manages("USR-EMP-01"))

	_, err = s.GetUser(ctx, "USR-MISSING")
	require.ErrorIs(t, err, workforce.ErrUserNotFound)
}

func TestSQLite_HolidayRoundTrip(t *testing.T) {
	s := newStore(t)
	seedStore(t, s)
	ctx := context.Background()

	holidays, err := s.HolidaysByCalendar(ctx, "CAL-IND")
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	h := holidays[0]
	require.Equal(t, "Independence Day", h.Name)
	require.True(t, workforce.SameDay(h.Date, workforce.Date(2024, time.August, 15)))
	require.Equal(t, []workforce.EmployeeType{workforce.FullTime}, h.ApplicableTo)

	// Unknown calendar reads as empty, not as an error.
	holidays, err = s.HolidaysByCalendar(ctx, "CAL-MISSING")
	require.NoError(t, err)
	require.Empty(t, holidays)
}

func TestSQLite_DeleteCalendarCascadesHolidays(t *testing.T) {
	s := newStore(t)
	seedStore(t, s)
	ctx := context.Background()

	require.NoError(t, s.DeleteCalendar(ctx, "CAL-IND"))

	holidays, err := s.HolidaysByCalendar(ctx, "CAL-IND")
	require.NoError(t, err)
	require.Empty(t, holidays)
}

func TestSQLite_DeleteLastCalendarIsRefused(t *testing.T) {
	s := newStore(t)
	seedStore(t, s)
	ctx := context.Background()

	require.NoError(t, s.DeleteCalendar(ctx, "CAL-US"))
	err := s.DeleteCalendar(ctx, "CAL-IND")
	require.ErrorIs(t, err, workforce.ErrLastCalendar)

	cals, err := s.ListCalendars(ctx)
	require.NoError(t, err)
	require.Len(t, cals, 1)
}

func TestSQLite_LeaveRequestLifecycle(t *testing.T) {
	s := newStore(t)
	seedStore(t, s)
	ctx := context.Background()

	req := workforce.LeaveRequest{
		ID:        "LR-001",
		UserID:    "USR-EMP-01",
		StartDate: workforce.Date(2024, time.September, 2),
		EndDate:   workforce.Date(2024, time.September, 4),
		Reason:    "Trip",
		LeaveType: workforce.LeavePaid,
		Status:    workforce.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveLeaveRequest(ctx, req))

	got, err := s.GetLeaveRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, workforce.StatusPending, got.Status)
	require.Equal(t, 3, got.DurationDays())

	// First resolution wins.
	resolved, err := s.ResolveLeaveRequest(ctx, req.ID, workforce.StatusApproved)
	require.NoError(t, err)
	require.Equal(t, workforce.StatusApproved, resolved.Status)

	// Second resolution reports the standing status.
	_, err = s.ResolveLeaveRequest(ctx, req.ID, workforce.StatusRejected)
	var already *workforce.AlreadyResolvedError
	require.ErrorAs(t, err, &already)
	require.Equal(t, workforce.StatusApproved, already.Status)

	// Pending list no longer includes it.
	pending, err := s.ListPendingLeaveRequests(ctx, []string{"USR-EMP-01"})
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestSQLite_ResolveUnknownRequest(t *testing.T) {
	s := newStore(t)

	_, err := s.ResolveLeaveRequest(context.Background(), "LR-MISSING", workforce.StatusApproved)
	require.True(t, workforce.IsNotFound(err), "got %v", err)
}

func TestSQLite_TimesheetEntryLifecycle(t *testing.T) {
	s := newStore(t)
	seedStore(t, s)
	ctx := context.Background()

	hours, err := decimal.NewFromString("7.5")
	require.NoError(t, err)

	entry := workforce.TimesheetEntry{
		ID:          "TS-001",
		UserID:      "USR-EMP-01",
		ProjectID:   "PRJ-01",
		Date:        workforce.Date(2024, time.August, 5),
		Hours:       hours,
		Description: "Sprint work",
		Status:      workforce.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.SaveTimesheetEntry(ctx, entry))

	got, err := s.GetTimesheetEntry(ctx, entry.ID)
	require.NoError(t, err)
	// Decimal survives the text column exactly.
	require.True(t, got.Hours.Equal(hours), "got %s", got.Hours)

	resolved, err := s.ResolveTimesheetEntry(ctx, entry.ID, workforce.StatusRejected)
	require.NoError(t, err)
	require.Equal(t, workforce.StatusRejected, resolved.Status)

	_, err = s.ResolveTimesheetEntry(ctx, entry.ID, workforce.StatusApproved)
	require.ErrorIs(t, err, workforce.ErrAlreadyResolved)
}

func TestSQLite_ListingsOrderNewestFirst(t *testing.T) {
	s := newStore(t)
	seedStore(t, s)
	ctx := context.Background()

	base := time.Date(2024, time.August, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"LR-001", "LR-002", "LR-003"} {
		require.NoError(t, s.SaveLeaveRequest(ctx, workforce.LeaveRequest{
			ID: id, UserID: "USR-EMP-01",
			StartDate: workforce.Date(2024, time.September, 2),
			EndDate:   workforce.Date(2024, time.September, 2),
			Reason:    "r", LeaveType: workforce.LeavePaid,
			Status:    workforce.StatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := s.ListLeaveRequestsByUser(ctx, "USR-EMP-01")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "LR-003", got[0].ID)
	require.Equal(t, "LR-001", got[2].ID)
}

func TestSQLite_ResetClearsAllTables(t *testing.T) {
	s := newStore(t)
	seedStore(t, s)
	ctx := context.Background()

	require.NoError(t, s.Reset(ctx))

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Empty(t, users)

	cals, err := s.ListCalendars(ctx)
	require.NoError(t, err)
	require.Empty(t, cals)
}
