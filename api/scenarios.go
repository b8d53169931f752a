/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the store with realistic
  data for demos. Each scenario creates calendars, holidays, users and
  projects demonstrating a specific slice of the workflow.

AVAILABLE SCENARIOS:
  two-offices:    India and US calendars, a manager with a small team
  approval-race:  Many pending requests for exercising team approvals

HOW SCENARIOS WORK:
  1. Reset store (clear all data)
  2. Create calendars and holidays
  3. Create users and projects
  4. Optionally create pending requests

NOTE:
  Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: writeJSON/writeError helpers
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/workforce-engine/workforce"
)

// decimalHours parses a known-good literal; scenario data only.
func decimalHours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "two-offices",
		Name:        "Two Offices",
		Description: "India and US holiday calendars with a manager and team",
	},
	{
		ID:          "approval-race",
		Name:        "Approval Race",
		Description: "A backlog of pending leave requests and timesheets for one manager",
	},
}

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the store and loads the named scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var body LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}

	var err error
	switch body.ScenarioID {
	case "two-offices":
		err = LoadTwoOffices(ctx, h.Store)
	case "approval-race":
		err = loadApprovalRace(ctx, h.Store, h.Now())
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario: "+body.ScenarioID, nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"loaded": body.ScenarioID})
}

// =============================================================================
// LOADERS
// =============================================================================

// LoadTwoOffices seeds the store with the baseline demo dataset: two
// office calendars, their holidays, a manager with two reports and two
// projects. Exported so cmd/server can seed on startup.
func LoadTwoOffices(ctx context.Context, store workforce.Store) error {
	calendars := []workforce.HolidayCalendar{
		{ID: "CAL-IND", Name: "India Office Holidays"},
		{ID: "CAL-US", Name: "US Office Holidays"},
	}
	for _, c := range calendars {
		if err := store.SaveCalendar(ctx, c); err != nil {
			return err
		}
	}

	all := []workforce.EmployeeType{workforce.FullTime, workforce.Contract}
	holidays := []workforce.Holiday{
		{ID: "H-1", CalendarID: "CAL-IND", Date: workforce.Date(2024, time.August, 15),
			Name: "Independence Day", ApplicableTo: all},
		{ID: "H-2", CalendarID: "CAL-IND", Date: workforce.Date(2024, time.October, 2),
			Name: "Gandhi Jayanti", ApplicableTo: []workforce.EmployeeType{workforce.FullTime}},
		{ID: "H-3", CalendarID: "CAL-US", Date: workforce.Date(2024, time.July, 4),
			Name: "Independence Day", ApplicableTo: all},
		{ID: "H-4", CalendarID: "CAL-US", Date: workforce.Date(2024, time.November, 28),
			Name: "Thanksgiving", ApplicableTo: []workforce.EmployeeType{workforce.FullTime}},
	}
	for _, hol := range holidays {
		if err := store.SaveHoliday(ctx, hol); err != nil {
			return err
		}
	}

	users := []workforce.User{
		{
			ID: "USR-MGR-01", Name: "Priya Sharma", Email: "priya@example.com",
			Role: workforce.RoleManager, EmployeeType: workforce.FullTime,
			TeamMemberIDs:     []string{"USR-EMP-01", "USR-EMP-02"},
			HolidayCalendarID: "CAL-IND",
			Balance:           workforce.LeaveBalance{Paid: 20, Unpaid: 10},
		},
		{
			ID: "USR-EMP-01", Name: "Arjun Mehta", Email: "arjun@example.com",
			Role: workforce.RoleEmployee, EmployeeType: workforce.FullTime,
			ManagerID: "USR-MGR-01", HolidayCalendarID: "CAL-IND",
			Balance: workforce.LeaveBalance{Paid: 12, Unpaid: 8},
		},
		{
			ID: "USR-EMP-02", Name: "Dana Cole", Email: "dana@example.com",
			Role: workforce.RoleEmployee, EmployeeType: workforce.Contract,
			ManagerID: "USR-MGR-01", HolidayCalendarID: "CAL-US",
			Balance: workforce.LeaveBalance{Paid: 5, Unpaid: 15},
		},
	}
	for _, u := range users {
		if err := store.SaveUser(ctx, u); err != nil {
			return err
		}
	}

	projects := []workforce.Project{
		{ID: "PRJ-01", Name: "Phoenix Migration", Code: "PHX", Status: workforce.ProjectActive},
		{ID: "PRJ-02", Name: "Atlas Rollout", Code: "ATL", Status: workforce.ProjectCompleted},
	}
	for _, p := range projects {
		if err := store.SaveProject(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// loadApprovalRace builds on two-offices with a pending backlog.
func loadApprovalRace(ctx context.Context, store workforce.Store, now time.Time) error {
	if err := LoadTwoOffices(ctx, store); err != nil {
		return err
	}

	start := workforce.DateOf(now).AddDate(0, 1, 0)
	requests := []workforce.LeaveRequest{
		{ID: "LR-001", UserID: "USR-EMP-01", StartDate: start, EndDate: start.AddDate(0, 0, 2),
			Reason: "Family vacation.", LeaveType: workforce.LeavePaid,
			Status: workforce.StatusPending, CreatedAt: now},
		{ID: "LR-002", UserID: "USR-EMP-02", StartDate: start.AddDate(0, 0, 7), EndDate: start.AddDate(0, 0, 11),
			Reason: "Project break.", LeaveType: workforce.LeaveUnpaid,
			Status: workforce.StatusPending, CreatedAt: now},
	}
	for _, req := range requests {
		if err := store.SaveLeaveRequest(ctx, req); err != nil {
			return err
		}
	}

	entries := []workforce.TimesheetEntry{
		{ID: "TS-001", UserID: "USR-EMP-01", ProjectID: "PRJ-01",
			Date: workforce.DateOf(now).AddDate(0, 0, -1), Hours: decimalHours("7.5"),
			Description: "API integration work", Status: workforce.StatusPending, CreatedAt: now},
		{ID: "TS-002", UserID: "USR-EMP-02", ProjectID: "PRJ-01",
			Date: workforce.DateOf(now).AddDate(0, 0, -1), Hours: decimalHours("8"),
			Description: "Load testing", Status: workforce.StatusPending, CreatedAt: now},
	}
	for _, e := range entries {
		if err := store.SaveTimesheetEntry(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
