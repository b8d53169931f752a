/*
handlers_test.go - HTTP-level tests for the workforce API

PURPOSE:
  Exercises the REST surface end to end against the in-memory store:
  the two-phase leave submission over HTTP, the approval endpoints and
  their status codes, and calendar administration.
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warp/workforce-engine/api"
	"github.com/warp/workforce-engine/notify"
	"github.com/warp/workforce-engine/workforce"
	"github.com/warp/workforce-engine/workforce/store"
)

// newServer stands up the router over a freshly seeded memory store
// with "today" pinned to 2024-08-01.
func newServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()

	m := store.NewMemory()
	require.NoError(t, api.LoadTwoOffices(testContext(t), m))

	h := api.NewHandler(m, notify.NewDispatcher(notify.Noop{}, time.Second))
	h.Now = func() time.Time { return workforce.Date(2024, time.August, 1) }

	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, m
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// =============================================================================
// LEAVE SUBMISSION
// =============================================================================

func TestAPI_SubmitLeaveRequest(t *testing.T) {
	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/api/users/USR-EMP-01/leave-requests", map[string]any{
		"start_date": "2024-09-02",
		"end_date":   "2024-09-04",
		"leave_type": "Paid",
		"reason":     "Family vacation.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dto := decodeBody[api.LeaveRequestDTO](t, resp)
	require.Equal(t, "USR-EMP-01", dto.UserID)
	require.Equal(t, "Pending", dto.Status)
	require.Equal(t, 3, dto.DurationDays)
	require.NotEmpty(t, dto.ID)
}

func TestAPI_SubmitLeaveOverlapThenOverride(t *testing.T) {
	// USR-EMP-01 is FullTime on CAL-IND, which holds Independence Day
	// on 2024-08-15. First submission warns, override lands.
	srv, _ := newServer(t)
	url := srv.URL + "/api/users/USR-EMP-01/leave-requests"

	body := map[string]any{
		"start_date": "2024-08-14",
		"end_date":   "2024-08-16",
		"leave_type": "Paid",
		"reason":     "Long weekend",
	}

	resp := postJSON(t, url, body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	warn := decodeBody[api.OverlapResponse](t, resp)
	require.True(t, warn.NeedsConfirmation)
	require.Len(t, warn.Overlaps, 1)
	require.Equal(t, "2024-08-15", warn.Overlaps[0].Date)

	body["override"] = true
	resp = postJSON(t, url, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dto := decodeBody[api.LeaveRequestDTO](t, resp)
	require.Equal(t, "Pending", dto.Status)
}

func TestAPI_SubmitLeaveAdmissionFailures(t *testing.T) {
	srv, _ := newServer(t)
	url := srv.URL + "/api/users/USR-EMP-01/leave-requests"

	cases := []struct {
		name string
		body map[string]any
	}{
		{"insufficient balance", map[string]any{
			// 13 days against 12 paid.
			"start_date": "2024-09-02", "end_date": "2024-09-14",
			"leave_type": "Paid", "reason": "too long"}},
		{"start after end", map[string]any{
			"start_date": "2024-09-10", "end_date": "2024-09-02",
			"leave_type": "Paid", "reason": "backwards"}},
		{"past start", map[string]any{
			"start_date": "2024-07-01", "end_date": "2024-07-02",
			"leave_type": "Paid", "reason": "retroactive"}},
		{"blank reason", map[string]any{
			"start_date": "2024-09-02", "end_date": "2024-09-04",
			"leave_type": "Paid", "reason": "  "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, url, tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			resp.Body.Close()
		})
	}
}

func TestAPI_SubmitLeaveUnknownUser(t *testing.T) {
	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/api/users/USR-GHOST/leave-requests", map[string]any{
		"start_date": "2024-09-02", "end_date": "2024-09-04",
		"leave_type": "Paid", "reason": "x",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// TIMESHEETS
// =============================================================================

func TestAPI_LogTime(t *testing.T) {
	srv, _ := newServer(t)
	url := srv.URL + "/api/users/USR-EMP-01/timesheets"

	resp := postJSON(t, url, map[string]any{
		"project_id":  "PRJ-01",
		"date":        "2024-08-05",
		"hours":       "7.5",
		"description": "Sprint work",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dto := decodeBody[api.TimesheetEntryDTO](t, resp)
	require.Equal(t, "7.5", dto.Hours)
	require.Equal(t, "Pending", dto.Status)
}

func TestAPI_LogTimeRejectsBadHoursAndProject(t *testing.T) {
	srv, _ := newServer(t)
	url := srv.URL + "/api/users/USR-EMP-01/timesheets"

	for _, hours := range []string{"0.4", "24.5", "7.3"} {
		resp := postJSON(t, url, map[string]any{
			"project_id": "PRJ-01", "date": "2024-08-05",
			"hours": hours, "description": "x",
		})
		require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "hours=%s", hours)
		resp.Body.Close()
	}

	resp := postJSON(t, url, map[string]any{
		"project_id": "PRJ-MISSING", "date": "2024-08-05",
		"hours": "8", "description": "x",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// APPROVALS
// =============================================================================

// pendingLeaveID submits a request for USR-EMP-01 and returns its id.
func pendingLeaveID(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/users/USR-EMP-01/leave-requests", map[string]any{
		"start_date": "2024-09-02", "end_date": "2024-09-04",
		"leave_type": "Paid", "reason": "Trip",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[api.LeaveRequestDTO](t, resp).ID
}

func TestAPI_ApproveLeaveRequest(t *testing.T) {
	srv, _ := newServer(t)
	id := pendingLeaveID(t, srv)

	// The owner's manager approves.
	resp := postJSON(t, fmt.Sprintf("%s/api/leave-requests/%s/approve", srv.URL, id),
		map[string]any{"approver_id": "USR-MGR-01"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dto := decodeBody[api.LeaveRequestDTO](t, resp)
	require.Equal(t, "Approved", dto.Status)

	// A second decision is refused with 409.
	resp = postJSON(t, fmt.Sprintf("%s/api/leave-requests/%s/reject", srv.URL, id),
		map[string]any{"approver_id": "USR-MGR-01"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_ApproveByNonManagerIs403(t *testing.T) {
	srv, _ := newServer(t)
	id := pendingLeaveID(t, srv)

	// USR-EMP-02 does not manage USR-EMP-01.
	resp := postJSON(t, fmt.Sprintf("%s/api/leave-requests/%s/approve", srv.URL, id),
		map[string]any{"approver_id": "USR-EMP-02"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_PendingQueueScopedToApproverTeam(t *testing.T) {
	srv, _ := newServer(t)
	id := pendingLeaveID(t, srv)

	resp, err := http.Get(srv.URL + "/api/leave-requests/pending?approver=USR-MGR-01")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	queue := decodeBody[[]api.LeaveRequestDTO](t, resp)
	require.Len(t, queue, 1)
	require.Equal(t, id, queue[0].ID)

	// An approver with no team sees an empty queue.
	resp, err = http.Get(srv.URL + "/api/leave-requests/pending?approver=USR-EMP-01")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	queue = decodeBody[[]api.LeaveRequestDTO](t, resp)
	require.Empty(t, queue)

	// Missing approver parameter is a client error.
	resp, err = http.Get(srv.URL + "/api/leave-requests/pending")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// CALENDAR ADMINISTRATION
// =============================================================================

func TestAPI_DeleteCalendarRules(t *testing.T) {
	srv, _ := newServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/calendars/CAL-US", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// CAL-IND is now the last calendar; deleting it is refused.
	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/api/calendars/CAL-IND", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_HolidayListFiltersByType(t *testing.T) {
	// CAL-IND carries an all-types holiday and a FullTime-only one.
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/api/calendars/CAL-IND/holidays?type=Contract")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	holidays := decodeBody[[]api.HolidayDTO](t, resp)
	require.Len(t, holidays, 1)
	require.Equal(t, "2024-08-15", holidays[0].Date)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestAPI_LoadScenarioResetsState(t *testing.T) {
	srv, _ := newServer(t)
	pendingLeaveID(t, srv)

	resp := postJSON(t, srv.URL+"/api/scenarios/load", map[string]any{"scenario_id": "two-offices"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The submitted request is gone after the reset.
	resp, err := http.Get(srv.URL + "/api/users/USR-EMP-01/leave-requests")
	require.NoError(t, err)
	requests := decodeBody[[]api.LeaveRequestDTO](t, resp)
	require.Empty(t, requests)
}
