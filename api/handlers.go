/*
handlers.go - HTTP API handlers for the workforce core

PURPOSE:
  Exposes the admission and approval workflows via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Users:
    GET    /api/users                         List users
    GET    /api/users/{id}                    User detail incl. balances
    GET    /api/users/{id}/leave-requests     Leave history
    POST   /api/users/{id}/leave-requests     Submit leave request
    GET    /api/users/{id}/timesheets         Timesheet history
    POST   /api/users/{id}/timesheets         Log time

  Approvals:
    GET    /api/leave-requests/pending        ?approver= pending team requests
    POST   /api/leave-requests/{id}/approve
    POST   /api/leave-requests/{id}/reject
    GET    /api/timesheets/pending            ?approver=
    POST   /api/timesheets/{id}/approve
    POST   /api/timesheets/{id}/reject

  Calendars/holidays/projects/policies/scenarios: see server.go.

ERROR HANDLING:
  Domain errors map to JSON with appropriate HTTP status:
  - 400: admission failures, invalid input
  - 403: approver not authorized
  - 404: entity not found
  - 409: already resolved, last calendar, needs-confirmation
  - 500: internal errors
  A holiday overlap is not an error: it returns 409 with
  needs_confirmation=true and the overlapping holidays, and the client
  re-submits with override=true if the requester confirms.

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/workforce-engine/notify"
	"github.com/warp/workforce-engine/policy"
	"github.com/warp/workforce-engine/workforce"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store workforce.Store

	Leave      *workforce.LeaveValidator
	Timesheets *workforce.TimesheetValidator

	LeaveApprovals     *workforce.ApprovalWorkflow
	TimesheetApprovals *workforce.ApprovalWorkflow

	Notify *notify.Dispatcher

	// Now supplies "today" for leave admission. Injectable for tests.
	Now func() time.Time
}

// NewHandler wires the validators and workflows around the store.
func NewHandler(store workforce.Store, dispatcher *notify.Dispatcher) *Handler {
	return &Handler{
		Store:              store,
		Leave:              workforce.NewLeaveValidator(workforce.NewCalendarIndex(store)),
		Timesheets:         workforce.NewTimesheetValidator(store),
		LeaveApprovals:     workforce.NewApprovalWorkflow(workforce.LeaveResolutions(store)),
		TimesheetApprovals: workforce.NewApprovalWorkflow(workforce.TimesheetResolutions(store)),
		Notify:             dispatcher,
		Now:                time.Now,
	}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns the directory.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUser returns a single user including leave balances.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*u))
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

// ListLeaveRequests returns a user's leave history, newest first.
func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if _, err := h.Store.GetUser(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}

	requests, err := h.Store.ListLeaveRequestsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave requests", err)
		return
	}

	dtos := make([]LeaveRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitLeaveRequest runs the leave admission path.
// POST /api/users/{id}/leave-requests
func (h *Handler) SubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requester, err := h.Store.GetUser(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var body SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := parseDay(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	end, err := parseDay(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}
	leaveType, err := parseLeaveType(body.LeaveType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave_type (use Paid or Unpaid)", err)
		return
	}

	decision, err := h.Leave.Submit(ctx, requester, workforce.LeaveSubmission{
		StartDate: start,
		EndDate:   end,
		LeaveType: leaveType,
		Reason:    body.Reason,
		Override:  body.Override,
	}, h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if decision.NeedsConfirmation() {
		overlaps := make([]HolidayDTO, len(decision.Overlaps))
		for i, hol := range decision.Overlaps {
			overlaps[i] = toHolidayDTO(hol)
		}
		writeJSON(w, http.StatusConflict, OverlapResponse{
			NeedsConfirmation: true,
			Overlaps:          overlaps,
			Message:           "Holiday overlap detected. Re-submit with override=true to confirm.",
		})
		return
	}

	if err := h.Store.SaveLeaveRequest(ctx, *decision.Request); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save leave request", err)
		return
	}

	// Best-effort confirmation; never blocks or fails the admission.
	if h.Notify != nil {
		h.Notify.Dispatch(notify.LeaveSubmitted(decision.Request.Reason))
	}

	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(*decision.Request))
}

// =============================================================================
// TIMESHEET HANDLERS
// =============================================================================

// ListTimesheets returns a user's timesheet history, newest first.
func (h *Handler) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if _, err := h.Store.GetUser(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}

	entries, err := h.Store.ListTimesheetEntriesByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list timesheet entries", err)
		return
	}

	dtos := make([]TimesheetEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toTimesheetEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LogTime runs the timesheet admission path.
// POST /api/users/{id}/timesheets
func (h *Handler) LogTime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Store.GetUser(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var body LogTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := parseDay(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	var hours decimal.Decimal
	if body.Hours != "" {
		hours, err = decimal.NewFromString(body.Hours)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid hours value", err)
			return
		}
	}

	entry, err := h.Timesheets.Submit(ctx, user, workforce.TimesheetSubmission{
		ProjectID:   body.ProjectID,
		Date:        date,
		Hours:       hours,
		Description: body.Description,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Store.SaveTimesheetEntry(ctx, *entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save timesheet entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimesheetEntryDTO(*entry))
}

// =============================================================================
// APPROVAL HANDLERS
// =============================================================================

// ListPendingLeaveRequests returns the pending requests an approver
// may resolve, i.e. those owned by their team members.
// GET /api/leave-requests/pending?approver={id}
func (h *Handler) ListPendingLeaveRequests(w http.ResponseWriter, r *http.Request) {
	approver, ok := h.approverFromQuery(w, r)
	if !ok {
		return
	}

	requests, err := h.Store.ListPendingLeaveRequests(r.Context(), approver.TeamMemberIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending requests", err)
		return
	}

	dtos := make([]LeaveRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveLeaveRequest resolves a pending leave request as Approved.
// POST /api/leave-requests/{id}/approve
func (h *Handler) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.LeaveApprovals, workforce.StatusApproved)
}

// RejectLeaveRequest resolves a pending leave request as Rejected.
// POST /api/leave-requests/{id}/reject
func (h *Handler) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.LeaveApprovals, workforce.StatusRejected)
}

// ListPendingTimesheets mirrors ListPendingLeaveRequests for entries.
// GET /api/timesheets/pending?approver={id}
func (h *Handler) ListPendingTimesheets(w http.ResponseWriter, r *http.Request) {
	approver, ok := h.approverFromQuery(w, r)
	if !ok {
		return
	}

	entries, err := h.Store.ListPendingTimesheetEntries(r.Context(), approver.TeamMemberIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending entries", err)
		return
	}

	dtos := make([]TimesheetEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toTimesheetEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveTimesheet resolves a pending entry as Approved.
// POST /api/timesheets/{id}/approve
func (h *Handler) ApproveTimesheet(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.TimesheetApprovals, workforce.StatusApproved)
}

// RejectTimesheet resolves a pending entry as Rejected.
// POST /api/timesheets/{id}/reject
func (h *Handler) RejectTimesheet(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.TimesheetApprovals, workforce.StatusRejected)
}

// resolve is the shared resolution path for both entity kinds.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, workflow *workforce.ApprovalWorkflow, decision workforce.Status) {
	ctx := r.Context()

	var body ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.ApproverID == "" {
		writeError(w, http.StatusBadRequest, "approver_id is required", nil)
		return
	}

	approver, err := h.Store.GetUser(ctx, body.ApproverID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	entity, err := workflow.Resolve(ctx, chi.URLParam(r, "id"), approver, decision)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	switch e := entity.(type) {
	case *workforce.LeaveRequest:
		writeJSON(w, http.StatusOK, toLeaveRequestDTO(*e))
	case *workforce.TimesheetEntry:
		writeJSON(w, http.StatusOK, toTimesheetEntryDTO(*e))
	default:
		writeJSON(w, http.StatusOK, map[string]string{
			"id":     entity.RequestID(),
			"status": string(entity.RequestStatus()),
		})
	}
}

func (h *Handler) approverFromQuery(w http.ResponseWriter, r *http.Request) (*workforce.User, bool) {
	approverID := r.URL.Query().Get("approver")
	if approverID == "" {
		writeError(w, http.StatusBadRequest, "approver query parameter is required", nil)
		return nil, false
	}
	approver, err := h.Store.GetUser(r.Context(), approverID)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return approver, true
}

// =============================================================================
// CALENDAR AND HOLIDAY HANDLERS
// =============================================================================

// ListCalendars returns all holiday calendars.
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	cals, err := h.Store.ListCalendars(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calendars", err)
		return
	}

	dtos := make([]CalendarDTO, len(cals))
	for i, c := range cals {
		dtos[i] = CalendarDTO{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCalendar creates a holiday calendar.
func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var body SaveCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	cal := workforce.HolidayCalendar{ID: uuid.NewString(), Name: body.Name}
	if err := h.Store.SaveCalendar(r.Context(), cal); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create calendar", err)
		return
	}
	writeJSON(w, http.StatusCreated, CalendarDTO{ID: cal.ID, Name: cal.Name})
}

// UpdateCalendar renames a calendar.
func (h *Handler) UpdateCalendar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetCalendar(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	var body SaveCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	cal := workforce.HolidayCalendar{ID: id, Name: body.Name}
	if err := h.Store.SaveCalendar(r.Context(), cal); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, CalendarDTO{ID: cal.ID, Name: cal.Name})
}

// DeleteCalendar deletes a calendar and all its holidays. Deleting the
// last calendar is rejected with 409.
func (h *Handler) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCalendar(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCalendarHolidays returns a calendar's holidays, optionally
// filtered by employee type.
// GET /api/calendars/{id}/holidays?type=Full-Time
func (h *Handler) ListCalendarHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.HolidaysByCalendar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	filter := r.URL.Query().Get("type")
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		if filter != "" && !hol.AppliesTo(workforce.EmployeeType(filter)) {
			continue
		}
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds a holiday to a calendar.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	h.saveHoliday(w, r, uuid.NewString(), http.StatusCreated)
}

// UpdateHoliday replaces an existing holiday.
func (h *Handler) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	h.saveHoliday(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) saveHoliday(w http.ResponseWriter, r *http.Request, id string, okStatus int) {
	var body SaveHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.Name == "" || body.CalendarID == "" {
		writeError(w, http.StatusBadRequest, "calendar_id and name are required", nil)
		return
	}
	if len(body.ApplicableTo) == 0 {
		writeError(w, http.StatusBadRequest, "applicable_to must name at least one employee type", nil)
		return
	}

	date, err := parseDay(body.Date)
	if err != nil || date.IsZero() {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	applicable := make([]workforce.EmployeeType, 0, len(body.ApplicableTo))
	for _, t := range body.ApplicableTo {
		et := workforce.EmployeeType(t)
		if et != workforce.FullTime && et != workforce.Contract {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown employee type %q", t), nil)
			return
		}
		applicable = append(applicable, et)
	}

	hol := workforce.Holiday{
		ID:           id,
		CalendarID:   body.CalendarID,
		Date:         date,
		Name:         body.Name,
		ApplicableTo: applicable,
	}
	if err := h.Store.SaveHoliday(r.Context(), hol); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, okStatus, toHolidayDTO(hol))
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = ProjectDTO{ID: p.ID, Name: p.Name, Code: p.Code, Status: string(p.Status)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProject creates a project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var body SaveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.Name == "" || body.Code == "" {
		writeError(w, http.StatusBadRequest, "name and code are required", nil)
		return
	}

	status := workforce.ProjectStatus(body.Status)
	if status == "" {
		status = workforce.ProjectActive
	}
	if status != workforce.ProjectActive && status != workforce.ProjectCompleted {
		writeError(w, http.StatusBadRequest, "status must be Active or Completed", nil)
		return
	}

	p := workforce.Project{ID: uuid.NewString(), Name: body.Name, Code: body.Code, Status: status}
	if err := h.Store.SaveProject(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, ProjectDTO{ID: p.ID, Name: p.Name, Code: p.Code, Status: string(p.Status)})
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// ParsePolicy validates a structured policy document produced by the
// external authoring capability and echoes the materialized policy.
// POST /api/policies/parse
func (h *Handler) ParsePolicy(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := policy.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy document", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain error kinds to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case workforce.IsAdmissionError(err):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, workforce.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "Not authorized", err)
	case errors.Is(err, workforce.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "Already resolved", err)
	case errors.Is(err, workforce.ErrInvalidDecision):
		writeError(w, http.StatusBadRequest, "Invalid decision", err)
	case errors.Is(err, workforce.ErrLastCalendar):
		writeError(w, http.StatusConflict, "Cannot delete the last calendar", err)
	case workforce.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

// parseDay parses a YYYY-MM-DD wire date. Empty input maps to the zero
// time so the validators report it as a missing field.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dayFormat, s)
}

func parseLeaveType(s string) (workforce.LeaveType, error) {
	switch workforce.LeaveType(s) {
	case workforce.LeavePaid, "":
		// Paid is the default leave type.
		return workforce.LeavePaid, nil
	case workforce.LeaveUnpaid:
		return workforce.LeaveUnpaid, nil
	default:
		return "", fmt.Errorf("unknown leave type %q", s)
	}
}
