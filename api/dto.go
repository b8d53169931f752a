/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATES:
  All dates cross the wire as "YYYY-MM-DD". Absent or unparseable
  required dates surface as missing-field validation errors, matching
  the form-level required checks of the admission path.

VALIDATION:
  Validation is done in the domain validators, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/workforce-engine/workforce"
)

const dayFormat = "2006-01-02"

// =============================================================================
// USERS
// =============================================================================

// UserDTO represents a directory user in API responses.
type UserDTO struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Role              string   `json:"role"`
	EmployeeType      string   `json:"employee_type"`
	ManagerID         string   `json:"manager_id,omitempty"`
	TeamMemberIDs     []string `json:"team_member_ids,omitempty"`
	HolidayCalendarID string   `json:"holiday_calendar_id"`
	BalancePaid       int      `json:"balance_paid"`
	BalanceUnpaid     int      `json:"balance_unpaid"`
}

func toUserDTO(u workforce.User) UserDTO {
	return UserDTO{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              string(u.Role),
		EmployeeType:      string(u.EmployeeType),
		ManagerID:         u.ManagerID,
		TeamMemberIDs:     u.TeamMemberIDs,
		HolidayCalendarID: u.HolidayCalendarID,
		BalancePaid:       u.Balance.Paid,
		BalanceUnpaid:     u.Balance.Unpaid,
	}
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// SubmitLeaveRequest is the submission body. Override is the second
// phase of the holiday-overlap confirm protocol.
type SubmitLeaveRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	LeaveType string `json:"leave_type"`
	Reason    string `json:"reason"`
	Override  bool   `json:"override"`
}

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Reason       string `json:"reason"`
	LeaveType    string `json:"leave_type"`
	Status       string `json:"status"`
	DurationDays int    `json:"duration_days"`
	CreatedAt    string `json:"created_at,omitempty"`
}

func toLeaveRequestDTO(r workforce.LeaveRequest) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:           r.ID,
		UserID:       r.UserID,
		StartDate:    r.StartDate.Format(dayFormat),
		EndDate:      r.EndDate.Format(dayFormat),
		Reason:       r.Reason,
		LeaveType:    string(r.LeaveType),
		Status:       string(r.Status),
		DurationDays: r.DurationDays(),
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

// OverlapResponse is returned (409) when admission needs the
// requester's confirmation before proceeding.
type OverlapResponse struct {
	NeedsConfirmation bool         `json:"needs_confirmation"`
	Overlaps          []HolidayDTO `json:"overlaps"`
	Message           string       `json:"message"`
}

// =============================================================================
// TIMESHEETS
// =============================================================================

// LogTimeRequest is the timesheet submission body. Hours is a string
// so clients can send exact half-hour values ("7.5").
type LogTimeRequest struct {
	ProjectID   string `json:"project_id"`
	Date        string `json:"date"`
	Hours       string `json:"hours"`
	Description string `json:"description"`
}

// TimesheetEntryDTO represents a timesheet entry in API responses.
type TimesheetEntryDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	ProjectID   string `json:"project_id"`
	Date        string `json:"date"`
	Hours       string `json:"hours"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func toTimesheetEntryDTO(e workforce.TimesheetEntry) TimesheetEntryDTO {
	return TimesheetEntryDTO{
		ID:          e.ID,
		UserID:      e.UserID,
		ProjectID:   e.ProjectID,
		Date:        e.Date.Format(dayFormat),
		Hours:       e.Hours.String(),
		Description: e.Description,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// RESOLUTION
// =============================================================================

// ResolveRequest identifies the approver acting on a pending request.
type ResolveRequest struct {
	ApproverID string `json:"approver_id"`
}

// =============================================================================
// CALENDARS, HOLIDAYS, PROJECTS
// =============================================================================

type CalendarDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SaveCalendarRequest creates or renames a calendar.
type SaveCalendarRequest struct {
	Name string `json:"name"`
}

// HolidayDTO represents a holiday in API responses.
type HolidayDTO struct {
	ID           string   `json:"id"`
	CalendarID   string   `json:"calendar_id"`
	Date         string   `json:"date"`
	Name         string   `json:"name"`
	ApplicableTo []string `json:"applicable_to"`
}

func toHolidayDTO(h workforce.Holiday) HolidayDTO {
	applicable := make([]string, len(h.ApplicableTo))
	for i, t := range h.ApplicableTo {
		applicable[i] = string(t)
	}
	return HolidayDTO{
		ID:           h.ID,
		CalendarID:   h.CalendarID,
		Date:         h.Date.Format(dayFormat),
		Name:         h.Name,
		ApplicableTo: applicable,
	}
}

// SaveHolidayRequest creates or updates a holiday.
type SaveHolidayRequest struct {
	CalendarID   string   `json:"calendar_id"`
	Date         string   `json:"date"`
	Name         string   `json:"name"`
	ApplicableTo []string `json:"applicable_to"`
}

type ProjectDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Status string `json:"status"`
}

// SaveProjectRequest creates or updates a project.
type SaveProjectRequest struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Status string `json:"status"`
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
