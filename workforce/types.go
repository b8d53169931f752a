/*
Package workforce implements the leave-request and timesheet admission
and approval core.

PURPOSE:
  This package contains the domain types and algorithms for the two
  structurally identical request workflows:

    submit ──▶ validate ──▶ Pending ──▶ approve/reject (terminal)

  Leave requests go through holiday-aware validation with a two-phase
  override protocol; timesheet entries go through field and hours
  validation. Both are resolved by the same approval workflow.

KEY CONCEPTS IN THIS FILE (types.go):
  - User: directory record with role, employee type, team and balances
  - HolidayCalendar / Holiday: calendar-scoped, type-scoped holidays
  - LeaveRequest / TimesheetEntry: the two requestable entity kinds
  - Status: the shared Pending/Approved/Rejected lifecycle

DESIGN PRINCIPLES:
  1. Immutability: requests never change after submission except for
     the single Pending -> terminal status transition
  2. Purity: validators take the clock and directories as inputs and
     hold no session state between calls
  3. Precision: timesheet hours use decimal.Decimal so the half-hour
     granularity check is exact

SEE ALSO:
  - leave.go: leave admission and the override protocol
  - approval.go: the shared resolution state machine
  - timesheet.go: timesheet admission
  - store.go: repository interfaces
*/
package workforce

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLES AND EMPLOYEE TYPES
// =============================================================================

type Role string

const (
	RoleEmployee  Role = "Employee"
	RoleManager   Role = "Manager"
	RoleHRManager Role = "HR Manager"
	RoleAdmin     Role = "Admin"
)

// IsManagerial reports whether the role may hold team members and
// resolve their requests.
func (r Role) IsManagerial() bool {
	return r == RoleManager || r == RoleHRManager || r == RoleAdmin
}

type EmployeeType string

const (
	FullTime EmployeeType = "Full-Time"
	Contract EmployeeType = "Contract"
)

// =============================================================================
// SHARED REQUEST LIFECYCLE
// =============================================================================

// Status is the lifecycle shared by leave requests and timesheet entries.
// Pending is the only initial state; Approved and Rejected are terminal.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsDecision reports whether s is a valid resolution outcome.
func (s Status) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// =============================================================================
// USER - Directory record (owned by the user directory, read-only here)
// =============================================================================

// LeaveBalance tracks remaining leave in whole days.
// Invariant: both fields are non-negative.
type LeaveBalance struct {
	Paid   int
	Unpaid int
}

type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	EmployeeType EmployeeType

	// ManagerID is empty for users without a manager.
	ManagerID string

	// TeamMemberIDs is populated only for managerial roles and defines
	// this user's approval authority.
	TeamMemberIDs []string

	HolidayCalendarID string
	Balance           LeaveBalance
}

// Manages reports whether userID is in this user's team, i.e. whether
// this user is authorized to resolve that user's requests.
func (u *User) Manages(userID string) bool {
	for _, id := range u.TeamMemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// =============================================================================
// HOLIDAY CALENDARS
// =============================================================================

// HolidayCalendar groups holidays for an office or region. At least one
// calendar must exist system-wide; stores reject deleting the last one.
type HolidayCalendar struct {
	ID   string
	Name string
}

// Holiday is a single dated holiday owned by exactly one calendar.
// Date carries day granularity only (midnight UTC).
type Holiday struct {
	ID         string
	CalendarID string
	Date       time.Time
	Name       string

	// ApplicableTo is the non-empty set of employee types the holiday
	// applies to.
	ApplicableTo []EmployeeType
}

// AppliesTo reports whether the holiday applies to the given employee type.
func (h Holiday) AppliesTo(t EmployeeType) bool {
	for _, et := range h.ApplicableTo {
		if et == t {
			return true
		}
	}
	return false
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type LeaveType string

const (
	LeavePaid   LeaveType = "Paid"
	LeaveUnpaid LeaveType = "Unpaid"
)

// LeaveRequest is an admitted request for leave over an inclusive date
// range. StartDate <= EndDate always holds for admitted requests.
type LeaveRequest struct {
	ID        string
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	LeaveType LeaveType
	Status    Status
	CreatedAt time.Time
}

// DurationDays returns the inclusive day count of the range.
func (r *LeaveRequest) DurationDays() int {
	return DaysInclusive(r.StartDate, r.EndDate)
}

func (r *LeaveRequest) RequestID() string     { return r.ID }
func (r *LeaveRequest) OwnerID() string       { return r.UserID }
func (r *LeaveRequest) RequestStatus() Status { return r.Status }

// =============================================================================
// PROJECTS AND TIMESHEET ENTRIES
// =============================================================================

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "Active"
	ProjectCompleted ProjectStatus = "Completed"
)

// Project is referenced, never mutated, by timesheet entries.
type Project struct {
	ID     string
	Name   string
	Code   string
	Status ProjectStatus
}

// TimesheetEntry is an admitted log of hours against a project.
type TimesheetEntry struct {
	ID          string
	UserID      string
	ProjectID   string
	Date        time.Time
	Hours       decimal.Decimal
	Description string
	Status      Status
	CreatedAt   time.Time
}

func (e *TimesheetEntry) RequestID() string     { return e.ID }
func (e *TimesheetEntry) OwnerID() string       { return e.UserID }
func (e *TimesheetEntry) RequestStatus() Status { return e.Status }

// Compile-time checks that both entity kinds are requestable.
var (
	_ Requestable = (*LeaveRequest)(nil)
	_ Requestable = (*TimesheetEntry)(nil)
)

// =============================================================================
// CIVIL DATES
// =============================================================================

// Date constructs a day-granularity time at midnight UTC. All dates in
// this package are normalized this way.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to day granularity at midnight UTC.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// DaysInclusive returns the inclusive day count of [start, end].
// Returns 0 if end precedes start.
func DaysInclusive(start, end time.Time) int {
	s, e := DateOf(start), DateOf(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// SameDay reports whether a and b fall on the same civil day.
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
