/*
store.go - Repository interfaces for the workforce core

PURPOSE:
  Defines the persistence contract between the domain logic and the
  stores. Two implementations exist:
  - workforce/store: in-memory maps, for tests and dev
  - store/sqlite:    SQLite, for the server

MUTATION DISCIPLINE:
  Requests and timesheet entries are written once at admission and
  mutated exactly once, through ResolveLeaveRequest /
  ResolveTimesheetEntry. Both are compare-and-swap operations on
  status == Pending; there is no general update method for either
  entity kind.

CASCADE RULES:
  DeleteCalendar removes the calendar's holidays atomically and fails
  with ErrLastCalendar when it is the only calendar system-wide.
*/
package workforce

import (
	"context"
	"time"
)

// Store is the full persistence surface consumed by the API layer.
// Individual components depend on the narrower HolidaySource and
// ProjectSource interfaces instead.
type Store interface {
	HolidaySource
	ProjectSource

	// Users (directory, read-mostly; the core never deletes users)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SaveUser(ctx context.Context, u User) error

	// Holiday calendars
	ListCalendars(ctx context.Context) ([]HolidayCalendar, error)
	GetCalendar(ctx context.Context, id string) (*HolidayCalendar, error)
	SaveCalendar(ctx context.Context, c HolidayCalendar) error
	DeleteCalendar(ctx context.Context, id string) error

	// Holidays
	SaveHoliday(ctx context.Context, h Holiday) error
	DeleteHoliday(ctx context.Context, id string) error

	// Projects
	ListProjects(ctx context.Context) ([]Project, error)
	SaveProject(ctx context.Context, p Project) error

	// Leave requests
	SaveLeaveRequest(ctx context.Context, r LeaveRequest) error
	GetLeaveRequest(ctx context.Context, id string) (*LeaveRequest, error)
	ListLeaveRequestsByUser(ctx context.Context, userID string) ([]LeaveRequest, error)
	ListPendingLeaveRequests(ctx context.Context, ownerIDs []string) ([]LeaveRequest, error)
	ResolveLeaveRequest(ctx context.Context, id string, decision Status) (*LeaveRequest, error)

	// Timesheet entries
	SaveTimesheetEntry(ctx context.Context, e TimesheetEntry) error
	GetTimesheetEntry(ctx context.Context, id string) (*TimesheetEntry, error)
	ListTimesheetEntriesByUser(ctx context.Context, userID string) ([]TimesheetEntry, error)
	ListPendingTimesheetEntries(ctx context.Context, ownerIDs []string) ([]TimesheetEntry, error)
	ResolveTimesheetEntry(ctx context.Context, id string, decision Status) (*TimesheetEntry, error)

	// Reset clears all data. Used by scenario loading.
	Reset(ctx context.Context) error
}

// =============================================================================
// RESOLUTION REPOSITORY ADAPTERS
// =============================================================================

// LeaveResolutions adapts a Store to the ResolutionRepository consumed
// by ApprovalWorkflow.
func LeaveResolutions(s Store) ResolutionRepository {
	return leaveResolutions{s}
}

type leaveResolutions struct{ s Store }

func (r leaveResolutions) Get(ctx context.Context, id string) (Requestable, error) {
	return r.s.GetLeaveRequest(ctx, id)
}

func (r leaveResolutions) Resolve(ctx context.Context, id string, decision Status) (Requestable, error) {
	return r.s.ResolveLeaveRequest(ctx, id, decision)
}

// TimesheetResolutions adapts a Store to the ResolutionRepository
// consumed by ApprovalWorkflow.
func TimesheetResolutions(s Store) ResolutionRepository {
	return timesheetResolutions{s}
}

type timesheetResolutions struct{ s Store }

func (r timesheetResolutions) Get(ctx context.Context, id string) (Requestable, error) {
	return r.s.GetTimesheetEntry(ctx, id)
}

func (r timesheetResolutions) Resolve(ctx context.Context, id string, decision Status) (Requestable, error) {
	return r.s.ResolveTimesheetEntry(ctx, id, decision)
}

// MoreRecent keeps list ordering deterministic across stores:
// newest-first by creation time, id as tiebreaker.
func MoreRecent(aCreated time.Time, aID string, bCreated time.Time, bID string) bool {
	if !aCreated.Equal(bCreated) {
		return aCreated.After(bCreated)
	}
	return aID > bID
}
