// Package store provides the in-memory Store implementation.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/workforce-engine/workforce"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	users     map[string]workforce.User
	calendars map[string]workforce.HolidayCalendar
	holidays  map[string]workforce.Holiday
	projects  map[string]workforce.Project
	leave     map[string]workforce.LeaveRequest
	entries   map[string]workforce.TimesheetEntry
}

func NewMemory() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.users = make(map[string]workforce.User)
	m.calendars = make(map[string]workforce.HolidayCalendar)
	m.holidays = make(map[string]workforce.Holiday)
	m.projects = make(map[string]workforce.Project)
	m.leave = make(map[string]workforce.LeaveRequest)
	m.entries = make(map[string]workforce.TimesheetEntry)
}

// Compile-time check.
var _ workforce.Store = (*Memory)(nil)

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) GetUser(_ context.Context, id string) (*workforce.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, workforce.ErrUserNotFound
	}
	return &u, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]workforce.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]workforce.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Memory) SaveUser(_ context.Context, u workforce.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// =============================================================================
// CALENDARS AND HOLIDAYS
// =============================================================================

func (m *Memory) ListCalendars(_ context.Context) ([]workforce.HolidayCalendar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cals := make([]workforce.HolidayCalendar, 0, len(m.calendars))
	for _, c := range m.calendars {
		cals = append(cals, c)
	}
	sort.Slice(cals, func(i, j int) bool { return cals[i].ID < cals[j].ID })
	return cals, nil
}

func (m *Memory) GetCalendar(_ context.Context, id string) (*workforce.HolidayCalendar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.calendars[id]
	if !ok {
		return nil, workforce.ErrCalendarNotFound
	}
	return &c, nil
}

func (m *Memory) SaveCalendar(_ context.Context, c workforce.HolidayCalendar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calendars[c.ID] = c
	return nil
}

// DeleteCalendar removes the calendar and all its holidays as one unit.
// Deleting the last calendar system-wide is forbidden.
func (m *Memory) DeleteCalendar(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.calendars[id]; !ok {
		return workforce.ErrCalendarNotFound
	}
	if len(m.calendars) <= 1 {
		return workforce.ErrLastCalendar
	}

	delete(m.calendars, id)
	for hid, h := range m.holidays {
		if h.CalendarID == id {
			delete(m.holidays, hid)
		}
	}
	return nil
}

// HolidaysByCalendar returns the calendar's holidays ordered by date.
// An unknown calendar yields an empty slice.
func (m *Memory) HolidaysByCalendar(_ context.Context, calendarID string) ([]workforce.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var holidays []workforce.Holiday
	for _, h := range m.holidays {
		if h.CalendarID == calendarID {
			holidays = append(holidays, h)
		}
	}
	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays, nil
}

func (m *Memory) SaveHoliday(_ context.Context, h workforce.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.calendars[h.CalendarID]; !ok {
		return workforce.ErrCalendarNotFound
	}
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.holidays[id]; !ok {
		return workforce.ErrNotFound
	}
	delete(m.holidays, id)
	return nil
}

// =============================================================================
// PROJECTS
// =============================================================================

func (m *Memory) GetProject(_ context.Context, id string) (*workforce.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, &workforce.ProjectNotFoundError{ProjectID: id}
	}
	return &p, nil
}

func (m *Memory) ListProjects(_ context.Context) ([]workforce.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	projects := make([]workforce.Project, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Code < projects[j].Code })
	return projects, nil
}

func (m *Memory) SaveProject(_ context.Context, p workforce.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func (m *Memory) SaveLeaveRequest(_ context.Context, r workforce.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leave[r.ID] = r
	return nil
}

func (m *Memory) GetLeaveRequest(_ context.Context, id string) (*workforce.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.leave[id]
	if !ok {
		return nil, workforce.ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ListLeaveRequestsByUser(_ context.Context, userID string) ([]workforce.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var requests []workforce.LeaveRequest
	for _, r := range m.leave {
		if r.UserID == userID {
			requests = append(requests, r)
		}
	}
	sortLeave(requests)
	return requests, nil
}

func (m *Memory) ListPendingLeaveRequests(_ context.Context, ownerIDs []string) ([]workforce.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owners := toSet(ownerIDs)
	var requests []workforce.LeaveRequest
	for _, r := range m.leave {
		if r.Status == workforce.StatusPending && owners[r.UserID] {
			requests = append(requests, r)
		}
	}
	sortLeave(requests)
	return requests, nil
}

// ResolveLeaveRequest performs the status check and write under the
// write lock, so exactly one of two racing resolutions succeeds.
func (m *Memory) ResolveLeaveRequest(_ context.Context, id string, decision workforce.Status) (*workforce.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.leave[id]
	if !ok {
		return nil, workforce.ErrNotFound
	}
	if r.Status != workforce.StatusPending {
		return nil, &workforce.AlreadyResolvedError{RequestID: id, Status: r.Status}
	}

	r.Status = decision
	m.leave[id] = r
	return &r, nil
}

// =============================================================================
// TIMESHEET ENTRIES
// =============================================================================

func (m *Memory) SaveTimesheetEntry(_ context.Context, e workforce.TimesheetEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *Memory) GetTimesheetEntry(_ context.Context, id string) (*workforce.TimesheetEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, workforce.ErrNotFound
	}
	return &e, nil
}

func (m *Memory) ListTimesheetEntriesByUser(_ context.Context, userID string) ([]workforce.TimesheetEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []workforce.TimesheetEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sortEntries(entries)
	return entries, nil
}

func (m *Memory) ListPendingTimesheetEntries(_ context.Context, ownerIDs []string) ([]workforce.TimesheetEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owners := toSet(ownerIDs)
	var entries []workforce.TimesheetEntry
	for _, e := range m.entries {
		if e.Status == workforce.StatusPending && owners[e.UserID] {
			entries = append(entries, e)
		}
	}
	sortEntries(entries)
	return entries, nil
}

// ResolveTimesheetEntry mirrors ResolveLeaveRequest for the second
// entity kind.
func (m *Memory) ResolveTimesheetEntry(_ context.Context, id string, decision workforce.Status) (*workforce.TimesheetEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, workforce.ErrNotFound
	}
	if e.Status != workforce.StatusPending {
		return nil, &workforce.AlreadyResolvedError{RequestID: id, Status: e.Status}
	}

	e.Status = decision
	m.entries[id] = e
	return &e, nil
}

// =============================================================================
// RESET
// =============================================================================

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func sortLeave(requests []workforce.LeaveRequest) {
	sort.Slice(requests, func(i, j int) bool {
		return workforce.MoreRecent(
			requests[i].CreatedAt, requests[i].ID,
			requests[j].CreatedAt, requests[j].ID)
	})
}

func sortEntries(entries []workforce.TimesheetEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return workforce.MoreRecent(
			entries[i].CreatedAt, entries[i].ID,
			entries[j].CreatedAt, entries[j].ID)
	})
}
