/*
Package sqlite provides the SQLite-backed implementation of the
workforce.Store interface.

PURPOSE:
  Persists the directory (users, calendars, holidays, projects) and the
  two requestable entity kinds. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

MUTATION DISCIPLINE:
  leave_requests and timesheet_entries are written once at admission.
  The only UPDATE either table ever sees is the conditional status
  transition:

    UPDATE ... SET status = ? WHERE id = ? AND status = 'Pending'

  RowsAffected == 0 with an existing row means another resolution won
  the race; the caller observes AlreadyResolvedError. This is the
  compare-and-swap that makes approval single-writer-wins.

CASCADE:
  holidays.calendar_id carries ON DELETE CASCADE; DeleteCalendar counts
  calendars inside the same transaction so the last calendar can never
  be removed.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - workforce/store.go: interface definition
  - workforce/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/workforce-engine/workforce"
)

const dayFormat = "2006-01-02"

// Store implements workforce.Store using SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time check.
var _ workforce.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		employee_type TEXT NOT NULL,
		manager_id TEXT,
		team_member_ids TEXT NOT NULL DEFAULT '[]',
		holiday_calendar_id TEXT NOT NULL,
		balance_paid INTEGER NOT NULL DEFAULT 0 CHECK (balance_paid >= 0),
		balance_unpaid INTEGER NOT NULL DEFAULT 0 CHECK (balance_unpaid >= 0)
	);

	CREATE TABLE IF NOT EXISTS holiday_calendars (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		calendar_id TEXT NOT NULL REFERENCES holiday_calendars(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		applicable_to TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_holidays_calendar_date ON holidays(calendar_id, date);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_user ON leave_requests(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status ON leave_requests(status, user_id);

	CREATE TABLE IF NOT EXISTS timesheet_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		date TEXT NOT NULL,
		hours TEXT NOT NULL,
		description TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_timesheet_entries_user ON timesheet_entries(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_timesheet_entries_status ON timesheet_entries(status, user_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) GetUser(ctx context.Context, id string) (*workforce.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, employee_type, manager_id,
		       team_member_ids, holiday_calendar_id, balance_paid, balance_unpaid
		FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workforce.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]workforce.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, role, employee_type, manager_id,
		       team_member_ids, holiday_calendar_id, balance_paid, balance_unpaid
		FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []workforce.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) SaveUser(ctx context.Context, u workforce.User) error {
	team, err := json.Marshal(u.TeamMemberIDs)
	if err != nil {
		return err
	}
	var managerID sql.NullString
	if u.ManagerID != "" {
		managerID = sql.NullString{String: u.ManagerID, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, employee_type, manager_id,
			team_member_ids, holiday_calendar_id, balance_paid, balance_unpaid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			employee_type = excluded.employee_type,
			manager_id = excluded.manager_id,
			team_member_ids = excluded.team_member_ids,
			holiday_calendar_id = excluded.holiday_calendar_id,
			balance_paid = excluded.balance_paid,
			balance_unpaid = excluded.balance_unpaid`,
		u.ID, u.Name, u.Email, string(u.Role), string(u.EmployeeType), managerID,
		string(team), u.HolidayCalendarID, u.Balance.Paid, u.Balance.Unpaid)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*workforce.User, error) {
	var (
		u         workforce.User
		role      string
		et        string
		managerID sql.NullString
		team      string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &et, &managerID,
		&team, &u.HolidayCalendarID, &u.Balance.Paid, &u.Balance.Unpaid)
	if err != nil {
		return nil, err
	}
	u.Role = workforce.Role(role)
	u.EmployeeType = workforce.EmployeeType(et)
	u.ManagerID = managerID.String
	if err := json.Unmarshal([]byte(team), &u.TeamMemberIDs); err != nil {
		return nil, fmt.Errorf("corrupt team_member_ids for user %s: %w", u.ID, err)
	}
	return &u, nil
}

// =============================================================================
// CALENDARS AND HOLIDAYS
// =============================================================================

func (s *Store) ListCalendars(ctx context.Context) ([]workforce.HolidayCalendar, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM holiday_calendars ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cals []workforce.HolidayCalendar
	for rows.Next() {
		var c workforce.HolidayCalendar
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cals = append(cals, c)
	}
	return cals, rows.Err()
}

func (s *Store) GetCalendar(ctx context.Context, id string) (*workforce.HolidayCalendar, error) {
	var c workforce.HolidayCalendar
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM holiday_calendars WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workforce.ErrCalendarNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) SaveCalendar(ctx context.Context, c workforce.HolidayCalendar) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holiday_calendars (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		c.ID, c.Name)
	return err
}

// DeleteCalendar removes the calendar and, via cascade, its holidays.
// The last-calendar count and the delete share one transaction so the
// guard cannot be raced past.
func (s *Store) DeleteCalendar(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM holiday_calendars WHERE id = ?)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return workforce.ErrCalendarNotFound
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM holiday_calendars`).Scan(&count); err != nil {
		return err
	}
	if count <= 1 {
		return workforce.ErrLastCalendar
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM holiday_calendars WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) HolidaysByCalendar(ctx context.Context, calendarID string) ([]workforce.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, calendar_id, date, name, applicable_to
		FROM holidays WHERE calendar_id = ? ORDER BY date`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []workforce.Holiday
	for rows.Next() {
		var (
			h          workforce.Holiday
			date       string
			applicable string
		)
		if err := rows.Scan(&h.ID, &h.CalendarID, &date, &h.Name, &applicable); err != nil {
			return nil, err
		}
		h.Date, err = time.Parse(dayFormat, date)
		if err != nil {
			return nil, fmt.Errorf("corrupt holiday date for %s: %w", h.ID, err)
		}
		if err := json.Unmarshal([]byte(applicable), &h.ApplicableTo); err != nil {
			return nil, fmt.Errorf("corrupt applicable_to for holiday %s: %w", h.ID, err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) SaveHoliday(ctx context.Context, h workforce.Holiday) error {
	if _, err := s.GetCalendar(ctx, h.CalendarID); err != nil {
		return err
	}
	applicable, err := json.Marshal(h.ApplicableTo)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, calendar_id, date, name, applicable_to)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			calendar_id = excluded.calendar_id,
			date = excluded.date,
			name = excluded.name,
			applicable_to = excluded.applicable_to`,
		h.ID, h.CalendarID, h.Date.Format(dayFormat), h.Name, string(applicable))
	return err
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return workforce.ErrNotFound
	}
	return nil
}

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) GetProject(ctx context.Context, id string) (*workforce.Project, error) {
	var (
		p      workforce.Project
		status string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, code, status FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Code, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &workforce.ProjectNotFoundError{ProjectID: id}
	}
	if err != nil {
		return nil, err
	}
	p.Status = workforce.ProjectStatus(status)
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]workforce.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, code, status FROM projects ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []workforce.Project
	for rows.Next() {
		var (
			p      workforce.Project
			status string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &status); err != nil {
			return nil, err
		}
		p.Status = workforce.ProjectStatus(status)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) SaveProject(ctx context.Context, p workforce.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, code, status) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, code = excluded.code, status = excluded.status`,
		p.ID, p.Name, p.Code, string(p.Status))
	return err
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func (s *Store) SaveLeaveRequest(ctx context.Context, r workforce.LeaveRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests
			(id, user_id, start_date, end_date, reason, leave_type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.StartDate.Format(dayFormat), r.EndDate.Format(dayFormat),
		r.Reason, string(r.LeaveType), string(r.Status), r.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) GetLeaveRequest(ctx context.Context, id string) (*workforce.LeaveRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, start_date, end_date, reason, leave_type, status, created_at
		FROM leave_requests WHERE id = ?`, id)

	r, err := scanLeaveRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workforce.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ListLeaveRequestsByUser(ctx context.Context, userID string) ([]workforce.LeaveRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, start_date, end_date, reason, leave_type, status, created_at
		FROM leave_requests WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeaveRequests(rows)
}

func (s *Store) ListPendingLeaveRequests(ctx context.Context, ownerIDs []string) ([]workforce.LeaveRequest, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, user_id, start_date, end_date, reason, leave_type, status, created_at
		FROM leave_requests
		WHERE status = 'Pending' AND user_id IN (%s)
		ORDER BY created_at DESC, id DESC`, placeholders(len(ownerIDs)))

	rows, err := s.db.QueryContext(ctx, query, toAnySlice(ownerIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeaveRequests(rows)
}

// ResolveLeaveRequest is the compare-and-swap transition. The
// conditional UPDATE and the RowsAffected check make the Pending guard
// and the write one atomic unit.
func (s *Store) ResolveLeaveRequest(ctx context.Context, id string, decision workforce.Status) (*workforce.LeaveRequest, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE leave_requests SET status = ?
		WHERE id = ? AND status = 'Pending'`, string(decision), id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		r, err := s.GetLeaveRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &workforce.AlreadyResolvedError{RequestID: id, Status: r.Status}
	}
	return s.GetLeaveRequest(ctx, id)
}

func scanLeaveRequest(row rowScanner) (*workforce.LeaveRequest, error) {
	var (
		r          workforce.LeaveRequest
		start, end string
		leaveType  string
		status     string
		createdAt  string
	)
	if err := row.Scan(&r.ID, &r.UserID, &start, &end, &r.Reason, &leaveType, &status, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if r.StartDate, err = time.Parse(dayFormat, start); err != nil {
		return nil, fmt.Errorf("corrupt start_date for request %s: %w", r.ID, err)
	}
	if r.EndDate, err = time.Parse(dayFormat, end); err != nil {
		return nil, fmt.Errorf("corrupt end_date for request %s: %w", r.ID, err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at for request %s: %w", r.ID, err)
	}
	r.LeaveType = workforce.LeaveType(leaveType)
	r.Status = workforce.Status(status)
	return &r, nil
}

func collectLeaveRequests(rows *sql.Rows) ([]workforce.LeaveRequest, error) {
	var requests []workforce.LeaveRequest
	for rows.Next() {
		r, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

// =============================================================================
// TIMESHEET ENTRIES
// =============================================================================

func (s *Store) SaveTimesheetEntry(ctx context.Context, e workforce.TimesheetEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timesheet_entries
			(id, user_id, project_id, date, hours, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.ProjectID, e.Date.Format(dayFormat), e.Hours.String(),
		e.Description, string(e.Status), e.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) GetTimesheetEntry(ctx context.Context, id string) (*workforce.TimesheetEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, project_id, date, hours, description, status, created_at
		FROM timesheet_entries WHERE id = ?`, id)

	e, err := scanTimesheetEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workforce.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) ListTimesheetEntriesByUser(ctx context.Context, userID string) ([]workforce.TimesheetEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, project_id, date, hours, description, status, created_at
		FROM timesheet_entries WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTimesheetEntries(rows)
}

func (s *Store) ListPendingTimesheetEntries(ctx context.Context, ownerIDs []string) ([]workforce.TimesheetEntry, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT id, user_id, project_id, date, hours, description, status, created_at
		FROM timesheet_entries
		WHERE status = 'Pending' AND user_id IN (%s)
		ORDER BY created_at DESC, id DESC`, placeholders(len(ownerIDs)))

	rows, err := s.db.QueryContext(ctx, query, toAnySlice(ownerIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTimesheetEntries(rows)
}

// ResolveTimesheetEntry mirrors ResolveLeaveRequest for the second
// entity kind.
func (s *Store) ResolveTimesheetEntry(ctx context.Context, id string, decision workforce.Status) (*workforce.TimesheetEntry, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE timesheet_entries SET status = ?
		WHERE id = ? AND status = 'Pending'`, string(decision), id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		e, err := s.GetTimesheetEntry(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &workforce.AlreadyResolvedError{RequestID: id, Status: e.Status}
	}
	return s.GetTimesheetEntry(ctx, id)
}

func scanTimesheetEntry(row rowScanner) (*workforce.TimesheetEntry, error) {
	var (
		e         workforce.TimesheetEntry
		date      string
		hours     string
		status    string
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.ProjectID, &date, &hours, &e.Description, &status, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if e.Date, err = time.Parse(dayFormat, date); err != nil {
		return nil, fmt.Errorf("corrupt date for entry %s: %w", e.ID, err)
	}
	if e.Hours, err = decimal.NewFromString(hours); err != nil {
		return nil, fmt.Errorf("corrupt hours for entry %s: %w", e.ID, err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at for entry %s: %w", e.ID, err)
	}
	e.Status = workforce.Status(status)
	return &e, nil
}

func collectTimesheetEntries(rows *sql.Rows) ([]workforce.TimesheetEntry, error) {
	var entries []workforce.TimesheetEntry
	for rows.Next() {
		e, err := scanTimesheetEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// =============================================================================
// RESET
// =============================================================================

// Reset clears all tables. Used by scenario loading.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{
		"timesheet_entries", "leave_requests", "projects",
		"holidays", "holiday_calendars", "users",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toAnySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
