package workforce

import (
	"context"
	"sort"
	"time"
)

// =============================================================================
// CALENDAR INDEX - Holiday lookup by calendar, employee type and range
// =============================================================================

// HolidaySource supplies holidays per calendar. Implemented by the
// in-memory and SQLite stores.
type HolidaySource interface {
	// HolidaysByCalendar returns all holidays owned by the calendar.
	// An unknown calendar yields an empty slice, not an error; calendar
	// existence is enforced by the store that owns calendars.
	HolidaysByCalendar(ctx context.Context, calendarID string) ([]Holiday, error)
}

// CalendarIndex answers which holidays fall inside a date range for a
// given calendar and employee category. It is read-only and safe for
// concurrent use.
type CalendarIndex struct {
	Source HolidaySource
}

func NewCalendarIndex(source HolidaySource) *CalendarIndex {
	return &CalendarIndex{Source: source}
}

// ApplicableInRange returns every holiday in the calendar whose date
// lies in [start, end] (inclusive) and which applies to the employee
// type, ordered by date ascending. Empty if none.
func (ci *CalendarIndex) ApplicableInRange(
	ctx context.Context,
	calendarID string,
	employeeType EmployeeType,
	start, end time.Time,
) ([]Holiday, error) {
	holidays, err := ci.Source.HolidaysByCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	s, e := DateOf(start), DateOf(end)
	var applicable []Holiday
	for _, h := range holidays {
		d := DateOf(h.Date)
		if d.Before(s) || d.After(e) {
			continue
		}
		if !h.AppliesTo(employeeType) {
			continue
		}
		applicable = append(applicable, h)
	}

	sort.Slice(applicable, func(i, j int) bool {
		return applicable[i].Date.Before(applicable[j].Date)
	})
	return applicable, nil
}
