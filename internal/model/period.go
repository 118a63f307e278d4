package model

import (
	"fmt"
	"time"
)

// PeriodKind names a reporting window.
type PeriodKind string

// Reporting windows.
const (
	PeriodToday   PeriodKind = "today"
	PeriodWeek    PeriodKind = "week"
	PeriodMonth   PeriodKind = "month"
	PeriodQuarter PeriodKind = "quarter"
	PeriodYear    PeriodKind = "year"
	PeriodCustom  PeriodKind = "custom"
)

// Period is an inclusive range of calendar days.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar day of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// NewPeriod computes the window of the given kind around now. Weeks run
// Monday through Sunday. Custom periods take start and end verbatim.
func NewPeriod(kind PeriodKind, now, start, end time.Time) (Period, error) {
	today := truncateDay(now)
	y, m, _ := today.Date()
	loc := today.Location()

	switch kind {
	case PeriodToday:
		return Period{Start: today, End: today}, nil
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		s := today.AddDate(0, 0, -offset)
		return Period{Start: s, End: s.AddDate(0, 0, 6)}, nil
	case "", PeriodMonth:
		s := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return Period{Start: s, End: s.AddDate(0, 1, -1)}, nil
	case PeriodQuarter:
		q := (int(m) - 1) / 3
		s := time.Date(y, time.Month(q*3+1), 1, 0, 0, 0, 0, loc)
		return Period{Start: s, End: s.AddDate(0, 3, -1)}, nil
	case PeriodYear:
		return Period{
			Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y, time.December, 31, 0, 0, 0, 0, loc),
		}, nil
	case PeriodCustom:
		if start.IsZero() || end.IsZero() {
			return Period{}, fmt.Errorf("custom period needs both start and end")
		}
		s, e := truncateDay(start), truncateDay(end)
		if e.Before(s) {
			return Period{}, fmt.Errorf("period end %s is before start %s", e.Format("2006-01-02"), s.Format("2006-01-02"))
		}
		return Period{Start: s, End: e}, nil
	default:
		return Period{}, fmt.Errorf("unknown period %q", kind)
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
