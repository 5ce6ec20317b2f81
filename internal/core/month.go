package core

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day. The clock part is always midnight UTC.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day on which t falls in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MonthWindow is the inclusive range of calendar days of one month.
type MonthWindow struct {
	Start Date
	End   Date
	// Begins is the first instant of the month in the evaluation location,
	// Ends the first instant of the next one.
	Begins time.Time
	Ends   time.Time
}

// MonthOf returns the calendar month containing now, evaluated in loc.
// End is the last day of that month, whatever its length.
func MonthOf(now time.Time, loc *time.Location) MonthWindow {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	year, month, _ := local.Date()
	begins := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// day 0 of the next month is the last day of this one
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	return MonthWindow{
		Start:  NewDate(year, month, 1),
		End:    NewDate(year, month, last.Day()),
		Begins: begins,
		Ends:   begins.AddDate(0, 1, 0),
	}
}

// Contains reports whether d falls inside the window.
func (w MonthWindow) Contains(d Date) bool {
	return !d.Before(w.Start.Time) && !d.After(w.End.Time)
}

// Label returns the month name and year, e.g. "October 2026".
func (w MonthWindow) Label() string {
	return w.Start.Format("January 2006")
}

// SameMonth reports whether a and b fall in the same calendar month and year
// when both are viewed in loc.
func SameMonth(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, _ := a.In(loc).Date()
	by, bm, _ := b.In(loc).Date()
	return ay == by && am == bm
}
