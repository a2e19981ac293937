package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for progress snapshots.
const DateLayout = "2006-01-02"

// Day is a calendar day in a fixed location.
type Day struct {
	Date time.Time
}

// DayOf returns the calendar day containing t in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return Day{Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)}
}

// ParseDay parses a YYYY-MM-DD string as a day in loc.
func ParseDay(s string, loc *time.Location) (Day, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return Day{}, Validation("invalid date %q", s)
	}
	return Day{Date: t}, nil
}

// DateString returns date in YYYY-MM-DD format
func (d Day) DateString() string {
	return d.Date.Format(DateLayout)
}

// AddDays moves the day by n calendar days.
func (d Day) AddDays(n int) Day {
	return Day{Date: time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day()+n, 0, 0, 0, 0, d.Date.Location())}
}

// StartMillis is the first epoch millisecond of the day.
func (d Day) StartMillis() int64 {
	return d.Date.UnixMilli()
}

// EndMillis is the first epoch millisecond of the following day.
func (d Day) EndMillis() int64 {
	return d.AddDays(1).Date.UnixMilli()
}

// DisplayString returns user-friendly date string
func (d Day) DisplayString(now time.Time) string {
	today := DayOf(now, d.Date.Location())
	switch d.DateString() {
	case today.DateString():
		return "Today"
	case today.AddDays(-1).DateString():
		return "Yesterday"
	}
	return d.Date.Format("2 Jan 2006")
}

// DaysBetween counts calendar-day boundaries crossed between from and to in
// loc. It is negative when to precedes from.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	a := DayOf(from, loc).Date
	b := DayOf(to, loc).Date
	// Compare as UTC civil dates so DST transitions do not skew the count.
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// FromMillis converts epoch milliseconds to a time in loc.
func FromMillis(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc)
}

// LoadLocation resolves an IANA name, treating "" as UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
