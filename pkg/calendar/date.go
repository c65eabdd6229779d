// Package calendar provides the date arithmetic behind the calendar
// component: civil dates, month grids, week numbers and localized names. All
// functions are pure.
package calendar

import (
	"fmt"
	"time"
)

// Date is a civil date without time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date, normalizing out-of-range values the way
// time.Date does (January 32 becomes February 1).
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the date of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses an ISO 8601 date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats d as 2006-01-02.
func (d Date) String() string {
	return d.Time().Format(time.DateOnly)
}

// MarshalText encodes d as 2006-01-02.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a 2006-01-02 date.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsValid reports whether d names a real calendar day.
func (d Date) IsValid() bool {
	return d.Month >= time.January && d.Month <= time.December &&
		d.Day >= 1 && d.Day <= DaysIn(d.Year, d.Month)
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// YearDay returns the day of the year, 1 for January 1.
func (d Date) YearDay() int {
	return d.Time().YearDay()
}

// AddDays returns d moved by n days.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// AddMonths returns d moved by n months. The day is clamped to the length of
// the target month: January 31 plus one month is the last day of February.
func (d Date) AddMonths(n int) Date {
	first := NewDate(d.Year, d.Month+time.Month(n), 1)
	first.Day = min(d.Day, DaysIn(first.Year, first.Month))
	return first
}

// Compare returns -1, 0 or +1 as d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

// Before reports whether d is before other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is after other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// DaysIn returns the number of days in month of year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfWeek returns the first day of the week containing d.
func StartOfWeek(d Date, weekStart time.Weekday) Date {
	return d.AddDays(-daysSince(d.Weekday(), weekStart))
}

// WeekNumber numbers the week containing d. Weeks starting on Monday follow
// ISO 8601. Other week starts count the week containing January 1 as week 1.
func WeekNumber(d Date, weekStart time.Weekday) int {
	if weekStart == time.Monday {
		_, week := d.Time().ISOWeek()
		return week
	}

	start := StartOfWeek(d, weekStart)
	if nextYear := NewDate(d.Year+1, time.January, 1); !start.Before(StartOfWeek(nextYear, weekStart)) {
		return 1
	}
	jan1 := NewDate(d.Year, time.January, 1)
	return (d.YearDay()-1+daysSince(jan1.Weekday(), weekStart))/7 + 1
}

// daysSince returns how many days wd comes after from within a week.
func daysSince(wd, from time.Weekday) int {
	return (int(wd) - int(from) + 7) % 7
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
