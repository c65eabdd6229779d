package calendar

import "time"

// Day is one cell of a month grid.
type Day struct {
	Date    Date `json:"date"`
	InMonth bool `json:"in_month"`
	Weekend bool `json:"weekend"`
}

// Week is one row of a month grid.
type Week struct {
	Number int    `json:"number"`
	Days   [7]Day `json:"days"`
}

// Grid is the month view of a calendar.
type Grid struct {
	Year      int          `json:"year"`
	Month     time.Month   `json:"month"`
	WeekStart time.Weekday `json:"week_start"`
	Weeks     []Week       `json:"weeks"`
}

// GridOptions configures MonthGrid.
type GridOptions struct {
	// SixWeeks pads every grid to six rows so that month views keep a
	// constant height.
	SixWeeks bool
}

// MonthGrid lays out the month containing date in weeks starting on the
// locale's week start. Leading and trailing cells from neighboring months are
// marked out of month.
func MonthGrid(date Date, locale Locale, opts GridOptions) Grid {
	first := NewDate(date.Year, date.Month, 1)
	last := NewDate(date.Year, date.Month, DaysIn(date.Year, date.Month))
	weekStart := locale.WeekStart()

	rows := (daysSince(first.Weekday(), weekStart) + last.Day + 6) / 7
	if opts.SixWeeks {
		rows = 6
	}

	grid := Grid{Year: first.Year, Month: first.Month, WeekStart: weekStart, Weeks: make([]Week, rows)}
	day := StartOfWeek(first, weekStart)
	for r := range grid.Weeks {
		week := &grid.Weeks[r]
		for i := range week.Days {
			week.Days[i] = Day{
				Date:    day,
				InMonth: day.Year == first.Year && day.Month == first.Month,
				Weekend: locale.IsWeekend(day.Weekday()),
			}
			day = day.AddDays(1)
		}
		week.Number = WeekNumber(week.Days[6].Date, weekStart)
	}
	return grid
}

// Days returns the cells of the grid in reading order.
func (g Grid) Days() []Day {
	out := make([]Day, 0, len(g.Weeks)*7)
	for _, week := range g.Weeks {
		out = append(out, week.Days[:]...)
	}
	return out
}

// Contains reports whether date is a cell of the grid.
func (g Grid) Contains(date Date) bool {
	if len(g.Weeks) == 0 {
		return false
	}
	first := g.Weeks[0].Days[0].Date
	last := g.Weeks[len(g.Weeks)-1].Days[6].Date
	return !date.Before(first) && !date.After(last)
}
