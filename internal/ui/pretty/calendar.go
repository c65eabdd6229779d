package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/yaklabco/docrender/pkg/calendar"
)

// cellWidth is the width of one day column.
const cellWidth = 3

// CalendarOptions controls FormatCalendar.
type CalendarOptions struct {
	// Today is highlighted when it falls in the grid.
	Today calendar.Date

	// WeekNumbers adds a leading week number column.
	WeekNumbers bool
}

// FormatCalendar renders a month grid with localized headers.
func (s *Styles) FormatCalendar(grid calendar.Grid, locale calendar.Locale, opts CalendarOptions) string {
	locale = locale.WithWeekStart(grid.WeekStart)
	gutter := ""
	if opts.WeekNumbers {
		gutter = strings.Repeat(" ", cellWidth)
	}
	total := cellWidth*7 + len(gutter)

	var b strings.Builder
	title := calendar.FormatMonth(grid.Year, grid.Month, locale)
	b.WriteString(s.MonthTop.Render(center(title, total)))
	b.WriteString("\n")

	b.WriteString(gutter)
	for _, name := range calendar.WeekdayNames(locale, true) {
		b.WriteString(s.Weekday.Render(pad(clip(name, cellWidth-1), cellWidth)))
	}
	b.WriteString("\n")

	for _, week := range grid.Weeks {
		if opts.WeekNumbers {
			b.WriteString(s.WeekNum.Render(fmt.Sprintf("%2d ", week.Number)))
		}
		for _, day := range week.Days {
			b.WriteString(s.day(day, opts.Today))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (s *Styles) day(day calendar.Day, today calendar.Date) string {
	label := fmt.Sprintf("%2d", day.Date.Day)
	var st lipgloss.Style
	switch {
	case day.Date == today:
		st = s.Today
	case !day.InMonth:
		st = s.Outside
	case day.Weekend:
		st = s.Weekend
	default:
		return label + " "
	}
	return st.Render(label) + " "
}

// clip truncates to n grapheme clusters.
func clip(str string, n int) string {
	var out strings.Builder
	state := -1
	rest := str
	for count := 0; rest != "" && count < n; count++ {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		out.WriteString(cluster)
	}
	return out.String()
}

// pad right-pads to a display width.
func pad(str string, width int) string {
	if w := uniseg.StringWidth(str); w < width {
		return str + strings.Repeat(" ", width-w)
	}
	return str
}

func center(str string, width int) string {
	w := uniseg.StringWidth(str)
	if w >= width {
		return str
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + str
}
