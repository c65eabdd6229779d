package pretty_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/internal/ui/pretty"
	"github.com/yaklabco/docrender/pkg/calendar"
)

func TestFormatCalendar(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	us := calendar.MustLocale("en-US")
	grid := calendar.MonthGrid(calendar.NewDate(2024, time.February, 10), us, calendar.GridOptions{})

	lines := strings.Split(styles.FormatCalendar(grid, us, pretty.CalendarOptions{}), "\n")
	require.Len(t, lines, 2+len(grid.Weeks))
	assert.Equal(t, "February 2024", strings.TrimSpace(lines[0]))
	assert.Equal(t, "Su Mo Tu We Th Fr Sa ", lines[1])
	assert.Equal(t, "28 29 30 31  1  2  3 ", lines[2])

	withNumbers := strings.Split(styles.FormatCalendar(grid, us, pretty.CalendarOptions{WeekNumbers: true}), "\n")
	assert.Equal(t, " 5 28 29 30 31  1  2  3 ", withNumbers[2])
}

func TestFormatCalendar_Localized(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	de := calendar.MustLocale("de-DE")
	grid := calendar.MonthGrid(calendar.NewDate(2024, time.February, 1), de, calendar.GridOptions{SixWeeks: true})

	lines := strings.Split(styles.FormatCalendar(grid, de, pretty.CalendarOptions{}), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "Februar 2024", strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "Mo "), lines[1])
	assert.Equal(t, "29 30 31  1  2  3  4 ", lines[2])
}

func TestFormatCalendar_TodayIsHighlighted(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(true)
	us := calendar.MustLocale("en-US")
	today := calendar.NewDate(2024, time.February, 14)
	grid := calendar.MonthGrid(today, us, calendar.GridOptions{})

	plain := pretty.NewStyles(false).FormatCalendar(grid, us, pretty.CalendarOptions{Today: today})
	colored := styles.FormatCalendar(grid, us, pretty.CalendarOptions{Today: today})
	assert.NotEqual(t, plain, colored)
	assert.Contains(t, colored, "14")
}
