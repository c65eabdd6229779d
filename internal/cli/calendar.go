package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docrender/internal/ui/pretty"
	"github.com/yaklabco/docrender/pkg/calendar"
	"github.com/yaklabco/docrender/pkg/config"
)

type calendarFlags struct {
	locale      string
	weekStart   string
	sixWeeks    bool
	weekNumbers bool
	json        bool
	today       string
}

func newCalendarCommand(globals *globalFlags) *cobra.Command {
	flags := &calendarFlags{}

	cmd := &cobra.Command{
		Use:   "calendar [YYYY-MM | YYYY-MM-DD]",
		Short: "Print a localized month grid",
		Long: `Print the month grid a date picker shows: localized month and weekday
names, weeks starting on the locale's first weekday and the days of the
neighboring months.

Examples:
  docrender calendar                          # This month
  docrender calendar 2024-02 --locale de-DE   # February 2024, weeks from Monday
  docrender calendar --week-numbers --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalendar(cmd, args, globals, flags)
		},
	}

	cmd.Flags().StringVar(&flags.locale, "locale", "", "BCP 47 locale (default: calendar.locale)")
	cmd.Flags().StringVar(&flags.weekStart, "week-start", "", "First day of the week, e.g. monday")
	cmd.Flags().BoolVar(&flags.sixWeeks, "six-weeks", false, "Always lay out six weeks")
	cmd.Flags().BoolVar(&flags.weekNumbers, "week-numbers", false, "Show week numbers")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the grid as JSON")
	cmd.Flags().StringVar(&flags.today, "today", "", "Date to highlight (default: today)")
	_ = cmd.Flags().MarkHidden("today")

	return cmd
}

func runCalendar(cmd *cobra.Command, args []string, globals *globalFlags, flags *calendarFlags) error {
	cliCfg := &config.Config{}
	cliCfg.Calendar.Locale = flags.locale
	cliCfg.Calendar.WeekStart = flags.weekStart
	if cmd.Flags().Changed("six-weeks") {
		cliCfg.Calendar.SixWeeks = &flags.sixWeeks
	}

	sess, err := loadSession(cmd, globals, cliCfg)
	if err != nil {
		return err
	}
	cfg := sess.config

	locale, err := calendar.ParseLocale(cfg.Calendar.Locale)
	if err != nil {
		return errors.Join(ErrConfig, err)
	}
	if cfg.Calendar.WeekStart != "" {
		day, err := calendar.ParseWeekday(cfg.Calendar.WeekStart)
		if err != nil {
			return errors.Join(ErrConfig, err)
		}
		locale = locale.WithWeekStart(day)
	}

	today := calendar.FromTime(time.Now())
	if flags.today != "" {
		if today, err = calendar.ParseDate(flags.today); err != nil {
			return errors.Join(ErrUsage, err)
		}
	}

	date := today
	if len(args) == 1 {
		if date, err = parseMonth(args[0]); err != nil {
			return errors.Join(ErrUsage, err)
		}
	}

	grid := calendar.MonthGrid(date, locale, calendar.GridOptions{SixWeeks: cfg.SixWeeks()})

	out := cmd.OutOrStdout()
	if flags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(grid); err != nil {
			return fmt.Errorf("encode grid: %w", err)
		}
		return nil
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(globals.color, out))
	text := styles.FormatCalendar(grid, locale, pretty.CalendarOptions{
		Today:       today,
		WeekNumbers: flags.weekNumbers,
	})
	if _, err := fmt.Fprintln(out, text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// parseMonth accepts YYYY-MM or YYYY-MM-DD.
func parseMonth(s string) (calendar.Date, error) {
	if strings.Count(s, "-") == 1 {
		s += "-01"
	}
	return calendar.ParseDate(s)
}
