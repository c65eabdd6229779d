package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// Locale carries the conventions of a language and region.
type Locale struct {
	tag       language.Tag
	region    string
	weekStart time.Weekday
	weekend   [7]bool
	format    monday.Locale
}

// formatLocales are the locales used for names and formatting.
//
//nolint:gochecknoglobals // Read-only lookup table.
var formatLocales = []monday.Locale{
	monday.LocaleEnUS,
	monday.LocaleEnGB,
	monday.LocaleDeDE,
	monday.LocaleFrFR,
	monday.LocaleEsES,
	monday.LocaleItIT,
	monday.LocaleJaJP,
	monday.LocaleZhCN,
	monday.LocaleRuRU,
	monday.LocalePtBR,
	monday.LocaleNlNL,
}

//nolint:gochecknoglobals // Read-only lookup table.
var formatMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(formatLocales))
	for i, l := range formatLocales {
		tags[i] = language.MustParse(strings.ReplaceAll(string(l), "_", "-"))
	}
	return language.NewMatcher(tags)
}()

// Week start days by region, from CLDR supplemental data. Unlisted regions
// start on Monday.
//
//nolint:gochecknoglobals // Read-only lookup table.
var weekStarts = map[time.Weekday][]string{
	time.Sunday: {
		"AG", "AS", "BD", "BR", "BS", "BT", "BW", "BZ", "CA", "CN", "CO", "DM", "DO",
		"ET", "GT", "GU", "HK", "HN", "ID", "IL", "IN", "JM", "JP", "KE", "KH", "KR",
		"LA", "MH", "MM", "MO", "MT", "MX", "MZ", "NI", "NP", "PA", "PE", "PH", "PK",
		"PR", "PT", "PY", "SA", "SG", "SV", "TH", "TT", "TW", "UM", "US", "VE", "VI",
		"WS", "YE", "ZA", "ZW",
	},
	time.Saturday: {"AE", "AF", "BH", "DJ", "DZ", "EG", "IQ", "IR", "JO", "KW", "LY", "OM", "QA", "SD", "SY"},
	time.Friday:   {"MV"},
}

//nolint:gochecknoglobals // Read-only lookup table.
var regionWeekStart = func() map[string]time.Weekday {
	out := make(map[string]time.Weekday)
	for day, regions := range weekStarts {
		for _, region := range regions {
			out[region] = day
		}
	}
	return out
}()

// Weekend days by region, from CLDR supplemental data. Unlisted regions
// rest on Saturday and Sunday.
//
//nolint:gochecknoglobals // Read-only lookup table.
var regionWeekend = func() map[string][]time.Weekday {
	out := map[string][]time.Weekday{
		"AF": {time.Thursday, time.Friday},
		"IR": {time.Friday},
		"IN": {time.Sunday},
		"UG": {time.Sunday},
	}
	for _, region := range []string{"BH", "DZ", "EG", "IL", "IQ", "JO", "KW", "LY", "OM", "QA", "SA", "SD", "SY", "YE"} {
		out[region] = []time.Weekday{time.Friday, time.Saturday}
	}
	return out
}()

// ParseLocale parses a BCP 47 tag such as "en-US" or "de". A missing region
// is inferred from the language.
func ParseLocale(s string) (Locale, error) {
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return Locale{}, fmt.Errorf("parse locale %q: %w", s, err)
	}
	return localeFor(tag), nil
}

// MustLocale is ParseLocale that panics on error.
func MustLocale(s string) Locale {
	l, err := ParseLocale(s)
	if err != nil {
		panic(err)
	}
	return l
}

// DefaultLocale is en-US.
func DefaultLocale() Locale {
	return localeFor(language.AmericanEnglish)
}

func localeFor(tag language.Tag) Locale {
	region, _ := tag.Region()
	l := Locale{tag: tag, region: region.String(), weekStart: time.Monday}

	if day, ok := regionWeekStart[l.region]; ok {
		l.weekStart = day
	}
	rest, ok := regionWeekend[l.region]
	if !ok {
		rest = []time.Weekday{time.Saturday, time.Sunday}
	}
	for _, day := range rest {
		l.weekend[day] = true
	}

	l.format = monday.LocaleEnUS
	if _, index, confidence := formatMatcher.Match(tag); confidence != language.No {
		l.format = formatLocales[index]
	}
	return l
}

// String returns the BCP 47 tag.
func (l Locale) String() string {
	return l.tag.String()
}

// Region returns the ISO 3166 region code.
func (l Locale) Region() string {
	return l.region
}

// WeekStart returns the first day of the week.
func (l Locale) WeekStart() time.Weekday {
	return l.weekStart
}

// WithWeekStart returns a copy of l whose weeks start on day.
func (l Locale) WithWeekStart(day time.Weekday) Locale {
	l.weekStart = day
	return l
}

// IsWeekend reports whether day is a rest day.
func (l Locale) IsWeekend(day time.Weekday) bool {
	return l.weekend[day]
}

// FormatLocale returns the locale used for names and formatting.
func (l Locale) FormatLocale() monday.Locale {
	if l.format == "" {
		return monday.LocaleEnUS
	}
	return l.format
}

// reference is a Sunday.
//
//nolint:gochecknoglobals // Constant date.
var reference = NewDate(2024, time.January, 7)

// WeekdayNames returns the localized weekday names in display order,
// starting at the locale's week start. Short selects abbreviations.
func WeekdayNames(l Locale, short bool) []string {
	layout := "Monday"
	if short {
		layout = "Mon"
	}
	names := make([]string, 7)
	for i := range names {
		day := reference.AddDays(int(l.weekStart) + i)
		names[i] = monday.Format(day.Time(), layout, l.FormatLocale())
	}
	return names
}

// FormatMonth returns the localized month title, such as "March 2024".
func FormatMonth(year int, month time.Month, l Locale) string {
	return monday.Format(NewDate(year, month, 1).Time(), "January 2006", l.FormatLocale())
}

// FormatDate formats d with a Go time layout and localized names.
func FormatDate(d Date, layout string, l Locale) string {
	return monday.Format(d.Time(), layout, l.FormatLocale())
}

// ParseWeekday parses an English day name such as "monday" or "Sun".
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if len(name) >= 3 {
		for day := time.Sunday; day <= time.Saturday; day++ {
			full := strings.ToLower(day.String())
			if strings.HasPrefix(full, name) {
				return day, nil
			}
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
