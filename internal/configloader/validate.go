package configloader

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/yaklabco/docrender/pkg/calendar"
	"github.com/yaklabco/docrender/pkg/config"
	"github.com/yaklabco/docrender/pkg/markdown"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "assets.density").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// knownFlavors lists valid flavor values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFlavors = map[config.Flavor]bool{
	config.FlavorCommonMark: true,
	config.FlavorGFM:        true,
}

// knownFormats lists valid output format values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText: true,
	config.FormatANSI: true,
	config.FormatJSON: true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Markdown.Flavor != "" && !knownFlavors[cfg.Markdown.Flavor] {
		result.fail("markdown.flavor", cfg.Markdown.Flavor,
			"invalid flavor %q; must be one of: commonmark, gfm", cfg.Markdown.Flavor)
	}
	if cfg.Markdown.Lists != "" {
		if _, err := markdown.ParseListPolicy(cfg.Markdown.Lists); err != nil {
			result.fail("markdown.lists", cfg.Markdown.Lists, "%v", err)
		}
	}
	if cfg.Format != "" && !knownFormats[cfg.Format] {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, ansi, json", cfg.Format)
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}
	if cfg.Layout.BaseSize < 0 {
		result.fail("layout.base_size", cfg.Layout.BaseSize, "base size must be positive")
	}
	if cfg.Assets.Density < 0 {
		result.fail("assets.density", cfg.Assets.Density, "density must be positive")
	}
	if cfg.Assets.MaxImageSide < 0 || cfg.Assets.MaxBytes < 0 {
		result.fail("assets", nil, "limits must be positive")
	}

	validateCalendar(cfg, result)
	validateIgnorePatterns(cfg, result)

	return result
}

func validateCalendar(cfg *config.Config, result *ValidationResult) {
	if cfg.Calendar.Locale != "" {
		if _, err := calendar.ParseLocale(cfg.Calendar.Locale); err != nil {
			result.fail("calendar.locale", cfg.Calendar.Locale, "%v", err)
		}
	}
	if cfg.Calendar.WeekStart != "" {
		if _, err := calendar.ParseWeekday(cfg.Calendar.WeekStart); err != nil {
			result.fail("calendar.week_start", cfg.Calendar.WeekStart, "%v", err)
		}
	}
}

// validateIgnorePatterns checks that ignore patterns compile.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)
	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}
	return result
}
