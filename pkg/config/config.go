// Package config defines core configuration types for docrender.
// These types are pure data structures; discovery and merging live in
// internal/configloader.
package config

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// OutputFormat specifies how the CLI prints rendered documents.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatANSI OutputFormat = "ansi"
	FormatJSON OutputFormat = "json"
)

// MarkdownConfig controls the Markdown front-end.
type MarkdownConfig struct {
	// Flavor is "gfm" (default) or "commonmark".
	Flavor Flavor `yaml:"flavor"`

	// Lists is the list splitting policy: "split-on-marker" or "split-on-kind".
	Lists string `yaml:"lists"`
}

// HTMLConfig controls sanitization of HTML input.
type HTMLConfig struct {
	// Policy is a path to a YAML allowlist. Empty selects the built-in policy.
	Policy string `yaml:"policy"`
}

// ThemeConfig selects and extends the theme set.
type ThemeConfig struct {
	// Name is the theme used for rendering.
	Name string `yaml:"name"`

	// Files are YAML theme files registered on top of the built-in themes.
	Files []string `yaml:"files"`
}

// HighlightConfig controls code highlighting.
type HighlightConfig struct {
	// DetectLanguage classifies untagged code blocks by content.
	DetectLanguage *bool `yaml:"detect_language"`
}

// LayoutConfig controls run measurement.
type LayoutConfig struct {
	// BaseSize is the body font size in logical units.
	BaseSize float64 `yaml:"base_size"`
}

// AssetsConfig controls image resolution.
type AssetsConfig struct {
	// Root is the directory image paths are resolved against. Empty means
	// the working directory.
	Root string `yaml:"root"`

	// Density is the pixel density used when rasterizing icons.
	Density float64 `yaml:"density"`

	// MaxImageSide bounds the width and height of raster images.
	MaxImageSide int `yaml:"max_image_side"`

	// MaxBytes bounds the size of any asset file.
	MaxBytes int64 `yaml:"max_bytes"`
}

// CalendarConfig controls the calendar command.
type CalendarConfig struct {
	// Locale is a BCP 47 tag such as "en-US".
	Locale string `yaml:"locale"`

	// WeekStart overrides the locale's first weekday ("monday", "sunday", ...).
	WeekStart string `yaml:"week_start"`

	// SixWeeks always lays out six rows.
	SixWeeks *bool `yaml:"six_weeks"`
}

// Config is the root configuration structure for docrender.
type Config struct {
	Markdown  MarkdownConfig  `yaml:"markdown"`
	HTML      HTMLConfig      `yaml:"html"`
	Theme     ThemeConfig     `yaml:"theme"`
	Highlight HighlightConfig `yaml:"highlight"`
	Layout    LayoutConfig    `yaml:"layout"`
	Assets    AssetsConfig    `yaml:"assets"`
	Calendar  CalendarConfig  `yaml:"calendar"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `yaml:"ignore"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// Watch re-renders files when they change.
	Watch bool `yaml:"-"`
}

// Default values.
const (
	DefaultTheme        = "default"
	DefaultListPolicy   = "split-on-marker"
	DefaultBaseSize     = 16
	DefaultDensity      = 2
	DefaultMaxImageSide = 4096
	DefaultMaxBytes     = 16 << 20
	DefaultLocale       = "en-US"
)

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Markdown: MarkdownConfig{
			Flavor: FlavorGFM,
			Lists:  DefaultListPolicy,
		},
		Theme:     ThemeConfig{Name: DefaultTheme},
		Highlight: HighlightConfig{DetectLanguage: boolPtr(false)},
		Layout:    LayoutConfig{BaseSize: DefaultBaseSize},
		Assets: AssetsConfig{
			Density:      DefaultDensity,
			MaxImageSide: DefaultMaxImageSide,
			MaxBytes:     DefaultMaxBytes,
		},
		Calendar: CalendarConfig{Locale: DefaultLocale, SixWeeks: boolPtr(false)},
		Format:   FormatText,
		Jobs:     0, // 0 means use GOMAXPROCS
	}
}

// DetectLanguage reports the effective language detection setting.
func (c *Config) DetectLanguage() bool {
	return c != nil && c.Highlight.DetectLanguage != nil && *c.Highlight.DetectLanguage
}

// SixWeeks reports the effective calendar row setting.
func (c *Config) SixWeeks() bool {
	return c != nil && c.Calendar.SixWeeks != nil && *c.Calendar.SixWeeks
}

func boolPtr(b bool) *bool {
	return &b
}
