// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// defaultTermWidth is used when the writer is not a terminal.
const defaultTermWidth = 80

// Styles contains the styles for CLI chrome around rendered documents.
type Styles struct {
	renderer *lipgloss.Renderer

	// Status styles
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style

	// File headers
	FilePath lipgloss.Style
	Header   lipgloss.Style

	// Document chrome
	Marker   lipgloss.Style
	Quote    lipgloss.Style
	Rule     lipgloss.Style
	Asset    lipgloss.Style
	Broken   lipgloss.Style
	Language lipgloss.Style

	// Calendar
	Weekday  lipgloss.Style
	Weekend  lipgloss.Style
	Outside  lipgloss.Style
	Today    lipgloss.Style
	WeekNum  lipgloss.Style
	MonthTop lipgloss.Style

	// Misc
	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles creates a new Styles with the given color mode. The styles carry
// their own renderer so that colors do not depend on where output goes.
func NewStyles(colorEnabled bool) *Styles {
	r := lipgloss.NewRenderer(io.Discard)
	if colorEnabled {
		r.SetColorProfile(termenv.TrueColor)
		return newColorStyles(r)
	}
	r.SetColorProfile(termenv.Ascii)
	return newNoColorStyles(r)
}

// newColorStyles creates styles with ANSI 256 colors.
func newColorStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		renderer: r,

		Error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failure: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),

		FilePath: r.NewStyle().Bold(true).Underline(true),
		Header:   r.NewStyle().Foreground(lipgloss.Color("8")),

		Marker:   r.NewStyle().Foreground(lipgloss.Color("12")),
		Quote:    r.NewStyle().Foreground(lipgloss.Color("8")),
		Rule:     r.NewStyle().Foreground(lipgloss.Color("8")),
		Asset:    r.NewStyle().Foreground(lipgloss.Color("14")).Italic(true),
		Broken:   r.NewStyle().Foreground(lipgloss.Color("9")).Italic(true),
		Language: r.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),

		Weekday:  r.NewStyle().Bold(true),
		Weekend:  r.NewStyle().Foreground(lipgloss.Color("9")),
		Outside:  r.NewStyle().Foreground(lipgloss.Color("8")),
		Today:    r.NewStyle().Reverse(true),
		WeekNum:  r.NewStyle().Foreground(lipgloss.Color("8")),
		MonthTop: r.NewStyle().Bold(true),

		Dim:  r.NewStyle().Foreground(lipgloss.Color("8")),
		Bold: r.NewStyle().Bold(true),
	}
}

// newNoColorStyles creates styles with no formatting.
func newNoColorStyles(r *lipgloss.Renderer) *Styles {
	plain := r.NewStyle()
	return &Styles{
		renderer: r,
		Error:    plain,
		Warning:  plain,
		Success:  plain,
		Failure:  plain,
		FilePath: plain,
		Header:   plain,
		Marker:   plain,
		Quote:    plain,
		Rule:     plain,
		Asset:    plain,
		Broken:   plain,
		Language: plain,
		Weekday:  plain,
		Weekend:  plain,
		Outside:  plain,
		Today:    plain,
		WeekNum:  plain,
		MonthTop: plain,
		Dim:      plain,
		Bold:     plain,
	}
}

// NewStyle returns an empty style bound to the same renderer.
func (s *Styles) NewStyle() lipgloss.Style {
	return s.renderer.NewStyle()
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		// https://no-color.org/
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

// TerminalWidth returns the column count of writer, or a default when it is
// not a terminal.
func TerminalWidth(writer io.Writer) int {
	if f, ok := writer.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}
