package cli

import (
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yaklabco/docrender/internal/ui/pretty"
)

// HelpStyles contains Lipgloss styles for command help formatting.
type HelpStyles struct {
	Command lipgloss.Style
	Heading lipgloss.Style
	Name    lipgloss.Style
	Flag    lipgloss.Style
	Dim     lipgloss.Style
}

// NewHelpStyles derives help styles from the document palette so help and
// previews share one renderer and color profile.
func NewHelpStyles(colorEnabled bool) *HelpStyles {
	s := pretty.NewStyles(colorEnabled)
	if !colorEnabled {
		plain := s.NewStyle()
		return &HelpStyles{Command: plain, Heading: plain, Name: plain, Flag: plain, Dim: plain}
	}
	return &HelpStyles{
		Command: s.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Heading: s.Bold.Foreground(lipgloss.Color("11")),
		Name:    s.Marker.Foreground(lipgloss.Color("10")),
		Flag:    s.Marker,
		Dim:     s.Dim,
	}
}

const helpTemplate = `{{with (or .Long .Short)}}{{ . | trimRight }}

{{end}}{{ heading "Usage:" }}
{{- if .Runnable}}
  {{ command .UseLine }}{{end}}
{{- if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}
{{- if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ name (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}
{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags.FlagUsages }}
{{- end}}
{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags.FlagUsages }}
{{- end}}
{{- if .HasAvailableSubCommands}}

Run "{{ command (print .CommandPath " [command] --help") }}" for details on a command.
{{- end}}
`

// flagLine splits one pflag usage line into indent, flag names and type,
// and description.
//
//nolint:gochecknoglobals // Compiled once.
var flagLine = regexp.MustCompile(`^(\s*)(\S.*?)\s{2,}(\S.*)$`)

// HelpFormatter renders cobra help through helpTemplate. Colors are decided
// when help is printed, after --color has been parsed.
type HelpFormatter struct {
	colorMode *string
}

// NewHelpFormatter creates a formatter that reads the color mode from
// colorMode at print time.
func NewHelpFormatter(colorMode *string) *HelpFormatter {
	return &HelpFormatter{colorMode: colorMode}
}

// ApplyToCommand installs the help and usage functions on cmd. Subcommands
// inherit them.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	cmd.SetHelpFunc(func(command *cobra.Command, _ []string) {
		if err := h.write(command.OutOrStdout(), command); err != nil {
			command.PrintErrln(err)
		}
	})
	cmd.SetUsageFunc(func(command *cobra.Command) error {
		return h.write(command.OutOrStderr(), command)
	})
}

func (h *HelpFormatter) write(w io.Writer, cmd *cobra.Command) error {
	mode := "auto"
	if h.colorMode != nil && *h.colorMode != "" {
		mode = *h.colorMode
	}
	styles := NewHelpStyles(pretty.IsColorEnabled(mode, w))

	tmpl := template.Must(template.New("help").Funcs(template.FuncMap{
		"heading":   styles.Heading.Render,
		"command":   styles.Command.Render,
		"name":      styles.Name.Render,
		"flags":     func(usages string) string { return styleFlags(styles, usages) },
		"rpad":      rpad,
		"trimRight": trimTrailingWhitespace,
	}).Parse(helpTemplate))

	return tmpl.Execute(w, cmd)
}

// styleFlags colors the flag names and dims the value types of a pflag
// usage block. Lines it cannot split pass through unchanged.
func styleFlags(styles *HelpStyles, usages string) string {
	lines := strings.Split(strings.TrimRight(usages, "\n"), "\n")
	for i, line := range lines {
		m := flagLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		names := strings.Fields(m[2])
		for j, tok := range names {
			switch {
			case strings.HasPrefix(tok, "-"):
				clean := strings.TrimSuffix(tok, ",")
				names[j] = styles.Flag.Render(clean) + tok[len(clean):]
			default:
				names[j] = styles.Dim.Render(tok)
			}
		}
		lines[i] = m[1] + strings.Join(names, " ") + "   " + m[3]
	}
	return strings.Join(lines, "\n")
}

func rpad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func trimTrailingWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
