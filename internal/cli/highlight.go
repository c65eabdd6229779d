package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docrender/internal/logging"
	"github.com/yaklabco/docrender/internal/ui/pretty"
	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/highlight"
	"github.com/yaklabco/docrender/pkg/langdetect"
)

type highlightFlags struct {
	language string
	theme    string
	json     bool
}

func newHighlightCommand(globals *globalFlags) *cobra.Command {
	flags := &highlightFlags{}

	cmd := &cobra.Command{
		Use:   "highlight [file]",
		Short: "Highlight source code with a theme",
		Long: `Split source code into classified runs and style them with a theme.

The language is taken from --language, then from the file extension, and
is otherwise detected from the content. Reads standard input when no file
(or "-") is given.

Examples:
  docrender highlight main.go                   # Styled preview
  docrender highlight -l python --json tool.py  # Runs as JSON
  cat script | docrender highlight -t dark`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHighlight(cmd, args, globals, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.language, "language", "l", "", "Language name or alias")
	cmd.Flags().StringVarP(&flags.theme, "theme", "t", "", "Theme name")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print runs as JSON")

	return cmd
}

func runHighlight(cmd *cobra.Command, args []string, globals *globalFlags, flags *highlightFlags) error {
	sess, err := loadSession(cmd, globals, nil)
	if err != nil {
		return err
	}
	registry, err := sess.themes()
	if err != nil {
		return err
	}

	source, name, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	language := flags.language
	if language == "" {
		language = languageFromName(name)
	}
	if language == "" {
		language = langdetect.Detect(source)
		sess.log().Debug("detected language", logging.FieldLanguage, language)
	}

	themeName := sess.config.Theme.Name
	if flags.theme != "" {
		themeName = flags.theme
	}
	theme, ok := registry.LookupOK(themeName)
	if !ok {
		sess.log().Warn("unknown theme, using default", logging.FieldTheme, themeName)
	}

	highlighter := highlight.New(highlight.WithSink(diag.LogSink{Logger: sess.log()}))
	runs := highlighter.Highlight(string(source), language, theme)

	out := cmd.OutOrStdout()
	if flags.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(runs); err != nil {
			return fmt.Errorf("encode runs: %w", err)
		}
		return nil
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(globals.color, out))
	code := styles.FormatCode(runs)
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if _, err := fmt.Fprint(out, code); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// languageFromName maps a file extension onto a language tag. Unknown or
// missing extensions yield "".
func languageFromName(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" || !highlight.Supported(ext) {
		return ""
	}
	return ext
}
