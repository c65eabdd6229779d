package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/htmldoc"
)

type sanitizeFlags struct {
	tree bool
}

func newSanitizeCommand(globals *globalFlags) *cobra.Command {
	flags := &sanitizeFlags{}

	cmd := &cobra.Command{
		Use:   "sanitize [file]",
		Short: "Sanitize HTML against the configured allowlist",
		Long: `Sanitize an HTML document and print its canonical form.

The canonical form has scripts, event handlers and disallowed elements
removed and whitespace normalized. Sanitizing it again yields the same bytes.
Reads standard input when no file (or "-") is given.

Examples:
  docrender sanitize page.html          # Canonical HTML
  docrender sanitize --tree page.html   # Content tree the renderer sees`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSanitize(cmd, args, globals, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.tree, "tree", false, "Print the content tree instead of HTML")

	return cmd
}

func runSanitize(cmd *cobra.Command, args []string, globals *globalFlags, flags *sanitizeFlags) error {
	sess, err := loadSession(cmd, globals, nil)
	if err != nil {
		return err
	}
	policy, err := sess.htmlPolicy()
	if err != nil {
		return err
	}

	source, _, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	sink := diag.LogSink{Logger: sess.log()}
	result := htmldoc.NewSanitizer(policy, sink).Sanitize(string(source))

	out := cmd.OutOrStdout()
	if flags.tree {
		_, err = fmt.Fprint(out, content.Dump(result.Root))
	} else {
		_, err = fmt.Fprintln(out, result.Canonical)
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
