package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

func newThemesCommand(globals *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available themes",
		Long: `List the themes a document can be rendered with: the built-in themes,
every chroma style, and the themes defined in theme.files. The configured
theme is marked with an asterisk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := loadSession(cmd, globals, nil)
			if err != nil {
				return err
			}
			registry, err := sess.themes()
			if err != nil {
				return err
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			defer w.Flush()

			current := registry.Lookup(sess.config.Theme.Name).Name()
			for _, name := range registry.Names() {
				marker := " "
				if name == current {
					marker = "*"
				}
				if _, err := fmt.Fprintf(w, "%s %s\n", marker, name); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}
			return nil
		},
	}
}
