// Package cli provides the Cobra command structure for docrender.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docrender/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	debug      bool
	configPath string
	noConfig   bool
	color      string
}

// NewRootCommand creates the root docrender command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	globals := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "docrender",
		Short: "Render Markdown and HTML into styled text runs",
		Long: `docrender renders Markdown and sanitized HTML into the styled run sequences
a native host paints: text runs with resolved fonts and colors, highlighted
code, tables and rasterized vector images.

The render command previews documents in the terminal or dumps their run
sequences as JSON. The remaining commands expose the individual pipeline
stages: sanitizing, highlighting, rasterizing and the calendar grid.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if globals.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Join(ErrUsage, err)
	})

	rootCmd.PersistentFlags().BoolVar(&globals.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globals.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&globals.noConfig, "no-config", false,
		"ignore configuration files and DOCRENDER_* variables")
	rootCmd.PersistentFlags().StringVar(&globals.color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newRenderCommand(globals))
	rootCmd.AddCommand(newSanitizeCommand(globals))
	rootCmd.AddCommand(newHighlightCommand(globals))
	rootCmd.AddCommand(newRasterizeCommand(globals))
	rootCmd.AddCommand(newCalendarCommand(globals))
	rootCmd.AddCommand(newThemesCommand(globals))
	rootCmd.AddCommand(newCapabilityCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	NewHelpFormatter(&globals.color).ApplyToCommand(rootCmd)

	return rootCmd
}
