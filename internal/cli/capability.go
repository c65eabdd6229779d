package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docrender/pkg/render"
)

// ErrNotNative is returned by capability --strict for documents that need a
// web engine.
var ErrNotNative = errors.New("document needs a web engine")

type capabilityFlags struct {
	format string
	json   bool
	strict bool
}

func newCapabilityCommand() *cobra.Command {
	flags := &capabilityFlags{}

	cmd := &cobra.Command{
		Use:   "capability [file]",
		Short: "Check whether a document renders without a web engine",
		Long: `Inspect a document for content the native pipeline drops: scripts,
event handlers, javascript: URLs, frames, plugins and form controls.
Markdown is inspected through its embedded HTML. Reads standard input when
no file (or "-") is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapability(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "input", "", "Input format: markdown or html (default: from extension)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Exit non-zero unless the document is native")

	return cmd
}

func runCapability(cmd *cobra.Command, args []string, flags *capabilityFlags) error {
	source, name, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	format := render.FormatForPath(name)
	if flags.format != "" {
		if format, err = render.ParseFormat(flags.format); err != nil {
			return errors.Join(ErrUsage, err)
		}
	}

	capability := render.CanRenderNatively(string(source), format)

	out := cmd.OutOrStdout()
	if flags.json {
		if err := json.NewEncoder(out).Encode(capability); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	} else {
		line := "native"
		if !capability.Native {
			line = "needs a web engine: " + strings.Join(capability.Unsupported, ", ")
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	if flags.strict && !capability.Native {
		return ErrNotNative
	}
	return nil
}
