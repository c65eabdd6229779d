// Package reporter writes rendered documents in text, ANSI or JSON form.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/docrender/pkg/runner"
)

// Reporter formats and writes render results.
type Reporter interface {
	// Report writes formatted output for the given result.
	// It returns the number of files with errors and any write error.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatANSI:
		return NewTextReporter(opts, true), nil
	case FormatText:
		return NewTextReporter(opts, false), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// countErrors returns the number of outcomes carrying an error.
func countErrors(result *runner.Result) int {
	if result == nil {
		return 0
	}
	n := 0
	for _, f := range result.Files {
		if f.Error != nil {
			n++
		}
	}
	return n
}
