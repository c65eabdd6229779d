package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/docrender/internal/ui/pretty"
	"github.com/yaklabco/docrender/pkg/runner"
)

// TextReporter prints documents as plain text, or as styled terminal
// output in ANSI mode.
type TextReporter struct {
	opts    Options
	ansi    bool
	styles  *pretty.Styles
	printer *pretty.DocumentPrinter
	bw      *bufio.Writer
}

// NewTextReporter creates a text reporter. With ansi set, runs keep their
// theme colors unless Color is "never", and the document is wrapped to the
// terminal width.
func NewTextReporter(opts Options, ansi bool) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	if ansi {
		colorEnabled = opts.Color != "never"
	}
	styles := pretty.NewStyles(colorEnabled)

	width := opts.Width
	if width == 0 && ansi {
		width = pretty.TerminalWidth(opts.Writer)
	}

	return &TextReporter{
		opts:    opts,
		ansi:    ansi,
		styles:  styles,
		printer: pretty.NewDocumentPrinter(styles, width),
		bw:      bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(runner.Stats{}))
		}
		return 0, nil
	}

	headers := len(result.Files) > 1
	for i, file := range result.Files {
		if i > 0 {
			fmt.Fprintln(r.bw)
		}
		path := r.opts.displayPath(file.Path)
		if headers {
			fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path))
		}

		if file.Sequence != nil {
			if r.ansi {
				fmt.Fprintln(r.bw, r.printer.Format(file.Sequence))
			} else {
				fmt.Fprintln(r.bw, file.Sequence.Text())
			}
		}

		if file.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
		}
	}

	if r.opts.ShowSummary && headers {
		fmt.Fprintln(r.bw)
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return countErrors(result), nil
}
