package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/docrender/internal/logging"
	"github.com/yaklabco/docrender/pkg/config"
	"github.com/yaklabco/docrender/pkg/reporter"
	"github.com/yaklabco/docrender/pkg/runner"
)

// ErrRenderFailed is returned when at least one document could not be
// rendered or had broken assets.
var ErrRenderFailed = errors.New("render failed")

type renderFlags struct {
	format  string
	theme   string
	jobs    int
	ignore  []string
	include []string
	watch   bool
	compact bool
	summary bool
	width   int
}

func newRenderCommand(globals *globalFlags) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [paths...]",
		Short: "Render Markdown and HTML documents",
		Long:  renderLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, globals, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format: text, ansi, json")
	cmd.Flags().StringVarP(&flags.theme, "theme", "t", "", "Theme name (see 'docrender themes')")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "Parallel workers (0 = number of CPUs)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "Glob patterns of files to skip")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "Only render files matching these globs")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "Re-render files when they change")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "Omit run sequences from JSON output")
	cmd.Flags().BoolVar(&flags.summary, "summary", true, "Print a summary after several files")
	cmd.Flags().IntVar(&flags.width, "width", 0, "Wrap width for ansi output (0 = terminal width)")

	return cmd
}

const renderLongDescription = `Render Markdown and HTML documents.

By default, renders every .md, .markdown, .html and .htm file below the
current directory. Files ending in .html or .htm are sanitized as HTML; all
other files are parsed as Markdown.

Examples:
  docrender render README.md               # Plain text of one document
  docrender render --format ansi docs/     # Styled terminal preview
  docrender render --format json page.html # Run sequence as JSON
  docrender render --watch docs/           # Re-render on every change`

func runRender(cmd *cobra.Command, args []string, globals *globalFlags, flags *renderFlags) error {
	cliCfg := &config.Config{
		Format: config.OutputFormat(flags.format),
		Jobs:   flags.jobs,
		Watch:  flags.watch,
	}
	if cmd.Flags().Changed("theme") {
		cliCfg.Theme.Name = flags.theme
	}
	if cmd.Flags().Changed("ignore") {
		cliCfg.Ignore = flags.ignore
	}

	sess, err := loadSession(cmd, globals, cliCfg)
	if err != nil {
		return err
	}
	cfg := sess.config

	renderer, err := sess.renderer()
	if err != nil {
		return err
	}

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return errors.Join(ErrConfig, err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      format,
		Color:       globals.color,
		Width:       flags.width,
		ShowSummary: flags.summary,
		Compact:     flags.compact,
		WorkingDir:  sess.workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	runOpts := runner.Options{
		Paths:        args,
		WorkingDir:   sess.workDir,
		Extensions:   runner.DefaultExtensions(),
		IncludeGlobs: flags.include,
		ExcludeGlobs: cfg.Ignore,
		Jobs:         cfg.Jobs,
		Theme:        cfg.Theme.Name,
	}

	sess.log().Debug("starting render",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldFormat, format,
	)

	docRunner := runner.New(renderer)
	start := time.Now()
	result, err := docRunner.Run(sess.ctx, runOpts)
	if err != nil {
		return fmt.Errorf("render run failed: %w", err)
	}

	sess.log().Debug("render finished",
		logging.FieldFilesDiscovered, result.Stats.FilesDiscovered,
		logging.FieldFilesRendered, result.Stats.FilesRendered,
		logging.FieldFilesFailed, result.Stats.FilesFailed,
		logging.FieldElapsed, time.Since(start),
	)

	failed, err := rep.Report(sess.ctx, result)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if cfg.Watch {
		w := newWatcher(sess, docRunner, renderer, rep, runOpts)
		w.record(result)
		return w.Run(sess.ctx)
	}

	if failed > 0 {
		return ErrRenderFailed
	}
	return nil
}
