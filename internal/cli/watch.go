package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/yaklabco/docrender/internal/logging"
	"github.com/yaklabco/docrender/pkg/fsutil"
	"github.com/yaklabco/docrender/pkg/render"
	"github.com/yaklabco/docrender/pkg/reporter"
	"github.com/yaklabco/docrender/pkg/runner"
)

// watchDebounce coalesces the burst of events editors emit for one save.
const watchDebounce = 100 * time.Millisecond

// watcher re-renders documents as they change on disk.
type watcher struct {
	session   *session
	runner    *runner.Runner
	renderer  *render.Renderer
	reporter  reporter.Reporter
	options   runner.Options
	files     []string
	snapshots map[string]*fsutil.Snapshot
}

func newWatcher(sess *session, r *runner.Runner, renderer *render.Renderer, rep reporter.Reporter, opts runner.Options) *watcher {
	return &watcher{
		session:   sess,
		runner:    r,
		renderer:  renderer,
		reporter:  rep,
		options:   opts,
		snapshots: make(map[string]*fsutil.Snapshot),
	}
}

// record remembers the files of result and their snapshots.
func (w *watcher) record(result *runner.Result) {
	if w.files == nil {
		w.files = result.Paths()
	}
	for _, f := range result.Files {
		if f.Snapshot != nil {
			w.snapshots[f.Path] = f.Snapshot
		} else {
			delete(w.snapshots, f.Path)
		}
	}
}

// unchanged reports whether path still matches its last snapshot, which
// filters out events from touches and metadata updates.
func (w *watcher) unchanged(ctx context.Context, path string) bool {
	snap, ok := w.snapshots[path]
	if !ok {
		return false
	}
	changed, err := fsutil.Changed(ctx, snap)
	return err == nil && !changed
}

// Run blocks until ctx is cancelled.
func (w *watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range watchDirs(w.files, w.options) {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	logger := logging.FromContext(ctx)
	logger.Info("watching for changes", logging.FieldFiles, len(w.files))

	var pending []string
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			pending = append(pending, ev.Name)
			timer.Reset(watchDebounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logging.FieldError, err)

		case <-timer.C:
			changed := lo.Uniq(pending)
			pending = pending[:0]
			if err := w.refresh(ctx, changed); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Error("re-render failed", logging.FieldError, err)
			}
		}
	}
}

// refresh re-discovers documents and re-renders the ones affected by
// changed.
func (w *watcher) refresh(ctx context.Context, changed []string) error {
	files, err := runner.Discover(ctx, w.options)
	if err != nil {
		return err
	}
	w.files = files

	targets, assetsChanged := planRefresh(changed, files, w.options.Extensions)
	if assetsChanged {
		// Cached sequences still reference the old asset bytes.
		w.renderer.ClearCaches()
	} else {
		targets = lo.Reject(targets, func(path string, _ int) bool {
			return w.unchanged(ctx, path)
		})
	}
	if len(targets) == 0 {
		return nil
	}

	logging.FromContext(ctx).Debug("re-rendering", logging.FieldPaths, targets)

	result, err := w.runner.RunFiles(ctx, targets, w.options)
	if err != nil {
		return err
	}
	w.record(result)
	_, err = w.reporter.Report(ctx, result)
	return err
}

// planRefresh decides which documents to re-render. A changed document is
// re-rendered on its own; any other changed file may be an asset, so every
// document is re-rendered.
func planRefresh(changed, files, extensions []string) ([]string, bool) {
	assetsChanged := slices.ContainsFunc(changed, func(path string) bool {
		return !hasExtension(path, extensions)
	})
	if assetsChanged {
		return files, true
	}
	return lo.Filter(files, func(file string, _ int) bool {
		return slices.Contains(changed, file)
	}), false
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(extensions, ext)
}

// watchDirs lists the directories to watch: those of the input paths and
// of every discovered document.
func watchDirs(files []string, opts runner.Options) []string {
	dirs := lo.Map(files, func(file string, _ int) string {
		return filepath.Dir(file)
	})
	for _, path := range opts.Paths {
		if !filepath.IsAbs(path) {
			path = filepath.Join(opts.WorkingDir, path)
		}
		if hasExtension(path, opts.Extensions) {
			dirs = append(dirs, filepath.Dir(path))
		} else {
			dirs = append(dirs, path)
		}
	}
	if len(opts.Paths) == 0 && opts.WorkingDir != "" {
		dirs = append(dirs, opts.WorkingDir)
	}
	dirs = lo.Uniq(dirs)
	slices.Sort(dirs)
	return dirs
}
