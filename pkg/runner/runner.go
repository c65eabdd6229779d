package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/yaklabco/docrender/pkg/fsutil"
	"github.com/yaklabco/docrender/pkg/render"
	"github.com/yaklabco/docrender/pkg/runs"
)

// Renderer turns one document into a run sequence. *render.Renderer
// satisfies it.
type Renderer interface {
	Render(source string, format render.Format, theme string) (*runs.Sequence, error)
}

// Runner orchestrates multi-file rendering.
type Runner struct {
	renderer Renderer
}

// New creates a new Runner around renderer.
func New(renderer Renderer) *Runner {
	return &Runner{renderer: renderer}
}

// Run discovers files under opts.Paths and renders them concurrently.
// Outcomes are returned in path order regardless of completion order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.RunFiles(ctx, files, opts)
}

// RunFiles renders an already discovered list of files. Watch mode uses it
// to re-render only what changed.
func (r *Runner) RunFiles(ctx context.Context, files []string, opts Options) (*Result, error) {
	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(files) {
		jobs = len(files)
	}

	workCh := make(chan int)
	outcomes := make([]*FileOutcome, len(files))

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				outcome := r.renderFile(ctx, files[i], opts.Theme)
				outcomes[i] = &outcome
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case workCh <- i:
		}
	}
	close(workCh)
	wg.Wait()

	for _, outcome := range outcomes {
		if outcome != nil {
			result.accumulate(*outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

func (r *Runner) renderFile(ctx context.Context, path, theme string) FileOutcome {
	outcome := FileOutcome{Path: path, Format: render.FormatForPath(path)}

	data, snap, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	outcome.Snapshot = snap

	start := time.Now()
	outcome.Sequence, outcome.Error = r.renderer.Render(string(data), outcome.Format, theme)
	outcome.Elapsed = time.Since(start)
	return outcome
}
