package runner

import (
	"time"

	"github.com/yaklabco/docrender/pkg/fsutil"
	"github.com/yaklabco/docrender/pkg/render"
	"github.com/yaklabco/docrender/pkg/runs"
)

// FileOutcome is the result of rendering one file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Format is the front-end chosen from the file extension.
	Format render.Format

	// Sequence is the rendered document. It is set even when Error reports
	// asset failures, since broken assets are replaced by placeholders.
	Sequence *runs.Sequence

	// Error is set if the file could not be read or rendered, or if any of
	// its assets failed.
	Error error

	// Elapsed is the time spent rendering.
	Elapsed time.Duration

	// Snapshot records the file as it was read; nil if it could not be.
	Snapshot *fsutil.Snapshot
}

// Failed reports whether the file produced no output at all.
func (o FileOutcome) Failed() bool {
	return o.Sequence == nil
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesRendered is the number of files that produced a sequence.
	FilesRendered int

	// FilesFailed is the number of files that produced no sequence.
	FilesFailed int

	// FilesWithAssetErrors counts rendered files with broken assets.
	FilesWithAssetErrors int

	// Runs is the total number of styled runs across all files.
	Runs int

	// Assets is the total number of inline assets across all files.
	Assets int
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file, ordered by path.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasFailures reports whether any file failed or had broken assets.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesFailed > 0 || r.Stats.FilesWithAssetErrors > 0
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Failed() {
		r.Stats.FilesFailed++
		return
	}

	r.Stats.FilesRendered++
	if outcome.Error != nil {
		r.Stats.FilesWithAssetErrors++
	}
	r.Stats.Runs += len(outcome.Sequence.Runs())
	r.Stats.Assets += len(outcome.Sequence.Assets())
}

// Paths returns the processed file paths in result order.
func (r *Result) Paths() []string {
	if r == nil {
		return nil
	}
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}
