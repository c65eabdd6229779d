package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/yaklabco/docrender/pkg/runner"
	"github.com/yaklabco/docrender/pkg/runs"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path      string         `json:"path"`
	Format    string         `json:"format"`
	Digest    string         `json:"digest,omitempty"`
	Text      string         `json:"text,omitempty"`
	ElapsedMS float64        `json:"elapsedMs"`
	Sequence  *runs.Sequence `json:"sequence,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesDiscovered      int `json:"filesDiscovered"`
	FilesRendered        int `json:"filesRendered"`
	FilesFailed          int `json:"filesFailed"`
	FilesWithAssetErrors int `json:"filesWithAssetErrors"`
	Runs                 int `json:"runs"`
	Assets               int `json:"assets"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return countErrors(result), nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: "1.0.0",
		Files:   make([]JSONFileResult, 0),
	}

	if result == nil {
		return output
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesDiscovered:      stats.FilesDiscovered,
		FilesRendered:        stats.FilesRendered,
		FilesFailed:          stats.FilesFailed,
		FilesWithAssetErrors: stats.FilesWithAssetErrors,
		Runs:                 stats.Runs,
		Assets:               stats.Assets,
	}

	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Path:      r.opts.displayPath(file.Path),
			Format:    file.Format.String(),
			ElapsedMS: float64(file.Elapsed.Microseconds()) / 1000,
		}
		if file.Sequence != nil {
			fileResult.Digest = strconv.FormatUint(file.Sequence.Digest(), 16)
			fileResult.Text = file.Sequence.Text()
			if !r.opts.Compact {
				fileResult.Sequence = file.Sequence
			}
		}
		if file.Error != nil {
			fileResult.Error = file.Error.Error()
		}
		output.Files = append(output.Files, fileResult)
	}

	return output
}
