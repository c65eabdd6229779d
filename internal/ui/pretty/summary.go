package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/docrender/pkg/runner"
)

const (
	wordFile  = "file"
	wordFiles = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "Rendered 3 files (412 runs, 5 assets), 1 failed, 1 with broken assets".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.FilesDiscovered == 0 {
		return s.Dim.Render("No files to render.") + "\n"
	}

	head := fmt.Sprintf("Rendered %d %s", stats.FilesRendered, plural(stats.FilesRendered, wordFile, wordFiles))
	detail := fmt.Sprintf(" (%d runs, %d assets)", stats.Runs, stats.Assets)

	parts := []string{s.Success.Render(head) + s.Dim.Render(detail)}
	if stats.FilesFailed > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d failed", stats.FilesFailed)))
	}
	if stats.FilesWithAssetErrors > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d with broken assets", stats.FilesWithAssetErrors)))
	}
	return strings.Join(parts, ", ") + "\n"
}

// FormatFileHeader formats the heading printed before each document.
func (s *Styles) FormatFileHeader(path string) string {
	return s.FilePath.Render(path)
}
