package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/docrender/internal/ui/pretty"
	"github.com/yaklabco/docrender/pkg/runner"
)

func TestFormatSummaryOneLine(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	tests := []struct {
		name  string
		stats runner.Stats
		want  string
	}{
		{name: "nothing", want: "No files to render.\n"},
		{
			name:  "one file",
			stats: runner.Stats{FilesDiscovered: 1, FilesRendered: 1, Runs: 4, Assets: 1},
			want:  "Rendered 1 file (4 runs, 1 assets)\n",
		},
		{
			name: "failures",
			stats: runner.Stats{
				FilesDiscovered: 3, FilesRendered: 2, FilesFailed: 1, FilesWithAssetErrors: 1, Runs: 10,
			},
			want: "Rendered 2 files (10 runs, 0 assets), 1 failed, 1 with broken assets\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, styles.FormatSummaryOneLine(tt.stats))
		})
	}

	assert.Equal(t, "docs/a.md", styles.FormatFileHeader("docs/a.md"))
}
