package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/internal/ui/pretty"
	"github.com/yaklabco/docrender/pkg/render"
	"github.com/yaklabco/docrender/pkg/runs"
)

func renderMarkdown(t *testing.T, source string) *runs.Sequence {
	t.Helper()

	seq, _ := render.New().RenderMarkdown(source)
	require.NotNil(t, seq)
	return seq
}

func TestDocumentPrinter_Plain(t *testing.T) {
	t.Parallel()

	printer := pretty.NewDocumentPrinter(pretty.NewStyles(false), 0)

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "heading and paragraph", source: "# Title\n\nSome **bold** text.\n", want: "Title\n\nSome bold text."},
		{name: "tight list", source: "- one\n- two\n", want: "• one\n• two"},
		{name: "ordered list", source: "3. three\n4. four\n", want: "3. three\n4. four"},
		{name: "quote", source: "> quoted\n", want: "│ quoted"},
		{name: "tasks", source: "- [ ] todo\n- [x] done\n", want: "☐ todo\n☑ done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, printer.Format(renderMarkdown(t, tt.source)))
		})
	}
}

func TestDocumentPrinter_Blocks(t *testing.T) {
	t.Parallel()

	printer := pretty.NewDocumentPrinter(pretty.NewStyles(false), 20)
	out := printer.Format(renderMarkdown(t, "```go\nx := 1\n```\n\n---\n\n![logo](missing.svg)\n"))

	assert.Contains(t, out, "go\nx := 1")
	assert.Contains(t, out, strings.Repeat("─", 20))
	assert.Contains(t, out, "[✗ logo]")
}

func TestDocumentPrinter_Table(t *testing.T) {
	t.Parallel()

	printer := pretty.NewDocumentPrinter(pretty.NewStyles(false), 0)
	out := printer.Format(renderMarkdown(t, "| name | n |\n|------|--:|\n| a | 1 |\n| b | 22 |\n"))

	for _, want := range []string{"name", "a", "22", "│", "─"} {
		assert.Contains(t, out, want)
	}
	lines := strings.Split(out, "\n")
	assert.GreaterOrEqual(t, len(lines), 5)
}

func TestDocumentPrinter_Color(t *testing.T) {
	t.Parallel()

	printer := pretty.NewDocumentPrinter(pretty.NewStyles(true), 0)
	out := printer.Format(renderMarkdown(t, "Some **bold** and [a link](https://example.com).\n"))

	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "a link")
}

func TestDocumentPrinter_Wraps(t *testing.T) {
	t.Parallel()

	printer := pretty.NewDocumentPrinter(pretty.NewStyles(false), 12)
	out := printer.Format(renderMarkdown(t, "alpha beta gamma delta\n"))

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(strings.TrimRight(line, " ")), 12, line)
	}
	assert.Equal(t, "alpha beta gamma delta", strings.Join(strings.Fields(out), " "))

	assert.Empty(t, printer.Format(nil))
}
