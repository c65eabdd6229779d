package pretty_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/docrender/internal/ui/pretty"
	"github.com/yaklabco/docrender/pkg/highlight"
)

func TestFormatCode(t *testing.T) {
	t.Parallel()

	code := "package main\n\nfunc main() {}\n"
	runs := highlight.New().Highlight(code, "go", highlight.Default())

	t.Run("plain output is the source", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, code, pretty.NewStyles(false).FormatCode(runs))
	})

	t.Run("escapes never span lines", func(t *testing.T) {
		t.Parallel()

		out := pretty.NewStyles(true).FormatCode(runs)
		assert.Contains(t, out, "\x1b[")
		for _, line := range strings.Split(out, "\n") {
			assert.Equal(t, strings.Count(line, "\x1b[0m") > 0, strings.Contains(line, "\x1b["), "line %q", line)
		}
	})
}
