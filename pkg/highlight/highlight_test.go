package highlight_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/highlight"
)

func TestHighlight_UnknownLanguage(t *testing.T) {
	t.Parallel()

	var events diag.Collector
	h := highlight.New(highlight.WithSink(&events))
	theme := highlight.NewRegistry().Lookup("default")
	code := "some ??? source\nwith lines\n"

	runs := h.Highlight(code, "unknownlang", theme)

	require.Len(t, runs, 1)
	assert.Equal(t, code, runs[0].Text)
	assert.Equal(t, highlight.ClassPlain, runs[0].Class)
	assert.Equal(t, theme.Plain(), runs[0].Style)
	assert.Equal(t, 0, runs[0].Start)
	assert.Equal(t, len(code), runs[0].End)
	assert.Equal(t, 1, events.Count(diag.HighlightUnavailable))
}

func TestHighlight_Plaintext(t *testing.T) {
	t.Parallel()

	h := highlight.New()

	for _, lang := range []string{"", "plaintext", "text"} {
		runs := h.Highlight("func main() {}", lang, nil)
		require.Len(t, runs, 1, "language %q", lang)
		assert.Equal(t, highlight.ClassPlain, runs[0].Class)
	}

	assert.Empty(t, h.Highlight("", "go", nil))
}

func TestHighlight_Coverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		language string
		code     string
	}{
		{"go", "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\\n\", 42) // greet\n}\n"},
		{"go", "x := 1"},
		{"python", "def f(x):\r\n    return x * 2  # double\r\n"},
		{"javascript", "const a = `t${1}`;\n/* c */ let b = a => a + 1"},
		{"bash", "#!/bin/sh\necho \"$HOME\" | grep -v x"},
		{"json", `{"a": [1, 2.5, true, null]}`},
		{"yaml", "key: value\nlist:\n  - één\n  - 日本語\n"},
		{"html", "<p class=\"x\">Hi &amp; bye</p>"},
		{"sql", "SELECT * FROM t WHERE id = 'x';"},
		{"rust", "fn main() { println!(\"🦀\"); }"},
	}

	h := highlight.New()
	registry := highlight.NewRegistry()

	for _, tt := range tests {
		for _, themeName := range []string{"default", "dark", "monokai"} {
			t.Run(tt.language+"/"+themeName, func(t *testing.T) {
				t.Parallel()

				runs := h.Highlight(tt.code, tt.language, registry.Lookup(themeName))
				require.NotEmpty(t, runs)

				var buf strings.Builder
				offset := 0
				for _, run := range runs {
					assert.Equal(t, offset, run.Start)
					assert.Equal(t, run.Start+len(run.Text), run.End)
					assert.NotEmpty(t, run.Text)
					buf.WriteString(run.Text)
					offset = run.End
				}
				assert.Equal(t, tt.code, buf.String())
			})
		}
	}
}

func TestHighlight_Classifies(t *testing.T) {
	t.Parallel()

	runs := highlight.New().Highlight("// note\nfunc main() {}\n", "go", highlight.Default())

	classes := make(map[string]string)
	for _, run := range runs {
		classes[strings.TrimSpace(run.Text)] = run.Class
	}

	assert.Equal(t, highlight.ClassComment, classes["// note"])
	assert.Equal(t, highlight.ClassKeyword, classes["func"])
}

func TestHighlight_CachesResults(t *testing.T) {
	t.Parallel()

	h := highlight.New()
	theme := highlight.Default()

	first := h.Highlight("x := 1\n", "go", theme)
	first[0].Text = "mutated"
	second := h.Highlight("x := 1\n", "go", theme)

	assert.NotEqual(t, "mutated", second[0].Text)
	stats := h.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Hits)

	h.Highlight("x := 1\n", "go", highlight.NewRegistry().Lookup("dark"))
	assert.Equal(t, 2, h.Stats().Entries)

	h.Clear()
	assert.Equal(t, 0, h.Stats().Entries)
}

func TestHighlight_Concurrent(t *testing.T) {
	t.Parallel()

	h := highlight.New()
	code := strings.Repeat("for i := 0; i < 10; i++ { println(i) }\n", 50)

	const workers = 16
	results := make([][]highlight.Run, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = h.Highlight(code, "go", nil)
		}()
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, int64(1), h.Stats().Misses)
}

func TestClassOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tokenType chroma.TokenType
		want      string
	}{
		{chroma.KeywordType, highlight.ClassKeywordType},
		{chroma.KeywordDeclaration, highlight.ClassKeyword},
		{chroma.LiteralStringDouble, highlight.ClassString},
		{chroma.LiteralNumberInteger, highlight.ClassNumber},
		{chroma.CommentSingle, highlight.ClassComment},
		{chroma.NameFunction, highlight.ClassNameFunction},
		{chroma.Text, highlight.ClassPlain},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, highlight.ClassOf(tt.tokenType), tt.tokenType.String())
	}
}
