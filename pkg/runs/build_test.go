package runs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/highlight"
	"github.com/yaklabco/docrender/pkg/markdown"
	"github.com/yaklabco/docrender/pkg/raster"
	"github.com/yaklabco/docrender/pkg/runs"
	"github.com/yaklabco/docrender/pkg/style"
	"github.com/yaklabco/docrender/pkg/textmetrics"
	"github.com/yaklabco/docrender/pkg/unify"
)

// charWidth measures every rune as a fixed width, keeping tests independent
// of font data.
type charWidth struct{}

func (charWidth) Measure(text string, s style.Style, size float64) textmetrics.Metrics {
	n := 0
	for range text {
		n++
	}
	size *= s.EffectiveScale()
	return textmetrics.Metrics{Width: float64(n) * size / 2, Ascent: size * 0.8, Descent: size * 0.2}
}

var icons = runs.ResolverFunc(func(ref runs.AssetRef) (runs.Resolved, error) {
	switch ref.Source {
	case "icon.svg":
		return runs.Resolved{Kind: runs.VectorIcon, Handle: "icon.svg", Natural: raster.Size{W: 24, H: 12}}, nil
	case "photo.png":
		return runs.Resolved{Kind: runs.RasterImage, Handle: "photo.png", Natural: raster.Size{W: 640, H: 480}}, nil
	default:
		return runs.Resolved{}, diag.NewInvalidAsset(ref.Source, errors.New("not found"))
	}
})

func build(t *testing.T, source string) *runs.Sequence {
	t.Helper()
	root := unify.Unify(markdown.Parse(source), unify.Options{})
	return runs.Build(root, highlight.Default(), icons, runs.Options{Measurer: charWidth{}})
}

func kinds(seq *runs.Sequence) []runs.ItemKind {
	out := make([]runs.ItemKind, len(seq.Items))
	for i, item := range seq.Items {
		out[i] = item.Kind
	}
	return out
}

func TestBuild_HeadingAndStrong(t *testing.T) {
	t.Parallel()

	seq := build(t, "# Title\n\nSome **bold** text.")

	require.Equal(t, []runs.ItemKind{
		runs.ItemBlockBreak, runs.ItemRun,
		runs.ItemBlockBreak, runs.ItemRun, runs.ItemRun, runs.ItemRun,
	}, kinds(seq))

	heading := seq.Items[0].Block
	assert.Equal(t, content.NodeHeading, heading.Kind)
	assert.Equal(t, 1, heading.Level)

	title := seq.Items[1].Run
	assert.Equal(t, "Title", title.Text)
	assert.True(t, title.Style.Bold())
	assert.InDelta(t, 2.0, title.Style.Scale, 1e-9)
	assert.InDelta(t, 5*16*2/2.0, title.Metrics.Width, 1e-9)

	texts := []string{seq.Items[3].Run.Text, seq.Items[4].Run.Text, seq.Items[5].Run.Text}
	assert.Equal(t, []string{"Some ", "bold", " text."}, texts)
	assert.False(t, seq.Items[3].Run.Style.Bold())
	assert.True(t, seq.Items[4].Run.Style.Bold())

	assert.Empty(t, seq.Errors)
	assert.Equal(t, "Title\n\nSome bold text.", seq.Text())
}

func TestBuild_StyleAccumulates(t *testing.T) {
	t.Parallel()

	seq := build(t, "*a **b** ~~c~~* [link *x*](https://example.com)")
	runsByText := make(map[string]runs.StyledRun)
	for _, run := range seq.Runs() {
		runsByText[run.Text] = run
	}

	b := runsByText["b"]
	assert.True(t, b.Style.Italic, "strong inside emphasis keeps italic")
	assert.True(t, b.Style.Bold())

	c := runsByText["c"]
	assert.True(t, c.Style.Italic)
	assert.True(t, c.Style.Strikethrough)
	assert.False(t, c.Style.Bold())

	x := runsByText["x"]
	assert.Equal(t, "https://example.com", x.Link)
	assert.Equal(t, highlight.ClassLink, x.Class)
	assert.True(t, x.Style.Underline)
	assert.True(t, x.Style.Italic)
	assert.Equal(t, highlight.Default().Style(highlight.ClassLink).Fg, x.Style.Fg)
}

func TestBuild_CodeBlock(t *testing.T) {
	t.Parallel()

	seq := build(t, "```go\nx := 1\ny := 2\n```\n")

	require.NotEmpty(t, seq.Items)
	block := seq.Items[0].Block
	require.NotNil(t, block)
	assert.Equal(t, content.NodeCodeBlock, block.Kind)
	assert.Equal(t, "go", block.Language)

	breaks := 0
	for _, item := range seq.Items[1:] {
		switch item.Kind {
		case runs.ItemLineBreak:
			breaks++
		case runs.ItemRun:
			assert.True(t, item.Run.Style.Monospace)
			assert.NotContains(t, item.Run.Text, "\n")
		default:
			t.Fatalf("unexpected item %v in code block", item.Kind)
		}
	}
	assert.Equal(t, 1, breaks)
	assert.Equal(t, "x := 1\ny := 2", seq.Text())
}

func TestBuild_UnknownLanguageCode(t *testing.T) {
	t.Parallel()

	seq := build(t, "```unknownlang\nsome code\n```\n")

	all := seq.Runs()
	require.Len(t, all, 1)
	assert.Equal(t, "some code", all[0].Text)
	assert.Equal(t, highlight.ClassPlain, all[0].Class)
}

func TestBuild_Lists(t *testing.T) {
	t.Parallel()

	seq := build(t, "3. three\n4. four\n   - nested\n\n- [x] done\n")

	var markers []string
	var depths []int
	var tasks []runs.TaskState
	for _, item := range seq.Items {
		if item.Kind == runs.ItemBlockBreak {
			markers = append(markers, item.Block.Marker)
			depths = append(depths, item.Block.ListDepth)
			tasks = append(tasks, item.Block.Task)
		}
	}

	assert.Equal(t, []string{"3.", "4.", "◦", "•"}, markers)
	assert.Equal(t, []int{1, 1, 2, 1}, depths)
	assert.Equal(t, runs.TaskDone, tasks[3])
}

func TestBuild_BlockquoteAndRule(t *testing.T) {
	t.Parallel()

	seq := build(t, "> quoted\n\n---\n")

	require.Equal(t, []runs.ItemKind{
		runs.ItemBlockBreak, runs.ItemRun,
		runs.ItemBlockBreak, runs.ItemRule,
	}, kinds(seq))
	assert.Equal(t, 1, seq.Items[0].Block.QuoteDepth)
	assert.Equal(t, highlight.ClassQuote, seq.Items[1].Run.Class)
	assert.Equal(t, content.NodeThematicBreak, seq.Items[2].Block.Kind)
}

func TestBuild_Images(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		image  content.ImageAttrs
		want   runs.InlineAsset
		errors int
	}{
		{
			name:  "natural size",
			image: content.ImageAttrs{Source: "icon.svg", Alt: "i"},
			want:  runs.InlineAsset{Kind: runs.VectorIcon, Handle: "icon.svg", Width: 24, Height: 12, Alt: "i"},
		},
		{
			name:  "explicit size wins",
			image: content.ImageAttrs{Source: "photo.png", Width: 100, Height: 100},
			want:  runs.InlineAsset{Kind: runs.RasterImage, Handle: "photo.png", Width: 100, Height: 100},
		},
		{
			name:  "one explicit side keeps the aspect ratio",
			image: content.ImageAttrs{Source: "photo.png", Width: 320},
			want:  runs.InlineAsset{Kind: runs.RasterImage, Handle: "photo.png", Width: 320, Height: 240},
		},
		{
			name:   "unresolved asset becomes a broken glyph",
			image:  content.ImageAttrs{Source: "missing.svg", Alt: "gone"},
			want:   runs.InlineAsset{Kind: runs.VectorIcon, Handle: runs.BrokenGlyphHandle, Width: 16, Height: 16, Alt: "gone", Broken: true},
			errors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := content.NewDocument()
			para := content.NewNode(content.NodeParagraph)
			content.AppendChild(para, content.NewImage(tt.image))
			content.AppendChild(doc, para)

			seq := runs.Build(doc, nil, icons, runs.Options{Measurer: charWidth{}})

			assets := seq.Assets()
			require.Len(t, assets, 1)
			assert.Equal(t, tt.want, assets[0])
			require.Len(t, seq.Errors, tt.errors)
			if tt.errors > 0 {
				assert.ErrorIs(t, seq.Errors[0], diag.ErrInvalidAsset)
			}
		})
	}
}

func TestBuild_NoResolver(t *testing.T) {
	t.Parallel()

	root := markdown.Parse("![x](icon.svg)")
	seq := runs.Build(root, nil, nil, runs.Options{Measurer: charWidth{}})

	require.Len(t, seq.Errors, 1)
	assert.ErrorIs(t, seq.Errors[0], runs.ErrNoResolver)
	assert.True(t, seq.Assets()[0].Broken)
}

func TestBuild_Table(t *testing.T) {
	t.Parallel()

	seq := build(t, "| a | bb |\n|---|----|\n| ccc | d |\n")

	assets := seq.Assets()
	require.Len(t, assets, 1)
	assert.Equal(t, runs.EmbeddedBlock, assets[0].Kind)
	require.Len(t, seq.Blocks, 1)

	table := seq.Blocks[assets[0].Block]
	require.Len(t, table.Rows, 2)
	require.Len(t, table.ColumnWidths, 2)

	header := table.Rows[0][0]
	assert.True(t, header.Header)
	assert.Equal(t, "a", header.Content.Text())
	assert.True(t, header.Content.Runs()[0].Style.Bold())

	// "ccc" is 3 chars at 8 units plus padding on both sides.
	assert.InDelta(t, 3*8+12, table.ColumnWidths[0], 1e-9)
	assert.InDelta(t, table.ColumnWidths[0]+table.ColumnWidths[1], assets[0].Width, 1e-9)
	assert.Positive(t, assets[0].Height)
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	source := "# T\n\n*a **b***\n\n```go\nfunc f() {}\n```\n\n| x |\n|---|\n| y |\n\n![i](icon.svg) ![m](missing.png)\n"
	root := unify.Unify(markdown.Parse(source), unify.Options{})
	theme := highlight.NewRegistry().Lookup("dark")

	first := runs.Build(root, theme, icons, runs.Options{})
	second := runs.Build(root, theme, icons, runs.Options{})

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.Blocks, second.Blocks)
	assert.Equal(t, first.Digest(), second.Digest())
	assert.NotEqual(t, first.Digest(), runs.Build(root, highlight.Default(), icons, runs.Options{}).Digest())
}

func TestBuild_DoesNotMutateTree(t *testing.T) {
	t.Parallel()

	root := markdown.Parse("- a\n- b *c*\n")
	before := content.Dump(root)

	runs.Build(root, nil, icons, runs.Options{Measurer: charWidth{}})

	assert.Equal(t, before, content.Dump(root))
}
