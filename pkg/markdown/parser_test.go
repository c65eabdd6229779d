package markdown_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/markdown"
)

func TestParse_HeadingAndStrong(t *testing.T) {
	t.Parallel()

	root := markdown.Parse("# Title\n\nSome **bold** text.")

	want := "Document\n" +
		"  Heading level=1\n" +
		"    Text \"Title\"\n" +
		"  Paragraph\n" +
		"    Text \"Some \"\n" +
		"    Strong\n" +
		"      Text \"bold\"\n" +
		"    Text \" text.\"\n"

	assert.Equal(t, want, content.Dump(root))
}

func TestParse_Blocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fenced code keeps language",
			input: "```go\nfmt.Println(1)\n```\n",
			want:  "Document\n  CodeBlock lang=\"go\" \"fmt.Println(1)\\n\"\n",
		},
		{
			name:  "fence info is normalized",
			input: "```golang {linenos=true}\nx\n```\n",
			want:  "Document\n  CodeBlock lang=\"go\" \"x\\n\"\n",
		},
		{
			name:  "indented code has no language",
			input: "    x := 1\n",
			want:  "Document\n  CodeBlock lang=\"\" \"x := 1\\n\"\n",
		},
		{
			name:  "thematic break",
			input: "a\n\n---\n\nb\n",
			want: "Document\n" +
				"  Paragraph\n    Text \"a\"\n" +
				"  ThematicBreak\n" +
				"  Paragraph\n    Text \"b\"\n",
		},
		{
			name:  "blockquote",
			input: "> quoted\n",
			want:  "Document\n  Blockquote\n    Paragraph\n      Text \"quoted\"\n",
		},
		{
			name:  "strikethrough",
			input: "~~gone~~\n",
			want:  "Document\n  Paragraph\n    Strikethrough\n      Text \"gone\"\n",
		},
		{
			name:  "ordered list start",
			input: "3. three\n4. four\n",
			want: "Document\n" +
				"  List ordered=true start=3 marker=\".\"\n" +
				"    ListItem\n      Paragraph\n        Text \"three\"\n" +
				"    ListItem\n      Paragraph\n        Text \"four\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, content.Dump(markdown.Parse(tt.input)))
		})
	}
}

func TestParse_SoftAndHardBreaks(t *testing.T) {
	t.Parallel()

	root := markdown.Parse("a\nb\\\nc")

	breaks := content.FindByKind(root, content.NodeLineBreak)
	require.Len(t, breaks, 1)

	texts := content.FindByKind(root, content.NodeText)
	require.NotEmpty(t, texts)
	assert.Equal(t, "a ", texts[0].Text(), "soft break becomes a space")
	assert.Equal(t, "c", texts[len(texts)-1].Text())
}

func TestParse_Table(t *testing.T) {
	t.Parallel()

	root := markdown.Parse("| a | b |\n|:--|--:|\n| 1 | 2 |\n")

	tables := content.FindByKind(root, content.NodeTable)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, []content.Alignment{content.AlignLeft, content.AlignRight}, table.Block.Table.Alignments)

	rows := table.Children()
	require.Len(t, rows, 2)

	header := rows[0].Children()
	require.Len(t, header, 2)
	assert.True(t, header[0].Block.Cell.Header)
	assert.Equal(t, "a", content.PlainText(header[0]))

	body := rows[1].Children()
	require.Len(t, body, 2)
	assert.False(t, body[1].Block.Cell.Header)
	assert.Equal(t, content.AlignRight, body[1].Block.Cell.Align)
	assert.Equal(t, "2", content.PlainText(body[1]))
}

func TestParse_TaskList(t *testing.T) {
	t.Parallel()

	root := markdown.Parse("- [x] done\n- [ ] todo\n")

	items := content.FindByKind(root, content.NodeListItem)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].Block)
	require.NotNil(t, items[0].Block.Task)
	assert.True(t, items[0].Block.Task.Checked)
	assert.Equal(t, "done", content.PlainText(items[0]))

	require.NotNil(t, items[1].Block.Task)
	assert.False(t, items[1].Block.Task.Checked)
}

func TestParse_InlineHTML(t *testing.T) {
	t.Parallel()

	var events diag.Collector
	p := markdown.New(markdown.Options{Sink: &events})

	doc := p.ParseDocument("a <span>b</span> c<br>d")

	assert.Len(t, doc.RawHTML, 3)
	assert.Len(t, content.FindByKind(doc.Root, content.NodeLineBreak), 1)
	assert.Equal(t, "a b c\nd", content.PlainText(doc.Root))
	assert.Equal(t, 2, events.Count(diag.SanitizationRejected))
}

func TestParse_HTMLBlockIsSanitized(t *testing.T) {
	t.Parallel()

	root := markdown.Parse("<div onclick=\"x()\">\n<p>hi</p>\n</div>\n\nafter\n")

	want := "Document\n" +
		"  Paragraph\n    Text \"hi\"\n" +
		"  Paragraph\n    Text \"after\"\n"

	assert.Equal(t, want, content.Dump(root))
}

func TestParse_ListPolicy(t *testing.T) {
	t.Parallel()

	source := "- a\n* b\n"

	byMarker := markdown.New(markdown.Options{Lists: markdown.ListSplitOnMarker}).Parse(source)
	assert.Len(t, content.FindByKind(byMarker, content.NodeList), 2)

	byKind := markdown.New(markdown.Options{Lists: markdown.ListSplitOnKind}).Parse(source)
	lists := content.FindByKind(byKind, content.NodeList)
	require.Len(t, lists, 1)
	assert.Equal(t, 2, lists[0].ChildCount())

	mixed := markdown.New(markdown.Options{Lists: markdown.ListSplitOnKind}).Parse("- a\n1. b\n")
	assert.Len(t, content.FindByKind(mixed, content.NodeList), 2)
}

func TestParseListPolicy(t *testing.T) {
	t.Parallel()

	policy, err := markdown.ParseListPolicy("split-on-kind")
	require.NoError(t, err)
	assert.Equal(t, markdown.ListSplitOnKind, policy)
	assert.Equal(t, "split-on-kind", policy.String())

	_, err = markdown.ParseListPolicy("zigzag")
	assert.Error(t, err)
}

func TestParse_Inlines(t *testing.T) {
	t.Parallel()

	t.Run("escapes and entities", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "a * b & c", content.PlainText(markdown.Parse("a \\* b &amp; c")))
	})

	t.Run("image alt text", func(t *testing.T) {
		t.Parallel()

		images := content.FindByKind(markdown.Parse(`![alt *text*](img.png "T")`), content.NodeImage)
		require.Len(t, images, 1)
		assert.Equal(t, "img.png", images[0].Inline.Image.Source)
		assert.Equal(t, "alt text", images[0].Inline.Image.Alt)
		assert.Equal(t, "T", images[0].Inline.Image.Title)
	})

	t.Run("link", func(t *testing.T) {
		t.Parallel()

		links := content.FindByKind(markdown.Parse("[site](https://example.com)"), content.NodeLink)
		require.Len(t, links, 1)
		assert.Equal(t, "https://example.com", links[0].Inline.Link.Destination)
		assert.Equal(t, "site", content.PlainText(links[0]))
	})

	t.Run("code span", func(t *testing.T) {
		t.Parallel()

		codes := content.FindByKind(markdown.Parse("use `x := 1` here"), content.NodeInlineCode)
		require.Len(t, codes, 1)
		assert.Equal(t, "x := 1", codes[0].Text())
	})
}

func TestParse_Degrades(t *testing.T) {
	t.Parallel()

	var events diag.Collector
	p := markdown.New(markdown.Options{Sink: &events})

	root := p.Parse("**unclosed *emphasis\xff")

	text := content.PlainText(root)
	assert.True(t, strings.HasPrefix(text, "**unclosed *emphasis"), "got %q", text)
	assert.Equal(t, 1, events.Count(diag.ParseDegraded))
	assert.NoError(t, content.ValidateBoundaries(content.Flatten(root)))
}

func TestParse_CommonMarkFlavor(t *testing.T) {
	t.Parallel()

	p := markdown.New(markdown.Options{Flavor: markdown.FlavorCommonMark})
	assert.Equal(t, markdown.FlavorCommonMark, p.Flavor())

	root := p.Parse("~~x~~\n")
	assert.Empty(t, content.FindByKind(root, content.NodeStrikethrough))
	assert.Equal(t, markdown.FlavorGFM, markdown.New(markdown.Options{Flavor: "bogus"}).Flavor())
}

func TestParse_SpansFollowGraphemes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		text   string
	}{
		{name: "combining mark opens emphasis", source: "e*\u0301*", text: "e\u0301"},
		{name: "flag split by emphasis", source: "\U0001F1FA*\U0001F1F8*", text: "\U0001F1FA\U0001F1F8"},
		{name: "joiner inside strong", source: "a**\u200d**b", text: "a\u200db"},
		{name: "combining mark in code span", source: "x`\u0301`", text: "x\u0301"},
		{name: "aligned input is untouched", source: "caf*é* ok", text: "café ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := markdown.Parse(tt.source)
			flat := content.Flatten(root)

			assert.Equal(t, tt.text, flat.Text)
			require.NoError(t, content.ValidateBoundaries(flat))
		})
	}
}
