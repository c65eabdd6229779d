package unify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/htmldoc"
	"github.com/yaklabco/docrender/pkg/markdown"
	"github.com/yaklabco/docrender/pkg/unify"
)

func TestUnify_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	para := content.NewNode(content.NodeParagraph)
	content.AppendChildren(para, content.NewText("a"), content.NewText("b"))
	doc := content.NewDocument()
	content.AppendChild(doc, para)

	before := content.Dump(doc)
	out := unify.Unify(doc, unify.Options{})

	assert.Equal(t, before, content.Dump(doc))
	assert.Equal(t, "Document\n  Paragraph\n    Text \"ab\"\n", content.Dump(out))
}

func TestUnify_Normalizations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func() *content.Node
		want  string
	}{
		{
			name: "empty text and paragraphs are dropped",
			build: func() *content.Node {
				doc := content.NewDocument()
				empty := content.NewNode(content.NodeParagraph)
				content.AppendChild(empty, content.NewText(""))
				para := content.NewNode(content.NodeParagraph)
				content.AppendChild(para, content.NewText("kept"))
				content.AppendChildren(doc, empty, para)
				return doc
			},
			want: "Document\n  Paragraph\n    Text \"kept\"\n",
		},
		{
			name: "heading levels are clamped",
			build: func() *content.Node {
				doc := content.NewDocument()
				high := content.NewHeading(9)
				content.AppendChild(high, content.NewText("h"))
				low := content.NewHeading(0)
				content.AppendChild(low, content.NewText("l"))
				content.AppendChildren(doc, high, low)
				return doc
			},
			want: "Document\n" +
				"  Heading level=6\n    Text \"h\"\n" +
				"  Heading level=1\n    Text \"l\"\n",
		},
		{
			name: "links without destination are unwrapped",
			build: func() *content.Node {
				doc := content.NewDocument()
				para := content.NewNode(content.NodeParagraph)
				link := content.NewLink(" ", "")
				content.AppendChild(link, content.NewText("b"))
				content.AppendChildren(para, content.NewText("a"), link, content.NewText("c"))
				content.AppendChild(doc, para)
				return doc
			},
			want: "Document\n  Paragraph\n    Text \"abc\"\n",
		},
		{
			name: "javascript links are unwrapped",
			build: func() *content.Node {
				doc := content.NewDocument()
				para := content.NewNode(content.NodeParagraph)
				link := content.NewLink("JavaScript:alert(1)", "")
				content.AppendChild(link, content.NewText("click"))
				content.AppendChild(para, link)
				content.AppendChild(doc, para)
				return doc
			},
			want: "Document\n  Paragraph\n    Text \"click\"\n",
		},
		{
			name: "loose inlines are wrapped in paragraphs",
			build: func() *content.Node {
				doc := content.NewDocument()
				quote := content.NewNode(content.NodeBlockquote)
				content.AppendChildren(quote, content.NewText("x"), content.NewText("y"))
				content.AppendChild(doc, quote)
				return doc
			},
			want: "Document\n  Blockquote\n    Paragraph\n      Text \"xy\"\n",
		},
		{
			name: "untagged code becomes plaintext",
			build: func() *content.Node {
				doc := content.NewDocument()
				content.AppendChild(doc, content.NewCodeBlock("", "package main\n", true))
				return doc
			},
			want: "Document\n  CodeBlock lang=\"plaintext\" \"package main\\n\"\n",
		},
		{
			name: "explicit annotation wins",
			build: func() *content.Node {
				doc := content.NewDocument()
				content.AppendChild(doc, content.NewCodeBlock("language-golang", "x", true))
				return doc
			},
			want: "Document\n  CodeBlock lang=\"go\" \"x\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, content.Dump(unify.Unify(tt.build(), unify.Options{})))
		})
	}
}

func TestUnify_DetectLanguage(t *testing.T) {
	t.Parallel()

	doc := content.NewDocument()
	content.AppendChild(doc, content.NewCodeBlock("", "package main\n\nfunc main() {}\n", true))

	out := unify.Unify(doc, unify.Options{DetectLanguage: true})

	blocks := content.FindByKind(out, content.NodeCodeBlock)
	require.Len(t, blocks, 1)
	assert.Equal(t, "go", blocks[0].Language())
}

func TestUnify_TableDimensions(t *testing.T) {
	t.Parallel()

	root := htmldoc.ParseAndSanitize(
		`<table><tr><th colspan="2">a</th></tr><tr><td>b</td><td>c</td><td>d</td></tr></table>`, nil)

	out := unify.Unify(root, unify.Options{})

	tables := content.FindByKind(out, content.NodeTable)
	require.Len(t, tables, 1)
	assert.Equal(t, 2, tables[0].Block.Table.Rows)
	assert.Equal(t, 3, tables[0].Block.Table.Cols)
}

func TestUnify_FrontEndsAgree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		html     string
	}{
		{
			name:     "paragraph with strong",
			markdown: "Some **bold** text.",
			html:     "<p>Some <strong>bold</strong> text.</p>",
		},
		{
			name:     "heading and emphasis",
			markdown: "## Sub\n\n*it* and `code`\n",
			html:     "<h2>Sub</h2><p><em>it</em> and <code>code</code></p>",
		},
		{
			name:     "unordered list",
			markdown: "- one\n- two\n",
			html:     "<ul><li>one</li><li>two</li></ul>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fromMarkdown := unify.Unify(markdown.Parse(tt.markdown), unify.Options{})
			fromHTML := unify.Unify(htmldoc.ParseAndSanitize(tt.html, nil), unify.Options{})

			assert.Equal(t, content.PlainText(fromMarkdown), content.PlainText(fromHTML))
			assert.Equal(t,
				kinds(fromMarkdown),
				kinds(fromHTML),
			)
		})
	}
}

func TestUnify_Nil(t *testing.T) {
	t.Parallel()

	out := unify.Unify(nil, unify.Options{})
	require.NotNil(t, out)
	assert.Equal(t, content.NodeDocument, out.Kind)
}

// kinds lists node kinds in document order.
func kinds(root *content.Node) []content.NodeKind {
	var out []content.NodeKind
	_ = content.Walk(root, func(n *content.Node) error {
		out = append(out, n.Kind)
		return nil
	})
	return out
}
