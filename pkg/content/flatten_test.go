package content_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/content"
)

func sampleDocument() *content.Node {
	doc := content.NewDocument()

	heading := content.NewHeading(1)
	content.AppendChild(heading, content.NewText("Title"))

	para := content.NewNode(content.NodeParagraph)
	strong := content.NewNode(content.NodeStrong)
	content.AppendChild(strong, content.NewText("bold"))
	content.AppendChildren(para, content.NewText("Some "), strong, content.NewText(" text."))

	content.AppendChildren(doc, heading, para)
	return doc
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	flat := content.Flatten(sampleDocument())

	assert.Equal(t, "Title\nSome bold text.", flat.Text)
	require.Len(t, flat.Spans, 5)

	strong := flat.Spans[2]
	assert.Equal(t, content.NodeStrong, strong.Node.Kind)
	assert.Equal(t, "bold", flat.Text[strong.Start:strong.End])
}

func TestFlatten_LineBreakAndImage(t *testing.T) {
	t.Parallel()

	para := content.NewNode(content.NodeParagraph)
	content.AppendChildren(para,
		content.NewText("a"),
		content.NewNode(content.NodeLineBreak),
		content.NewImage(content.ImageAttrs{Source: "x.svg", Alt: "icon"}),
	)

	assert.Equal(t, "a\nicon", content.PlainText(para))
}

func TestValidateBoundaries(t *testing.T) {
	t.Parallel()

	t.Run("combining sequences stay whole", func(t *testing.T) {
		t.Parallel()

		para := content.NewNode(content.NodeParagraph)
		em := content.NewNode(content.NodeEmphasis)
		content.AppendChild(em, content.NewText("é"))
		content.AppendChildren(para, content.NewText("caf"), em, content.NewText(" \U0001F469\u200D\U0001F469\u200D\U0001F467"))

		require.NoError(t, content.ValidateBoundaries(content.Flatten(para)))
	})

	t.Run("split grapheme is rejected", func(t *testing.T) {
		t.Parallel()

		para := content.NewNode(content.NodeParagraph)
		content.AppendChildren(para, content.NewText("e"), content.NewText("\u0301"))

		assert.Error(t, content.ValidateBoundaries(content.Flatten(para)))
	})

	t.Run("invalid utf-8 is rejected", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, content.ValidateBoundaries(content.Flat{Text: "\xff"}))
	})
}

func TestAlignGraphemes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func() *content.Node
		want  string
		moved int
	}{
		{
			name: "combining mark in emphasis",
			build: func() *content.Node {
				para := content.NewNode(content.NodeParagraph)
				em := content.NewNode(content.NodeEmphasis)
				content.AppendChild(em, content.NewText("\u0301x"))
				content.AppendChildren(para, content.NewText("e"), em)
				return para
			},
			want: "Paragraph\n  Text \"e\u0301\"\n  Emphasis\n    Text \"x\"\n",
			moved: 1,
		},
		{
			name: "second half of a flag",
			build: func() *content.Node {
				para := content.NewNode(content.NodeParagraph)
				strong := content.NewNode(content.NodeStrong)
				content.AppendChild(strong, content.NewText("\U0001F1F8"))
				content.AppendChildren(para, content.NewText("\U0001F1FA"), strong)
				return para
			},
			want: "Paragraph\n  Text \"\U0001F1FA\U0001F1F8\"\n  Strong\n    Text \"\"\n",
			moved: 1,
		},
		{
			name: "continuation after an emptied node",
			build: func() *content.Node {
				para := content.NewNode(content.NodeParagraph)
				content.AppendChildren(para, content.NewText("e"), content.NewText("\u0301"), content.NewText("\u0308!"))
				return para
			},
			want: "Paragraph\n  Text \"e\u0301\u0308\"\n  Text \"\"\n  Text \"!\"\n",
			moved: 2,
		},
		{
			name: "line break separates",
			build: func() *content.Node {
				para := content.NewNode(content.NodeParagraph)
				content.AppendChildren(para, content.NewText("e"), content.NewNode(content.NodeLineBreak), content.NewText("\u0301"))
				return para
			},
			want: "Paragraph\n  Text \"e\"\n  LineBreak\n  Text \"\u0301\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := tt.build()
			assert.Equal(t, tt.moved, content.AlignGraphemes(root))
			assert.Equal(t, tt.want, content.Dump(root))
			require.NoError(t, content.ValidateBoundaries(content.Flatten(root)))
		})
	}
}

func TestDump(t *testing.T) {
	t.Parallel()

	want := "Document\n" +
		"  Heading level=1\n" +
		"    Text \"Title\"\n" +
		"  Paragraph\n" +
		"    Text \"Some \"\n" +
		"    Strong\n" +
		"      Text \"bold\"\n" +
		"    Text \" text.\"\n"

	assert.Equal(t, want, content.Dump(sampleDocument()))
}

func TestFindByKind(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()

	texts := content.FindByKind(doc, content.NodeText)
	assert.Len(t, texts, 4)

	first := content.FindFirst(doc, func(n *content.Node) bool { return n.Kind == content.NodeStrong })
	require.NotNil(t, first)
	assert.Equal(t, "bold", content.PlainText(first))
}
