package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Span locates the text contributed by one inline node inside a Flat.
type Span struct {
	Node  *Node
	Start int
	End   int
}

// Flat is the visible text of a subtree plus the byte span of every inline node.
type Flat struct {
	Text  string
	Spans []Span
}

// Flatten concatenates the visible text below root. Leaf blocks are separated
// by a newline, line breaks become "\n" and images contribute their alt text.
// Spans are recorded in pre-order.
func Flatten(root *Node) Flat {
	var (
		buf   strings.Builder
		spans []Span
		open  = map[*Node]int{}
	)

	enter := func(n *Node) error {
		if isLeafBlock(n.Kind) && buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
			buf.WriteByte('\n')
		}
		if n.IsInline() {
			open[n] = len(spans)
			spans = append(spans, Span{Node: n, Start: buf.Len()})
		}
		switch n.Kind {
		case NodeText, NodeInlineCode:
			buf.WriteString(n.Text())
		case NodeLineBreak:
			buf.WriteByte('\n')
		case NodeImage:
			if n.Inline != nil && n.Inline.Image != nil {
				buf.WriteString(n.Inline.Image.Alt)
			}
		case NodeCodeBlock:
			if n.Block != nil && n.Block.CodeBlock != nil {
				buf.WriteString(n.Block.CodeBlock.Source)
			}
		default:
		}
		return nil
	}
	leave := func(n *Node) error {
		if idx, ok := open[n]; ok {
			spans[idx].End = buf.Len()
		}
		return nil
	}

	//nolint:errcheck,revive // callbacks never fail
	WalkWithContext(root, enter, leave)

	return Flat{Text: buf.String(), Spans: spans}
}

// ValidateBoundaries checks that the flattened text is valid UTF-8 and that
// every span starts and ends on a grapheme cluster boundary.
func ValidateBoundaries(flat Flat) error {
	if !utf8.ValidString(flat.Text) {
		return fmt.Errorf("flattened text is not valid UTF-8")
	}

	boundaries := map[int]bool{0: true, len(flat.Text): true}
	graphemes := uniseg.NewGraphemes(flat.Text)
	for graphemes.Next() {
		from, to := graphemes.Positions()
		boundaries[from] = true
		boundaries[to] = true
	}

	for _, span := range flat.Spans {
		if !boundaries[span.Start] {
			return fmt.Errorf("%s span starts inside a grapheme cluster at byte %d", span.Node.Kind, span.Start)
		}
		if !boundaries[span.End] {
			return fmt.Errorf("%s span ends inside a grapheme cluster at byte %d", span.Node.Kind, span.End)
		}
	}
	return nil
}

func isLeafBlock(kind NodeKind) bool {
	switch kind {
	case NodeParagraph, NodeHeading, NodeCodeBlock, NodeThematicBreak, NodeTableCell:
		return true
	default:
		return false
	}
}
