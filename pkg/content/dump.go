package content

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders the subtree as a deterministic S-expression, one node per line,
// indented by depth. It is meant for tests and debugging output.
func Dump(root *Node) string {
	var buf strings.Builder
	dumpNode(&buf, root, 0)
	return buf.String()
}

func dumpNode(buf *strings.Builder, n *Node, depth int) {
	if n == nil {
		return
	}
	buf.WriteString(strings.Repeat("  ", depth))
	buf.WriteString(n.Kind.String())
	if attrs := describeAttrs(n); attrs != "" {
		buf.WriteByte(' ')
		buf.WriteString(attrs)
	}
	buf.WriteByte('\n')
	for child := n.FirstChild; child != nil; child = child.Next {
		dumpNode(buf, child, depth+1)
	}
}

func describeAttrs(n *Node) string {
	var parts []string

	switch n.Kind {
	case NodeText, NodeInlineCode:
		parts = append(parts, strconv.Quote(n.Text()))
	case NodeHeading:
		parts = append(parts, fmt.Sprintf("level=%d", n.HeadingLevel()))
	case NodeList:
		if n.Block != nil && n.Block.List != nil {
			list := n.Block.List
			parts = append(parts, fmt.Sprintf("ordered=%t", list.Ordered))
			if list.Ordered {
				parts = append(parts, fmt.Sprintf("start=%d", list.Start))
			}
			if list.Marker != "" {
				parts = append(parts, "marker="+strconv.Quote(list.Marker))
			}
		}
	case NodeListItem:
		if n.Block != nil && n.Block.Task != nil {
			parts = append(parts, fmt.Sprintf("task=%t", n.Block.Task.Checked))
		}
	case NodeCodeBlock:
		if n.Block != nil && n.Block.CodeBlock != nil {
			parts = append(parts,
				"lang="+strconv.Quote(n.Block.CodeBlock.Language),
				strconv.Quote(n.Block.CodeBlock.Source))
		}
	case NodeTable:
		if n.Block != nil && n.Block.Table != nil {
			parts = append(parts, fmt.Sprintf("rows=%d cols=%d", n.Block.Table.Rows, n.Block.Table.Cols))
		}
	case NodeTableCell:
		if n.Block != nil && n.Block.Cell != nil {
			cell := n.Block.Cell
			if cell.Header {
				parts = append(parts, "header")
			}
			if cell.Align != AlignNone {
				parts = append(parts, "align="+cell.Align.String())
			}
			if cell.ColSpan > 1 {
				parts = append(parts, fmt.Sprintf("colspan=%d", cell.ColSpan))
			}
			if cell.RowSpan > 1 {
				parts = append(parts, fmt.Sprintf("rowspan=%d", cell.RowSpan))
			}
		}
	case NodeLink:
		if n.Inline != nil && n.Inline.Link != nil {
			parts = append(parts, "href="+strconv.Quote(n.Inline.Link.Destination))
		}
	case NodeImage:
		if n.Inline != nil && n.Inline.Image != nil {
			img := n.Inline.Image
			parts = append(parts, "src="+strconv.Quote(img.Source), "alt="+strconv.Quote(img.Alt))
			if img.Width > 0 || img.Height > 0 {
				parts = append(parts, fmt.Sprintf("size=%gx%g", img.Width, img.Height))
			}
		}
	default:
	}

	return strings.Join(parts, " ")
}
