// Package content defines the unified content tree shared by the Markdown and
// HTML front-ends. Every document, whatever its source format, is expressed as
// a tree of Nodes drawn from the closed set of kinds below, so that styling and
// run building have a single input model.
package content

// NodeKind classifies the type of a content node. The set is closed.
type NodeKind uint16

// Node kinds for block-level and inline-level content.
const (
	NodeDocument NodeKind = iota

	// Block-level nodes.
	NodeParagraph
	NodeHeading
	NodeList
	NodeListItem
	NodeTable
	NodeTableRow
	NodeTableCell
	NodeCodeBlock
	NodeBlockquote
	NodeThematicBreak

	// Inline-level nodes.
	NodeText
	NodeEmphasis
	NodeStrong
	NodeStrikethrough
	NodeLink
	NodeImage
	NodeInlineCode
	NodeLineBreak
)

//nolint:gochecknoglobals // Read-only lookup table.
var kindNames = [...]string{
	NodeDocument:      "Document",
	NodeParagraph:     "Paragraph",
	NodeHeading:       "Heading",
	NodeList:          "List",
	NodeListItem:      "ListItem",
	NodeTable:         "Table",
	NodeTableRow:      "TableRow",
	NodeTableCell:     "TableCell",
	NodeCodeBlock:     "CodeBlock",
	NodeBlockquote:    "Blockquote",
	NodeThematicBreak: "ThematicBreak",
	NodeText:          "Text",
	NodeEmphasis:      "Emphasis",
	NodeStrong:        "Strong",
	NodeStrikethrough: "Strikethrough",
	NodeLink:          "Link",
	NodeImage:         "Image",
	NodeInlineCode:    "InlineCode",
	NodeLineBreak:     "LineBreak",
}

// String returns the kind name.
func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node represents a single node in the content tree.
// Nodes form a tree with exclusive ownership: a node has at most one parent and
// appears in at most one tree.
type Node struct {
	// Kind identifies what type of node this is.
	Kind NodeKind

	// Tree structure pointers.
	Parent     *Node
	FirstChild *Node
	LastChild  *Node
	Prev       *Node
	Next       *Node

	// Block holds attributes for block-level nodes.
	Block *BlockAttrs

	// Inline holds attributes for inline-level nodes.
	Inline *InlineAttrs
}

// IsBlock returns true if this is a block-level node.
func (n *Node) IsBlock() bool {
	return n.Kind.IsBlock()
}

// IsInline returns true if this is an inline-level node.
func (n *Node) IsInline() bool {
	return n.Kind.IsInline()
}

// IsBlock reports whether nodes of this kind are block-level.
func (k NodeKind) IsBlock() bool {
	return k >= NodeDocument && k <= NodeThematicBreak
}

// IsInline reports whether nodes of this kind are inline-level.
func (k NodeKind) IsInline() bool {
	return k >= NodeText && k <= NodeLineBreak
}

// IsLeaf reports whether nodes of this kind never carry children.
func (k NodeKind) IsLeaf() bool {
	switch k {
	case NodeText, NodeImage, NodeInlineCode, NodeLineBreak, NodeThematicBreak, NodeCodeBlock:
		return true
	default:
		return false
	}
}

// HasChildren returns true if this node has any children.
func (n *Node) HasChildren() bool {
	return n.FirstChild != nil
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	count := 0
	for child := n.FirstChild; child != nil; child = child.Next {
		count++
	}
	return count
}

// Children returns a slice of all direct children.
func (n *Node) Children() []*Node {
	var children []*Node
	for child := n.FirstChild; child != nil; child = child.Next {
		children = append(children, child)
	}
	return children
}

// Text returns the literal text of a Text or InlineCode node, or "".
func (n *Node) Text() string {
	if n.Inline == nil {
		return ""
	}
	return n.Inline.Text
}

// HeadingLevel returns the heading level, or 0 for non-heading nodes.
func (n *Node) HeadingLevel() int {
	if n.Kind != NodeHeading || n.Block == nil {
		return 0
	}
	return n.Block.HeadingLevel
}

// Language returns the language tag of a code block, or "".
func (n *Node) Language() string {
	if n.Block == nil || n.Block.CodeBlock == nil {
		return ""
	}
	return n.Block.CodeBlock.Language
}
