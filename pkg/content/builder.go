package content

// NewNode creates a new node of the specified kind with no parent or children.
func NewNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// NewDocument creates a new document root node.
func NewDocument() *Node {
	return NewNode(NodeDocument)
}

// NewText creates a text node holding s.
func NewText(s string) *Node {
	node := NewNode(NodeText)
	node.Inline = NewInlineAttrs().WithText(s)
	return node
}

// NewInlineCode creates an inline code node holding s.
func NewInlineCode(s string) *Node {
	node := NewNode(NodeInlineCode)
	node.Inline = NewInlineAttrs().WithText(s)
	return node
}

// NewHeading creates a heading node of the given level.
func NewHeading(level int) *Node {
	node := NewNode(NodeHeading)
	node.Block = NewBlockAttrs().WithHeadingLevel(level)
	return node
}

// NewCodeBlock creates a code block node.
func NewCodeBlock(language, source string, fenced bool) *Node {
	node := NewNode(NodeCodeBlock)
	node.Block = NewBlockAttrs().WithCodeBlock(&CodeBlockAttrs{
		Language: language,
		Source:   source,
		Fenced:   fenced,
	})
	return node
}

// NewLink creates a link node pointing at destination.
func NewLink(destination, title string) *Node {
	node := NewNode(NodeLink)
	node.Inline = NewInlineAttrs().WithLink(&LinkAttrs{Destination: destination, Title: title})
	return node
}

// NewImage creates an image node.
func NewImage(attrs ImageAttrs) *Node {
	node := NewNode(NodeImage)
	node.Inline = NewInlineAttrs().WithImage(&attrs)
	return node
}

// AppendChild appends a child node to a parent.
// It maintains the parent/child/sibling relationships correctly.
func AppendChild(parent, child *Node) {
	if parent == nil || child == nil {
		return
	}

	if child.Parent != nil {
		RemoveChild(child.Parent, child)
	}

	child.Parent = parent
	child.Prev = parent.LastChild
	child.Next = nil

	if parent.LastChild != nil {
		parent.LastChild.Next = child
	} else {
		parent.FirstChild = child
	}

	parent.LastChild = child
}

// AppendChildren appends every node in children to parent, in order.
func AppendChildren(parent *Node, children ...*Node) {
	for _, child := range children {
		AppendChild(parent, child)
	}
}

// InsertBefore inserts newNode before sibling.
// sibling must have a parent.
func InsertBefore(sibling, newNode *Node) {
	if sibling == nil || newNode == nil || sibling.Parent == nil {
		return
	}

	parent := sibling.Parent

	if newNode.Parent != nil {
		RemoveChild(newNode.Parent, newNode)
	}

	newNode.Parent = parent
	newNode.Prev = sibling.Prev
	newNode.Next = sibling

	if sibling.Prev != nil {
		sibling.Prev.Next = newNode
	} else {
		parent.FirstChild = newNode
	}

	sibling.Prev = newNode
}

// RemoveChild removes a child from its parent.
func RemoveChild(parent, child *Node) {
	if parent == nil || child == nil || child.Parent != parent {
		return
	}

	if child.Prev != nil {
		child.Prev.Next = child.Next
	} else {
		parent.FirstChild = child.Next
	}

	if child.Next != nil {
		child.Next.Prev = child.Prev
	} else {
		parent.LastChild = child.Prev
	}

	child.Parent = nil
	child.Prev = nil
	child.Next = nil
}

// MoveChildren moves all children of src to the end of dst.
func MoveChildren(dst, src *Node) {
	for child := src.FirstChild; child != nil; {
		next := child.Next
		AppendChild(dst, child)
		child = next
	}
}

// Clone returns a deep copy of the subtree rooted at n. The copy has no parent.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind:   n.Kind,
		Block:  n.Block.clone(),
		Inline: n.Inline.clone(),
	}
	for child := n.FirstChild; child != nil; child = child.Next {
		AppendChild(out, Clone(child))
	}
	return out
}
