package content

import "github.com/rivo/uniseg"

// AlignGraphemes moves the leading bytes of a text-bearing inline that
// continue the last grapheme cluster of the inline before it (combining
// marks, zero-width joiners, the second half of a flag) into that inline.
// Afterwards every span of Flatten(root) starts and ends on a cluster
// boundary. It returns the number of nodes whose text was shortened.
func AlignGraphemes(root *Node) int {
	var prev *Node
	moved := 0

	//nolint:errcheck // callback never fails
	Walk(root, func(n *Node) error {
		switch {
		case n.Kind == NodeCodeBlock:
			prev = nil
			if visibleText(n) != "" {
				prev = n
			}
		case isLeafBlock(n.Kind), n.Kind == NodeLineBreak:
			// Flatten separates these with a newline, which always breaks.
			prev = nil
		case n.Kind == NodeText, n.Kind == NodeInlineCode, n.Kind == NodeImage:
			if prev != nil && moveContinuation(prev, n) {
				moved++
			}
			if visibleText(n) != "" {
				prev = n
			}
		default:
		}
		return nil
	})

	return moved
}

// moveContinuation shifts the cluster continuation at the start of n onto
// the end of prev.
func moveContinuation(prev, n *Node) bool {
	left, right := visibleText(prev), visibleText(n)
	if left == "" || right == "" {
		return false
	}
	cut := continuationLen(left, right)
	if cut == 0 {
		return false
	}
	setVisibleText(prev, left+right[:cut])
	setVisibleText(n, right[cut:])
	return true
}

// continuationLen returns how many leading bytes of right belong to the
// grapheme cluster that ends left.
func continuationLen(left, right string) int {
	rest := left + right
	state := -1
	pos := 0
	for rest != "" {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		pos += len(cluster)
		if pos >= len(left) {
			return pos - len(left)
		}
	}
	return 0
}

// visibleText is the text n contributes to Flatten.
func visibleText(n *Node) string {
	switch {
	case n.Kind == NodeCodeBlock:
		if n.Block == nil || n.Block.CodeBlock == nil {
			return ""
		}
		return n.Block.CodeBlock.Source
	case n.Inline == nil:
		return ""
	case n.Kind == NodeImage:
		if n.Inline.Image == nil {
			return ""
		}
		return n.Inline.Image.Alt
	default:
		return n.Inline.Text
	}
}

func setVisibleText(n *Node, s string) {
	switch n.Kind {
	case NodeCodeBlock:
		n.Block.CodeBlock.Source = s
	case NodeImage:
		n.Inline.Image.Alt = s
	default:
		n.Inline.Text = s
	}
}
