// Package unify normalizes content trees produced by either front-end so that
// equivalent Markdown and HTML documents yield the same tree.
package unify

import (
	"strings"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/htmldoc"
	"github.com/yaklabco/docrender/pkg/langdetect"
)

// Options controls normalization.
type Options struct {
	// DetectLanguage classifies untagged code blocks with go-enry instead of
	// marking them plaintext.
	DetectLanguage bool
}

// Unify returns a normalized copy of root. The input is not modified.
//
// Normalization merges adjacent text, drops empty text and paragraphs, clamps
// heading levels to 1..6, wraps loose inline content of container blocks in
// paragraphs, unwraps links without a destination or with a javascript:
// destination, computes table dimensions
// and resolves every code block language.
func Unify(root *content.Node, opts Options) *content.Node {
	if root == nil {
		return content.NewDocument()
	}
	out := content.Clone(root)
	n := normalizer{opts: opts}
	n.normalize(out)
	return out
}

type normalizer struct {
	opts Options
}

func (n *normalizer) normalize(node *content.Node) {
	for child := node.FirstChild; child != nil; {
		next := child.Next
		n.normalize(child)
		if removable(child) {
			content.RemoveChild(node, child)
		}
		child = next
	}

	switch node.Kind {
	case content.NodeHeading:
		if node.Block == nil {
			node.Block = content.NewBlockAttrs()
		}
		node.Block.HeadingLevel = min(max(node.Block.HeadingLevel, 1), 6)
	case content.NodeCodeBlock:
		n.resolveLanguage(node)
	case content.NodeTable:
		measureTable(node)
	case content.NodeLink:
		if node.Inline == nil || node.Inline.Link == nil || !navigable(node.Inline.Link.Destination) {
			unwrap(node)
			return
		}
	case content.NodeDocument, content.NodeListItem, content.NodeBlockquote:
		wrapLooseInlines(node)
	default:
	}

	mergeText(node)
}

// navigable reports whether a link destination can be followed without
// running script.
func navigable(dest string) bool {
	return strings.TrimSpace(dest) != "" && !htmldoc.IsScriptURL(dest)
}

// removable reports nodes that contribute nothing once normalized.
func removable(node *content.Node) bool {
	switch node.Kind {
	case content.NodeText:
		return node.Text() == ""
	case content.NodeParagraph, content.NodeEmphasis, content.NodeStrong, content.NodeStrikethrough:
		return !node.HasChildren()
	default:
		return false
	}
}

func (n *normalizer) resolveLanguage(node *content.Node) {
	if node.Block == nil {
		node.Block = content.NewBlockAttrs()
	}
	if node.Block.CodeBlock == nil {
		node.Block.CodeBlock = &content.CodeBlockAttrs{}
	}
	code := node.Block.CodeBlock

	lang := langdetect.Normalize(code.Language)
	if lang == "" {
		lang = langdetect.Plaintext
		if n.opts.DetectLanguage {
			lang = langdetect.Detect([]byte(code.Source))
		}
	}
	code.Language = lang
}

// wrapLooseInlines gathers runs of inline children into paragraphs.
func wrapLooseInlines(node *content.Node) {
	var para *content.Node
	for child := node.FirstChild; child != nil; {
		next := child.Next
		if child.IsInline() {
			if para == nil {
				para = content.NewNode(content.NodeParagraph)
				content.InsertBefore(child, para)
			}
			content.AppendChild(para, child)
		} else {
			if para != nil {
				mergeText(para)
			}
			para = nil
		}
		child = next
	}
	if para != nil {
		mergeText(para)
	}
}

// mergeText joins adjacent Text children.
func mergeText(node *content.Node) {
	for child := node.FirstChild; child != nil; {
		next := child.Next
		if child.Kind == content.NodeText && next != nil && next.Kind == content.NodeText {
			child.Inline.Text += next.Inline.Text
			content.RemoveChild(node, next)
			continue
		}
		child = next
	}
}

// unwrap replaces node by its children.
func unwrap(node *content.Node) {
	parent := node.Parent
	if parent == nil {
		return
	}
	for child := node.FirstChild; child != nil; {
		next := child.Next
		content.InsertBefore(node, child)
		child = next
	}
	content.RemoveChild(parent, node)
}

func measureTable(table *content.Node) {
	if table.Block == nil {
		table.Block = content.NewBlockAttrs()
	}
	if table.Block.Table == nil {
		table.Block.Table = &content.TableAttrs{}
	}

	rows, cols := 0, 0
	for row := table.FirstChild; row != nil; row = row.Next {
		if row.Kind != content.NodeTableRow {
			continue
		}
		rows++
		width := 0
		for cell := row.FirstChild; cell != nil; cell = cell.Next {
			span := 1
			if cell.Block != nil && cell.Block.Cell != nil && cell.Block.Cell.ColSpan > 1 {
				span = cell.Block.Cell.ColSpan
			}
			width += span
		}
		cols = max(cols, width)
	}

	table.Block.Table.Rows = rows
	table.Block.Table.Cols = cols
}
