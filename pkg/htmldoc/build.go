package htmldoc

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/langdetect"
)

// treeBuilder maps a sanitized html tree onto content nodes.
type treeBuilder struct {
	sink diag.Sink
}

func newTreeBuilder(sink diag.Sink) *treeBuilder {
	return &treeBuilder{sink: sink}
}

func (b *treeBuilder) build(root *html.Node) *content.Node {
	doc := content.NewDocument()
	b.blocks(doc, root)
	return doc
}

// blocks appends the children of h to parent as block content. Loose inline
// content is gathered into implicit paragraphs.
func (b *treeBuilder) blocks(parent *content.Node, h *html.Node) {
	var children []*html.Node
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	b.blocksFrom(parent, children)
}

func (b *treeBuilder) blocksFrom(parent *content.Node, children []*html.Node) {
	var para *content.Node
	flush := func() {
		if para != nil && para.HasChildren() {
			content.AppendChild(parent, para)
		}
		para = nil
	}

	for _, c := range children {
		if !isBlock(c) {
			if para == nil {
				para = content.NewNode(content.NodeParagraph)
			}
			b.inline(para, c)
			continue
		}

		flush()
		b.block(parent, c)
	}
	flush()
}

func (b *treeBuilder) block(parent *content.Node, h *html.Node) {
	switch h.Data {
	case "p":
		para := content.NewNode(content.NodeParagraph)
		b.inlines(para, h)
		if para.HasChildren() {
			content.AppendChild(parent, para)
		}

	case "h1", "h2", "h3", "h4", "h5", "h6":
		heading := content.NewHeading(int(h.Data[1] - '0'))
		b.inlines(heading, h)
		content.AppendChild(parent, heading)

	case "ul", "ol":
		content.AppendChild(parent, b.list(h))

	case "li":
		b.sink.Report(diag.Event{Kind: diag.ParseDegraded, Message: "list item outside a list"})
		list := content.NewNode(content.NodeList)
		list.Block = content.NewBlockAttrs().WithList(&content.ListAttrs{Marker: "-"})
		item := content.NewNode(content.NodeListItem)
		b.blocks(item, h)
		content.AppendChild(list, item)
		content.AppendChild(parent, list)

	case "blockquote":
		quote := content.NewNode(content.NodeBlockquote)
		b.blocks(quote, h)
		content.AppendChild(parent, quote)

	case "pre":
		content.AppendChild(parent, b.codeBlock(h))

	case "hr":
		content.AppendChild(parent, content.NewNode(content.NodeThematicBreak))

	case "table":
		content.AppendChild(parent, b.table(h))

	default:
		// div and stray table parts are transparent.
		b.blocks(parent, h)
	}
}

func (b *treeBuilder) list(h *html.Node) *content.Node {
	attrs := &content.ListAttrs{Ordered: h.Data == "ol", Marker: "-"}
	if attrs.Ordered {
		attrs.Marker = "."
		attrs.Start = 1
		if start, err := strconv.Atoi(attr(h, "start")); err == nil {
			attrs.Start = start
		}
	}

	list := content.NewNode(content.NodeList)
	list.Block = content.NewBlockAttrs().WithList(attrs)

	for c := h.FirstChild; c != nil; c = c.NextSibling {
		item := content.NewNode(content.NodeListItem)
		if c.Type == html.ElementNode && c.Data == "li" {
			b.blocks(item, c)
		} else {
			b.blocksFrom(item, []*html.Node{c})
		}
		if item.HasChildren() {
			content.AppendChild(list, item)
		}
	}
	return list
}

func (b *treeBuilder) codeBlock(h *html.Node) *content.Node {
	language := ""
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			for _, class := range strings.Fields(attr(c, "class")) {
				if strings.HasPrefix(class, "language-") {
					language = langdetect.Normalize(class)
					break
				}
			}
		}
	}
	return content.NewCodeBlock(language, textContent(h), false)
}

func (b *treeBuilder) table(h *html.Node) *content.Node {
	table := content.NewNode(content.NodeTable)
	table.Block = content.NewBlockAttrs().WithTable(&content.TableAttrs{})

	var addRows func(n *html.Node, header bool)
	addRows = func(n *html.Node, header bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead":
				addRows(c, true)
			case "tbody", "tfoot":
				addRows(c, false)
			case "tr":
				content.AppendChild(table, b.row(c, header))
			default:
			}
		}
	}
	addRows(h, false)

	return table
}

func (b *treeBuilder) row(h *html.Node, header bool) *content.Node {
	row := content.NewNode(content.NodeTableRow)
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cell := content.NewNode(content.NodeTableCell)
		cell.Block = content.NewBlockAttrs().WithCell(&content.CellAttrs{
			Header:  header || c.Data == "th",
			Align:   parseAlign(attr(c, "align")),
			ColSpan: positive(attr(c, "colspan")),
			RowSpan: positive(attr(c, "rowspan")),
		})
		b.inlines(cell, c)
		content.AppendChild(row, cell)
	}
	return row
}

// inlines appends the children of h to parent as inline content.
func (b *treeBuilder) inlines(parent *content.Node, h *html.Node) {
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		b.inline(parent, c)
	}
}

func (b *treeBuilder) inline(parent *content.Node, h *html.Node) {
	switch h.Type {
	case html.TextNode:
		if h.Data != "" {
			content.AppendChild(parent, content.NewText(h.Data))
		}
		return
	case html.ElementNode:
	default:
		return
	}

	var node *content.Node
	switch h.Data {
	case "em", "i":
		node = content.NewNode(content.NodeEmphasis)
	case "strong", "b":
		node = content.NewNode(content.NodeStrong)
	case "del", "s":
		node = content.NewNode(content.NodeStrikethrough)
	case "code":
		content.AppendChild(parent, content.NewInlineCode(textContent(h)))
		return
	case "br":
		content.AppendChild(parent, content.NewNode(content.NodeLineBreak))
		return
	case "img":
		content.AppendChild(parent, content.NewImage(content.ImageAttrs{
			Source: attr(h, "src"),
			Alt:    attr(h, "alt"),
			Title:  attr(h, "title"),
			Width:  dimension(attr(h, "width")),
			Height: dimension(attr(h, "height")),
		}))
		return
	case "a":
		href := attr(h, "href")
		if href == "" {
			b.inlines(parent, h)
			return
		}
		node = content.NewLink(href, attr(h, "title"))
	default:
		if isBlock(h) {
			// Block content inside an inline context keeps its text on a new line.
			if parent.HasChildren() && parent.LastChild.Kind != content.NodeLineBreak {
				content.AppendChild(parent, content.NewNode(content.NodeLineBreak))
			}
		}
		b.inlines(parent, h)
		return
	}

	b.inlines(node, h)
	content.AppendChild(parent, node)
}

func parseAlign(s string) content.Alignment {
	switch strings.ToLower(s) {
	case "left":
		return content.AlignLeft
	case "center":
		return content.AlignCenter
	case "right":
		return content.AlignRight
	default:
		return content.AlignNone
	}
}

func positive(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// dimension parses a pixel length; percentages and junk yield zero.
func dimension(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}
