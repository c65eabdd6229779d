package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/langdetect"
)

//nolint:gochecknoglobals // Compiled once.
var lineBreakTag = regexp.MustCompile(`(?i)^<br\s*/?>$`)

// mapper converts a goldmark AST into a content tree.
type mapper struct {
	source  []byte
	parser  *Parser
	rawHTML []string
}

func newMapper(source []byte, p *Parser) *mapper {
	return &mapper{source: source, parser: p}
}

func (m *mapper) mapDocument(gmDoc ast.Node) *content.Node {
	doc := content.NewDocument()
	m.mapChildren(gmDoc, doc)
	return doc
}

// mapChildren maps every child of gmParent onto parent. HTML blocks may
// expand to several content blocks.
func (m *mapper) mapChildren(gmParent ast.Node, parent *content.Node) {
	for child := gmParent.FirstChild(); child != nil; child = child.NextSibling() {
		switch gmn := child.(type) {
		case *ast.HTMLBlock:
			m.mapHTMLBlock(gmn, parent)
		case *ast.Text:
			m.mapText(gmn, parent)
		case *east.TaskCheckBox:
			// Recorded on the enclosing list item.
		default:
			if node := m.mapNode(child); node != nil {
				content.AppendChild(parent, node)
			}
		}
	}

	if m.parser.lists == ListSplitOnKind {
		mergeAdjacentLists(parent)
	}
}

// mapNode converts a single goldmark node to a content node.
func (m *mapper) mapNode(gmNode ast.Node) *content.Node {
	var node *content.Node

	switch gmn := gmNode.(type) {
	// Block-level nodes.
	case *ast.Heading:
		node = content.NewHeading(gmn.Level)
		m.mapChildren(gmn, node)

	case *ast.Paragraph, *ast.TextBlock:
		node = content.NewNode(content.NodeParagraph)
		m.mapChildren(gmNode, node)

	case *ast.List:
		node = m.mapList(gmn)

	case *ast.ListItem:
		node = content.NewNode(content.NodeListItem)
		m.mapChildren(gmNode, node)
		if checkbox := taskCheckBox(gmn); checkbox != nil {
			node.Block = content.NewBlockAttrs().WithTask(checkbox.IsChecked)
			trimLeadingSpace(node)
		}

	case *ast.Blockquote:
		node = content.NewNode(content.NodeBlockquote)
		m.mapChildren(gmNode, node)

	case *ast.FencedCodeBlock:
		language := ""
		if gmn.Info != nil {
			language = langdetect.Normalize(string(gmn.Info.Value(m.source)))
		}
		node = content.NewCodeBlock(language, m.lines(gmn), true)

	case *ast.CodeBlock:
		node = content.NewCodeBlock("", m.lines(gmn), false)

	case *ast.ThematicBreak:
		node = content.NewNode(content.NodeThematicBreak)

	// Inline-level nodes.
	case *ast.Emphasis:
		if gmn.Level >= 2 {
			node = content.NewNode(content.NodeStrong)
		} else {
			node = content.NewNode(content.NodeEmphasis)
		}
		m.mapChildren(gmn, node)

	case *ast.CodeSpan:
		node = content.NewInlineCode(m.codeSpanText(gmn))

	case *ast.Link:
		node = content.NewLink(decode(gmn.Destination), decode(gmn.Title))
		m.mapChildren(gmn, node)

	case *ast.Image:
		node = content.NewImage(content.ImageAttrs{
			Source: decode(gmn.Destination),
			Title:  decode(gmn.Title),
			Alt:    m.plainText(gmn),
		})

	case *ast.AutoLink:
		node = content.NewLink(string(gmn.URL(m.source)), "")
		content.AppendChild(node, content.NewText(string(gmn.Label(m.source))))

	case *ast.RawHTML:
		node = m.mapRawHTML(gmn)

	case *ast.String:
		node = content.NewText(decode(gmn.Value))

	// GFM extension nodes.
	case *east.Strikethrough:
		node = content.NewNode(content.NodeStrikethrough)
		m.mapChildren(gmn, node)

	case *east.Table:
		node = m.mapTable(gmn)

	default:
		m.parser.sink.Report(diag.Event{
			Kind:    diag.ParseDegraded,
			Message: "unsupported markdown node kept as text",
			Detail:  gmNode.Kind().String(),
		})
		text := m.plainText(gmNode)
		switch {
		case gmNode.Type() == ast.TypeBlock:
			node = content.NewNode(content.NodeParagraph)
			if text != "" {
				content.AppendChild(node, content.NewText(text))
			}
		case text != "":
			node = content.NewText(text)
		default:
			return nil
		}
	}

	return node
}

func (m *mapper) mapList(list *ast.List) *content.Node {
	attrs := &content.ListAttrs{
		Ordered: list.IsOrdered(),
		Marker:  string(list.Marker),
		Tight:   list.IsTight,
	}
	if attrs.Ordered {
		attrs.Start = list.Start
	}

	node := content.NewNode(content.NodeList)
	node.Block = content.NewBlockAttrs().WithList(attrs)
	m.mapChildren(list, node)
	return node
}

// mapText appends a goldmark text segment. Soft breaks become a space and
// hard breaks a LineBreak node.
func (m *mapper) mapText(t *ast.Text, parent *content.Node) {
	value := t.Value(m.source)
	s := string(value)
	if !t.IsRaw() {
		s = decode(value)
	}

	if t.SoftLineBreak() {
		s += " "
	}
	if s != "" {
		content.AppendChild(parent, content.NewText(s))
	}
	if t.HardLineBreak() {
		content.AppendChild(parent, content.NewNode(content.NodeLineBreak))
	}
}

func (m *mapper) mapRawHTML(raw *ast.RawHTML) *content.Node {
	var buf bytes.Buffer
	for i := range raw.Segments.Len() {
		seg := raw.Segments.At(i)
		buf.Write(seg.Value(m.source))
	}
	tag := strings.TrimSpace(buf.String())
	m.rawHTML = append(m.rawHTML, tag)

	if lineBreakTag.MatchString(tag) {
		return content.NewNode(content.NodeLineBreak)
	}

	m.parser.sink.Report(diag.Event{
		Kind:    diag.SanitizationRejected,
		Message: "inline html tag dropped",
		Detail:  tag,
	})
	return nil
}

// mapHTMLBlock sanitizes the raw block and splices the resulting blocks in.
func (m *mapper) mapHTMLBlock(block *ast.HTMLBlock, parent *content.Node) {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(m.source))
	}
	if block.HasClosure() {
		buf.Write(block.ClosureLine.Value(m.source))
	}
	m.rawHTML = append(m.rawHTML, buf.String())

	result := m.parser.sanitizer.Sanitize(buf.String())
	content.MoveChildren(parent, result.Root)
}

func (m *mapper) mapTable(table *east.Table) *content.Node {
	alignments := make([]content.Alignment, len(table.Alignments))
	for i, a := range table.Alignments {
		alignments[i] = convertAlignment(a)
	}

	node := content.NewNode(content.NodeTable)
	node.Block = content.NewBlockAttrs().WithTable(&content.TableAttrs{Alignments: alignments})

	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *east.TableHeader:
			content.AppendChild(node, m.mapTableRow(row, true))
		case *east.TableRow:
			content.AppendChild(node, m.mapTableRow(row, false))
		}
	}
	return node
}

func (m *mapper) mapTableRow(row ast.Node, header bool) *content.Node {
	node := content.NewNode(content.NodeTableRow)
	for child := row.FirstChild(); child != nil; child = child.NextSibling() {
		gmCell, ok := child.(*east.TableCell)
		if !ok {
			continue
		}
		cell := content.NewNode(content.NodeTableCell)
		cell.Block = content.NewBlockAttrs().WithCell(&content.CellAttrs{
			Header:  header,
			Align:   convertAlignment(gmCell.Alignment),
			ColSpan: 1,
			RowSpan: 1,
		})
		m.mapChildren(gmCell, cell)
		content.AppendChild(node, cell)
	}
	return node
}

// lines joins the literal lines of a code block.
func (m *mapper) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(m.source))
	}
	return buf.String()
}

func (m *mapper) codeSpanText(span *ast.CodeSpan) string {
	var buf bytes.Buffer
	for child := span.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			buf.Write(c.Value(m.source))
		case *ast.String:
			buf.Write(c.Value)
		}
	}
	return strings.ReplaceAll(buf.String(), "\n", " ")
}

// plainText collects the decoded text below n.
func (m *mapper) plainText(n ast.Node) string {
	var buf strings.Builder
	//nolint:errcheck // the walker never returns an error
	ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := child.(type) {
		case *ast.Text:
			buf.WriteString(decode(c.Value(m.source)))
			if c.SoftLineBreak() || c.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.WriteString(decode(c.Value))
		case *ast.CodeSpan:
			buf.WriteString(m.codeSpanText(c))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// decode resolves backslash escapes and character references.
func decode(b []byte) string {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}

func convertAlignment(a east.Alignment) content.Alignment {
	switch a {
	case east.AlignLeft:
		return content.AlignLeft
	case east.AlignCenter:
		return content.AlignCenter
	case east.AlignRight:
		return content.AlignRight
	default:
		return content.AlignNone
	}
}

func taskCheckBox(item *ast.ListItem) *east.TaskCheckBox {
	block := item.FirstChild()
	if block == nil {
		return nil
	}
	checkbox, _ := block.FirstChild().(*east.TaskCheckBox)
	return checkbox
}

// trimLeadingSpace removes the space separating a task checkbox from its text.
func trimLeadingSpace(item *content.Node) {
	para := item.FirstChild
	if para == nil || para.FirstChild == nil || para.FirstChild.Kind != content.NodeText {
		return
	}
	text := para.FirstChild
	text.Inline.Text = strings.TrimLeft(text.Inline.Text, " \t")
	if text.Inline.Text == "" {
		content.RemoveChild(para, text)
	}
}

// mergeAdjacentLists joins sibling lists of the same kind.
func mergeAdjacentLists(parent *content.Node) {
	for child := parent.FirstChild; child != nil; {
		next := child.Next
		if next != nil && child.Kind == content.NodeList && next.Kind == content.NodeList &&
			child.Block.List.Ordered == next.Block.List.Ordered {
			content.MoveChildren(child, next)
			content.RemoveChild(parent, next)
			child.Block.List.Tight = child.Block.List.Tight && next.Block.List.Tight
			continue
		}
		child = next
	}
}
