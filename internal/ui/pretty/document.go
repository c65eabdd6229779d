package pretty

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/runs"
	"github.com/yaklabco/docrender/pkg/style"
)

const (
	quotePrefix = "│ "
	listIndent  = "  "
)

// DocumentPrinter prints run sequences as terminal text.
type DocumentPrinter struct {
	styles *Styles
	width  int
}

// NewDocumentPrinter creates a printer. A positive width wraps paragraphs;
// code blocks and tables are never wrapped.
func NewDocumentPrinter(styles *Styles, width int) *DocumentPrinter {
	return &DocumentPrinter{styles: styles, width: width}
}

// block is one block of output being assembled.
type block struct {
	info *runs.BlockInfo
	text strings.Builder
}

// Format renders seq. Blocks are separated by blank lines, except between
// consecutive list blocks.
func (p *DocumentPrinter) Format(seq *runs.Sequence) string {
	if seq == nil {
		return ""
	}

	var out strings.Builder
	var cur *block
	var prev *runs.BlockInfo

	flush := func() {
		if cur == nil {
			return
		}
		if prev != nil {
			if prev.ListDepth > 0 && cur.info.ListDepth > 0 {
				out.WriteString("\n")
			} else {
				out.WriteString("\n\n")
			}
		}
		out.WriteString(p.finishBlock(cur))
		prev = cur.info
		cur = nil
	}

	for _, item := range seq.Items {
		if item.Kind == runs.ItemBlockBreak {
			flush()
			cur = &block{info: item.Block}
			continue
		}
		if cur == nil {
			cur = &block{info: &runs.BlockInfo{Kind: content.NodeParagraph}}
		}

		switch item.Kind {
		case runs.ItemRun:
			cur.text.WriteString(p.run(item.Run))
		case runs.ItemLineBreak:
			cur.text.WriteString("\n")
		case runs.ItemRule:
			cur.text.WriteString(p.styles.Rule.Render(strings.Repeat("─", p.ruleWidth())))
		case runs.ItemAsset:
			cur.text.WriteString(p.asset(seq, item.Asset))
		}
	}
	flush()

	return out.String()
}

// finishBlock wraps the block text and applies list and quote prefixes.
func (p *DocumentPrinter) finishBlock(b *block) string {
	info := b.info
	text := b.text.String()

	if info.Kind == content.NodeCodeBlock && info.Language != "" {
		text = p.styles.Language.Render(info.Language) + "\n" + text
	}

	first, rest := p.prefixes(info)
	wrap := p.width > 0 && info.Kind != content.NodeCodeBlock && info.Kind != content.NodeTable
	if wrap {
		// Width pads every line; the padding is trimmed below.
		if avail := p.width - lipgloss.Width(first); avail > 0 {
			text = p.styles.NewStyle().Width(avail).Render(text)
		}
	}

	lines := strings.Split(text, "\n")
	for i := range lines {
		if wrap {
			lines[i] = strings.TrimRight(lines[i], " ")
		}
		if i == 0 {
			lines[i] = first + lines[i]
		} else {
			lines[i] = rest + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// prefixes returns the prefix of the first line and of continuation lines.
func (p *DocumentPrinter) prefixes(info *runs.BlockInfo) (string, string) {
	quote := p.styles.Quote.Render(strings.Repeat(quotePrefix, info.QuoteDepth))
	if info.ListDepth == 0 {
		return quote, quote
	}

	indent := strings.Repeat(listIndent, info.ListDepth-1)
	marker := info.Marker
	switch info.Task {
	case runs.TaskOpen:
		marker = "☐"
	case runs.TaskDone:
		marker = "☑"
	case runs.TaskNone:
	}

	// Continuation blocks of an item align with the text after the marker.
	hang := indent + strings.Repeat(" ", lipgloss.Width(markerFor(info))+1)
	if marker == "" {
		return quote + hang, quote + hang
	}
	return quote + indent + p.styles.Marker.Render(marker) + " ", quote + hang
}

// markerFor returns the marker that sizes the hanging indent.
func markerFor(info *runs.BlockInfo) string {
	if info.Marker != "" {
		return info.Marker
	}
	return "•"
}

func (p *DocumentPrinter) run(r *runs.StyledRun) string {
	return p.styles.textStyle(r.Style, r.Link != "").Render(r.Text)
}

// textStyle maps a run style onto a terminal style. Backgrounds are only
// painted behind monospace text.
func (s *Styles) textStyle(st style.Style, link bool) lipgloss.Style {
	ls := s.NewStyle()
	if !st.Fg.IsZero() {
		ls = ls.Foreground(lipgloss.Color(opaque(st.Fg).Hex()))
	}
	if st.Monospace && !st.Bg.IsZero() {
		ls = ls.Background(lipgloss.Color(opaque(st.Bg).Hex()))
	}
	return ls.Bold(st.Bold()).
		Italic(st.Italic).
		Underline(st.Underline || link).
		Strikethrough(st.Strikethrough)
}

// opaque drops alpha; terminals have no blending.
func opaque(c style.Color) style.Color {
	c.A = 0xff
	return c
}

func (p *DocumentPrinter) asset(seq *runs.Sequence, a *runs.InlineAsset) string {
	if a.Kind == runs.EmbeddedBlock {
		if a.Block >= 0 && a.Block < len(seq.Blocks) {
			return p.table(seq.Blocks[a.Block])
		}
		return ""
	}

	label := a.Alt
	if label == "" {
		label = a.Kind.String()
	}
	if a.Broken {
		return p.styles.Broken.Render("[✗ " + label + "]")
	}
	return p.styles.Asset.Render("[" + label + "]")
}

func (p *DocumentPrinter) table(t runs.Table) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var aligns []lipgloss.Position
	var headers []string
	rows := make([][]string, 0, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		header := true
		for j, cell := range row {
			cells[j] = p.Format(cell.Content)
			header = header && cell.Header
			if j >= len(aligns) {
				aligns = append(aligns, position(cell.Align))
			}
		}
		if i == 0 && header {
			headers = cells
			continue
		}
		rows = append(rows, cells)
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.Rule).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := p.styles.NewStyle().Padding(0, 1)
			if col < len(aligns) {
				s = s.Align(aligns[col])
			}
			if row == table.HeaderRow {
				s = s.Bold(true)
			}
			return s
		})
	return tbl.Render()
}

func position(a content.Alignment) lipgloss.Position {
	switch a {
	case content.AlignCenter:
		return lipgloss.Center
	case content.AlignRight:
		return lipgloss.Right
	case content.AlignNone, content.AlignLeft:
		return lipgloss.Left
	default:
		return lipgloss.Left
	}
}

func (p *DocumentPrinter) ruleWidth() int {
	if p.width > 0 {
		return p.width
	}
	return defaultTermWidth
}
