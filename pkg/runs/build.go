package runs

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/highlight"
	"github.com/yaklabco/docrender/pkg/raster"
	"github.com/yaklabco/docrender/pkg/style"
	"github.com/yaklabco/docrender/pkg/textmetrics"
)

// BrokenGlyphHandle is the handle of the placeholder drawn for failed assets.
// Its source is raster.BrokenGlyph.
const BrokenGlyphHandle = "docrender:broken-glyph"

// DefaultBaseSize is the body font size in logical units.
const DefaultBaseSize = 16

// cellPadding is added on each side of a table cell.
const cellPadding = 6

// ErrNoResolver is returned for images when Build has no asset resolver.
var ErrNoResolver = errors.New("no asset resolver")

// headingScales maps heading levels to font scale.
//
//nolint:gochecknoglobals // Read-only lookup table.
var headingScales = [7]float64{1, 2.0, 1.5, 1.25, 1.1, 1.0, 1.0}

// AssetRef is what the document knows about an image.
type AssetRef struct {
	Source string
	Alt    string
	Width  float64
	Height float64
}

// Resolved is the resolver's answer for an asset.
type Resolved struct {
	Kind    AssetKind
	Handle  string
	Natural raster.Size
}

// AssetResolver looks up images referenced by a document.
type AssetResolver interface {
	Resolve(ref AssetRef) (Resolved, error)
}

// ResolverFunc adapts a function to AssetResolver.
type ResolverFunc func(ref AssetRef) (Resolved, error)

// Resolve implements AssetResolver.
func (f ResolverFunc) Resolve(ref AssetRef) (Resolved, error) {
	return f(ref)
}

// Options configures Build.
type Options struct {
	// BaseSize is the body font size. Zero selects DefaultBaseSize.
	BaseSize float64

	// Measurer measures runs. Nil selects the Go fonts.
	Measurer textmetrics.Measurer

	// Highlighter highlights code blocks. Nil selects a shared instance.
	Highlighter *highlight.Highlighter
}

//nolint:gochecknoglobals // Lazily initialized, read-only after.
var sharedHighlighter = sync.OnceValue(func() *highlight.Highlighter {
	return highlight.New()
})

// Build walks root in document order and produces its run sequence. A nil
// theme selects the default theme. Build does not modify root and returns the
// same sequence for the same inputs.
func Build(root *content.Node, theme *highlight.Theme, resolver AssetResolver, opts Options) *Sequence {
	if theme == nil {
		theme = highlight.Default()
	}
	if opts.BaseSize <= 0 {
		opts.BaseSize = DefaultBaseSize
	}
	if opts.Measurer == nil {
		opts.Measurer = textmetrics.Default()
	}
	if opts.Highlighter == nil {
		opts.Highlighter = sharedHighlighter()
	}

	b := &builder{theme: theme, resolver: resolver, opts: opts, seq: &Sequence{}}
	b.children(root, b.rootAccum())
	b.flushMarker()
	return b.seq
}

// accum is the style context inherited down the tree.
type accum struct {
	style      style.Style
	class      string
	link       string
	listDepth  int
	quoteDepth int
}

type marker struct {
	text string
	task TaskState
}

type builder struct {
	theme    *highlight.Theme
	resolver AssetResolver
	opts     Options
	seq      *Sequence

	// pending is the list marker waiting for the first block of an item.
	pending *marker
}

func (b *builder) rootAccum() accum {
	return accum{
		style: b.theme.Plain().Merge(b.theme.Overlay(highlight.ClassText)),
		class: highlight.ClassText,
	}
}

func (b *builder) children(n *content.Node, acc accum) {
	for child := n.FirstChild; child != nil; child = child.Next {
		b.node(child, acc)
	}
}

func (b *builder) node(n *content.Node, acc accum) {
	switch n.Kind {
	case content.NodeDocument:
		b.children(n, acc)

	// Blocks.
	case content.NodeParagraph:
		b.blockBreak(BlockInfo{Kind: n.Kind}, acc)
		b.children(n, acc)

	case content.NodeHeading:
		level := min(max(n.HeadingLevel(), 1), 6)
		acc.style = acc.style.Merge(b.theme.Overlay(highlight.ClassHeading))
		acc.style.Weight = max(acc.style.Weight, style.WeightBold)
		acc.style.Scale = headingScales[level]
		acc.class = highlight.ClassHeading
		b.blockBreak(BlockInfo{Kind: n.Kind, Level: level}, acc)
		b.children(n, acc)

	case content.NodeList:
		b.list(n, acc)

	case content.NodeListItem:
		b.children(n, acc)

	case content.NodeBlockquote:
		acc.quoteDepth++
		acc.style = acc.style.Merge(b.theme.Overlay(highlight.ClassQuote))
		acc.class = highlight.ClassQuote
		b.children(n, acc)

	case content.NodeCodeBlock:
		b.codeBlock(n, acc)

	case content.NodeThematicBreak:
		b.blockBreak(BlockInfo{Kind: n.Kind}, acc)
		b.seq.Items = append(b.seq.Items, Item{Kind: ItemRule})

	case content.NodeTable:
		b.blockBreak(BlockInfo{Kind: n.Kind}, acc)
		b.table(n, acc)

	case content.NodeTableRow, content.NodeTableCell:
		// Only reachable for malformed trees; render the content inline.
		b.children(n, acc)

	// Inlines.
	case content.NodeText:
		b.run(n.Text(), acc)

	case content.NodeEmphasis:
		acc.style.Italic = true
		b.children(n, acc)

	case content.NodeStrong:
		acc.style.Weight = max(acc.style.Weight, style.WeightBold)
		b.children(n, acc)

	case content.NodeStrikethrough:
		acc.style.Strikethrough = true
		b.children(n, acc)

	case content.NodeLink:
		acc.style = acc.style.Merge(b.theme.Overlay(highlight.ClassLink))
		acc.class = highlight.ClassLink
		if n.Inline != nil && n.Inline.Link != nil {
			acc.link = n.Inline.Link.Destination
		}
		b.children(n, acc)

	case content.NodeInlineCode:
		acc.style = acc.style.Merge(b.theme.Overlay(highlight.ClassInlineCode))
		acc.style.Monospace = true
		acc.class = highlight.ClassInlineCode
		b.run(n.Text(), acc)

	case content.NodeLineBreak:
		b.seq.Items = append(b.seq.Items, Item{Kind: ItemLineBreak})

	case content.NodeImage:
		b.image(n, acc)
	}
}

// blockBreak opens a block, attaching a pending list marker.
func (b *builder) blockBreak(info BlockInfo, acc accum) {
	info.ListDepth = acc.listDepth
	info.QuoteDepth = acc.quoteDepth
	if b.pending != nil {
		info.Marker = b.pending.text
		info.Task = b.pending.task
		b.pending = nil
	}
	b.seq.Items = append(b.seq.Items, Item{Kind: ItemBlockBreak, Block: &info})
}

// flushMarker emits a pending marker of an item that had no blocks.
func (b *builder) flushMarker() {
	if b.pending != nil {
		b.blockBreak(BlockInfo{Kind: content.NodeListItem}, accum{})
	}
}

func (b *builder) list(n *content.Node, acc accum) {
	acc.listDepth++
	attrs := &content.ListAttrs{Marker: "-"}
	if n.Block != nil && n.Block.List != nil {
		attrs = n.Block.List
	}

	index := 0
	for item := n.FirstChild; item != nil; item = item.Next {
		b.flushMarker()
		m := &marker{text: bullet(acc.listDepth)}
		if attrs.Ordered {
			delimiter := attrs.Marker
			if delimiter != ")" {
				delimiter = "."
			}
			m.text = strconv.Itoa(attrs.Start+index) + delimiter
		}
		if item.Block != nil && item.Block.Task != nil {
			m.task = TaskOpen
			if item.Block.Task.Checked {
				m.task = TaskDone
			}
		}
		b.pending = m
		b.node(item, acc)
		index++
	}
	b.flushMarker()
}

func bullet(depth int) string {
	switch depth {
	case 1:
		return "•"
	case 2:
		return "◦"
	default:
		return "▪"
	}
}

func (b *builder) run(text string, acc accum) {
	if text == "" {
		return
	}
	b.seq.Items = append(b.seq.Items, Item{Kind: ItemRun, Run: &StyledRun{
		Text:    text,
		Class:   acc.class,
		Style:   acc.style,
		Link:    acc.link,
		Metrics: b.opts.Measurer.Measure(text, acc.style, b.opts.BaseSize),
	}})
}

func (b *builder) codeBlock(n *content.Node, acc accum) {
	language, source := "", ""
	if n.Block != nil && n.Block.CodeBlock != nil {
		language = n.Block.CodeBlock.Language
		source = n.Block.CodeBlock.Source
	}
	b.blockBreak(BlockInfo{Kind: n.Kind, Language: language}, acc)

	plain := b.theme.Plain()
	background := b.theme.Overlay(highlight.ClassCodeBackground)
	source = strings.TrimSuffix(source, "\n")

	for _, hl := range b.opts.Highlighter.Highlight(source, language, b.theme) {
		s := hl.Style
		if s.Bg == plain.Bg && !background.Bg.IsZero() {
			s.Bg = background.Bg
		}
		s.Monospace = true

		lineAcc := acc
		lineAcc.style = s
		lineAcc.class = hl.Class
		lineAcc.link = ""
		for i, line := range strings.Split(hl.Text, "\n") {
			if i > 0 {
				b.seq.Items = append(b.seq.Items, Item{Kind: ItemLineBreak})
			}
			b.run(line, lineAcc)
		}
	}
}

func (b *builder) image(n *content.Node, acc accum) {
	attrs := content.ImageAttrs{}
	if n.Inline != nil && n.Inline.Image != nil {
		attrs = *n.Inline.Image
	}
	ref := AssetRef{Source: attrs.Source, Alt: attrs.Alt, Width: attrs.Width, Height: attrs.Height}
	lineHeight := b.opts.BaseSize * acc.style.EffectiveScale()

	var (
		resolved Resolved
		err      error
	)
	if b.resolver == nil {
		err = ErrNoResolver
	} else {
		resolved, err = b.resolver.Resolve(ref)
	}

	if err != nil {
		b.seq.Errors = append(b.seq.Errors, err)
		size := intrinsic(ref, raster.Size{W: lineHeight, H: lineHeight})
		b.seq.Items = append(b.seq.Items, Item{Kind: ItemAsset, Asset: &InlineAsset{
			Kind:   VectorIcon,
			Handle: BrokenGlyphHandle,
			Width:  size.W,
			Height: size.H,
			Alt:    attrs.Alt,
			Broken: true,
		}})
		return
	}

	natural := resolved.Natural
	if !natural.Valid() {
		natural = raster.Size{W: lineHeight, H: lineHeight}
	}
	size := intrinsic(ref, natural)
	b.seq.Items = append(b.seq.Items, Item{Kind: ItemAsset, Asset: &InlineAsset{
		Kind:   resolved.Kind,
		Handle: resolved.Handle,
		Width:  size.W,
		Height: size.H,
		Alt:    attrs.Alt,
	}})
}

// intrinsic applies explicit dimensions over the natural size. A single
// explicit dimension keeps the natural aspect ratio.
func intrinsic(ref AssetRef, natural raster.Size) raster.Size {
	switch {
	case ref.Width > 0 && ref.Height > 0:
		return raster.Size{W: ref.Width, H: ref.Height}
	case ref.Width > 0:
		return raster.Size{W: ref.Width, H: ref.Width * natural.H / natural.W}
	case ref.Height > 0:
		return raster.Size{W: ref.Height * natural.W / natural.H, H: ref.Height}
	default:
		return natural
	}
}

func (b *builder) table(n *content.Node, acc accum) {
	var table Table
	cols := 0
	if n.Block != nil && n.Block.Table != nil {
		cols = n.Block.Table.Cols
	}

	for row := n.FirstChild; row != nil; row = row.Next {
		if row.Kind != content.NodeTableRow {
			continue
		}
		var cells []Cell
		width := 0
		for cellNode := row.FirstChild; cellNode != nil; cellNode = cellNode.Next {
			cell := b.cell(cellNode, acc)
			width += cell.ColSpan
			cells = append(cells, cell)
		}
		cols = max(cols, width)
		table.Rows = append(table.Rows, cells)
	}

	table.ColumnWidths = make([]float64, cols)
	table.RowHeights = make([]float64, len(table.Rows))
	for r, row := range table.Rows {
		col := 0
		for _, cell := range row {
			share := cell.Width / float64(cell.ColSpan)
			for c := col; c < col+cell.ColSpan && c < cols; c++ {
				table.ColumnWidths[c] = max(table.ColumnWidths[c], share)
			}
			col += cell.ColSpan
			table.RowHeights[r] = max(table.RowHeights[r], cell.Height/float64(cell.RowSpan))
		}
	}

	var width, height float64
	for _, w := range table.ColumnWidths {
		width += w
	}
	for _, h := range table.RowHeights {
		height += h
	}

	b.seq.Blocks = append(b.seq.Blocks, table)
	b.seq.Items = append(b.seq.Items, Item{Kind: ItemAsset, Asset: &InlineAsset{
		Kind:   EmbeddedBlock,
		Width:  width,
		Height: height,
		Block:  len(b.seq.Blocks) - 1,
	}})
}

func (b *builder) cell(n *content.Node, acc accum) Cell {
	cell := Cell{ColSpan: 1, RowSpan: 1}
	if n.Block != nil && n.Block.Cell != nil {
		attrs := n.Block.Cell
		cell.Header = attrs.Header
		cell.Align = attrs.Align
		cell.ColSpan = max(attrs.ColSpan, 1)
		cell.RowSpan = max(attrs.RowSpan, 1)
	}

	inner := &builder{theme: b.theme, resolver: b.resolver, opts: b.opts, seq: &Sequence{}}
	cellAcc := acc
	if cell.Header {
		cellAcc.style.Weight = max(cellAcc.style.Weight, style.WeightBold)
	}
	inner.children(n, cellAcc)
	inner.flushMarker()

	b.seq.Errors = append(b.seq.Errors, inner.seq.Errors...)
	cell.Content = inner.seq
	cell.Width, cell.Height = extent(inner.seq, b.opts.BaseSize)
	cell.Width += 2 * cellPadding
	cell.Height += 2 * cellPadding
	return cell
}

// extent returns the unwrapped width and height of a sequence.
func extent(seq *Sequence, baseSize float64) (float64, float64) {
	var (
		width, height     float64
		lineW, lineH      float64
		lineOpen, started bool
	)
	endLine := func() {
		if lineOpen {
			width = max(width, lineW)
			if lineH == 0 {
				lineH = baseSize
			}
			height += lineH
		}
		lineW, lineH, lineOpen = 0, 0, false
	}

	for _, item := range seq.Items {
		switch item.Kind {
		case ItemRun:
			lineOpen = true
			lineW += item.Run.Metrics.Width
			lineH = max(lineH, item.Run.Metrics.Height())
		case ItemAsset:
			lineOpen = true
			lineW += item.Asset.Width
			lineH = max(lineH, item.Asset.Height)
		case ItemLineBreak:
			lineOpen = true
			endLine()
			lineOpen = true
		case ItemBlockBreak:
			if started {
				endLine()
			}
			started = true
		case ItemRule:
			lineOpen = true
			lineH = max(lineH, 1)
		}
	}
	endLine()
	return width, height
}
