package content

// BlockAttrs holds attributes for block-level nodes.
type BlockAttrs struct {
	// HeadingLevel is the heading level (1-6) for NodeHeading.
	HeadingLevel int

	// List holds list-specific attributes for NodeList.
	List *ListAttrs

	// Task is non-nil for list items that carry a task checkbox.
	Task *TaskAttrs

	// CodeBlock holds code block attributes for NodeCodeBlock.
	CodeBlock *CodeBlockAttrs

	// Table holds table attributes for NodeTable.
	Table *TableAttrs

	// Cell holds cell attributes for NodeTableCell.
	Cell *CellAttrs
}

// ListAttrs holds attributes for list nodes.
type ListAttrs struct {
	// Ordered is true for ordered lists (1., 2., etc.).
	Ordered bool

	// Marker is the bullet character ("-", "+", "*") or the ordered
	// delimiter ("." or ")").
	Marker string

	// Start is the starting number for ordered lists.
	Start int

	// Tight is true if this is a tight list (no blank lines between items).
	Tight bool
}

// TaskAttrs marks a list item as a task.
type TaskAttrs struct {
	Checked bool
}

// CodeBlockAttrs holds attributes for code block nodes.
type CodeBlockAttrs struct {
	// Language is the language tag. After normalization it is never empty;
	// "plaintext" means no highlighting.
	Language string

	// Source is the literal code text.
	Source string

	// Fenced is false for indented code blocks and HTML pre elements.
	Fenced bool
}

// Alignment is a table column alignment.
type Alignment uint8

// Column alignments.
const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns the alignment name.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "none"
	}
}

// TableAttrs holds attributes for table nodes.
type TableAttrs struct {
	// Rows and Cols are the grid dimensions, computed during normalization.
	Rows int
	Cols int

	// Alignments holds one entry per column when known.
	Alignments []Alignment
}

// CellAttrs holds attributes for table cell nodes.
type CellAttrs struct {
	Header  bool
	Align   Alignment
	ColSpan int
	RowSpan int
}

// InlineAttrs holds attributes for inline-level nodes.
type InlineAttrs struct {
	// Text holds the literal text for NodeText and NodeInlineCode.
	Text string

	// Link holds link attributes for NodeLink.
	Link *LinkAttrs

	// Image holds image attributes for NodeImage.
	Image *ImageAttrs
}

// LinkAttrs holds attributes for link nodes.
type LinkAttrs struct {
	// Destination is the link URL.
	Destination string

	// Title is the optional link title.
	Title string
}

// ImageAttrs holds attributes for image nodes.
type ImageAttrs struct {
	// Source is the image reference (URL, path or asset id).
	Source string

	// Alt is the plain-text alternative.
	Alt string

	// Title is the optional title.
	Title string

	// Width and Height are explicit dimensions in logical pixels; zero
	// means unspecified.
	Width  float64
	Height float64
}

// NewBlockAttrs creates a new BlockAttrs with default values.
func NewBlockAttrs() *BlockAttrs {
	return &BlockAttrs{}
}

// NewInlineAttrs creates a new InlineAttrs with default values.
func NewInlineAttrs() *InlineAttrs {
	return &InlineAttrs{}
}

// WithHeadingLevel sets the heading level and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithHeadingLevel(level int) *BlockAttrs {
	a.HeadingLevel = level
	return a
}

// WithList sets list attributes and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithList(attrs *ListAttrs) *BlockAttrs {
	a.List = attrs
	return a
}

// WithTask sets task attributes and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithTask(checked bool) *BlockAttrs {
	a.Task = &TaskAttrs{Checked: checked}
	return a
}

// WithCodeBlock sets code block attributes and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithCodeBlock(attrs *CodeBlockAttrs) *BlockAttrs {
	a.CodeBlock = attrs
	return a
}

// WithTable sets table attributes and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithTable(attrs *TableAttrs) *BlockAttrs {
	a.Table = attrs
	return a
}

// WithCell sets cell attributes and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithCell(attrs *CellAttrs) *BlockAttrs {
	a.Cell = attrs
	return a
}

// WithText sets the text content and returns the InlineAttrs for chaining.
func (a *InlineAttrs) WithText(text string) *InlineAttrs {
	a.Text = text
	return a
}

// WithLink sets link attributes and returns the InlineAttrs for chaining.
func (a *InlineAttrs) WithLink(attrs *LinkAttrs) *InlineAttrs {
	a.Link = attrs
	return a
}

// WithImage sets image attributes and returns the InlineAttrs for chaining.
func (a *InlineAttrs) WithImage(attrs *ImageAttrs) *InlineAttrs {
	a.Image = attrs
	return a
}

func (a *BlockAttrs) clone() *BlockAttrs {
	if a == nil {
		return nil
	}
	out := *a
	if a.List != nil {
		list := *a.List
		out.List = &list
	}
	if a.Task != nil {
		task := *a.Task
		out.Task = &task
	}
	if a.CodeBlock != nil {
		code := *a.CodeBlock
		out.CodeBlock = &code
	}
	if a.Table != nil {
		table := *a.Table
		table.Alignments = append([]Alignment(nil), a.Table.Alignments...)
		out.Table = &table
	}
	if a.Cell != nil {
		cell := *a.Cell
		out.Cell = &cell
	}
	return &out
}

func (a *InlineAttrs) clone() *InlineAttrs {
	if a == nil {
		return nil
	}
	out := *a
	if a.Link != nil {
		link := *a.Link
		out.Link = &link
	}
	if a.Image != nil {
		img := *a.Image
		out.Image = &img
	}
	return &out
}
