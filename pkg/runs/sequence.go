// Package runs turns a content tree into the ordered sequence of styled runs
// and inline asset placeholders consumed by a text layout engine.
package runs

import (
	"encoding/json"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/raster"
	"github.com/yaklabco/docrender/pkg/style"
	"github.com/yaklabco/docrender/pkg/textmetrics"
)

// ItemKind classifies sequence items. The set is closed.
type ItemKind uint8

// Item kinds.
const (
	// ItemRun is a styled text run.
	ItemRun ItemKind = iota + 1
	// ItemAsset is an inline asset placeholder.
	ItemAsset
	// ItemLineBreak forces a new line inside a block.
	ItemLineBreak
	// ItemBlockBreak starts a new block.
	ItemBlockBreak
	// ItemRule is a horizontal rule.
	ItemRule
)

func (k ItemKind) String() string {
	switch k {
	case ItemRun:
		return "run"
	case ItemAsset:
		return "asset"
	case ItemLineBreak:
		return "line-break"
	case ItemBlockBreak:
		return "block-break"
	case ItemRule:
		return "rule"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k ItemKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// AssetKind classifies inline assets.
type AssetKind uint8

// Asset kinds.
const (
	RasterImage AssetKind = iota + 1
	VectorIcon
	EmbeddedBlock
)

func (k AssetKind) String() string {
	switch k {
	case RasterImage:
		return "raster-image"
	case VectorIcon:
		return "vector-icon"
	case EmbeddedBlock:
		return "embedded-block"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k AssetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// TaskState is the checkbox state of a list item.
type TaskState uint8

// Task states.
const (
	TaskNone TaskState = iota
	TaskOpen
	TaskDone
)

// StyledRun is a contiguous span of text sharing one style.
type StyledRun struct {
	Text    string              `json:"text"`
	Class   string              `json:"class"`
	Style   style.Style         `json:"style"`
	Link    string              `json:"link,omitempty"`
	Metrics textmetrics.Metrics `json:"metrics"`
}

// InlineAsset is a placeholder for an image, icon or embedded block. The
// pixels stay in the asset cache; Handle is the lookup key.
type InlineAsset struct {
	Kind   AssetKind `json:"kind"`
	Handle string    `json:"handle,omitempty"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Alt    string    `json:"alt,omitempty"`
	Broken bool      `json:"broken,omitempty"`

	// Block indexes Sequence.Blocks for EmbeddedBlock assets.
	Block int `json:"block,omitempty"`
}

// Size returns the intrinsic size.
func (a InlineAsset) Size() raster.Size {
	return raster.Size{W: a.Width, H: a.Height}
}

// BlockInfo describes the block that a block break opens.
type BlockInfo struct {
	Kind       content.NodeKind `json:"kind"`
	Level      int              `json:"level,omitempty"`
	ListDepth  int              `json:"list_depth,omitempty"`
	QuoteDepth int              `json:"quote_depth,omitempty"`
	Marker     string           `json:"marker,omitempty"`
	Task       TaskState        `json:"task,omitempty"`
	Language   string           `json:"language,omitempty"`
}

// Item is one element of a Sequence. Exactly one of Run, Asset or Block is
// set for ItemRun, ItemAsset and ItemBlockBreak; the others carry no data.
type Item struct {
	Kind  ItemKind     `json:"kind"`
	Run   *StyledRun   `json:"run,omitempty"`
	Asset *InlineAsset `json:"asset,omitempty"`
	Block *BlockInfo   `json:"block,omitempty"`
}

// Cell is one table cell with its own run sequence.
type Cell struct {
	Header  bool              `json:"header,omitempty"`
	Align   content.Alignment `json:"align,omitempty"`
	ColSpan int               `json:"colspan"`
	RowSpan int               `json:"rowspan"`
	Content *Sequence         `json:"content"`
	Width   float64           `json:"width"`
	Height  float64           `json:"height"`
}

// Table is an embedded block laid out as a grid.
type Table struct {
	Rows         [][]Cell  `json:"rows"`
	ColumnWidths []float64 `json:"column_widths"`
	RowHeights   []float64 `json:"row_heights"`
}

// Sequence is the output of Build.
type Sequence struct {
	Items  []Item  `json:"items"`
	Blocks []Table `json:"blocks,omitempty"`

	// Errors holds asset failures. The affected assets are replaced by broken
	// glyph placeholders.
	Errors []error `json:"-"`
}

// Runs returns the styled runs in order.
func (s *Sequence) Runs() []StyledRun {
	var out []StyledRun
	for _, item := range s.Items {
		if item.Kind == ItemRun {
			out = append(out, *item.Run)
		}
	}
	return out
}

// Assets returns the asset placeholders in order.
func (s *Sequence) Assets() []InlineAsset {
	var out []InlineAsset
	for _, item := range s.Items {
		if item.Kind == ItemAsset {
			out = append(out, *item.Asset)
		}
	}
	return out
}

// Text renders the sequence as plain text: blocks are separated by blank
// lines, line breaks become newlines and assets their alt text.
func (s *Sequence) Text() string {
	var buf strings.Builder
	for i, item := range s.Items {
		switch item.Kind {
		case ItemRun:
			buf.WriteString(item.Run.Text)
		case ItemAsset:
			buf.WriteString(item.Asset.Alt)
		case ItemLineBreak:
			buf.WriteByte('\n')
		case ItemBlockBreak:
			if i > 0 {
				buf.WriteString("\n\n")
			}
		case ItemRule:
			buf.WriteString("---")
		}
	}
	return buf.String()
}

// Digest is a hash of the canonical JSON encoding. Equal sequences have equal
// digests.
func (s *Sequence) Digest() uint64 {
	data, err := json.Marshal(s)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}
