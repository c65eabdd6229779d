// Package markdown parses CommonMark/GFM source into the unified content tree
// using goldmark.
package markdown

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/htmldoc"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// ListPolicy decides when adjacent list items belong to separate lists.
type ListPolicy uint8

const (
	// ListSplitOnMarker starts a new list whenever the bullet character or
	// ordered delimiter changes, as CommonMark specifies.
	ListSplitOnMarker ListPolicy = iota

	// ListSplitOnKind only separates ordered from unordered lists; adjacent
	// lists of the same kind are merged.
	ListSplitOnKind
)

// String returns the policy name used in configuration.
func (p ListPolicy) String() string {
	if p == ListSplitOnKind {
		return "split-on-kind"
	}
	return "split-on-marker"
}

// ParseListPolicy parses a policy name.
func ParseListPolicy(s string) (ListPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "split-on-marker":
		return ListSplitOnMarker, nil
	case "split-on-kind":
		return ListSplitOnKind, nil
	default:
		return ListSplitOnMarker, fmt.Errorf("unknown list policy %q (valid: split-on-marker, split-on-kind)", s)
	}
}

// Options configures a Parser.
type Options struct {
	// Flavor is FlavorGFM (default) or FlavorCommonMark.
	Flavor string

	// Lists selects the list splitting policy.
	Lists ListPolicy

	// HTMLPolicy sanitizes embedded HTML blocks. Nil selects the default.
	HTMLPolicy *htmldoc.Policy

	// Sink receives degradation events. Nil discards them.
	Sink diag.Sink
}

// Document is a parsed Markdown document.
type Document struct {
	// Root is the Document node.
	Root *content.Node

	// RawHTML holds every raw HTML block and inline tag in source order,
	// before sanitization.
	RawHTML []string
}

// Parser converts Markdown into content trees. It is safe for concurrent use.
type Parser struct {
	flavor    string
	lists     ListPolicy
	md        goldmark.Markdown
	sanitizer *htmldoc.Sanitizer
	sink      diag.Sink
}

// New creates a goldmark-based parser.
// Unknown flavors default to GFM.
func New(opts Options) *Parser {
	f := flavorOrDefault(opts.Flavor)
	sink := diag.OrDiscard(opts.Sink)
	return &Parser{
		flavor:    f,
		lists:     opts.Lists,
		md:        newGoldmarkInstance(f),
		sanitizer: htmldoc.NewSanitizer(opts.HTMLPolicy, sink),
		sink:      sink,
	}
}

//nolint:gochecknoglobals // Shared parser behind Parse.
var defaultParser = New(Options{})

// Parse converts source with the default GFM parser.
func Parse(source string) *content.Node {
	return defaultParser.Parse(source)
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse converts source into a Document node. It never fails: malformed
// constructs degrade to literal text.
func (p *Parser) Parse(source string) *content.Node {
	return p.ParseDocument(source).Root
}

// ParseDocument converts source and also reports the raw HTML it contained.
func (p *Parser) ParseDocument(source string) *Document {
	if !utf8.ValidString(source) {
		p.sink.Report(diag.Event{Kind: diag.ParseDegraded, Message: "invalid UTF-8 replaced"})
		source = strings.ToValidUTF8(source, "\uFFFD")
	}

	src := []byte(source)
	gmDoc := p.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	m := newMapper(src, p)
	root := m.mapDocument(gmDoc)
	content.AlignGraphemes(root)

	return &Document{Root: root, RawHTML: m.rawHTML}
}

// flavorOrDefault returns the flavor if valid, otherwise GFM.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorGFM
	}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option

	switch flavor {
	case FlavorGFM:
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(opts...)
}
