package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/htmldoc"
	"github.com/yaklabco/docrender/pkg/markdown"
)

// Format is a document source format.
type Format uint8

const (
	FormatMarkdown Format = iota
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatHTML:
		return "html"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// ParseFormat parses "markdown" (or "md") and "html" (or "htm").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return 0, fmt.Errorf("unknown format %q (valid: markdown, html)", s)
	}
}

// FormatForPath picks the format from a file extension. Unknown extensions
// are Markdown.
func FormatForPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
		return FormatHTML
	}
	return FormatMarkdown
}

// Capability says whether a document can be rendered without a web engine.
type Capability struct {
	// Native is true when the pipeline represents the document faithfully.
	Native bool `json:"native"`

	// Scripted is true when the document depends on script execution.
	Scripted bool `json:"scripted"`

	// Unsupported names the active elements and attributes found.
	Unsupported []string `json:"unsupported,omitempty"`
}

// CanRenderNatively inspects the raw source for content the pipeline drops:
// scripts, event handlers, javascript: URLs, embedded frames, plugins and
// form controls. Markdown is inspected through its embedded HTML.
func CanRenderNatively(source string, format Format) Capability {
	var reports []htmldoc.Report
	switch format {
	case FormatHTML:
		reports = append(reports, htmldoc.Inspect(source))
	default:
		doc := inspector.ParseDocument(source)
		reports = lo.Map(doc.RawHTML, func(raw string, _ int) htmldoc.Report {
			return htmldoc.Inspect(raw)
		})
		links := content.FindAll(doc.Root, func(n *content.Node) bool {
			return n.Kind == content.NodeLink && n.Inline != nil && n.Inline.Link != nil &&
				htmldoc.IsScriptURL(n.Inline.Link.Destination)
		})
		if len(links) > 0 {
			reports = append(reports, htmldoc.Report{Scripted: true, Unsupported: []string{"href=javascript:"}})
		}
	}

	var capability Capability
	for _, report := range reports {
		capability.Scripted = capability.Scripted || report.Scripted
		capability.Unsupported = append(capability.Unsupported, report.Unsupported...)
	}
	if len(capability.Unsupported) > 0 {
		capability.Unsupported = lo.Uniq(capability.Unsupported)
		slices.Sort(capability.Unsupported)
	}
	capability.Native = !capability.Scripted && len(capability.Unsupported) == 0
	return capability
}

// inspector parses Markdown for CanRenderNatively. Its sanitized output is
// discarded; only the raw HTML and link targets are examined.
//
//nolint:gochecknoglobals // Shared parser.
var inspector = markdown.New(markdown.Options{})
