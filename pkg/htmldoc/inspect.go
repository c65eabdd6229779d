package htmldoc

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// activeElements need script execution, plugins or form handling.
//
//nolint:gochecknoglobals // Read-only lookup table.
var activeElements = map[string]bool{
	"script": true, "noscript": true, "iframe": true, "frame": true, "frameset": true,
	"object": true, "embed": true, "applet": true, "canvas": true,
	"form": true, "input": true, "button": true, "select": true, "textarea": true,
	"video": true, "audio": true, "svg": true, "math": true,
}

// urlAttributes may carry a javascript: URL.
//
//nolint:gochecknoglobals // Read-only lookup table.
var urlAttributes = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true, "xlink:href": true,
}

// Report describes what in a document cannot be represented natively.
type Report struct {
	// Scripted is true when the document runs script: script elements,
	// event handler attributes or javascript: URLs.
	Scripted bool

	// Unsupported lists the active elements and handler attributes found,
	// sorted and deduplicated.
	Unsupported []string
}

// Native reports whether the document renders without a web engine.
func (r Report) Native() bool {
	return !r.Scripted && len(r.Unsupported) == 0
}

// Inspect scans raw HTML for content the native pipeline cannot honor.
func Inspect(source string) Report {
	var report Report

	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return report
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if activeElements[n.Data] {
				report.Unsupported = append(report.Unsupported, n.Data)
				if n.Data == "script" {
					report.Scripted = true
				}
			}
			for _, a := range n.Attr {
				key := strings.ToLower(a.Key)
				switch {
				case strings.HasPrefix(key, "on"):
					report.Scripted = true
					report.Unsupported = append(report.Unsupported, key)
				case urlAttributes[key] && IsScriptURL(a.Val):
					report.Scripted = true
					report.Unsupported = append(report.Unsupported, key+"=javascript:")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	slices.Sort(report.Unsupported)
	report.Unsupported = slices.Compact(report.Unsupported)
	return report
}

// IsScriptURL reports whether raw is a javascript: URL. The scheme is matched
// the way browsers do, ignoring embedded whitespace and control characters.
func IsScriptURL(raw string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, raw)
	return strings.HasPrefix(strings.ToLower(cleaned), "javascript:")
}
