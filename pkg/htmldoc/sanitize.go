// Package htmldoc parses, sanitizes and normalizes HTML into the unified
// content tree.
//
// Input is sanitized against an element/attribute allowlist with bluemonday,
// parsed into a tree with golang.org/x/net/html, rewritten into a canonical
// whitespace form and finally mapped onto content nodes. The canonical
// serialization doubles as a stable cache key: sanitizing it again yields
// byte-identical output.
package htmldoc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/diag"
)

// Result is the outcome of sanitizing one HTML document.
type Result struct {
	// Root is the Document node.
	Root *content.Node

	// Canonical is the sanitized, whitespace-normalized serialization.
	Canonical string

	// CacheKey is the xxhash digest of Canonical.
	CacheKey uint64
}

// Sanitizer applies a Policy. It is safe for concurrent use.
type Sanitizer struct {
	policy *Policy
	bm     *bluemonday.Policy
	sink   diag.Sink
}

// NewSanitizer creates a sanitizer. A nil policy selects DefaultPolicy and a
// nil sink discards events.
func NewSanitizer(policy *Policy, sink diag.Sink) *Sanitizer {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Sanitizer{
		policy: policy,
		bm:     policy.bluemonday(),
		sink:   diag.OrDiscard(sink),
	}
}

// Policy returns the policy in effect.
func (s *Sanitizer) Policy() *Policy {
	return s.policy
}

// Sanitize cleans source and builds its content tree. It never fails:
// malformed markup is repaired by the HTML parser and anything outside the
// policy is removed or replaced by its text.
func (s *Sanitizer) Sanitize(source string) *Result {
	if !utf8.ValidString(source) {
		s.sink.Report(diag.Event{Kind: diag.ParseDegraded, Message: "invalid UTF-8 replaced"})
		source = strings.ToValidUTF8(source, "\uFFFD")
	}

	s.reportRejections(source)

	root := bodyNode()
	nodes, err := html.ParseFragment(strings.NewReader(s.bm.Sanitize(source)), bodyNode())
	if err != nil {
		s.sink.Report(diag.Event{Kind: diag.ParseDegraded, Message: "html fragment unreadable", Detail: err.Error()})
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	minify(root)

	canonical, err := render(root)
	if err != nil {
		s.sink.Report(diag.Event{Kind: diag.ParseDegraded, Message: "html render failed", Detail: err.Error()})
	}

	tree := newTreeBuilder(s.sink).build(root)
	content.AlignGraphemes(tree)

	return &Result{
		Root:      tree,
		Canonical: canonical,
		CacheKey:  xxhash.Sum64String(canonical),
	}
}

// ParseAndSanitize sanitizes source with policy and returns its Document node.
func ParseAndSanitize(source string, policy *Policy) *content.Node {
	return NewSanitizer(policy, nil).Sanitize(source).Root
}

// reportRejections emits one event per element or attribute the policy removes.
func (s *Sanitizer) reportRejections(source string) {
	if s.sink == diag.Discard {
		return
	}

	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && !structural[n.Data] {
			switch {
			case s.policy.drops(n.Data):
				s.sink.Report(diag.Event{
					Kind:    diag.SanitizationRejected,
					Message: "element removed with content",
					Detail:  n.Data,
				})
				return
			case !s.policy.AllowsElement(n.Data):
				s.sink.Report(diag.Event{
					Kind:    diag.SanitizationRejected,
					Message: "element replaced by its text",
					Detail:  n.Data,
				})
			default:
				for _, a := range n.Attr {
					if !s.policy.AllowsAttribute(n.Data, a.Key) {
						s.sink.Report(diag.Event{
							Kind:    diag.SanitizationRejected,
							Message: "attribute stripped",
							Detail:  fmt.Sprintf("%s[%s]", n.Data, a.Key),
						})
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// structural elements are synthesized by the HTML parser.
//
//nolint:gochecknoglobals // Read-only lookup table.
var structural = map[string]bool{"html": true, "head": true, "body": true}

func bodyNode() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}
