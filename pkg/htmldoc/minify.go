package htmldoc

import (
	"strings"

	"golang.org/x/net/html"
)

// blockElements start a new block formatting context. Whitespace at their
// edges is insignificant.
//
//nolint:gochecknoglobals // Read-only lookup table.
var blockElements = map[string]bool{
	"body": true, "div": true, "p": true, "blockquote": true, "pre": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true,
	"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true, "th": true, "td": true,
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockElements[n.Data]
}

func preservesSpace(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "pre" || n.Data == "code")
}

// minify rewrites the tree under root into its canonical whitespace form:
// whitespace runs outside pre and code collapse to one space, whitespace at
// block edges and between blocks disappears, comments are dropped.
func minify(root *html.Node) {
	collapse(root)
	trimBlocks(root)
	removeEmptyText(root)
}

func collapse(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.TextNode:
			c.Data = collapseSpaces(c.Data)
		case html.CommentNode, html.DoctypeNode:
			n.RemoveChild(c)
		case html.ElementNode:
			if !preservesSpace(c) {
				collapse(c)
			}
		default:
		}
		c = next
	}
}

func collapseSpaces(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' {
			if !space {
				buf.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		buf.WriteRune(r)
	}
	return buf.String()
}

// trimBlocks walks every block container, splitting its children into inline
// runs separated by block children, and trims each run.
func trimBlocks(n *html.Node) {
	var run []*html.Node
	flush := func() {
		trimRun(run)
		run = run[:0]
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			flush()
			if !preservesSpace(c) {
				trimBlocks(c)
			}
			continue
		}
		run = append(run, c)
	}
	flush()
}

// trimRun removes leading and trailing whitespace of an inline run and
// collapses spaces that meet across element boundaries.
func trimRun(run []*html.Node) {
	if len(run) == 0 {
		return
	}

	prevSpace := true
	for _, n := range run {
		joinSpaces(n, &prevSpace)
	}

	for i := len(run) - 1; i >= 0; i-- {
		if trimTrailing(run[i]) {
			break
		}
	}
}

func joinSpaces(n *html.Node, prevSpace *bool) {
	switch {
	case n.Type == html.TextNode:
		if *prevSpace {
			n.Data = strings.TrimLeft(n.Data, " ")
		}
		if n.Data != "" {
			*prevSpace = strings.HasSuffix(n.Data, " ")
		}
	case n.Type != html.ElementNode:
	case n.Data == "br":
		*prevSpace = true
	case preservesSpace(n), n.Data == "img":
		*prevSpace = false
	case isBlock(n):
		trimBlocks(n)
		*prevSpace = true
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			joinSpaces(c, prevSpace)
		}
	}
}

// trimTrailing strips trailing spaces from the last text of n. It reports
// whether non-space content was reached.
func trimTrailing(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		n.Data = strings.TrimRight(n.Data, " ")
		return n.Data != ""
	case html.ElementNode:
		if preservesSpace(n) || n.FirstChild == nil {
			return true
		}
		for c := n.LastChild; c != nil; c = c.PrevSibling {
			if trimTrailing(c) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func removeEmptyText(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.TextNode && c.Data == "":
			n.RemoveChild(c)
		case c.Type == html.ElementNode && !preservesSpace(c):
			removeEmptyText(c)
		}
		c = next
	}
}

// render serializes the children of root.
func render(root *html.Node) (string, error) {
	var buf strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// textContent concatenates every text node below n.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte('\n')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
