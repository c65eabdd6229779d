package htmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// languageClass is the only class value kept, and only on code elements.
//
//nolint:gochecknoglobals // Compiled once.
var languageClass = regexp.MustCompile(`^language-[\w+#.-]+$`)

//nolint:gochecknoglobals // Compiled once.
var alignValue = regexp.MustCompile(`^(?i:left|center|right)$`)

// Policy is the element and attribute allowlist applied to HTML input.
type Policy struct {
	// Elements that survive sanitization. Others are replaced by their text.
	Elements []string `yaml:"elements"`

	// Attributes maps an attribute name to the elements it is kept on.
	// The element "*" keeps it everywhere.
	Attributes map[string][]string `yaml:"attributes"`

	// DropContent lists elements removed together with their content.
	DropContent []string `yaml:"drop_content"`

	// URLSchemes allowed in href and src. Relative URLs are always allowed.
	URLSchemes []string `yaml:"url_schemes"`

	// LanguageClasses keeps class="language-x" on code elements.
	LanguageClasses bool `yaml:"language_classes"`
}

// DefaultPolicy returns the built-in allowlist.
func DefaultPolicy() *Policy {
	return &Policy{
		Elements: []string{
			"p", "br", "hr",
			"h1", "h2", "h3", "h4", "h5", "h6",
			"ul", "ol", "li", "blockquote", "pre", "code",
			"em", "i", "strong", "b", "del", "s",
			"a", "img",
			"table", "thead", "tbody", "tfoot", "tr", "th", "td",
			"span", "div",
		},
		Attributes: map[string][]string{
			"href":    {"a"},
			"title":   {"a", "img"},
			"src":     {"img"},
			"alt":     {"img"},
			"width":   {"img"},
			"height":  {"img"},
			"colspan": {"td", "th"},
			"rowspan": {"td", "th"},
			"align":   {"td", "th"},
			"start":   {"ol"},
		},
		DropContent:     []string{"script", "style"},
		URLSchemes:      []string{"http", "https", "mailto"},
		LanguageClasses: true,
	}
}

// LoadPolicy reads a policy from YAML. Missing sections fall back to the
// defaults.
func LoadPolicy(data []byte) (*Policy, error) {
	policy := DefaultPolicy()

	var raw struct {
		Elements        []string            `yaml:"elements"`
		Attributes      map[string][]string `yaml:"attributes"`
		DropContent     []string            `yaml:"drop_content"`
		URLSchemes      []string            `yaml:"url_schemes"`
		LanguageClasses *bool               `yaml:"language_classes"`
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return policy, nil
		}
		return nil, fmt.Errorf("decode html policy: %w", err)
	}

	if raw.Elements != nil {
		policy.Elements = raw.Elements
	}
	if raw.Attributes != nil {
		policy.Attributes = raw.Attributes
	}
	if raw.DropContent != nil {
		policy.DropContent = raw.DropContent
	}
	if raw.URLSchemes != nil {
		policy.URLSchemes = raw.URLSchemes
	}
	if raw.LanguageClasses != nil {
		policy.LanguageClasses = *raw.LanguageClasses
	}

	return policy, nil
}

// AllowsElement reports whether name survives sanitization.
func (p *Policy) AllowsElement(name string) bool {
	return slices.Contains(p.Elements, name)
}

// AllowsAttribute reports whether attr survives on element.
func (p *Policy) AllowsAttribute(element, attr string) bool {
	if attr == "class" && element == "code" && p.LanguageClasses {
		return true
	}
	elements, ok := p.Attributes[attr]
	if !ok {
		return false
	}
	return slices.Contains(elements, element) || slices.Contains(elements, "*")
}

// drops reports whether element is removed with its content.
func (p *Policy) drops(element string) bool {
	return slices.Contains(p.DropContent, element)
}

// bluemonday compiles the allowlist.
func (p *Policy) bluemonday() *bluemonday.Policy {
	bm := bluemonday.NewPolicy()
	bm.AllowElements(p.Elements...)

	for _, attr := range lo.Keys(p.Attributes) {
		elements := p.Attributes[attr]
		builder := bm.AllowAttrs(attr)
		switch attr {
		case "colspan", "rowspan", "start":
			builder = builder.Matching(bluemonday.Integer)
		case "width", "height":
			builder = builder.Matching(bluemonday.NumberOrPercent)
		case "align":
			builder = builder.Matching(alignValue)
		}
		if slices.Contains(elements, "*") {
			builder.Globally()
			continue
		}
		builder.OnElements(elements...)
	}

	if p.LanguageClasses {
		bm.AllowAttrs("class").Matching(languageClass).OnElements("code")
	}

	bm.AllowURLSchemes(p.URLSchemes...)
	bm.RequireParseableURLs(true)
	bm.AllowRelativeURLs(true)
	if len(p.DropContent) > 0 {
		bm.SkipElementsContent(p.DropContent...)
	}

	return bm
}
