// Package highlight turns code into styled runs using chroma lexers and
// swappable, immutable themes.
package highlight

import (
	"maps"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/yaklabco/docrender/pkg/style"
)

// Token classes understood by themes. Dotted names refine their prefix: a
// theme without "keyword.type" styles such tokens as "keyword".
const (
	ClassPlain           = "plain"
	ClassComment         = "comment"
	ClassCommentPreproc  = "comment.preproc"
	ClassKeyword         = "keyword"
	ClassKeywordType     = "keyword.type"
	ClassKeywordConstant = "keyword.constant"
	ClassString          = "string"
	ClassStringEscape    = "string.escape"
	ClassNumber          = "number"
	ClassOperator        = "operator"
	ClassPunctuation     = "punctuation"
	ClassName            = "name"
	ClassNameFunction    = "name.function"
	ClassNameBuiltin     = "name.builtin"
	ClassNameClass       = "name.class"
	ClassNameTag         = "name.tag"
	ClassNameAttribute   = "name.attribute"
	ClassNameVariable    = "name.variable"
	ClassLiteral         = "literal"
	ClassInserted        = "generic.inserted"
	ClassDeleted         = "generic.deleted"
	ClassGenericHeading  = "generic.heading"
)

// Document classes style prose rather than code.
const (
	ClassText           = "text"
	ClassLink           = "link"
	ClassInlineCode     = "inline-code"
	ClassCodeBackground = "code-background"
	ClassQuote          = "quote"
	ClassHeading        = "heading"
)

// DefaultThemeName is the theme used for unknown names.
const DefaultThemeName = "default"

//nolint:gochecknoglobals // Process-wide counter.
var themeSerial atomic.Uint64

// Theme maps token classes to styles. A Theme is immutable once created.
type Theme struct {
	name    string
	id      uint64
	plain   style.Style
	classes map[string]style.Style
}

// NewTheme creates a theme. The classes map is copied.
func NewTheme(name string, plain style.Style, classes map[string]style.Style) *Theme {
	return &Theme{
		name:    name,
		id:      themeSerial.Add(1),
		plain:   plain,
		classes: maps.Clone(classes),
	}
}

// Name returns the theme name.
func (t *Theme) Name() string {
	return t.name
}

// ID distinguishes theme values that share a name. Every theme created by
// NewTheme or With gets a new ID.
func (t *Theme) ID() uint64 {
	return t.id
}

// Plain returns the base style every class inherits from.
func (t *Theme) Plain() style.Style {
	return t.plain
}

// Has reports whether the theme defines class exactly.
func (t *Theme) Has(class string) bool {
	_, ok := t.classes[class]
	return ok
}

// Classes returns the defined class names, sorted.
func (t *Theme) Classes() []string {
	return slices.Sorted(maps.Keys(t.classes))
}

// Style returns the style for class merged over the plain style.
func (t *Theme) Style(class string) style.Style {
	_, s := t.Resolve(class)
	return s
}

// Resolve finds the most specific class the theme defines for class,
// trimming dotted suffixes until one matches. It returns ClassPlain when none
// does.
func (t *Theme) Resolve(class string) (string, style.Style) {
	for class != "" {
		if s, ok := t.classes[class]; ok {
			return class, t.plain.Merge(s)
		}
		i := strings.LastIndexByte(class, '.')
		if i < 0 {
			break
		}
		class = class[:i]
	}
	return ClassPlain, t.plain
}

// Overlay returns the attributes the theme sets for class itself, without the
// plain style underneath. Prose styles stack overlays on an inherited style.
func (t *Theme) Overlay(class string) style.Style {
	for class != "" {
		if s, ok := t.classes[class]; ok {
			return s
		}
		i := strings.LastIndexByte(class, '.')
		if i < 0 {
			break
		}
		class = class[:i]
	}
	return style.Style{}
}

// With returns a copy of t named name with classes overlaid.
func (t *Theme) With(name string, plain style.Style, classes map[string]style.Style) *Theme {
	merged := maps.Clone(t.classes)
	if merged == nil {
		merged = make(map[string]style.Style, len(classes))
	}
	for class, s := range classes {
		merged[class] = merged[class].Merge(s)
	}
	return NewTheme(name, t.plain.Merge(plain), merged)
}
