package highlight

import (
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/yaklabco/docrender/pkg/style"
)

//nolint:gochecknoglobals // Shorthand for the tables below.
var hex = style.MustParseColor

// Default returns the fixed fallback theme.
func Default() *Theme {
	return builtinDefault()
}

//nolint:gochecknoglobals // Lazily initialized, read-only after.
var builtinDefault = sync.OnceValue(func() *Theme {
	bold := style.WeightBold
	return NewTheme(DefaultThemeName, style.Style{Fg: hex("#24292f"), Bg: hex("#ffffff")}, map[string]style.Style{
		ClassComment:         {Fg: hex("#6e7781"), Italic: true},
		ClassCommentPreproc:  {Fg: hex("#8250df")},
		ClassKeyword:         {Fg: hex("#cf222e"), Weight: bold},
		ClassKeywordType:     {Fg: hex("#953800")},
		ClassKeywordConstant: {Fg: hex("#0550ae")},
		ClassString:          {Fg: hex("#0a3069")},
		ClassStringEscape:    {Fg: hex("#116329")},
		ClassNumber:          {Fg: hex("#0550ae")},
		ClassOperator:        {Fg: hex("#cf222e")},
		ClassPunctuation:     {Fg: hex("#24292f")},
		ClassNameFunction:    {Fg: hex("#8250df")},
		ClassNameBuiltin:     {Fg: hex("#0550ae")},
		ClassNameClass:       {Fg: hex("#953800"), Weight: bold},
		ClassNameTag:         {Fg: hex("#116329")},
		ClassNameAttribute:   {Fg: hex("#0550ae")},
		ClassNameVariable:    {Fg: hex("#953800")},
		ClassInserted:        {Fg: hex("#116329"), Bg: hex("#dafbe1")},
		ClassDeleted:         {Fg: hex("#82071e"), Bg: hex("#ffebe9")},
		ClassGenericHeading:  {Weight: bold},

		ClassText:           {},
		ClassLink:           {Fg: hex("#0969da"), Underline: true},
		ClassInlineCode:     {Bg: hex("#eff1f3"), Monospace: true},
		ClassCodeBackground: {Bg: hex("#f6f8fa"), Monospace: true},
		ClassQuote:          {Fg: hex("#57606a")},
		ClassHeading:        {Weight: bold},
	})
})

//nolint:gochecknoglobals // Lazily initialized, read-only after.
var builtinDark = sync.OnceValue(func() *Theme {
	bold := style.WeightBold
	return NewTheme("dark", style.Style{Fg: hex("#e6edf3"), Bg: hex("#0d1117")}, map[string]style.Style{
		ClassComment:         {Fg: hex("#8b949e"), Italic: true},
		ClassCommentPreproc:  {Fg: hex("#d2a8ff")},
		ClassKeyword:         {Fg: hex("#ff7b72"), Weight: bold},
		ClassKeywordType:     {Fg: hex("#ffa657")},
		ClassKeywordConstant: {Fg: hex("#79c0ff")},
		ClassString:          {Fg: hex("#a5d6ff")},
		ClassStringEscape:    {Fg: hex("#7ee787")},
		ClassNumber:          {Fg: hex("#79c0ff")},
		ClassOperator:        {Fg: hex("#ff7b72")},
		ClassPunctuation:     {Fg: hex("#e6edf3")},
		ClassNameFunction:    {Fg: hex("#d2a8ff")},
		ClassNameBuiltin:     {Fg: hex("#79c0ff")},
		ClassNameClass:       {Fg: hex("#ffa657"), Weight: bold},
		ClassNameTag:         {Fg: hex("#7ee787")},
		ClassNameAttribute:   {Fg: hex("#79c0ff")},
		ClassNameVariable:    {Fg: hex("#ffa657")},
		ClassInserted:        {Fg: hex("#aff5b4"), Bg: hex("#033a16")},
		ClassDeleted:         {Fg: hex("#ffdcd7"), Bg: hex("#67060c")},
		ClassGenericHeading:  {Weight: bold},

		ClassText:           {},
		ClassLink:           {Fg: hex("#4493f8"), Underline: true},
		ClassInlineCode:     {Bg: hex("#262c36"), Monospace: true},
		ClassCodeBackground: {Bg: hex("#161b22"), Monospace: true},
		ClassQuote:          {Fg: hex("#9198a1")},
		ClassHeading:        {Weight: bold},
	})
})

// chromaClasses maps theme classes to the chroma token type they style.
//
//nolint:gochecknoglobals // Read-only lookup table.
var chromaClasses = map[string]chroma.TokenType{
	ClassComment:         chroma.Comment,
	ClassCommentPreproc:  chroma.CommentPreproc,
	ClassKeyword:         chroma.Keyword,
	ClassKeywordType:     chroma.KeywordType,
	ClassKeywordConstant: chroma.KeywordConstant,
	ClassString:          chroma.LiteralString,
	ClassStringEscape:    chroma.LiteralStringEscape,
	ClassNumber:          chroma.LiteralNumber,
	ClassOperator:        chroma.Operator,
	ClassPunctuation:     chroma.Punctuation,
	ClassName:            chroma.Name,
	ClassNameFunction:    chroma.NameFunction,
	ClassNameBuiltin:     chroma.NameBuiltin,
	ClassNameClass:       chroma.NameClass,
	ClassNameTag:         chroma.NameTag,
	ClassNameAttribute:   chroma.NameAttribute,
	ClassNameVariable:    chroma.NameVariable,
	ClassLiteral:         chroma.Literal,
	ClassInserted:        chroma.GenericInserted,
	ClassDeleted:         chroma.GenericDeleted,
	ClassGenericHeading:  chroma.GenericHeading,
}

// FromChroma converts a chroma style into a theme of the same name.
func FromChroma(cs *chroma.Style) *Theme {
	background := cs.Get(chroma.Background)
	plain := style.Style{Fg: colour(background.Colour), Bg: colour(background.Background)}

	classes := make(map[string]style.Style, len(chromaClasses)+6)
	for class, tokenType := range chromaClasses {
		classes[class] = entryStyle(cs.Get(tokenType), background)
	}

	link := entryStyle(cs.Get(chroma.NameFunction), background)
	link.Weight = 0
	link.Underline = true
	classes[ClassLink] = link
	classes[ClassText] = style.Style{}
	classes[ClassInlineCode] = style.Style{Monospace: true, Bg: plain.Bg.Blend(plain.Fg, 0.08)}
	classes[ClassCodeBackground] = style.Style{Monospace: true, Bg: plain.Bg}
	classes[ClassQuote] = entryStyle(cs.Get(chroma.Comment), background)
	classes[ClassHeading] = style.Style{Weight: style.WeightBold}

	return NewTheme(cs.Name, plain, classes)
}

// entryStyle keeps only what differs from the background entry, so classes
// inherit the theme's plain colors.
func entryStyle(entry, background chroma.StyleEntry) style.Style {
	var s style.Style
	if entry.Colour.IsSet() && entry.Colour != background.Colour {
		s.Fg = colour(entry.Colour)
	}
	if entry.Background.IsSet() && entry.Background != background.Background {
		s.Bg = colour(entry.Background)
	}
	if entry.Bold == chroma.Yes {
		s.Weight = style.WeightBold
	}
	s.Italic = entry.Italic == chroma.Yes
	s.Underline = entry.Underline == chroma.Yes
	return s
}

func colour(col chroma.Colour) style.Color {
	if !col.IsSet() {
		return style.Color{}
	}
	return style.RGB(col.Red(), col.Green(), col.Blue())
}

// builtinThemes holds every chroma style plus the default and dark themes,
// which take precedence on a name clash.
//
//nolint:gochecknoglobals // Lazily initialized, read-only after.
var builtinThemes = sync.OnceValue(func() []*Theme {
	names := styles.Names()
	themes := make([]*Theme, 0, len(names)+2)
	for _, name := range names {
		themes = append(themes, FromChroma(styles.Get(name)))
	}
	return append(themes, builtinDefault(), builtinDark())
})
