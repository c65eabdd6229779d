package highlight

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/langdetect"
	"github.com/yaklabco/docrender/pkg/style"
)

// Run is a contiguous span of code sharing one class. Start and End are byte
// offsets into the highlighted source.
type Run struct {
	Text  string      `json:"text"`
	Class string      `json:"class"`
	Style style.Style `json:"style"`
	Start int         `json:"start"`
	End   int         `json:"end"`
}

// Stats reports cache activity.
type Stats struct {
	Entries  int
	Hits     int64
	Misses   int64
	Fallback int64
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithSink sets the receiver of HighlightUnavailable events.
func WithSink(sink diag.Sink) Option {
	return func(h *Highlighter) {
		h.sink = diag.OrDiscard(sink)
	}
}

// Highlighter produces styled runs and caches them per (theme, language,
// source). It is safe for concurrent use; cached results are shared and never
// modified.
type Highlighter struct {
	sink    diag.Sink
	entries sync.Map // cacheKey -> *entry
	group   singleflight.Group

	hits     atomic.Int64
	misses   atomic.Int64
	fallback atomic.Int64
}

type cacheKey struct {
	theme    uint64
	language string
	hash     uint64
}

type entry struct {
	code string
	runs []Run
}

// New creates a Highlighter.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{sink: diag.Discard}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Highlight splits code into runs styled by theme. The runs cover code
// exactly, in order, without gaps or overlaps. An unknown language, an empty
// or "plaintext" language or a lexer failure yields one plain run. A nil
// theme selects the default theme. The returned slice belongs to the caller.
func (h *Highlighter) Highlight(code, language string, theme *Theme) []Run {
	if theme == nil {
		theme = Default()
	}
	if code == "" {
		return []Run{}
	}
	language = langdetect.Normalize(language)

	key := cacheKey{theme: theme.id, language: language, hash: xxhash.Sum64String(code)}
	if cached, ok := h.entries.Load(key); ok {
		if e := cached.(*entry); e.code == code {
			h.hits.Add(1)
			return slices.Clone(e.runs)
		}
	}

	flightKey := strconv.FormatUint(key.theme, 10) + "\x00" + language + "\x00" + strconv.FormatUint(key.hash, 16)
	v, _, _ := h.group.Do(flightKey, func() (any, error) {
		if cached, ok := h.entries.Load(key); ok {
			if e := cached.(*entry); e.code == code {
				return e, nil
			}
		}
		h.misses.Add(1)
		e := &entry{code: code, runs: h.tokenize(code, language, theme)}
		h.entries.Store(key, e)
		return e, nil
	})

	e := v.(*entry)
	if e.code != code {
		// Two sources with the same digest raced on one flight.
		return h.tokenize(code, language, theme)
	}
	return slices.Clone(e.runs)
}

// Clear drops every cached result.
func (h *Highlighter) Clear() {
	h.entries.Clear()
}

// Stats returns cache counters.
func (h *Highlighter) Stats() Stats {
	n := 0
	h.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return Stats{
		Entries:  n,
		Hits:     h.hits.Load(),
		Misses:   h.misses.Load(),
		Fallback: h.fallback.Load(),
	}
}

// Supported reports whether language has a lexer.
func Supported(language string) bool {
	language = langdetect.Normalize(language)
	if language == "" || language == langdetect.Plaintext {
		return true
	}
	return lexers.Get(language) != nil
}

func (h *Highlighter) tokenize(code, language string, theme *Theme) (runs []Run) {
	if language == "" || language == langdetect.Plaintext {
		return plainRuns(code, theme)
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		h.unavailable(language, "no lexer for language")
		return plainRuns(code, theme)
	}

	defer func() {
		if r := recover(); r != nil {
			h.unavailable(language, fmt.Sprintf("lexer panic: %v", r))
			runs = plainRuns(code, theme)
		}
	}()

	iter, err := chroma.Coalesce(lexer).Tokenise(&chroma.TokeniseOptions{State: "root"}, code)
	if err != nil {
		h.unavailable(language, err.Error())
		return plainRuns(code, theme)
	}

	runs = buildRuns(code, iter, theme)
	if !covers(runs, code) {
		h.unavailable(language, "lexer output does not match source")
		return plainRuns(code, theme)
	}
	return runs
}

func (h *Highlighter) unavailable(language, detail string) {
	h.fallback.Add(1)
	h.sink.Report(diag.Event{
		Kind:    diag.HighlightUnavailable,
		Message: "highlighting " + language + " unavailable, using plain text",
		Detail:  detail,
	})
}

// buildRuns assigns offsets and classes to tokens. Lexers that append a
// trailing newline produce text past the end of code; it is clipped.
func buildRuns(code string, iter chroma.Iterator, theme *Theme) []Run {
	var runs []Run
	offset := 0
	for token := iter(); token != chroma.EOF; token = iter() {
		value := token.Value
		if offset+len(value) > len(code) {
			value = value[:max(len(code)-offset, 0)]
		}
		if value == "" {
			continue
		}

		class, s := theme.Resolve(ClassOf(token.Type))
		if n := len(runs); n > 0 && runs[n-1].Class == class {
			runs[n-1].Text += value
			runs[n-1].End += len(value)
		} else {
			runs = append(runs, Run{Text: value, Class: class, Style: s, Start: offset, End: offset + len(value)})
		}
		offset += len(value)
	}
	return runs
}

// covers reports whether runs tile code exactly.
func covers(runs []Run, code string) bool {
	var buf strings.Builder
	buf.Grow(len(code))
	offset := 0
	for _, run := range runs {
		if run.Start != offset || run.End != offset+len(run.Text) {
			return false
		}
		buf.WriteString(run.Text)
		offset = run.End
	}
	return offset == len(code) && buf.String() == code
}

func plainRuns(code string, theme *Theme) []Run {
	return []Run{{Text: code, Class: ClassPlain, Style: theme.Plain(), Start: 0, End: len(code)}}
}

// tokenClasses maps chroma token types to theme classes. Types not listed
// resolve through their sub-category and category.
//
//nolint:gochecknoglobals // Read-only lookup table.
var tokenClasses = map[chroma.TokenType]string{
	chroma.Comment:             ClassComment,
	chroma.CommentPreproc:      ClassCommentPreproc,
	chroma.CommentPreprocFile:  ClassCommentPreproc,
	chroma.Keyword:             ClassKeyword,
	chroma.KeywordType:         ClassKeywordType,
	chroma.KeywordConstant:     ClassKeywordConstant,
	chroma.LiteralString:       ClassString,
	chroma.LiteralStringEscape: ClassStringEscape,
	chroma.LiteralNumber:       ClassNumber,
	chroma.Operator:            ClassOperator,
	chroma.OperatorWord:        ClassOperator,
	chroma.Punctuation:         ClassPunctuation,
	chroma.Name:                ClassName,
	chroma.NameFunction:        ClassNameFunction,
	chroma.NameBuiltin:         ClassNameBuiltin,
	chroma.NameClass:           ClassNameClass,
	chroma.NameTag:             ClassNameTag,
	chroma.NameAttribute:       ClassNameAttribute,
	chroma.NameVariable:        ClassNameVariable,
	chroma.Literal:             ClassLiteral,
	chroma.GenericInserted:     ClassInserted,
	chroma.GenericDeleted:      ClassDeleted,
	chroma.GenericHeading:      ClassGenericHeading,
}

// ClassOf returns the most specific theme class for a chroma token type.
func ClassOf(tokenType chroma.TokenType) string {
	for _, candidate := range []chroma.TokenType{tokenType, tokenType.SubCategory(), tokenType.Category()} {
		if class, ok := tokenClasses[candidate]; ok {
			return class
		}
	}
	return ClassPlain
}
