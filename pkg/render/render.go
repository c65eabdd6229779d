// Package render is the entry point of the rendering pipeline. A Renderer
// parses Markdown or HTML into the unified content tree, normalizes it and
// builds the styled run sequence a host paints.
//
// Every stateful collaborator (theme registry, asset library, highlighter,
// logger) is an explicit handle on the Renderer. Renderers are safe for
// concurrent use, and results are memoized by document, theme and asset
// generation until ClearCaches.
package render

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/yaklabco/docrender/pkg/content"
	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/highlight"
	"github.com/yaklabco/docrender/pkg/htmldoc"
	"github.com/yaklabco/docrender/pkg/markdown"
	"github.com/yaklabco/docrender/pkg/runs"
	"github.com/yaklabco/docrender/pkg/textmetrics"
	"github.com/yaklabco/docrender/pkg/unify"
)

// Renderer renders documents into run sequences.
type Renderer struct {
	logger      *log.Logger
	sink        diag.Sink
	themes      *highlight.Registry
	theme       string
	assets      runs.AssetResolver
	highlighter *highlight.Highlighter
	measurer    textmetrics.Measurer
	baseSize    float64
	detect      bool

	markdownOpts markdown.Options
	parser       *markdown.Parser
	sanitizer    *htmldoc.Sanitizer

	mu    sync.RWMutex
	memo  map[memoKey]*runs.Sequence
	group singleflight.Group

	renders atomic.Int64
	hits    atomic.Int64
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger logs degradations and asset failures to logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// WithSink also forwards degradation events to sink.
func WithSink(sink diag.Sink) Option {
	return func(r *Renderer) { r.sink = sink }
}

// WithThemes resolves theme names against registry.
func WithThemes(registry *highlight.Registry) Option {
	return func(r *Renderer) { r.themes = registry }
}

// WithTheme selects the theme used by RenderMarkdown and RenderHTML.
func WithTheme(name string) Option {
	return func(r *Renderer) { r.theme = name }
}

// WithAssets resolves images with resolver.
func WithAssets(resolver runs.AssetResolver) Option {
	return func(r *Renderer) { r.assets = resolver }
}

// WithHighlighter shares a highlighter and its cache.
func WithHighlighter(h *highlight.Highlighter) Option {
	return func(r *Renderer) { r.highlighter = h }
}

// WithMeasurer measures runs with m.
func WithMeasurer(m textmetrics.Measurer) Option {
	return func(r *Renderer) { r.measurer = m }
}

// WithBaseSize sets the body font size.
func WithBaseSize(size float64) Option {
	return func(r *Renderer) { r.baseSize = size }
}

// WithLanguageDetection classifies untagged code blocks by content.
func WithLanguageDetection(enabled bool) Option {
	return func(r *Renderer) { r.detect = enabled }
}

// WithMarkdown configures the Markdown front-end. Its Sink is replaced by
// the Renderer's.
func WithMarkdown(opts markdown.Options) Option {
	return func(r *Renderer) { r.markdownOpts = opts }
}

// WithHTMLPolicy sanitizes HTML input and embedded HTML with policy.
func WithHTMLPolicy(policy *htmldoc.Policy) Option {
	return func(r *Renderer) { r.markdownOpts.HTMLPolicy = policy }
}

// New creates a Renderer. Without options it uses the built-in themes, no
// asset resolver (images render as broken glyphs) and the Go fonts.
func New(opts ...Option) *Renderer {
	r := &Renderer{memo: make(map[memoKey]*runs.Sequence)}
	for _, opt := range opts {
		opt(r)
	}

	sinks := diag.Multi{r.sink}
	if r.logger != nil {
		sinks = append(sinks, diag.LogSink{Logger: r.logger})
	}
	r.sink = sinks

	if r.themes == nil {
		r.themes = highlight.DefaultRegistry()
	}
	if r.theme == "" {
		r.theme = highlight.DefaultThemeName
	}
	if r.highlighter == nil {
		r.highlighter = highlight.New(highlight.WithSink(r.sink))
	}

	r.markdownOpts.Sink = r.sink
	r.parser = markdown.New(r.markdownOpts)
	r.sanitizer = htmldoc.NewSanitizer(r.markdownOpts.HTMLPolicy, r.sink)
	return r
}

// Themes returns the theme registry.
func (r *Renderer) Themes() *highlight.Registry {
	return r.themes
}

// RenderMarkdown renders Markdown source with the configured theme.
func (r *Renderer) RenderMarkdown(source string) (*runs.Sequence, error) {
	return r.Render(source, FormatMarkdown, r.theme)
}

// RenderHTML renders HTML source with the configured theme.
func (r *Renderer) RenderHTML(source string) (*runs.Sequence, error) {
	return r.Render(source, FormatHTML, r.theme)
}

// Render renders source in format with the named theme. Unknown theme names
// fall back to the default theme; an empty name selects the renderer's own.
//
// The sequence is always complete. The error joins the asset failures that
// were replaced by placeholders, and is nil when every asset resolved. The
// returned sequence is shared with later calls and must not be modified.
func (r *Renderer) Render(source string, format Format, themeName string) (*runs.Sequence, error) {
	if themeName == "" {
		themeName = r.theme
	}
	theme, ok := r.themes.LookupOK(themeName)
	if !ok && r.logger != nil {
		r.logger.Warn("unknown theme, using default", "theme", themeName)
	}

	var root func() *content.Node
	var docKey uint64
	switch format {
	case FormatHTML:
		result := r.sanitizer.Sanitize(source)
		docKey = result.CacheKey
		root = func() *content.Node { return result.Root }
	default:
		docKey = xxhash.Sum64String(source)
		root = func() *content.Node { return r.parser.Parse(source) }
	}

	key := memoKey{format: format, doc: docKey, theme: theme, assets: r.assetGeneration()}
	if seq, ok := r.lookup(key); ok {
		r.hits.Add(1)
		return seq, errors.Join(seq.Errors...)
	}

	v, _, _ := r.group.Do(key.String(), func() (any, error) {
		if seq, ok := r.lookup(key); ok {
			return seq, nil
		}
		r.renders.Add(1)

		tree := unify.Unify(root(), unify.Options{DetectLanguage: r.detect})
		seq := runs.Build(tree, theme, r.assets, runs.Options{
			BaseSize:    r.baseSize,
			Measurer:    r.measurer,
			Highlighter: r.highlighter,
		})
		for _, err := range seq.Errors {
			r.logAssetError(err)
		}

		r.mu.Lock()
		r.memo[key] = seq
		r.mu.Unlock()
		return seq, nil
	})
	seq := v.(*runs.Sequence)
	return seq, errors.Join(seq.Errors...)
}

// Stats reports memo activity.
type Stats struct {
	Entries   int
	Renders   int64
	Hits      int64
	Highlight highlight.Stats
}

// Stats returns memo and highlighter statistics.
func (r *Renderer) Stats() Stats {
	r.mu.RLock()
	entries := len(r.memo)
	r.mu.RUnlock()
	return Stats{
		Entries:   entries,
		Renders:   r.renders.Load(),
		Hits:      r.hits.Load(),
		Highlight: r.highlighter.Stats(),
	}
}

// ClearCaches drops memoized sequences, highlight results and rasterized
// assets held by an AssetLibrary.
func (r *Renderer) ClearCaches() {
	r.mu.Lock()
	clear(r.memo)
	r.mu.Unlock()
	r.highlighter.Clear()
	if lib, ok := r.assets.(*AssetLibrary); ok {
		lib.Cache().Clear()
	}
}

// generational is implemented by asset resolvers whose answers change over
// time, such as *AssetLibrary.
type generational interface {
	Generation() uint64
}

type memoKey struct {
	format Format
	doc    uint64
	theme  *highlight.Theme
	assets uint64
}

func (k memoKey) String() string {
	return k.format.String() + ":" + strconv.FormatUint(k.doc, 16) + ":" + k.theme.Name() +
		":" + strconv.FormatUint(k.theme.ID(), 10) + ":" + strconv.FormatUint(k.assets, 10)
}

// assetGeneration returns the resolver's generation, read before the build
// so that a concurrent change can only make the entry unreachable.
func (r *Renderer) assetGeneration() uint64 {
	if g, ok := r.assets.(generational); ok {
		return g.Generation()
	}
	return 0
}

func (r *Renderer) lookup(key memoKey) (*runs.Sequence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seq, ok := r.memo[key]
	return seq, ok
}

func (r *Renderer) logAssetError(err error) {
	if r.logger == nil {
		return
	}
	var renderErr *diag.RenderError
	if errors.As(err, &renderErr) {
		r.logger.Warn("asset replaced by placeholder", "asset", renderErr.Asset, "kind", renderErr.Kind.String(), "error", renderErr.Err)
		return
	}
	r.logger.Warn("asset replaced by placeholder", "error", err)
}
