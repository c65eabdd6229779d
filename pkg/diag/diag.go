// Package diag holds the error taxonomy of the rendering pipeline.
//
// Parse, sanitization and highlighting problems are degradations: they are
// reported as Events and logged, never returned as errors. Only asset failures
// surface as errors, wrapped in *RenderError.
package diag

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Kind classifies a diagnostic.
type Kind uint8

// Diagnostic kinds.
const (
	ParseDegraded Kind = iota + 1
	SanitizationRejected
	HighlightUnavailable
	InvalidAsset
	AssetRasterizeFailed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case ParseDegraded:
		return "ParseDegraded"
	case SanitizationRejected:
		return "SanitizationRejected"
	case HighlightUnavailable:
		return "HighlightUnavailable"
	case InvalidAsset:
		return "InvalidAsset"
	case AssetRasterizeFailed:
		return "AssetRasterizeFailed"
	default:
		return "Unknown"
	}
}

// Sentinel errors matched by RenderError.Is.
var (
	ErrInvalidAsset         = errors.New("invalid asset")
	ErrAssetRasterizeFailed = errors.New("asset rasterization failed")
)

// RenderError is the error returned for asset failures.
type RenderError struct {
	Kind  Kind
	Asset string
	Err   error
}

func (e *RenderError) Error() string {
	prefix := "invalid asset"
	if e.Kind == AssetRasterizeFailed {
		prefix = "rasterize asset"
	}
	if e.Asset != "" {
		prefix += " " + e.Asset
	}
	if e.Err == nil {
		return prefix
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidAsset and ErrAssetRasterizeFailed by kind.
func (e *RenderError) Is(target error) bool {
	switch target {
	case ErrInvalidAsset:
		return e.Kind == InvalidAsset
	case ErrAssetRasterizeFailed:
		return e.Kind == AssetRasterizeFailed
	default:
		return false
	}
}

// NewInvalidAsset wraps err as an InvalidAsset render error.
func NewInvalidAsset(asset string, err error) *RenderError {
	return &RenderError{Kind: InvalidAsset, Asset: asset, Err: err}
}

// NewRasterizeFailed wraps err as an AssetRasterizeFailed render error.
func NewRasterizeFailed(asset string, err error) *RenderError {
	return &RenderError{Kind: AssetRasterizeFailed, Asset: asset, Err: err}
}

// Event is a non-fatal degradation.
type Event struct {
	Kind    Kind
	Message string
	Detail  string
}

// Sink receives degradation events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Report(ev Event)
}

// Discard drops every event.
//
//nolint:gochecknoglobals // Sentinel value.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(Event) {}

// LogSink writes events to a charmbracelet logger at debug level.
type LogSink struct {
	Logger *log.Logger
}

// Report logs the event.
func (s LogSink) Report(ev Event) {
	if s.Logger == nil {
		return
	}
	s.Logger.Debug(ev.Message, "kind", ev.Kind.String(), "detail", ev.Detail)
}

// Collector keeps every event it receives.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// Report records ev.
func (c *Collector) Report(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

// Events returns a copy of the recorded events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

// Count returns how many events of kind were recorded.
func (c *Collector) Count(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ev := range c.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Multi fans events out to several sinks.
type Multi []Sink

// Report forwards ev to every sink.
func (m Multi) Report(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Report(ev)
		}
	}
}

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}
