package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io/fs"
	"net/url"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/yaklabco/docrender/pkg/diag"
	"github.com/yaklabco/docrender/pkg/raster"
	"github.com/yaklabco/docrender/pkg/runs"
)

// Limits applied to raster images.
const (
	DefaultMaxImageSide  = 4096
	DefaultMaxAssetBytes = 16 << 20
)

// probeSize bounds the bitmap rasterized to validate a vector icon.
//
//nolint:gochecknoglobals // Constant size.
var probeSize = raster.Size{W: 256, H: 256}

// Asset lookup failures. They are wrapped in a diag.RenderError of kind
// InvalidAsset.
var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrRemoteAsset      = errors.New("remote assets are not fetched")
	ErrAssetTooLarge    = errors.New("asset exceeds the size limit")
	ErrUnknownAsset     = errors.New("unrecognized asset format")
	ErrMalformedDataURL = errors.New("malformed data URL")
)

// AssetLibrary resolves document images against registered bytes and an
// optional file system. SVG sources become vector icons and are rasterized
// through a shared raster.Cache. PNG, JPEG and GIF sources become raster
// images. It is safe for concurrent use.
type AssetLibrary struct {
	mu    sync.RWMutex
	named map[string][]byte

	// generation counts Add and Remove calls.
	generation atomic.Uint64

	fsys     fs.FS
	cache    *raster.Cache
	density  float64
	maxSide  int
	maxBytes int64
}

// LibraryOption configures an AssetLibrary.
type LibraryOption func(*AssetLibrary)

// WithFS resolves sources that are not registered by name from fsys.
func WithFS(fsys fs.FS) LibraryOption {
	return func(l *AssetLibrary) { l.fsys = fsys }
}

// WithDensity sets the pixel density used to validate vector icons.
func WithDensity(density float64) LibraryOption {
	return func(l *AssetLibrary) {
		if density > 0 {
			l.density = density
		}
	}
}

// WithLimits overrides the raster image side and byte limits.
func WithLimits(maxSide int, maxBytes int64) LibraryOption {
	return func(l *AssetLibrary) {
		if maxSide > 0 {
			l.maxSide = maxSide
		}
		if maxBytes > 0 {
			l.maxBytes = maxBytes
		}
	}
}

// WithRasterCache shares cache with other libraries or the host.
func WithRasterCache(cache *raster.Cache) LibraryOption {
	return func(l *AssetLibrary) {
		if cache != nil {
			l.cache = cache
		}
	}
}

// NewAssetLibrary creates an empty library.
func NewAssetLibrary(opts ...LibraryOption) *AssetLibrary {
	l := &AssetLibrary{
		named:    make(map[string][]byte),
		density:  1,
		maxSide:  DefaultMaxImageSide,
		maxBytes: DefaultMaxAssetBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = raster.NewCache()
	}
	return l
}

// Add registers data under name, replacing any earlier bytes and dropping
// their cached bitmaps.
func (l *AssetLibrary) Add(name string, data []byte) {
	l.mu.Lock()
	l.named[name] = bytes.Clone(data)
	l.mu.Unlock()
	l.cache.Invalidate(name)
	l.generation.Add(1)
}

// Remove forgets name and its cached bitmaps.
func (l *AssetLibrary) Remove(name string) {
	l.mu.Lock()
	delete(l.named, name)
	l.mu.Unlock()
	l.cache.Invalidate(name)
	l.generation.Add(1)
}

// Generation changes whenever Add or Remove changes what the library
// resolves. Renderers key their memo on it.
func (l *AssetLibrary) Generation() uint64 {
	return l.generation.Load()
}

// Cache returns the raster cache backing vector icons.
func (l *AssetLibrary) Cache() *raster.Cache {
	return l.cache
}

// Resolve implements runs.AssetResolver.
func (l *AssetLibrary) Resolve(ref runs.AssetRef) (runs.Resolved, error) {
	handle, data, err := l.open(ref.Source)
	if err != nil {
		return runs.Resolved{}, diag.NewInvalidAsset(ref.Source, err)
	}
	if int64(len(data)) > l.maxBytes {
		return runs.Resolved{}, diag.NewInvalidAsset(handle, fmt.Errorf("%w: %d bytes", ErrAssetTooLarge, len(data)))
	}

	if isSVG(ref.Source, data) {
		natural, err := raster.NaturalSize(data)
		if err != nil {
			return runs.Resolved{}, diag.NewInvalidAsset(handle, err)
		}
		fit := raster.Fit(natural, probeSize)
		if _, err := l.cache.Get(raster.Asset{ID: handle, Data: data}, raster.Size{W: fit.W, H: fit.H}, l.density); err != nil {
			return runs.Resolved{}, err
		}
		return runs.Resolved{Kind: runs.VectorIcon, Handle: handle, Natural: natural}, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return runs.Resolved{}, diag.NewInvalidAsset(handle, fmt.Errorf("%w: %w", ErrUnknownAsset, err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > l.maxSide || cfg.Height > l.maxSide {
		return runs.Resolved{}, diag.NewInvalidAsset(handle,
			fmt.Errorf("%w: %dx%d", ErrAssetTooLarge, cfg.Width, cfg.Height))
	}
	return runs.Resolved{
		Kind:    runs.RasterImage,
		Handle:  handle,
		Natural: raster.Size{W: float64(cfg.Width), H: float64(cfg.Height)},
	}, nil
}

// Bitmap rasterizes the vector icon handle at size. The broken glyph handle
// is always available.
func (l *AssetLibrary) Bitmap(handle string, size raster.Size, density float64) (*raster.Bitmap, error) {
	if handle == runs.BrokenGlyphHandle {
		return l.cache.Get(raster.Asset{ID: handle, Data: raster.BrokenGlyph}, size, density)
	}
	_, data, err := l.open(handle)
	if err != nil {
		return nil, diag.NewInvalidAsset(handle, err)
	}
	return l.cache.Get(raster.Asset{ID: handle, Data: data}, size, density)
}

// open returns the handle and bytes for source.
func (l *AssetLibrary) open(source string) (string, []byte, error) {
	if source == "" {
		return "", nil, ErrAssetNotFound
	}

	l.mu.RLock()
	data, ok := l.named[source]
	l.mu.RUnlock()
	if ok {
		return source, data, nil
	}

	if strings.HasPrefix(source, "data:") {
		data, err := decodeDataURL(source)
		if err != nil {
			return "", nil, err
		}
		handle := raster.Asset{Data: data}.Identity()
		l.mu.Lock()
		l.named[handle] = data
		l.mu.Unlock()
		return handle, data, nil
	}

	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Scheme != "file" {
		return "", nil, fmt.Errorf("%w: %s", ErrRemoteAsset, u.Scheme)
	}

	if l.fsys == nil {
		return "", nil, ErrAssetNotFound
	}
	name := path.Clean(strings.TrimPrefix(strings.TrimPrefix(source, "file://"), "/"))
	info, err := fs.Stat(l.fsys, name)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrAssetNotFound, err)
	}
	if info.Size() > l.maxBytes {
		return "", nil, fmt.Errorf("%w: %d bytes", ErrAssetTooLarge, info.Size())
	}
	data, err = fs.ReadFile(l.fsys, name)
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

// decodeDataURL decodes an RFC 2397 data URL.
func decodeDataURL(source string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(source, "data:"), ",")
	if !ok {
		return nil, ErrMalformedDataURL
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDataURL, err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDataURL, err)
	}
	return []byte(data), nil
}

func isSVG(source string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(source), ".svg") || strings.HasPrefix(source, "data:image/svg+xml") {
		return true
	}
	head := bytes.TrimSpace(data[:min(len(data), 512)])
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}
