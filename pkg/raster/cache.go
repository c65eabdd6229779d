package raster

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/yaklabco/docrender/pkg/diag"
)

// Asset is an SVG source. Data wins over Path; Path is read from the cache's
// file system.
type Asset struct {
	ID   string
	Data []byte
	Path string
}

// Identity returns the cache identity of the asset: its ID, else its path,
// else a digest of its bytes.
func (a Asset) Identity() string {
	switch {
	case a.ID != "":
		return a.ID
	case a.Path != "":
		return a.Path
	default:
		return "xxh:" + strconv.FormatUint(xxhash.Sum64(a.Data), 16)
	}
}

// Key identifies one cached bitmap.
type Key struct {
	Asset   string
	Size    Size
	Density float64
}

func (k Key) String() string {
	return k.Asset + "@" + strconv.FormatFloat(k.Size.W, 'g', -1, 64) + "x" +
		strconv.FormatFloat(k.Size.H, 'g', -1, 64) + "*" + strconv.FormatFloat(k.Density, 'g', -1, 64)
}

// Func rasterizes an SVG source. Rasterize is the default.
type Func func(svg []byte, size Size, density float64) (*Bitmap, error)

// CacheStats reports cache activity.
type CacheStats struct {
	Entries        int
	Hits           int64
	Misses         int64
	Rasterizations int64
	Failures       int64
}

// Cache holds rasterized bitmaps until they are invalidated. Concurrent
// requests for one missing key share a single rasterization. Failures are
// not cached.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*Bitmap
	group   singleflight.Group

	fsys      fs.FS
	rasterize Func

	hits           atomic.Int64
	misses         atomic.Int64
	rasterizations atomic.Int64
	failures       atomic.Int64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithFS resolves Asset.Path against fsys.
func WithFS(fsys fs.FS) CacheOption {
	return func(c *Cache) {
		c.fsys = fsys
	}
}

// WithRasterizer replaces the rasterization backend.
func WithRasterizer(fn Func) CacheOption {
	return func(c *Cache) {
		if fn != nil {
			c.rasterize = fn
		}
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries:   make(map[Key]*Bitmap),
		rasterize: Rasterize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the bitmap for asset at size and density, rasterizing it on a
// miss.
func (c *Cache) Get(asset Asset, size Size, density float64) (*Bitmap, error) {
	key := Key{Asset: asset.Identity(), Size: size, Density: density}

	if bitmap, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return bitmap, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		if bitmap, ok := c.lookup(key); ok {
			return bitmap, nil
		}
		c.misses.Add(1)

		data, err := c.load(asset, key.Asset)
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}

		c.rasterizations.Add(1)
		bitmap, err := c.rasterize(data, size, density)
		if err != nil {
			c.failures.Add(1)
			return nil, withAsset(err, key.Asset)
		}

		c.mu.Lock()
		c.entries[key] = bitmap
		c.mu.Unlock()
		return bitmap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bitmap), nil
}

// Peek returns a cached bitmap without rasterizing.
func (c *Cache) Peek(key Key) (*Bitmap, bool) {
	return c.lookup(key)
}

// Invalidate drops every entry of the asset with the given identity.
func (c *Cache) Invalidate(asset string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key := range c.entries {
		if key.Asset == asset {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len returns the number of cached bitmaps.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Entries:        c.Len(),
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
		Rasterizations: c.rasterizations.Load(),
		Failures:       c.failures.Load(),
	}
}

// Source returns the SVG bytes of asset.
func (c *Cache) Source(asset Asset) ([]byte, error) {
	return c.load(asset, asset.Identity())
}

func (c *Cache) lookup(key Key) (*Bitmap, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bitmap, ok := c.entries[key]
	return bitmap, ok
}

func (c *Cache) load(asset Asset, id string) ([]byte, error) {
	if asset.Data != nil || asset.Path == "" {
		return asset.Data, nil
	}
	if c.fsys == nil {
		return nil, diag.NewInvalidAsset(id, fmt.Errorf("no file system for path %q", asset.Path))
	}
	data, err := fs.ReadFile(c.fsys, asset.Path)
	if err != nil {
		return nil, diag.NewInvalidAsset(id, err)
	}
	return data, nil
}

// withAsset labels a render error with the asset identity.
func withAsset(err error, id string) error {
	var renderErr *diag.RenderError
	if errors.As(err, &renderErr) {
		if renderErr.Asset != "" {
			return err
		}
		labeled := *renderErr
		labeled.Asset = id
		return &labeled
	}
	return diag.NewRasterizeFailed(id, err)
}
