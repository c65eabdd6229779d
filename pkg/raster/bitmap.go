package raster

import (
	"image"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Size is a logical size in device-independent units.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Valid reports whether both dimensions are positive and finite.
func (s Size) Valid() bool {
	return s.W > 0 && s.H > 0 && !math.IsInf(s.W, 0) && !math.IsInf(s.H, 0)
}

// Pixels returns the pixel dimensions of s at density, rounded up. Each
// dimension saturates at math.MaxInt32.
func (s Size) Pixels(density float64) (int, int) {
	return pixels(s.W * density), pixels(s.H * density)
}

func pixels(v float64) int {
	return int(min(math.Ceil(v), math.MaxInt32))
}

// Rect is a placement inside a bounding box.
type Rect struct {
	X, Y, W, H float64
}

// Bitmap is an immutable premultiplied RGBA raster.
type Bitmap struct {
	width, height int
	pix           []byte
	checksum      uint64
}

func newBitmap(img *image.RGBA) *Bitmap {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pix := make([]byte, 0, w*h*4)
	for y := range h {
		start := y * img.Stride
		pix = append(pix, img.Pix[start:start+w*4]...)
	}
	return &Bitmap{width: w, height: h, pix: pix, checksum: xxhash.Sum64(pix)}
}

// Width returns the width in pixels.
func (b *Bitmap) Width() int { return b.width }

// Height returns the height in pixels.
func (b *Bitmap) Height() int { return b.height }

// Checksum returns the xxhash digest of the pixels.
func (b *Bitmap) Checksum() uint64 { return b.checksum }

// Bytes returns a copy of the premultiplied RGBA pixels, row-major without
// padding.
func (b *Bitmap) Bytes() []byte {
	return slices.Clone(b.pix)
}

// Image returns a copy of the bitmap as an image.
func (b *Bitmap) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.pix)
	return img
}

// BGRA returns a copy of the pixels as straight-alpha BGRA, the layout most
// host paint surfaces accept.
func (b *Bitmap) BGRA() []byte {
	out := make([]byte, len(b.pix))
	for i := 0; i+3 < len(b.pix); i += 4 {
		r, g, bl, a := b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]
		if a != 0 && a != 0xff {
			r = unpremultiply(r, a)
			g = unpremultiply(g, a)
			bl = unpremultiply(bl, a)
		}
		out[i], out[i+1], out[i+2], out[i+3] = bl, g, r, a
	}
	return out
}

func unpremultiply(c, a uint8) uint8 {
	return uint8(min((uint32(c)*0xff+uint32(a)/2)/uint32(a), 0xff))
}

// Fit places a box of natural size inside bounds, scaled uniformly by the
// shortest side and never enlarged, centered.
func Fit(natural, bounds Size) Rect {
	if !natural.Valid() || !bounds.Valid() {
		return Rect{W: max(bounds.W, 0), H: max(bounds.H, 0)}
	}
	ratio := min(bounds.W/natural.W, bounds.H/natural.H, 1)
	w, h := natural.W*ratio, natural.H*ratio
	return Rect{X: (bounds.W - w) / 2, Y: (bounds.H - h) / 2, W: w, H: h}
}
