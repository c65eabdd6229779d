// Package raster rasterizes SVG assets into immutable bitmaps and caches them
// by asset, size and pixel density.
package raster

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/yaklabco/docrender/pkg/diag"
)

// MaxPixels bounds each dimension of a rasterized bitmap.
const MaxPixels = 8192

// Sentinel causes wrapped in *diag.RenderError.
var (
	ErrNotSVG      = errors.New("document root is not <svg>")
	ErrNoViewBox   = errors.New("missing or empty viewBox")
	ErrInvalidSize = errors.New("size and density must be positive")
	ErrTooLarge    = errors.New("bitmap exceeds the pixel limit")
)

// BrokenGlyph is drawn in place of assets that fail to load.
//
//nolint:gochecknoglobals // Sentinel value.
var BrokenGlyph = []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16">` +
	`<rect x="1.5" y="1.5" width="13" height="13" fill="#ffffff" stroke="#cf222e" stroke-width="1.5"/>` +
	`<path d="M4.5 4.5L11.5 11.5M11.5 4.5L4.5 11.5" fill="none" stroke="#cf222e" stroke-width="1.5"/>` +
	`</svg>`)

// Rasterize renders svg into a bitmap of size scaled by density. The output is
// a pure function of its inputs. Malformed sources and invalid sizes fail
// with an InvalidAsset error; a rasterizer crash fails with
// AssetRasterizeFailed.
func Rasterize(svg []byte, size Size, density float64) (*Bitmap, error) {
	return rasterize("", svg, size, density)
}

func rasterize(id string, svg []byte, size Size, density float64) (bitmap *Bitmap, err error) {
	if !size.Valid() || !(density > 0) || math.IsInf(density, 0) {
		return nil, diag.NewInvalidAsset(id, fmt.Errorf("%w: %vx%v @%v", ErrInvalidSize, size.W, size.H, density))
	}
	if math.Ceil(size.W*density) > MaxPixels || math.Ceil(size.H*density) > MaxPixels {
		return nil, diag.NewInvalidAsset(id, fmt.Errorf("%w: %vx%v @%v", ErrTooLarge, size.W, size.H, density))
	}
	w, h := size.Pixels(density)

	natural, err := inspect(svg)
	if err != nil {
		return nil, diag.NewInvalidAsset(id, err)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, diag.NewInvalidAsset(id, err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.X, icon.ViewBox.Y = 0, 0
		icon.ViewBox.W, icon.ViewBox.H = natural.W, natural.H
	}

	defer func() {
		if r := recover(); r != nil {
			bitmap = nil
			err = diag.NewRasterizeFailed(id, fmt.Errorf("rasterizer panic: %v", r))
		}
	}()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)

	return newBitmap(img), nil
}

// NaturalSize returns the intrinsic size of svg: its viewBox, or its width
// and height attributes when there is no viewBox.
func NaturalSize(svg []byte) (Size, error) {
	size, err := inspect(svg)
	if err != nil {
		return Size{}, diag.NewInvalidAsset("", err)
	}
	return size, nil
}

// inspect checks that svg is well-formed XML with an <svg> root and returns
// its natural size.
func inspect(svg []byte) (Size, error) {
	dec := xml.NewDecoder(bytes.NewReader(svg))
	dec.Strict = true

	var (
		size Size
		root bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Size{}, fmt.Errorf("parse svg: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || root {
			continue
		}
		if start.Name.Local != "svg" {
			return Size{}, fmt.Errorf("%w: <%s>", ErrNotSVG, start.Name.Local)
		}
		root = true
		if size, err = rootSize(start.Attr); err != nil {
			return Size{}, err
		}
	}
	if !root {
		return Size{}, ErrNotSVG
	}
	return size, nil
}

func rootSize(attrs []xml.Attr) (Size, error) {
	var viewBox, width, height string
	for _, a := range attrs {
		switch a.Name.Local {
		case "viewBox":
			viewBox = a.Value
		case "width":
			width = a.Value
		case "height":
			height = a.Value
		}
	}

	if strings.TrimSpace(viewBox) != "" {
		fields := strings.FieldsFunc(viewBox, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
		if len(fields) != 4 {
			return Size{}, fmt.Errorf("%w: %q", ErrNoViewBox, viewBox)
		}
		var vals [4]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return Size{}, fmt.Errorf("%w: %q", ErrNoViewBox, viewBox)
			}
			vals[i] = v
		}
		size := Size{W: vals[2], H: vals[3]}
		if !size.Valid() {
			return Size{}, fmt.Errorf("%w: %q", ErrNoViewBox, viewBox)
		}
		return size, nil
	}

	size := Size{W: length(width), H: length(height)}
	if !size.Valid() {
		return Size{}, ErrNoViewBox
	}
	return size, nil
}

// length parses an absolute SVG length in user units; "px" is the only unit
// accepted.
func length(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
