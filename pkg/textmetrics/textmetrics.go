// Package textmetrics measures styled text with the Go font family.
package textmetrics

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/yaklabco/docrender/pkg/style"
)

// Metrics is the measured extent of a run in logical units.
type Metrics struct {
	Width   float64 `json:"width"`
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// Height returns Ascent + Descent.
func (m Metrics) Height() float64 {
	return m.Ascent + m.Descent
}

// Measurer measures a text run rendered with a style at a base font size.
type Measurer interface {
	Measure(text string, s style.Style, size float64) Metrics
}

type variant uint8

const (
	regular variant = iota
	bold
	italic
	boldItalic
	mono
	monoBold
	monoItalic
	monoBoldItalic
	variantCount
)

//nolint:gochecknoglobals // Read-only lookup table.
var fontData = [variantCount][]byte{
	regular:        goregular.TTF,
	bold:           gobold.TTF,
	italic:         goitalic.TTF,
	boldItalic:     gobolditalic.TTF,
	mono:           gomono.TTF,
	monoBold:       gomonobold.TTF,
	monoItalic:     gomonoitalic.TTF,
	monoBoldItalic: gomonobolditalic.TTF,
}

func variantOf(s style.Style) variant {
	v := regular
	if s.Bold() {
		v |= bold
	}
	if s.Italic {
		v |= italic
	}
	if s.Monospace {
		v += mono
	}
	return v
}

type faceKey struct {
	variant variant
	size    float64
}

type lockedFace struct {
	mu   sync.Mutex
	face font.Face
}

// GoFonts measures text with the Go fonts. Results are deterministic. It is
// safe for concurrent use.
type GoFonts struct {
	mu    sync.Mutex
	fonts [variantCount]*opentype.Font
	faces map[faceKey]*lockedFace
}

// NewGoFonts parses the Go font family.
func NewGoFonts() (*GoFonts, error) {
	g := &GoFonts{faces: make(map[faceKey]*lockedFace)}
	for v, data := range fontData {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse go font %d: %w", v, err)
		}
		g.fonts[v] = f
	}
	return g, nil
}

//nolint:gochecknoglobals // Lazily initialized, read-only after.
var defaultGoFonts = sync.OnceValues(NewGoFonts)

// Default returns a shared GoFonts measurer.
func Default() *GoFonts {
	g, err := defaultGoFonts()
	if err != nil {
		// The fonts are embedded; parsing them cannot fail at run time.
		panic(err)
	}
	return g
}

// Measure implements Measurer. size is the base font size; the style's scale
// multiplies it.
func (g *GoFonts) Measure(text string, s style.Style, size float64) Metrics {
	size *= s.EffectiveScale()
	if size <= 0 {
		return Metrics{}
	}

	lf, err := g.face(faceKey{variant: variantOf(s), size: size})
	if err != nil {
		return estimate(text, size)
	}

	lf.mu.Lock()
	defer lf.mu.Unlock()

	metrics := lf.face.Metrics()
	return Metrics{
		Width:   round(toFloat(font.MeasureString(lf.face, text))),
		Ascent:  round(toFloat(metrics.Ascent)),
		Descent: round(toFloat(metrics.Descent)),
	}
}

func (g *GoFonts) face(key faceKey) (*lockedFace, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if lf, ok := g.faces[key]; ok {
		return lf, nil
	}
	face, err := opentype.NewFace(g.fonts[key.variant], &opentype.FaceOptions{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	lf := &lockedFace{face: face}
	g.faces[key] = lf
	return lf, nil
}

// estimate is used when no face can be built for a size.
func estimate(text string, size float64) Metrics {
	n := 0
	for range text {
		n++
	}
	return Metrics{Width: round(float64(n) * size * 0.5), Ascent: round(size * 0.8), Descent: round(size * 0.2)}
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// round keeps measurements stable to 1/64 of a unit.
func round(v float64) float64 {
	return math.Round(v*64) / 64
}
