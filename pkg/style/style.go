// Package style defines the visual attributes shared by highlight themes and
// styled runs.
package style

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit straight-alpha color. The zero value means "inherit".
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}

// IsZero reports whether the color is unset.
func (c Color) IsZero() bool {
	return c == Color{}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Hex returns the color as #rrggbb, or #rrggbbaa when not opaque.
func (c Color) Hex() string {
	if c.IsZero() {
		return ""
	}
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Or returns c when set and fallback otherwise.
func (c Color) Or(fallback Color) Color {
	if c.IsZero() {
		return fallback
	}
	return c
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa". The empty string yields
// the zero (inherit) color.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, nil
	}

	alpha := uint8(0xff)
	if len(s) == 9 && s[0] == '#' {
		var a uint8
		if _, err := fmt.Sscanf(s[7:], "%02x", &a); err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		alpha = a
		s = s[:7]
	}

	parsed, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := parsed.RGB255()
	return Color{R: r, G: g, B: b, A: alpha}, nil
}

// MustParseColor is ParseColor for compile-time constants.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Blend mixes c toward other by t in [0,1] in Lab space.
func (c Color) Blend(other Color, t float64) Color {
	a, _ := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	b, _ := colorful.MakeColor(color.NRGBA{R: other.R, G: other.G, B: other.B, A: 0xff})
	r, g, bl := a.BlendLab(b, t).Clamped().RGB255()
	return Color{R: r, G: g, B: bl, A: 0xff}
}

// Weight is a font weight.
type Weight uint16

// Font weights.
const (
	WeightNormal Weight = 400
	WeightBold   Weight = 700
)

// Style is a set of text attributes. Zero fields inherit from the enclosing
// style when merged.
type Style struct {
	Fg            Color   `json:"fg,omitzero"`
	Bg            Color   `json:"bg,omitzero"`
	Weight        Weight  `json:"weight,omitempty"`
	Italic        bool    `json:"italic,omitempty"`
	Underline     bool    `json:"underline,omitempty"`
	Strikethrough bool    `json:"strikethrough,omitempty"`
	Monospace     bool    `json:"monospace,omitempty"`
	Scale         float64 `json:"scale,omitempty"`
}

// Bold reports whether the weight is bold or heavier.
func (s Style) Bold() bool {
	return s.Weight >= WeightBold
}

// Merge overlays child on top of s: set colors and a set weight or scale
// replace, boolean modifiers accumulate.
func (s Style) Merge(child Style) Style {
	out := s
	if !child.Fg.IsZero() {
		out.Fg = child.Fg
	}
	if !child.Bg.IsZero() {
		out.Bg = child.Bg
	}
	if child.Weight != 0 {
		out.Weight = child.Weight
	}
	if child.Scale != 0 {
		out.Scale = child.Scale
	}
	out.Italic = out.Italic || child.Italic
	out.Underline = out.Underline || child.Underline
	out.Strikethrough = out.Strikethrough || child.Strikethrough
	out.Monospace = out.Monospace || child.Monospace
	return out
}

// EffectiveScale returns Scale, treating zero as 1.
func (s Style) EffectiveScale() float64 {
	if s.Scale == 0 {
		return 1
	}
	return s.Scale
}
