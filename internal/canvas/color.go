package canvas

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
)

// Color is a straight (non-premultiplied) colour with a float alpha, the way
// the palette is written down: rgba(245, 180, 40, 0.5).
type Color struct {
	R, G, B uint8
	A       float64
}

// Transparent is the fully transparent black used at gradient edges.
var Transparent = Color{}

func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 1} }

func RGBA(r, g, b uint8, a float64) Color { return Color{R: r, G: g, B: b, A: a} }

// Hex parses #rgb or #rrggbb. It panics on malformed input and is meant for
// palette literals only.
func Hex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseHex parses #rgb or #rrggbb.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// Alpha returns the colour with its alpha replaced.
func (c Color) Alpha(a float64) Color {
	c.A = a
	return c
}

func (c Color) withAlpha(global float64) color.NRGBA {
	a := clamp01(c.A) * clamp01(global)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(a * 255))}
}

func (c Color) pattern(cv *Canvas) gg.Pattern {
	return gg.NewSolidPattern(c.withAlpha(cv.alpha))
}
