package canvas

import (
	"math"

	"github.com/fogleman/gg"
)

// Paint is anything a shape can be filled or stroked with: a Color, a
// Linear or a Radial gradient.
type Paint interface {
	pattern(c *Canvas) gg.Pattern
}

// Stop is a gradient colour stop; Offset is in [0, 1].
type Stop struct {
	Offset float64
	Color  Color
}

func At(offset float64, c Color) Stop { return Stop{Offset: offset, Color: c} }

// Linear is a two-point gradient in user space.
type Linear struct {
	X0, Y0, X1, Y1 float64
	Stops          []Stop
}

func NewLinear(x0, y0, x1, y1 float64, stops ...Stop) Linear {
	return Linear{X0: x0, Y0: y0, X1: x1, Y1: y1, Stops: stops}
}

// gg evaluates patterns per device pixel, so endpoints are mapped through
// the current transform before the gradient is built.
func (l Linear) pattern(c *Canvas) gg.Pattern {
	x0, y0 := c.dc.TransformPoint(l.X0, l.Y0)
	x1, y1 := c.dc.TransformPoint(l.X1, l.Y1)
	g := gg.NewLinearGradient(x0, y0, x1, y1)
	addStops(g, l.Stops, c.alpha)
	return g
}

// Radial is a two-circle gradient in user space.
type Radial struct {
	X0, Y0, R0 float64
	X1, Y1, R1 float64
	Stops      []Stop
}

// NewRadial is the common concentric form starting at radius zero.
func NewRadial(cx, cy, r float64, stops ...Stop) Radial {
	return Radial{X0: cx, Y0: cy, X1: cx, Y1: cy, R1: r, Stops: stops}
}

func (r Radial) pattern(c *Canvas) gg.Pattern {
	x0, y0 := c.dc.TransformPoint(r.X0, r.Y0)
	x1, y1 := c.dc.TransformPoint(r.X1, r.Y1)
	s := c.radiusScale()
	g := gg.NewRadialGradient(x0, y0, r.R0*s, x1, y1, r.R1*s)
	addStops(g, r.Stops, c.alpha)
	return g
}

func addStops(g gg.Gradient, stops []Stop, alpha float64) {
	for _, s := range stops {
		g.AddColorStop(clamp01(s.Offset), s.Color.withAlpha(alpha))
	}
}

// radiusScale averages the horizontal and vertical device scale.
func (c *Canvas) radiusScale() float64 {
	ox, oy := c.dc.TransformPoint(0, 0)
	xx, xy := c.dc.TransformPoint(1, 0)
	yx, yy := c.dc.TransformPoint(0, 1)
	return (math.Hypot(xx-ox, xy-oy) + math.Hypot(yx-ox, yy-oy)) / 2
}
