package canvas

import "math"

// Anchors for Text and GlowText. Middle approximates a "middle" baseline
// for faces whose line height is about 1.2 em.
const (
	Left       = 0.0
	Center     = 0.5
	Alphabetic = 0.0
	Middle     = 0.3
)

// Text draws s anchored at (x, y); ax and ay follow gg's anchor convention
// (0.5, 0.5 centres the string on the point). When maxW > 0 and the string
// is wider, it is compressed horizontally to fit.
func (c *Canvas) Text(s string, x, y, ax, ay, maxW float64, col Color) {
	if s == "" || c.alpha <= 0 {
		return
	}
	c.dc.Push()
	c.fit(s, x, maxW)
	c.dc.SetColor(col.withAlpha(c.alpha))
	c.dc.DrawStringAnchored(s, x, y, ax, ay)
	c.dc.Pop()
}

// GlowText draws s over a soft halo of glow. blur is the halo reach in
// canonical units.
func (c *Canvas) GlowText(s string, x, y, ax, ay, maxW float64, col, glow Color, blur float64) {
	if s == "" || c.alpha <= 0 {
		return
	}
	c.dc.Push()
	c.fit(s, x, maxW)
	for _, ring := range glowRings(blur) {
		c.dc.SetColor(glow.Alpha(glow.A * ring.weight).withAlpha(c.alpha))
		for k := 0; k < 8; k++ {
			a := float64(k) * math.Pi / 4
			c.dc.DrawStringAnchored(s, x+math.Cos(a)*ring.radius, y+math.Sin(a)*ring.radius, ax, ay)
		}
	}
	c.dc.SetColor(col.withAlpha(c.alpha))
	c.dc.DrawStringAnchored(s, x, y, ax, ay)
	c.dc.Pop()
}

type ring struct {
	radius float64
	weight float64
}

// glowRings approximates a gaussian shadow with two rings of offset copies.
func glowRings(blur float64) []ring {
	if blur <= 0 {
		return nil
	}
	return []ring{
		{radius: blur * 0.5, weight: 0.18},
		{radius: blur * 0.25, weight: 0.25},
	}
}

func (c *Canvas) fit(s string, x, maxW float64) {
	if maxW <= 0 {
		return
	}
	if w, _ := c.dc.MeasureString(s); w > maxW {
		// anchors are relative to x, so scaling about x keeps alignment
		c.dc.ScaleAbout(maxW/w, 1, x, 0)
	}
}
