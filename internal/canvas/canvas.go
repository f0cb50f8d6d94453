// Package canvas wraps a gg raster context with the few things the reveal
// needs on top of it: a global alpha stack, gradients that follow the
// current transform, per-corner rounded rectangles and glowing text.
//
// Drawing happens in canonical units (config.CanonicalWidth x
// config.CanonicalHeight); New scales them to the destination surface.
package canvas

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/ivlev/scrim2gif/internal/config"
)

var ErrNoSurface = errors.New("drawing surface unavailable")

type Canvas struct {
	dc     *gg.Context
	dst    *image.RGBA
	alpha  float64
	stack  []state
	scaleX float64
	scaleY float64

	// path mirrors the RoundRect geometry of the current path in device
	// space; clips holds one such path per active Clip, outermost first.
	path  []segment
	clips [][]segment
}

type state struct {
	alpha float64
	clips int
}

type segmentKind int

const (
	segSubPath segmentKind = iota
	segMove
	segLine
	segQuad
	segClose
)

type segment struct {
	kind           segmentKind
	x0, y0, x1, y1 float64
}

// New binds a canvas to dst. A nil or empty surface is an error.
func New(dst *image.RGBA) (*Canvas, error) {
	if dst == nil || dst.Bounds().Empty() {
		return nil, ErrNoSurface
	}
	if dst.Rect.Min != (image.Point{}) {
		return nil, errors.New("surface must start at the origin")
	}
	dc := gg.NewContextForRGBA(dst)
	sx := float64(dst.Rect.Dx()) / config.CanonicalWidth
	sy := float64(dst.Rect.Dy()) / config.CanonicalHeight
	dc.Scale(sx, sy)
	return &Canvas{dc: dc, dst: dst, alpha: 1, scaleX: sx, scaleY: sy}, nil
}

func (c *Canvas) Width() float64  { return config.CanonicalWidth }
func (c *Canvas) Height() float64 { return config.CanonicalHeight }

// Surface returns the bound destination image.
func (c *Canvas) Surface() *image.RGBA { return c.dst }

// DeviceScale is the canonical-to-pixel scale factor (horizontal).
func (c *Canvas) DeviceScale() float64 { return c.scaleX }

// Push saves transform, clip and alpha.
func (c *Canvas) Push() {
	c.dc.Push()
	c.stack = append(c.stack, state{alpha: c.alpha, clips: len(c.clips)})
}

// Pop restores the state saved by the matching Push, including the clip
// that was active when Push was called.
func (c *Canvas) Pop() {
	n := len(c.stack)
	if n == 0 {
		return
	}
	prev := c.stack[n-1]
	c.stack = c.stack[:n-1]
	c.dc.Pop()
	if len(c.clips) > prev.clips {
		// gg keeps the mask across Pop, so rebuild the outer clips
		c.clips = c.clips[:prev.clips]
		c.dc.ResetClip()
		c.dc.ClearPath()
		c.path = nil
		for _, clip := range c.clips {
			c.replayClip(clip)
		}
	}
	c.alpha = prev.alpha
}

// MulAlpha multiplies the global alpha until the next Pop.
func (c *Canvas) MulAlpha(a float64) { c.alpha *= clamp01(a) }

// SetAlpha replaces the global alpha until the next Pop.
func (c *Canvas) SetAlpha(a float64) { c.alpha = clamp01(a) }

func (c *Canvas) Alpha() float64 { return c.alpha }

func (c *Canvas) Translate(x, y float64)          { c.dc.Translate(x, y) }
func (c *Canvas) Rotate(angle float64)            { c.dc.Rotate(angle) }
func (c *Canvas) ScaleAbout(sx, sy, x, y float64) { c.dc.ScaleAbout(sx, sy, x, y) }

// Color resolves a colour against the current global alpha.
func (c *Canvas) Color(col Color) color.Color {
	return col.withAlpha(c.alpha)
}

// FillRect paints a rectangle.
func (c *Canvas) FillRect(x, y, w, h float64, p Paint) {
	if c.alpha <= 0 {
		return
	}
	c.dc.DrawRectangle(x, y, w, h)
	c.fill(p)
}

// FillPath fills the current path.
func (c *Canvas) FillPath(p Paint) {
	if c.alpha <= 0 {
		c.dc.ClearPath()
		c.path = nil
		return
	}
	c.fill(p)
}

// StrokePath strokes the current path.
func (c *Canvas) StrokePath(p Paint, width float64) {
	if c.alpha <= 0 {
		c.dc.ClearPath()
		c.path = nil
		return
	}
	c.dc.SetLineWidth(width * c.lineScale())
	c.dc.SetStrokeStyle(p.pattern(c))
	c.dc.Stroke()
	c.path = nil
}

// Line strokes a straight segment with butt caps.
func (c *Canvas) Line(x0, y0, x1, y1 float64, p Paint, width float64) {
	c.dc.SetLineCap(gg.LineCapButt)
	c.dc.MoveTo(x0, y0)
	c.dc.LineTo(x1, y1)
	c.StrokePath(p, width)
	c.dc.SetLineCap(gg.LineCapRound)
}

// Circle fills a circle.
func (c *Canvas) Circle(x, y, r float64, p Paint) {
	if c.alpha <= 0 {
		return
	}
	c.dc.DrawCircle(x, y, r)
	c.fill(p)
}

// Clip intersects the clip with the current RoundRect path until the
// enclosing Pop. Clips nest.
func (c *Canvas) Clip() {
	c.dc.Clip()
	c.clips = append(c.clips, c.path)
	c.path = nil
}

// replayClip intersects the clip with a recorded device-space path.
func (c *Canvas) replayClip(path []segment) {
	dc := c.dc
	dc.Push()
	dc.Identity()
	for _, sg := range path {
		switch sg.kind {
		case segSubPath:
			dc.NewSubPath()
		case segMove:
			dc.MoveTo(sg.x0, sg.y0)
		case segLine:
			dc.LineTo(sg.x0, sg.y0)
		case segQuad:
			dc.QuadraticTo(sg.x0, sg.y0, sg.x1, sg.y1)
		case segClose:
			dc.ClosePath()
		}
	}
	dc.Clip()
	dc.Pop()
}

func (c *Canvas) fill(p Paint) {
	c.dc.SetFillStyle(p.pattern(c))
	c.dc.Fill()
	c.path = nil
}

// RoundRect adds a rectangle with per-corner radii (top-left, top-right,
// bottom-right, bottom-left) to the path.
func (c *Canvas) RoundRect(x, y, w, h, tl, tr, br, bl float64) {
	c.dc.NewSubPath()
	c.record(segment{kind: segSubPath})
	c.moveTo(x+tl, y)
	c.lineTo(x+w-tr, y)
	c.corner(x+w, y, x+w, y+tr, tr)
	c.lineTo(x+w, y+h-br)
	c.corner(x+w, y+h, x+w-br, y+h, br)
	c.lineTo(x+bl, y+h)
	c.corner(x, y+h, x, y+h-bl, bl)
	c.lineTo(x, y+tl)
	c.corner(x, y, x+tl, y, tl)
	c.dc.ClosePath()
	c.record(segment{kind: segClose})
}

// corner approximates canvas arcTo with a quadratic through the corner point.
func (c *Canvas) corner(cx, cy, x, y, r float64) {
	if r <= 0 {
		c.lineTo(cx, cy)
		return
	}
	c.dc.QuadraticTo(cx, cy, x, y)
	dx0, dy0 := c.dc.TransformPoint(cx, cy)
	dx1, dy1 := c.dc.TransformPoint(x, y)
	c.record(segment{kind: segQuad, x0: dx0, y0: dy0, x1: dx1, y1: dy1})
}

func (c *Canvas) moveTo(x, y float64) {
	c.dc.MoveTo(x, y)
	dx, dy := c.dc.TransformPoint(x, y)
	c.record(segment{kind: segMove, x0: dx, y0: dy})
}

func (c *Canvas) lineTo(x, y float64) {
	c.dc.LineTo(x, y)
	dx, dy := c.dc.TransformPoint(x, y)
	c.record(segment{kind: segLine, x0: dx, y0: dy})
}

func (c *Canvas) record(sg segment) { c.path = append(c.path, sg) }

// Image draws img scaled into the w x h box at (x, y) under the current
// transform, clip and global alpha.
func (c *Canvas) Image(img image.Image, x, y, w, h float64) {
	if img == nil || c.alpha <= 0 {
		return
	}
	b := img.Bounds()
	if b.Empty() {
		return
	}
	src := normalize(img, c.alpha)
	c.dc.Push()
	c.dc.Translate(x, y)
	c.dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	c.dc.DrawImage(src, 0, 0)
	c.dc.Pop()
}

// normalize moves img to the origin and applies alpha.
func normalize(img image.Image, alpha float64) image.Image {
	b := img.Bounds()
	if alpha >= 1 && b.Min == (image.Point{}) {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if alpha >= 1 {
		draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
		return out
	}
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
	draw.DrawMask(out, out.Bounds(), img, b.Min, mask, image.Point{}, draw.Over)
	return out
}

// SetFont selects the face for subsequent text calls.
func (c *Canvas) SetFont(f font.Face) { c.dc.SetFontFace(f) }

// MeasureText returns the advance width of s in the current face.
func (c *Canvas) MeasureText(s string) float64 {
	w, _ := c.dc.MeasureString(s)
	return w
}

// lineScale is the current user-to-device scale; gg strokes in device pixels.
func (c *Canvas) lineScale() float64 {
	x0, y0 := c.dc.TransformPoint(0, 0)
	x1, y1 := c.dc.TransformPoint(1, 0)
	return math.Hypot(x1-x0, y1-y0)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
