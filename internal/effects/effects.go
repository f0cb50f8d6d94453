package effects

import (
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/ivlev/scrim2gif/internal/canvas"
	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/director"
)

// Effect is one decorative layer of the reveal. Draw must be a pure function
// of the frame parameters: same params, same pixels.
type Effect interface {
	Draw(c *canvas.Canvas, f config.FrameParams)
}

// Seeded is the deterministic pseudo-random sequence used for decorations:
// frac(sin(s) * 43758.5453).
func Seeded(s float64) float64 {
	v := math.Sin(s) * 43758.5453
	return v - math.Floor(v)
}

// Background paints the radial backdrop and the nebula clouds. Neither
// depends on progress or time, so the result is cached per surface size.
type Background struct {
	mu    sync.Mutex
	cache map[image.Point]*image.RGBA
}

func NewBackground() *Background {
	return &Background{cache: make(map[image.Point]*image.RGBA)}
}

type nebula struct {
	fx, fy, r float64
	col       canvas.Color
}

var nebulae = []nebula{
	{0.15, 0.12, 400, canvas.RGBA(120, 40, 200, 0.08)},
	{0.85, 0.55, 450, canvas.RGBA(80, 20, 180, 0.06)},
	{0.5, 0.85, 350, canvas.RGBA(160, 60, 240, 0.05)},
	{0.8, 0.15, 250, canvas.RGBA(200, 100, 255, 0.04)},
	{0.3, 0.65, 300, canvas.RGBA(100, 30, 180, 0.05)},
}

func (b *Background) Draw(c *canvas.Canvas, f config.FrameParams) {
	dst := c.Surface()
	size := dst.Rect.Size()

	b.mu.Lock()
	cached, ok := b.cache[size]
	if !ok {
		cached = image.NewRGBA(dst.Rect)
		if bc, err := canvas.New(cached); err == nil {
			paintBackground(bc, f.Width, f.Height)
		}
		b.cache[size] = cached
	}
	b.mu.Unlock()

	draw.Draw(dst, dst.Rect, cached, image.Point{}, draw.Src)
}

func paintBackground(c *canvas.Canvas, w, h float64) {
	bg := canvas.Radial{
		X0: w * 0.5, Y0: h * 0.25, R0: 0,
		X1: w * 0.5, Y1: h * 0.5, R1: h * 0.95,
		Stops: []canvas.Stop{
			canvas.At(0, canvas.Hex("#1e0a45")),
			canvas.At(0.25, canvas.Hex("#130630")),
			canvas.At(0.55, canvas.Hex("#0a031c")),
			canvas.At(1, canvas.Hex("#040110")),
		},
	}
	c.FillRect(0, 0, w, h, bg)

	for _, n := range nebulae {
		cx, cy := w*n.fx, h*n.fy
		g := canvas.NewRadial(cx, cy, n.r,
			canvas.At(0, n.col),
			canvas.At(0.6, n.col.Alpha(0.02)),
			canvas.At(1, canvas.Transparent),
		)
		c.FillRect(cx-n.r, cy-n.r, n.r*2, n.r*2, g)
	}
}

// Star is one starfield point in normalized coordinates.
type Star struct {
	X, Y       float64
	Size       float64
	Brightness float64
	Speed      float64
}

type Starfield struct {
	Stars []Star
}

// NewStarfield generates n stars from the seeded sequence.
func NewStarfield(n int) *Starfield {
	stars := make([]Star, n)
	for i := range stars {
		k := float64(i)
		stars[i] = Star{
			X:          Seeded(k*7 + 1),
			Y:          Seeded(k*13 + 3),
			Size:       Seeded(k*19+5)*2.5 + 0.3,
			Brightness: Seeded(k*31 + 7),
			Speed:      Seeded(k*43+11)*2 + 1,
		}
	}
	return &Starfield{Stars: stars}
}

// Twinkle is the per-star pulse in [0.3, 1].
func Twinkle(timeMs float64, s Star) float64 {
	return 0.3 + 0.7*math.Abs(math.Sin(timeMs*0.001*s.Speed+s.Brightness*10))
}

func (sf *Starfield) Draw(c *canvas.Canvas, f config.FrameParams) {
	gate := director.StarGate(f.Progress)
	if gate <= 0 {
		return
	}
	white := canvas.RGB(255, 255, 255)
	for _, s := range sf.Stars {
		alpha := s.Brightness * Twinkle(f.TimeMs, s) * gate
		x, y := s.X*f.Width, s.Y*f.Height
		c.Circle(x, y, s.Size, white.Alpha(alpha))

		// cross glow on the bigger stars
		if s.Size > 2 {
			c.Push()
			c.MulAlpha(alpha * 0.3)
			gl := s.Size * 3
			c.Line(x-gl, y, x+gl, y, white, 0.5)
			c.Line(x, y-gl, x, y+gl, white, 0.5)
			c.Pop()
		}
	}
}

// Particle is one dust mote in normalized coordinates.
type Particle struct {
	X, Y  float64
	Size  float64
	Speed float64
	Alpha float64
}

type Dust struct {
	Particles []Particle
}

// NewDust generates n particles from the seeded sequence.
func NewDust(n int) *Dust {
	ps := make([]Particle, n)
	for i := range ps {
		k := float64(i)
		ps[i] = Particle{
			X:     Seeded(k*17 + 2),
			Y:     Seeded(k*23 + 5),
			Size:  Seeded(k*37+9)*3 + 1,
			Speed: Seeded(k*41+13)*0.5 + 0.2,
			Alpha: Seeded(k*53+17)*0.3 + 0.1,
		}
	}
	return &Dust{Particles: ps}
}

// Position returns where p is drawn at timeMs: drifting right, wrapping
// 10 units past either edge, bobbing vertically.
func (p Particle) Position(w, h, timeMs float64) (float64, float64) {
	x := math.Mod(p.X*w+timeMs*p.Speed*0.02, w+20) - 10
	y := p.Y*h + math.Sin(timeMs*0.001+p.X*10)*15
	return x, y
}

func (d *Dust) Draw(c *canvas.Canvas, f config.FrameParams) {
	gate := director.DustGate(f.Progress)
	if gate <= 0 {
		return
	}
	col := canvas.RGB(180, 140, 255)
	for _, p := range d.Particles {
		x, y := p.Position(f.Width, f.Height, f.TimeMs)
		c.Circle(x, y, p.Size, col.Alpha(p.Alpha*gate))
	}
}

// Beams are the two wide diagonal light shafts.
type Beams struct{}

func (Beams) Draw(c *canvas.Canvas, f config.FrameParams) {
	gate := director.BeamGate(f.Progress)
	if gate <= 0 {
		return
	}
	w, h := f.Width, f.Height
	off := math.Sin(f.TimeMs*0.0004) * 40

	violet := canvas.RGBA(140, 60, 255, 0.5)
	c.Push()
	c.MulAlpha(0.04 * gate)
	g1 := canvas.NewLinear(0, 100+off, w, h*0.6+off,
		canvas.At(0, canvas.Transparent), canvas.At(0.3, violet), canvas.At(0.7, violet), canvas.At(1, canvas.Transparent))
	c.Line(-100, 100+off, w+100, h*0.6+off, g1, 200)
	c.Pop()

	amber := canvas.RGBA(245, 158, 11, 0.4)
	c.Push()
	c.MulAlpha(0.025 * gate)
	g2 := canvas.NewLinear(w, 200-off, 0, h*0.8-off,
		canvas.At(0, canvas.Transparent), canvas.At(0.3, amber), canvas.At(0.7, amber), canvas.At(1, canvas.Transparent))
	c.Line(w+100, 200-off, -100, h*0.8-off, g2, 150)
	c.Pop()
}

// Frame is the outer double border with its corner flares.
type Frame struct{}

func (Frame) Draw(c *canvas.Canvas, f config.FrameParams) {
	gate := director.FrameGate(f.Progress)
	if gate <= 0 {
		return
	}
	w, h := f.Width, f.Height

	c.Push()
	c.MulAlpha(gate * 0.5)
	border := canvas.NewLinear(0, 0, w, h,
		canvas.At(0, canvas.RGBA(140, 60, 255, 0.6)),
		canvas.At(0.3, canvas.RGBA(245, 158, 11, 0.3)),
		canvas.At(0.7, canvas.RGBA(140, 60, 255, 0.4)),
		canvas.At(1, canvas.RGBA(245, 158, 11, 0.5)),
	)
	c.RoundRect(2, 2, w-4, h-4, 14, 14, 14, 14)
	c.StrokePath(border, 3)
	c.Pop()

	c.Push()
	c.MulAlpha(gate * 0.15)
	c.RoundRect(6, 6, w-12, h-12, 12, 12, 12, 12)
	c.StrokePath(canvas.RGBA(200, 180, 255, 0.4), 1)
	c.Pop()

	fa := gate * 0.4
	for _, p := range [][2]float64{{12, 12}, {w - 12, 12}, {12, h - 12}, {w - 12, h - 12}} {
		g := canvas.NewRadial(p[0], p[1], 60,
			canvas.At(0, canvas.RGBA(245, 200, 60, fa*0.8)),
			canvas.At(0.3, canvas.RGBA(245, 180, 40, fa*0.3)),
			canvas.At(1, canvas.Transparent),
		)
		c.FillRect(p[0]-60, p[1]-60, 120, 120, g)
	}
}
