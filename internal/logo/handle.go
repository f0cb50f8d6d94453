package logo

import (
	"image"
	"image/gif"
	"sort"
	"time"

	"golang.org/x/image/draw"
)

// Handle is a decoded logo. Animated handles keep playing: Frame returns
// whatever frame is on screen at the given time on the handle's own loop.
type Handle interface {
	Source() string
	Frame(at time.Duration) image.Image
	Animated() bool
	Bounds() image.Rectangle
}

type staticHandle struct {
	src string
	img image.Image
}

func (h *staticHandle) Source() string                  { return h.src }
func (h *staticHandle) Frame(time.Duration) image.Image { return h.img }
func (h *staticHandle) Animated() bool                  { return false }
func (h *staticHandle) Bounds() image.Rectangle         { return h.img.Bounds() }

type animatedHandle struct {
	src    string
	frames []image.Image
	ends   []time.Duration // cumulative end time of each frame
	total  time.Duration
}

func (h *animatedHandle) Source() string          { return h.src }
func (h *animatedHandle) Animated() bool          { return true }
func (h *animatedHandle) Bounds() image.Rectangle { return h.frames[0].Bounds() }

func (h *animatedHandle) Frame(at time.Duration) image.Image {
	t := at % h.total
	if t < 0 {
		t += h.total
	}
	i := sort.Search(len(h.ends), func(i int) bool { return h.ends[i] > t })
	if i >= len(h.frames) {
		i = len(h.frames) - 1
	}
	return h.frames[i]
}

const (
	maxFrames = 240
	// browsers bump near-zero GIF delays to 100ms; so do we
	minDelayCS     = 2
	defaultDelayCS = 10
)

// compose flattens a GIF into full-size frames, honouring disposal methods.
func compose(g *gif.GIF, fit func(image.Image) image.Image) ([]image.Image, []time.Duration) {
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}
	bounds := image.Rect(0, 0, w, h)
	screen := image.NewRGBA(bounds)

	n := min(len(g.Image), maxFrames)
	frames := make([]image.Image, 0, n)
	delays := make([]time.Duration, 0, n)

	for i := 0; i < n; i++ {
		src := g.Image[i]
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var previous *image.RGBA
		if disposal == gif.DisposalPrevious {
			previous = image.NewRGBA(bounds)
			copy(previous.Pix, screen.Pix)
		}

		draw.Draw(screen, src.Bounds(), src, src.Bounds().Min, draw.Over)

		frame := image.NewRGBA(bounds)
		copy(frame.Pix, screen.Pix)
		frames = append(frames, fit(frame))

		delay := defaultDelayCS
		if i < len(g.Delay) && g.Delay[i] >= minDelayCS {
			delay = g.Delay[i]
		}
		delays = append(delays, time.Duration(delay)*10*time.Millisecond)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(screen, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			screen = previous
		}
	}
	return frames, delays
}

func newAnimated(src string, frames []image.Image, delays []time.Duration) *animatedHandle {
	h := &animatedHandle{src: src, frames: frames, ends: make([]time.Duration, len(delays))}
	for i, d := range delays {
		h.total += d
		h.ends[i] = h.total
	}
	return h
}
