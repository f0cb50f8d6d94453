package effects

import (
	"bytes"
	"image"
	"math"
	"testing"

	"golang.org/x/image/font/basicfont"

	"github.com/ivlev/scrim2gif/internal/canvas"
	"github.com/ivlev/scrim2gif/internal/config"
)

func testCanvas(t *testing.T) *canvas.Canvas {
	t.Helper()
	c, err := canvas.New(image.NewRGBA(image.Rect(0, 0, 108, 144)))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func params(progress, timeMs float64) config.FrameParams {
	return config.FrameParams{Width: config.CanonicalWidth, Height: config.CanonicalHeight, Progress: progress, TimeMs: timeMs}
}

func blank(img *image.RGBA) bool {
	for _, b := range img.Pix {
		if b != 0 {
			return false
		}
	}
	return true
}

func TestSeeded(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := Seeded(float64(i))
		if v < 0 || v >= 1 {
			t.Fatalf("Seeded(%d) = %f out of [0,1)", i, v)
		}
		if v != Seeded(float64(i)) {
			t.Fatalf("Seeded(%d) not stable", i)
		}
	}
}

func TestStarfieldGeneration(t *testing.T) {
	a, b := NewStarfield(180), NewStarfield(180)
	if len(a.Stars) != 180 {
		t.Fatalf("expected 180 stars, got %d", len(a.Stars))
	}
	for i := range a.Stars {
		if a.Stars[i] != b.Stars[i] {
			t.Fatalf("star %d differs between instances", i)
		}
		s := a.Stars[i]
		if s.Size < 0.3 || s.Size > 2.8 || s.Speed < 1 || s.Speed > 3 {
			t.Errorf("star %d out of range: %+v", i, s)
		}
	}
	if want := Seeded(1); a.Stars[0].X != want {
		t.Errorf("star 0 x: expected %f, got %f", want, a.Stars[0].X)
	}
}

func TestTwinkleRange(t *testing.T) {
	s := Star{Brightness: 0.5, Speed: 2}
	for ms := 0.0; ms < 10000; ms += 37 {
		v := Twinkle(ms, s)
		if v < 0.3-1e-9 || v > 1+1e-9 {
			t.Fatalf("twinkle %f at %fms", v, ms)
		}
	}
}

func TestDustWraps(t *testing.T) {
	d := NewDust(40)
	if len(d.Particles) != 40 {
		t.Fatalf("expected 40 particles, got %d", len(d.Particles))
	}
	w, h := float64(config.CanonicalWidth), float64(config.CanonicalHeight)
	for _, p := range d.Particles {
		for _, ms := range []float64{0, 1e4, 1e6, 3.3e7} {
			x, y := p.Position(w, h, ms)
			if x < -10 || x >= w+10 {
				t.Errorf("x %f outside wrap range at %fms", x, ms)
			}
			if math.Abs(y-p.Y*h) > 15+1e-9 {
				t.Errorf("bob exceeds 15 units: %f", y-p.Y*h)
			}
		}
	}
}

func TestGatedLayersHiddenAtZero(t *testing.T) {
	layers := map[string]Effect{
		"stars":  NewStarfield(180),
		"dust":   NewDust(40),
		"beams":  Beams{},
		"frame":  Frame{},
		"footer": Footer{Face: basicfont.Face7x13},
	}
	for name, e := range layers {
		c := testCanvas(t)
		e.Draw(c, params(0, 1234))
		if !blank(c.Surface()) {
			t.Errorf("%s drew at progress 0", name)
		}
	}
}

func TestFooterOpensPastHalf(t *testing.T) {
	ft := Footer{Face: basicfont.Face7x13}

	c := testCanvas(t)
	ft.Draw(c, params(0.5, 0))
	if !blank(c.Surface()) {
		t.Error("footer drawn at progress 0.5")
	}

	c = testCanvas(t)
	ft.Draw(c, params(1, 0))
	if blank(c.Surface()) {
		t.Error("footer missing at progress 1")
	}
}

func TestBackgroundCached(t *testing.T) {
	bg := NewBackground()

	c1 := testCanvas(t)
	bg.Draw(c1, params(0, 0))
	c2 := testCanvas(t)
	bg.Draw(c2, params(1, 9999))

	if !bytes.Equal(c1.Surface().Pix, c2.Surface().Pix) {
		t.Error("background depends on progress or time")
	}
	if len(bg.cache) != 1 {
		t.Errorf("expected one cached size, got %d", len(bg.cache))
	}
	// Opaque everywhere so it fully replaces the previous frame
	for i := 3; i < len(c1.Surface().Pix); i += 4 {
		if c1.Surface().Pix[i] != 255 {
			t.Fatal("background is not opaque")
		}
	}
}

func TestStarsDeterministic(t *testing.T) {
	sf := NewStarfield(180)
	c1, c2 := testCanvas(t), testCanvas(t)
	sf.Draw(c1, params(0.7, 2500))
	sf.Draw(c2, params(0.7, 2500))
	if !bytes.Equal(c1.Surface().Pix, c2.Surface().Pix) {
		t.Error("starfield not deterministic")
	}
	if blank(c1.Surface()) {
		t.Error("starfield drew nothing")
	}
}
