package canvas

import (
	"errors"
	"image"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func newTestCanvas(t *testing.T) *Canvas {
	t.Helper()
	c, err := New(image.NewRGBA(image.Rect(0, 0, 108, 144)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNewRejectsMissingSurface(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoSurface) {
		t.Errorf("expected ErrNoSurface, got %v", err)
	}
	if _, err := New(image.NewRGBA(image.Rect(0, 0, 0, 10))); !errors.Is(err, ErrNoSurface) {
		t.Errorf("expected ErrNoSurface for empty surface, got %v", err)
	}
	if _, err := New(image.NewRGBA(image.Rect(5, 5, 10, 10))); err == nil {
		t.Error("expected error for offset surface")
	}
}

func TestFillScalesToSurface(t *testing.T) {
	c := newTestCanvas(t)
	if c.DeviceScale() != 0.1 {
		t.Fatalf("expected scale 0.1, got %f", c.DeviceScale())
	}

	// Left half of the canonical canvas is the left 54 pixels
	c.FillRect(0, 0, c.Width()/2, c.Height(), RGB(255, 0, 0))
	dst := c.Surface()
	if got := dst.RGBAAt(10, 70); got.R != 255 || got.A != 255 {
		t.Errorf("expected red inside, got %+v", got)
	}
	if got := dst.RGBAAt(80, 70); got.A != 0 {
		t.Errorf("expected transparent outside, got %+v", got)
	}
}

func TestAlphaStack(t *testing.T) {
	c := newTestCanvas(t)

	c.Push()
	c.MulAlpha(0.5)
	c.MulAlpha(0.5)
	if c.Alpha() != 0.25 {
		t.Errorf("expected 0.25, got %f", c.Alpha())
	}
	c.FillRect(0, 0, c.Width(), c.Height(), RGB(0, 0, 255))
	c.Pop()

	if c.Alpha() != 1 {
		t.Errorf("alpha not restored: %f", c.Alpha())
	}
	got := c.Surface().RGBAAt(50, 50)
	if got.A < 60 || got.A > 68 {
		t.Errorf("expected ~64 alpha, got %d", got.A)
	}

	// Pop on an empty stack is a no-op
	c.Pop()
	if c.Alpha() != 1 {
		t.Error("empty Pop changed alpha")
	}
}

func TestZeroAlphaDrawsNothing(t *testing.T) {
	c := newTestCanvas(t)
	c.SetAlpha(0)
	c.FillRect(0, 0, c.Width(), c.Height(), RGB(255, 255, 255))
	c.Circle(540, 720, 300, RGB(255, 255, 255))
	if got := c.Surface().RGBAAt(54, 72); got.A != 0 {
		t.Errorf("expected nothing drawn, got %+v", got)
	}
}

func TestClipEndsWithPop(t *testing.T) {
	c := newTestCanvas(t)

	c.Push()
	c.RoundRect(0, 0, 540, 720, 0, 0, 0, 0)
	c.Clip()
	c.FillRect(0, 0, c.Width(), c.Height(), RGB(0, 255, 0))
	c.Pop()

	dst := c.Surface()
	if got := dst.RGBAAt(20, 20); got.G != 255 {
		t.Errorf("expected green inside clip, got %+v", got)
	}
	if got := dst.RGBAAt(100, 130); got.A != 0 {
		t.Errorf("expected clip to hold, got %+v", got)
	}

	c.FillRect(0, 0, c.Width(), c.Height(), RGB(255, 0, 0))
	if got := dst.RGBAAt(100, 130); got.R != 255 {
		t.Errorf("clip leaked past Pop, got %+v", got)
	}
}

func TestNestedClipRestoredOnPop(t *testing.T) {
	c := newTestCanvas(t)
	dst := c.Surface()

	// outer: bottom-left quarter, set under a transform
	c.Push()
	c.Translate(0, 720)
	c.RoundRect(0, 0, 540, 720, 0, 0, 0, 0)
	c.Clip()

	// inner: left column of the outer clip only
	c.Push()
	c.RoundRect(0, 0, 270, 720, 0, 0, 0, 0)
	c.Clip()
	c.FillRect(0, -720, c.Width(), c.Height(), RGB(0, 0, 255))
	c.Pop()
	if got := dst.RGBAAt(10, 100); got.B != 255 {
		t.Errorf("expected blue inside both clips, got %+v", got)
	}
	if got := dst.RGBAAt(45, 100); got.A != 0 {
		t.Errorf("inner clip did not hold, got %+v", got)
	}

	c.FillRect(0, -720, c.Width(), c.Height(), RGB(0, 255, 0))
	if got := dst.RGBAAt(45, 100); got.G != 255 {
		t.Errorf("inner clip outlived its Pop, got %+v", got)
	}
	for _, pt := range []image.Point{{20, 20}, {80, 100}} {
		if got := dst.RGBAAt(pt.X, pt.Y); got.A != 0 {
			t.Errorf("outer clip lost at %v, got %+v", pt, got)
		}
	}
	c.Pop()

	c.FillRect(0, 0, c.Width(), c.Height(), RGB(255, 0, 0))
	if got := dst.RGBAAt(80, 100); got.R != 255 {
		t.Errorf("outer clip leaked past Pop, got %+v", got)
	}
}

func TestLinearGradientFollowsTransform(t *testing.T) {
	c := newTestCanvas(t)
	g := NewLinear(0, 0, c.Width(), 0, At(0, RGB(0, 0, 0)), At(1, RGB(255, 255, 255)))
	c.FillRect(0, 0, c.Width(), c.Height(), g)

	dst := c.Surface()
	left, right := dst.RGBAAt(2, 50), dst.RGBAAt(105, 50)
	if left.R > 20 || right.R < 235 {
		t.Errorf("gradient not mapped to device space: left %d right %d", left.R, right.R)
	}
}

func TestRadialGradient(t *testing.T) {
	c := newTestCanvas(t)
	g := NewRadial(540, 720, 500, At(0, RGB(255, 255, 255)), At(1, Transparent))
	c.FillRect(0, 0, c.Width(), c.Height(), g)

	dst := c.Surface()
	if got := dst.RGBAAt(54, 72); got.A < 240 {
		t.Errorf("expected opaque centre, got %+v", got)
	}
	if got := dst.RGBAAt(1, 1); got.A != 0 {
		t.Errorf("expected transparent corner, got %+v", got)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#fcd34d", RGB(0xfc, 0xd3, 0x4d), true},
		{"#fff", RGB(255, 255, 255), true},
		{"8b5cf6", RGB(0x8b, 0x5c, 0xf6), true},
		{"#12345", Color{}, false},
		{"#zzzzzz", Color{}, false},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("%s: unexpected error state %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.in, tt.want, got)
		}
	}
}

func TestTextFitsMaxWidth(t *testing.T) {
	c := newTestCanvas(t)
	c.SetFont(basicfont.Face7x13)

	long := "THIS IS A VERY LONG TEAM NAME"
	if c.MeasureText(long) <= 50 {
		t.Fatal("test string too short")
	}
	c.Text(long, 540, 720, 0.5, 0.5, 50, RGB(255, 255, 255))

	// Compressed to 50 canonical units around x=540, i.e. 5 device pixels
	dst := c.Surface()
	for x := 0; x < 48; x++ {
		for y := 0; y < 144; y++ {
			if dst.RGBAAt(x, y).A != 0 {
				t.Fatalf("text drawn outside max width at (%d,%d)", x, y)
			}
		}
	}
}
