package renderer

import (
	"strings"

	"github.com/ivlev/scrim2gif/internal/canvas"
	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/director"
	"github.com/ivlev/scrim2gif/internal/scene"
)

const (
	headerHeight = 200
	headerSlide  = 30 // units above the final position at gate 0
	infoX        = 40
	badgeSize    = 76
)

var (
	titleColor = canvas.Hex("#fcd34d")
	titleGlow  = canvas.RGBA(245, 180, 11, 0.7)
	fieldLabel = canvas.Hex("#a78bfa")
	fieldValue = canvas.Hex("#e8e0ff")
	accentGold = canvas.RGBA(245, 158, 11, 0.8)
)

func (r *Renderer) drawHeader(c *canvas.Canvas, list *scene.ScrimList, f config.FrameParams) {
	gate := director.HeaderGate(f.Progress)
	if gate <= 0 {
		return
	}
	w := f.Width
	slide := (1 - gate) * -headerSlide

	c.Push()
	defer c.Pop()
	c.MulAlpha(gate)

	panel := canvas.NewLinear(0, 0, w, headerHeight,
		canvas.At(0, canvas.RGBA(12, 4, 30, 0.9)),
		canvas.At(0.5, canvas.RGBA(25, 10, 60, 0.7)),
		canvas.At(1, canvas.RGBA(12, 4, 30, 0.9)),
	)
	c.FillRect(0, 0, w, headerHeight, panel)

	line := canvas.NewLinear(0, 0, w, 0,
		canvas.At(0, canvas.Transparent),
		canvas.At(0.1, accentGold.Alpha(0.05)),
		canvas.At(0.3, accentGold),
		canvas.At(0.5, canvas.Hex("#fbbf24")),
		canvas.At(0.7, accentGold),
		canvas.At(0.9, accentGold.Alpha(0.05)),
		canvas.At(1, canvas.Transparent),
	)
	c.FillRect(0, 196, w, 3, line)

	// line glow: a wider, fainter copy
	c.Push()
	c.MulAlpha(0.3)
	c.FillRect(0, 190, w, 15, line)
	c.Pop()

	title := list.Title()
	c.SetFont(r.faces.get(Label, 72))
	c.GlowText(title, w/2, 72+slide, canvas.Center, canvas.Middle, w-100, titleColor, titleGlow, 30)
	c.GlowText(title, w/2, 72+slide, canvas.Center, canvas.Middle, w-100, titleColor, titleGlow, 15)

	y := 130 + slide
	if list.HasOrganizer() {
		r.field(c, 20, "ORGANIZER :", strings.ToUpper(strings.TrimSpace(list.OrganizerName)), infoX, y, 145)
	}
	if list.HasTime() {
		r.field(c, 18, "TIME :", strings.TrimSpace(list.ScrimTime), infoX, y+28, 70)
	}
	if list.HasDate() {
		x := float64(infoX)
		if list.HasTime() {
			x += 250
		}
		r.field(c, 18, "DATE :", list.FormattedDate(), x, y+28, 65)
	}

	if r.badge != nil {
		c.Image(r.badge, w-infoX-badgeSize, 116+slide, badgeSize, badgeSize)
	}
}

// field draws "LABEL : value" with the value offset by gap.
func (r *Renderer) field(c *canvas.Canvas, size float64, label, value string, x, y, gap float64) {
	c.SetFont(r.faces.get(HeadingBold, size))
	c.Text(label, x, y, canvas.Left, canvas.Alphabetic, 0, fieldLabel)
	c.SetFont(r.faces.get(HeadingMedium, size))
	c.Text(value, x+gap, y, canvas.Left, canvas.Alphabetic, 0, fieldValue)
}
