package effects

import (
	"golang.org/x/image/font"

	"github.com/ivlev/scrim2gif/internal/canvas"
	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/director"
)

const FooterText = "SCRIM LIST GENERATOR"

// Footer is the watermark that fades in during the second half of the reveal.
type Footer struct {
	Face font.Face
}

func (ft Footer) Draw(c *canvas.Canvas, f config.FrameParams) {
	gate := director.FooterGate(f.Progress)
	if gate <= 0 || ft.Face == nil {
		return
	}
	c.Push()
	c.MulAlpha(gate * 0.35)
	c.SetFont(ft.Face)
	c.Text(FooterText, f.Width/2, f.Height-14, canvas.Center, canvas.Alphabetic, 0, canvas.Hex("#8b5cf6"))
	c.Pop()
}
