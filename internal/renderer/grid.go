package renderer

import (
	"image"
	"math"
	"strconv"
	"time"

	"github.com/ivlev/scrim2gif/internal/canvas"
	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/scene"
)

const (
	gridTop      = 220
	gridPadX     = 28
	gridGap      = 12
	gridBottom   = 40
	maxCellH     = 210
	labelH       = 30
	maxMembers   = 4
	memberLineH  = 16
	streakCount  = 4
	streakPeriod = 4.0
)

// Layout is the slot grid geometry in canonical units.
type Layout struct {
	Rows         int
	CellW, CellH float64
}

// GridLayout divides the area below the header evenly between rows, with
// cells capped at maxCellH.
func GridLayout(w, h float64, slots int) Layout {
	rows := scene.Rows(slots)
	cellW := (w - gridPadX*2 - (scene.Columns-1)*gridGap) / scene.Columns
	avail := h - gridTop - gridBottom
	cellH := float64(maxCellH)
	if rows > 0 {
		cellH = math.Min((avail-float64(rows-1)*gridGap)/float64(rows), maxCellH)
	}
	return Layout{Rows: rows, CellW: cellW, CellH: cellH}
}

// Origin is the top-left corner of the cell at (row, col).
func (l Layout) Origin(row, col int) (float64, float64) {
	return gridPadX + float64(col)*(l.CellW+gridGap), gridTop + float64(row)*(l.CellH+gridGap)
}

type palette struct {
	label     [3]canvas.Color
	labelText canvas.Color
	labelGlow canvas.Color
	border    [3]canvas.Color
	streak    canvas.Color
	shine     canvas.Color
	glow      canvas.Color
	name      canvas.Color
	nameGlow  canvas.Color
}

var palettes = map[scene.Tier]palette{
	scene.TierGold: {
		label:     [3]canvas.Color{canvas.RGBA(160, 120, 20, 0.7), canvas.RGBA(200, 160, 40, 0.5), canvas.RGBA(120, 80, 10, 0.6)},
		labelText: canvas.Hex("#fde68a"),
		labelGlow: canvas.RGBA(245, 180, 11, 0.6),
		border:    [3]canvas.Color{canvas.RGBA(245, 180, 40, 0.5), canvas.RGBA(245, 180, 40, 0.15), canvas.RGBA(245, 180, 40, 0.4)},
		streak:    canvas.RGB(245, 200, 60),
		shine:     canvas.RGBA(255, 220, 80, 0.08),
		glow:      canvas.RGB(245, 180, 40),
		name:      canvas.Hex("#fde68a"),
		nameGlow:  canvas.RGB(245, 180, 11),
	},
	scene.TierPurple: {
		label:     [3]canvas.Color{canvas.RGBA(140, 70, 255, 0.5), canvas.RGBA(140, 70, 255, 0.35), canvas.RGBA(140, 70, 255, 0.5)},
		labelText: canvas.Hex("#c4b5fd"),
		labelGlow: canvas.RGBA(140, 80, 255, 0.6),
		border:    [3]canvas.Color{canvas.RGBA(140, 70, 255, 0.5), canvas.RGBA(140, 70, 255, 0.1), canvas.RGBA(140, 70, 255, 0.4)},
		streak:    canvas.RGB(160, 90, 255),
		shine:     canvas.RGBA(180, 120, 255, 0.06),
		glow:      canvas.RGB(160, 80, 255),
		name:      canvas.Hex("#e8e0ff"),
		nameGlow:  canvas.RGB(140, 80, 255),
	},
}

var (
	memberColor = canvas.RGBA(200, 190, 225, 0.7)
	moreColor   = canvas.RGBA(180, 160, 210, 0.5)
	emptyColor  = canvas.RGBA(100, 80, 140, 0.35)
)

func (r *Renderer) drawGrid(c *canvas.Canvas, list *scene.ScrimList, f config.FrameParams, logos LogoSource) {
	slots := list.Slots()
	layout := GridLayout(f.Width, f.Height, len(slots))
	for _, s := range slots {
		tp := r.director.SlotProgress(f.Progress, s.Index)
		if tp <= 0 {
			continue
		}
		r.drawSlot(c, s, layout, tp, f, logos)
	}
}

func (r *Renderer) drawSlot(c *canvas.Canvas, s scene.Slot, l Layout, tp float64, f config.FrameParams, logos LogoSource) {
	pal := palettes[s.Tier]
	x, y := l.Origin(s.Row, s.Col)
	w := l.CellW
	cardY := y + labelH
	cardH := l.CellH - labelH

	c.Push()
	defer c.Pop()
	c.MulAlpha(tp)
	scale := 0.8 + 0.2*tp
	c.ScaleAbout(scale, scale, x+w/2, y+l.CellH/2)

	// label bar
	c.RoundRect(x, y, w, labelH, 8, 8, 0, 0)
	c.FillPath(canvas.NewLinear(x, y, x+w, y+labelH,
		canvas.At(0, pal.label[0]), canvas.At(0.5, pal.label[1]), canvas.At(1, pal.label[2])))
	c.SetFont(r.faces.get(Label, 13))
	c.GlowText("SLOT:"+strconv.Itoa(s.Index+1), x+w/2, y+labelH/2+1, canvas.Center, canvas.Middle, 0,
		pal.labelText, pal.labelGlow, 8)

	// card body
	c.RoundRect(x, cardY, w, cardH, 0, 0, 8, 8)
	c.FillPath(canvas.NewLinear(x, cardY, x+w, cardY+cardH,
		canvas.At(0, canvas.RGBA(16, 6, 35, 0.95)),
		canvas.At(0.3, canvas.RGBA(22, 10, 48, 0.92)),
		canvas.At(0.7, canvas.RGBA(18, 8, 40, 0.92)),
		canvas.At(1, canvas.RGBA(12, 4, 28, 0.95)),
	))
	c.RoundRect(x, cardY, w, cardH, 0, 0, 8, 8)
	c.StrokePath(canvas.NewLinear(x, cardY, x+w, cardY+cardH,
		canvas.At(0, pal.border[0]), canvas.At(0.5, pal.border[1]), canvas.At(1, pal.border[2])), 1.5)

	c.Push()
	c.RoundRect(x, cardY, w, cardH, 0, 0, 8, 8)
	c.Clip()
	drawStreaks(c, pal, s.Index, x, cardY, w, cardH, l.CellH, f.TimeMs)
	c.FillRect(x, cardY, w, 30, canvas.NewLinear(x, cardY, x, cardY+30,
		canvas.At(0, pal.shine), canvas.At(1, canvas.Transparent)))
	c.FillRect(x, cardY+cardH-5, w, 5, canvas.NewLinear(x, cardY+cardH-6, x+w, cardY+cardH-6,
		canvas.At(0, canvas.Transparent),
		canvas.At(0.2, pal.glow.Alpha(0.2)),
		canvas.At(0.5, pal.glow.Alpha(0.6)),
		canvas.At(0.8, pal.glow.Alpha(0.2)),
		canvas.At(1, canvas.Transparent),
	))
	c.Pop()

	cx := x + w/2
	if s.Empty() {
		c.SetFont(r.faces.get(HeadingBold, 16))
		c.Text("EMPTY", cx, cardY+cardH/2, canvas.Center, canvas.Middle, 0, emptyColor)
		return
	}

	team := s.Team
	name := team.DisplayName(s.Index)
	if logo, ok := logoFrame(logos, team, f.TimeMs); ok {
		size := math.Min(w-24, cardH-50)
		lx, ly := cx-size/2, cardY+10
		c.Push()
		c.RoundRect(lx, ly, size, size, 6, 6, 6, 6)
		c.Clip()
		c.Image(logo, lx, ly, size, size)
		c.Pop()

		c.SetFont(r.faces.get(HeadingBold, 14))
		c.GlowText(name, cx, cardY+cardH-10, canvas.Center, canvas.Alphabetic, w-12, pal.name, pal.nameGlow.Alpha(0.5), 6)
		return
	}

	c.SetFont(r.faces.get(HeadingBold, 16))
	c.GlowText(name, cx, cardY+cardH/2-4, canvas.Center, canvas.Alphabetic, w-14, pal.name, pal.nameGlow.Alpha(0.4), 5)

	members := team.VisibleMembers()
	c.SetFont(r.faces.get(HeadingMedium, 11))
	for i, m := range members {
		if i == maxMembers {
			break
		}
		c.Text(m.Name, cx, cardY+cardH/2+16+float64(i)*memberLineH, canvas.Center, canvas.Alphabetic, w-16, memberColor)
	}
	if extra := len(members) - maxMembers; extra > 0 {
		c.Text("+"+strconv.Itoa(extra)+" more", cx, cardY+cardH/2+16+maxMembers*memberLineH, canvas.Center, canvas.Alphabetic, 0, moreColor)
	}
}

// drawStreaks paints the diagonal shimmer. The phase depends on time and the
// slot index only, so it keeps moving after the reveal completes.
func drawStreaks(c *canvas.Canvas, pal palette, index int, x, cardY, w, cardH, cellH, timeMs float64) {
	for s := 0; s < streakCount; s++ {
		sp, alpha := streakAlpha(index, s, timeMs)
		if alpha < 0.01 {
			continue
		}
		c.Push()
		c.MulAlpha(alpha)
		c.Translate(x+sp/streakPeriod*(w+cellH)-cellH*0.3, cardY)
		c.Rotate(math.Pi * 0.2)
		sw := 6 + float64(s)*5
		c.FillRect(-sw/2, -30, sw, cardH+80, canvas.NewLinear(-sw/2, 0, sw/2, 0,
			canvas.At(0, canvas.Transparent), canvas.At(0.5, pal.streak), canvas.At(1, canvas.Transparent)))
		c.Pop()
	}
}

func logoFrame(logos LogoSource, team *scene.Team, timeMs float64) (image.Image, bool) {
	if logos == nil || !team.HasLogo() {
		return nil, false
	}
	img, ok := logos.Frame(team.ID, time.Duration(timeMs*float64(time.Millisecond)))
	if !ok || img == nil || img.Bounds().Empty() {
		return nil, false
	}
	return img, true
}

// streakAlpha is the opacity of streak s of slot index at timeMs.
func streakAlpha(index, s int, timeMs float64) (phase, alpha float64) {
	base := math.Mod(timeMs*0.0006+float64(index)*0.8, streakPeriod)
	phase = math.Mod(base+float64(s)*0.5, streakPeriod)
	return phase, math.Max(0, 1-math.Abs(phase-2)*0.5) * 0.15
}
