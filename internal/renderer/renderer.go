// Package renderer paints one frame of the scrim list reveal.
//
// Render is a pure function of (list, progress, time, logos): no timers, no
// I/O, no mutation of the list. Decorative layers live in package effects;
// this package adds the header and the slot grid on top of them.
package renderer

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ivlev/scrim2gif/internal/canvas"
	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/director"
	"github.com/ivlev/scrim2gif/internal/effects"
	"github.com/ivlev/scrim2gif/internal/scene"
)

const (
	StarCount = 180
	DustCount = 40
)

// LogoSource returns the frame of a team's logo to show at the given render
// time. ok is false when the team has no resolved logo.
type LogoSource interface {
	Frame(teamID string, at time.Duration) (img image.Image, ok bool)
}

// Renderer owns the decoration state (stars, dust, cached background) and
// the font faces. Calls to Render are serialized.
type Renderer struct {
	mu       sync.Mutex
	director *director.Director
	faces    *faces
	under    []effects.Effect
	over     []effects.Effect
	badge    image.Image
}

// New creates a Renderer. fonts may be shared between renderers.
func New(cfg *config.Config, fonts *FontSet) *Renderer {
	if fonts == nil {
		fonts = LoadFonts(cfg)
	}
	r := &Renderer{
		director: director.NewDirector(cfg),
		faces:    newFaces(fonts),
	}
	r.under = []effects.Effect{
		effects.NewBackground(),
		effects.NewStarfield(StarCount),
		effects.NewDust(DustCount),
		effects.Beams{},
	}
	r.over = []effects.Effect{
		effects.Frame{},
		effects.Footer{Face: r.faces.get(Label, 13)},
	}
	if cfg != nil && cfg.ShareURL != "" {
		badge, err := ShareBadge(cfg.ShareURL, badgeSize)
		if err == nil {
			r.badge = badge
		}
	}
	return r
}

// Fallback reports whether any role is drawn with the built-in fonts.
func (r *Renderer) Fallback() bool { return r.faces.set.Fallback }

// Render paints the full frame onto dst, scaled from the canonical size.
// A nil list renders as an empty one; logos may be nil.
func (r *Renderer) Render(dst *image.RGBA, list *scene.ScrimList, progress, timeMs float64, logos LogoSource) error {
	c, err := canvas.New(dst)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if list == nil {
		list = &scene.ScrimList{}
	}
	f := config.FrameParams{
		Width:    c.Width(),
		Height:   c.Height(),
		Progress: director.Clamp01(progress),
		TimeMs:   timeMs,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.under {
		e.Draw(c, f)
	}
	r.drawHeader(c, list, f)
	r.drawGrid(c, list, f, logos)
	for _, e := range r.over {
		e.Draw(c, f)
	}
	return nil
}

// Close releases the font faces.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faces.close()
}
