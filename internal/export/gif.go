package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"

	"github.com/ivlev/scrim2gif/internal/director"
	"github.com/ivlev/scrim2gif/internal/renderer"
	"github.com/ivlev/scrim2gif/internal/scene"
)

// ExportAnimated renders the frame plan, downsamples each frame to the GIF
// size, quantizes it and returns the encoded GIF. logos should be a
// snapshot so the set of logos stays fixed for the whole file.
func (p *Pipeline) ExportAnimated(ctx context.Context, list *scene.ScrimList, logos renderer.LogoSource, progress ProgressFunc) (out []byte, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			err = &Failure{Format: FormatGIF, Err: err}
			log.Error().Err(err).Msg("[!] GIF не создан")
		}
		p.rec.RecordExport(FormatGIF, time.Since(start), err)
	}()

	rep, done, err := p.begin(ctx, progress)
	if err != nil {
		return nil, err
	}
	defer done()

	gw, gh := p.cfg.GIFWidth, p.cfg.GIFHeight
	if gw <= 0 || gh <= 0 {
		return nil, fmt.Errorf("gif size %dx%d: %w", gw, gh, ErrSurfaceUnavailable)
	}

	plan := director.NewPlan(p.cfg.FPS, p.cfg.Duration, p.cfg.Hold)
	delay := plan.DelayUnits()

	full := p.pool.Get(p.canvasRect())
	defer p.pool.Put(full)
	small := image.NewRGBA(image.Rect(0, 0, gw, gh))

	g := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(plan.Cues)),
		Delay:     make([]int, 0, len(plan.Cues)),
		Disposal:  make([]byte, 0, len(plan.Cues)),
		LoopCount: 0,
		Config:    image.Config{Width: gw, Height: gh},
	}

	rep.report(0)
	for _, cue := range plan.Cues {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.renderCue(full, list, cue, logos); err != nil {
			return nil, err
		}
		draw.BiLinear.Scale(small, small.Rect, full, full.Rect, draw.Src, nil)

		g.Image = append(g.Image, Quantize(small))
		g.Delay = append(g.Delay, delay)
		g.Disposal = append(g.Disposal, gif.DisposalNone)

		rep.report(plan.Percent(cue))
		if cue.Frame%yieldEvery == 0 {
			p.yield()
		}
	}
	rep.report(95)

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	rep.report(98)

	log.Debug().Int("frames", len(g.Image)).Int("delay_cs", delay).Int("bytes", buf.Len()).Msg("gif encoded")
	rep.report(100)
	return buf.Bytes(), nil
}

func (p *Pipeline) renderCue(dst *image.RGBA, list *scene.ScrimList, cue director.Cue, logos renderer.LogoSource) error {
	t0 := time.Now()
	if err := p.renderer.Render(dst, list, cue.Progress, cue.TimeMs, logos); err != nil {
		return fmt.Errorf("frame %d: %w", cue.Index, err)
	}
	p.rec.RecordRender(time.Since(t0))
	return nil
}
