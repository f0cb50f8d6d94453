package export

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/scrim2gif/internal/director"
	"github.com/ivlev/scrim2gif/internal/renderer"
	"github.com/ivlev/scrim2gif/internal/scene"
	"github.com/ivlev/scrim2gif/internal/video"
)

// ExportVideo streams the same frame plan as the GIF, at canvas resolution,
// into enc and writes the result to path.
func (p *Pipeline) ExportVideo(ctx context.Context, list *scene.ScrimList, logos renderer.LogoSource, enc video.Encoder, path string, progress ProgressFunc) (err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			err = &Failure{Format: FormatMP4, Err: err}
			log.Error().Err(err).Str("path", path).Msg("[!] MP4 не создан")
		}
		p.rec.RecordExport(FormatMP4, time.Since(start), err)
	}()

	rep, done, err := p.begin(ctx, progress)
	if err != nil {
		return err
	}
	defer done()

	plan := director.NewPlan(p.cfg.FPS, p.cfg.Duration, p.cfg.Hold)
	rect := p.canvasRect()

	stream, err := enc.Start(ctx, path, rect.Dx(), rect.Dy(), plan.FPS)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	closed := false
	defer func() {
		if !closed {
			stream.Abort()
		}
	}()

	full := p.pool.Get(rect)
	defer p.pool.Put(full)

	rep.report(0)
	for _, cue := range plan.Cues {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.renderCue(full, list, cue, logos); err != nil {
			return err
		}
		if err := stream.WriteFrame(full); err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		rep.report(plan.Percent(cue))
		if cue.Frame%yieldEvery == 0 {
			p.yield()
		}
	}
	rep.report(95)

	closed = true
	if err := stream.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	rep.report(100)
	return nil
}
