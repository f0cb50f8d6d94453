// Package export turns a scrim list into files: an animated GIF built from
// the offline frame plan, a still PNG of the finished reveal and, when
// ffmpeg is available, an MP4 of the same frames.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ivlev/scrim2gif/internal/canvas"
	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/metrics"
	"github.com/ivlev/scrim2gif/internal/renderer"
	"github.com/ivlev/scrim2gif/internal/system"
)

var (
	ErrSurfaceUnavailable = canvas.ErrNoSurface
	ErrEncode             = errors.New("encode failed")
)

// FallbackHint is shown to the user when an animated export fails.
const FallbackHint = "animated export failed, try the still PNG export instead"

// Failure is the single outcome of a failed export. No partial output is
// returned alongside it.
type Failure struct {
	Format string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s export failed: %v", f.Format, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Hint suggests what to try next, or "" for the still export itself.
func (f *Failure) Hint() string {
	if f.Format == FormatPNG {
		return ""
	}
	return FallbackHint
}

const (
	FormatGIF = "gif"
	FormatPNG = "png"
	FormatMP4 = "mp4"
)

// Still export renders the finished reveal at this synthetic time.
const StillTimeMs = 3000

// yieldEvery: the frame loop gives up the processor this often.
const yieldEvery = 4

// ProgressFunc receives export completion in percent, 0 to 100.
type ProgressFunc func(percent int)

// Pipeline runs exports one at a time against a shared renderer.
type Pipeline struct {
	cfg      *config.Config
	renderer *renderer.Renderer
	pool     *system.FramePool
	rec      *metrics.Recorder
	yield    func()

	run   *semaphore.Weighted // one slot, held for the whole export
	state sync.Mutex
	busy  bool
	pct   int
}

func NewPipeline(cfg *config.Config, r *renderer.Renderer, rec *metrics.Recorder) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		renderer: r,
		pool:     system.NewFramePool(),
		rec:      rec,
		yield:    runtime.Gosched,
		run:      semaphore.NewWeighted(1),
	}
}

// State reports whether an export is running and its last percentage.
func (p *Pipeline) State() (generating bool, percent int) {
	p.state.Lock()
	defer p.state.Unlock()
	return p.busy, p.pct
}

// begin waits for the running export to finish, marks the pipeline busy
// and returns the reporter plus the reset that must run when the export
// ends, whatever the outcome. It gives up when ctx ends first.
func (p *Pipeline) begin(ctx context.Context, fn ProgressFunc) (*reporter, func(), error) {
	if err := p.run.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	p.state.Lock()
	p.busy, p.pct = true, 0
	p.state.Unlock()

	rep := &reporter{last: -1, fn: func(v int) {
		p.state.Lock()
		p.pct = v
		p.state.Unlock()
		if fn != nil {
			fn(v)
		}
	}}
	return rep, func() {
		p.state.Lock()
		p.busy, p.pct = false, 0
		p.state.Unlock()
		p.run.Release(1)
	}, nil
}

// reporter forwards only increasing percentages.
type reporter struct {
	last int
	fn   func(int)
}

func (r *reporter) report(v int) {
	v = max(0, min(100, v))
	if v <= r.last {
		return
	}
	r.last = v
	r.fn(v)
}

func (p *Pipeline) canvasRect() image.Rectangle {
	return image.Rect(0, 0, p.cfg.Width, p.cfg.Height)
}
