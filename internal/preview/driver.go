// Package preview plays the reveal in a loop for live viewing: the reveal
// runs over the reveal time, holds on the finished frame for the loop
// pause, then starts over.
package preview

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/director"
	"github.com/ivlev/scrim2gif/internal/renderer"
	"github.com/ivlev/scrim2gif/internal/scene"
)

var ErrRunning = errors.New("preview already running")

// Sink receives every rendered preview frame. img is reused for the next
// frame once WriteFrame returns.
type Sink interface {
	WriteFrame(ctx context.Context, img *image.RGBA, progress float64) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, img *image.RGBA, progress float64) error

func (f SinkFunc) WriteFrame(ctx context.Context, img *image.RGBA, progress float64) error {
	return f(ctx, img, progress)
}

// Driver renders onto one persistent surface at a fixed tick rate. Ticks
// never overlap: a slow frame delays the next one instead of queueing.
type Driver struct {
	clock    clockwork.Clock
	renderer *renderer.Renderer
	director *director.Director
	interval time.Duration
	surface  *image.RGBA

	mu     sync.Mutex
	list   *scene.ScrimList
	logos  renderer.LogoSource
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDriver creates a driver that renders at the preview size and rate in
// cfg. A nil clock uses the real clock.
func NewDriver(cfg *config.Config, r *renderer.Renderer, clock clockwork.Clock) *Driver {
	if cfg == nil {
		cfg = config.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	fps := cfg.PreviewFPS
	if fps <= 0 {
		fps = 24
	}
	return &Driver{
		clock:    clock,
		renderer: r,
		director: director.NewDirector(cfg),
		interval: time.Second / time.Duration(fps),
		surface:  image.NewRGBA(image.Rect(0, 0, cfg.PreviewWidth, cfg.PreviewHeight)),
	}
}

// SetScene swaps the list and logo source shown from the next tick on.
func (d *Driver) SetScene(list *scene.ScrimList, logos renderer.LogoSource) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.list = list
	d.logos = logos
}

func (d *Driver) scene() (*scene.ScrimList, renderer.LogoSource) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.list, d.logos
}

// Run renders until ctx is done or the sink fails. It returns nil on
// cancellation and the sink or render error otherwise.
func (d *Driver) Run(ctx context.Context, sink Sink) error {
	start := d.clock.Now()
	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
		// a tick that raced with cancellation is dropped
		if ctx.Err() != nil {
			return nil
		}
		elapsed := d.clock.Since(start)
		// drop a tick that piled up while this one waited
		select {
		case <-ticker.Chan():
		default:
		}
		if err := d.tick(ctx, sink, elapsed); err != nil {
			return err
		}
	}
}

func (d *Driver) tick(ctx context.Context, sink Sink, elapsed time.Duration) error {
	list, logos := d.scene()
	progress := d.director.LoopProgress(elapsed)
	timeMs := float64(elapsed) / float64(time.Millisecond)

	if err := d.renderer.Render(d.surface, list, progress, timeMs, logos); err != nil {
		return err
	}
	return sink.WriteFrame(ctx, d.surface, progress)
}

// Start runs the driver in the background until Stop.
func (d *Driver) Start(ctx context.Context, sink Sink) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done != nil {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.cancel, d.done = cancel, done

	go func() {
		defer close(done)
		if err := d.Run(ctx, sink); err != nil {
			log.Warn().Err(err).Msg("[!] Превью остановлено")
		}
	}()
	return nil
}

// Stop cancels the loop and waits for it to exit. No frame is delivered
// after Stop returns.
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
