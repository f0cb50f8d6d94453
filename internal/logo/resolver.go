package logo

import (
	"context"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/ivlev/scrim2gif/internal/analyzer"
	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/metrics"
	"github.com/ivlev/scrim2gif/internal/scene"
)

// Resolver keeps one decoded handle per team ID. Reconcile is called
// whenever the team list changes; loading happens in the background and the
// renderer only ever sees completed handles.
type Resolver struct {
	fetcher *Fetcher
	opts    DecodeOptions
	timeout time.Duration
	sem     *semaphore.Weighted
	group   singleflight.Group
	rec     *metrics.Recorder

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	handles map[string]Handle
	pending map[string]load
	gen     uint64
	closed  bool
	changed chan struct{} // closed and replaced whenever a load settles
}

type load struct {
	src string
	gen uint64
}

// NewResolver creates a resolver from the logo settings in cfg. baseDir
// anchors relative logo paths (usually the scene file's directory).
func NewResolver(cfg *config.Config, baseDir string, rec *metrics.Recorder) *Resolver {
	if cfg == nil {
		cfg = config.Default()
	}
	workers := int64(cfg.LogoConcurrency)
	if workers <= 0 {
		workers = 1
	}
	detector, _ := analyzer.NewDetector("auto")

	ctx, cancel := context.WithCancel(context.Background())
	return &Resolver{
		fetcher: NewFetcher(cfg.LogoTimeout, baseDir),
		opts: DecodeOptions{
			MaxSize:  cfg.LogoMaxSize,
			Trim:     cfg.LogoTrim,
			Detector: detector,
		},
		timeout: cfg.LogoTimeout,
		sem:     semaphore.NewWeighted(workers),
		rec:     rec,
		ctx:     ctx,
		cancel:  cancel,
		handles: make(map[string]Handle),
		pending: make(map[string]load),
		changed: make(chan struct{}),
	}
}

// Reconcile brings the handle map in line with teams: new or changed
// sources start loading, teams that are gone or whose logo was cleared
// lose their handle.
func (r *Resolver) Reconcile(teams []scene.Team) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	want := make(map[string]string, len(teams))
	for _, t := range teams {
		if t.ID == "" {
			continue
		}
		want[t.ID] = strings.TrimSpace(t.Logo)
	}

	for id := range r.handles {
		if src, ok := want[id]; !ok || src == "" {
			delete(r.handles, id)
		}
	}
	for id := range r.pending {
		if src, ok := want[id]; !ok || src == "" {
			delete(r.pending, id)
		}
	}

	for id, src := range want {
		if src == "" {
			continue
		}
		if h, ok := r.handles[id]; ok && h.Source() == src {
			delete(r.pending, id)
			continue
		}
		if p, ok := r.pending[id]; ok && p.src == src {
			continue
		}
		r.gen++
		r.pending[id] = load{src: src, gen: r.gen}
		r.wg.Add(1)
		go r.load(id, src, r.gen)
	}
	r.notifyLocked()
}

func (r *Resolver) load(id, src string, gen uint64) {
	defer r.wg.Done()

	h, err := r.resolve(src)
	r.rec.RecordLogoLoad(err)

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[id]
	if !ok || p.gen != gen {
		// superseded or released while loading
		return
	}
	delete(r.pending, id)
	if err != nil {
		// the old handle belongs to a different source
		delete(r.handles, id)
		log.Warn().Err(err).Str("team_id", id).Msg("[!] Логотип не загружен, слот без логотипа")
	} else {
		r.handles[id] = h
		log.Debug().Str("team_id", id).Bool("animated", h.Animated()).Msg("logo ready")
	}
	r.notifyLocked()
}

// resolve fetches and decodes src, sharing the work between teams that
// use the same source at the same time.
func (r *Resolver) resolve(src string) (Handle, error) {
	v, err, _ := r.group.Do(src, func() (interface{}, error) {
		if err := r.sem.Acquire(r.ctx, 1); err != nil {
			return nil, err
		}
		defer r.sem.Release(1)

		ctx := r.ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		data, err := r.fetcher.Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		return Decode(src, data, r.opts)
	})
	if err != nil {
		return nil, err
	}
	return v.(Handle), nil
}

func (r *Resolver) notifyLocked() {
	close(r.changed)
	r.changed = make(chan struct{})
}

// Wait blocks until no loads are pending or ctx is done.
func (r *Resolver) Wait(ctx context.Context) error {
	for {
		r.mu.RLock()
		n, ch := len(r.pending), r.changed
		r.mu.RUnlock()
		if n == 0 {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Frame implements renderer.LogoSource.
func (r *Resolver) Frame(teamID string, at time.Duration) (image.Image, bool) {
	r.mu.RLock()
	h, ok := r.handles[teamID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return h.Frame(at), true
}

// Handle returns the current handle for a team.
func (r *Resolver) Handle(teamID string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[teamID]
	return h, ok
}

// Pending reports how many loads are in flight.
func (r *Resolver) Pending() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending)
}

// Snapshot copies the current handle map. Export uses it so the set of
// logos cannot change halfway through a file.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := make(Snapshot, len(r.handles))
	for id, h := range r.handles {
		s[id] = h
	}
	return s
}

// Close cancels in-flight loads and releases every handle.
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.cancel()
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	r.handles = make(map[string]Handle)
	r.pending = make(map[string]load)
	r.notifyLocked()
	r.mu.Unlock()
}

// Snapshot is a read-only team ID to handle map.
type Snapshot map[string]Handle

func (s Snapshot) Frame(teamID string, at time.Duration) (image.Image, bool) {
	h, ok := s[teamID]
	if !ok {
		return nil, false
	}
	return h.Frame(at), true
}
