package server

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/logo"
	"github.com/ivlev/scrim2gif/internal/metrics"
	"github.com/ivlev/scrim2gif/internal/scene"
)

// logoCache keeps one resolver per list so repeated downloads reuse the
// decoded logos.
type logoCache struct {
	cfg *config.Config
	rec *metrics.Recorder

	mu        sync.Mutex
	resolvers map[string]*logo.Resolver
}

func newLogoCache(cfg *config.Config, rec *metrics.Recorder) *logoCache {
	return &logoCache{cfg: cfg, rec: rec, resolvers: make(map[string]*logo.Resolver)}
}

// resolver reconciles the list's resolver with its current teams.
func (c *logoCache) resolver(list *scene.ScrimList) *logo.Resolver {
	c.mu.Lock()
	r, ok := c.resolvers[list.ID]
	if !ok {
		r = logo.NewResolver(c.cfg, c.cfg.ScenesDir, c.rec)
		c.resolvers[list.ID] = r
	}
	c.mu.Unlock()

	r.Reconcile(list.Teams)
	return r
}

// snapshot waits (bounded by the logo timeout) for pending loads and
// returns a fixed view for an export. Logos still loading are left out.
func (c *logoCache) snapshot(ctx context.Context, list *scene.ScrimList) logo.Snapshot {
	r := c.resolver(list)
	if c.cfg.LogoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.LogoTimeout)
		defer cancel()
	}
	if err := r.Wait(ctx); err != nil {
		log.Warn().Err(err).Str("list_id", list.ID).Int("pending", r.Pending()).Msg("[!] Не все логотипы загружены")
	}
	return r.Snapshot()
}

func (c *logoCache) close() {
	c.mu.Lock()
	resolvers := c.resolvers
	c.resolvers = make(map[string]*logo.Resolver)
	c.mu.Unlock()

	for _, r := range resolvers {
		r.Close()
	}
}
