package logo

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/metrics"
	"github.com/ivlev/scrim2gif/internal/scene"
)

// logoServer serves PNG logos by path and counts requests per path.
type logoServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newLogoServer(t *testing.T, files map[string][]byte) *logoServer {
	t.Helper()
	s := &logoServer{hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *logoServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func newTestResolver(t *testing.T, rec *metrics.Recorder) *Resolver {
	t.Helper()
	cfg := config.Default()
	cfg.LogoTrim = false
	cfg.LogoTimeout = 5 * time.Second
	r := NewResolver(cfg, t.TempDir(), rec)
	t.Cleanup(r.Close)
	return r
}

func wait(t *testing.T, r *Resolver) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Wait(ctx); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}

func TestResolverLifecycle(t *testing.T) {
	srv := newLogoServer(t, map[string][]byte{
		"/a.png": pngBytes(t, 8, 8, color.NRGBA{R: 255, A: 255}),
		"/b.png": pngBytes(t, 8, 8, color.NRGBA{B: 255, A: 255}),
	})
	rec := metrics.NewRecorder()
	r := newTestResolver(t, rec)

	teams := []scene.Team{
		{ID: "a", Logo: srv.URL + "/a.png"},
		{ID: "b"},
	}
	r.Reconcile(teams)
	wait(t, r)

	if _, ok := r.Frame("a", 0); !ok {
		t.Fatal("logo a not loaded")
	}
	if _, ok := r.Frame("b", 0); ok {
		t.Error("team without logo got a handle")
	}

	// unchanged source is not fetched again
	r.Reconcile(teams)
	wait(t, r)
	if n := srv.count("/a.png"); n != 1 {
		t.Errorf("expected one fetch, got %d", n)
	}

	// changed source replaces the handle
	teams[0].Logo = srv.URL + "/b.png"
	r.Reconcile(teams)
	wait(t, r)
	if h, ok := r.Handle("a"); !ok || h.Source() != srv.URL+"/b.png" {
		t.Errorf("handle not replaced: %v", h)
	}

	// clearing the logo releases the handle right away
	teams[0].Logo = "   "
	r.Reconcile(teams)
	if _, ok := r.Handle("a"); ok {
		t.Error("cleared logo still has a handle")
	}

	if s := rec.Snapshot(); s.LogoLoads != 2 || s.LogoErrors != 0 {
		t.Errorf("unexpected logo counters %+v", s)
	}
}

func TestResolverReleasesRemovedTeams(t *testing.T) {
	png := pngBytes(t, 4, 4, color.White)
	r := newTestResolver(t, nil)

	r.Reconcile([]scene.Team{
		{ID: "a", Logo: dataURL("image/png", png)},
		{ID: "b", Logo: dataURL("image/png", png)},
	})
	wait(t, r)
	if len(r.Snapshot()) != 2 {
		t.Fatalf("expected 2 handles, got %d", len(r.Snapshot()))
	}

	r.Reconcile([]scene.Team{{ID: "b", Logo: dataURL("image/png", png)}})
	if _, ok := r.Handle("a"); ok {
		t.Error("removed team kept its handle")
	}
	if _, ok := r.Handle("b"); !ok {
		t.Error("remaining team lost its handle")
	}
}

func TestResolverFailedReloadDropsHandle(t *testing.T) {
	srv := newLogoServer(t, map[string][]byte{
		"/ok.png": pngBytes(t, 4, 4, color.Black),
	})
	rec := metrics.NewRecorder()
	r := newTestResolver(t, rec)

	r.Reconcile([]scene.Team{{ID: "a", Logo: srv.URL + "/ok.png"}})
	wait(t, r)
	if _, ok := r.Handle("a"); !ok {
		t.Fatal("initial load failed")
	}

	r.Reconcile([]scene.Team{{ID: "a", Logo: srv.URL + "/missing.png"}})
	wait(t, r)
	if _, ok := r.Handle("a"); ok {
		t.Error("stale handle kept after failed reload")
	}
	if s := rec.Snapshot(); s.LogoErrors != 1 {
		t.Errorf("expected one logo error, got %+v", s)
	}
}

func TestResolverSupersededLoadIgnored(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		w.Write(pngBytes(t, 4, 4, color.White))
	}))
	t.Cleanup(slow.Close)

	r := newTestResolver(t, nil)
	r.Reconcile([]scene.Team{{ID: "a", Logo: slow.URL + "/old.png"}})
	fast := dataURL("image/png", pngBytes(t, 4, 4, color.Black))
	r.Reconcile([]scene.Team{{ID: "a", Logo: fast}})

	// only the newest load counts as pending
	if n := r.Pending(); n > 1 {
		t.Errorf("expected at most 1 pending load, got %d", n)
	}
	wait(t, r)
	close(release)

	r.wg.Wait()
	if h, ok := r.Handle("a"); !ok || h.Source() != fast {
		t.Errorf("superseded load won: %v", h)
	}
}

func TestResolverCloseCancelsLoads(t *testing.T) {
	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(blocked.Close)

	cfg := config.Default()
	r := NewResolver(cfg, "", nil)
	r.Reconcile([]scene.Team{{ID: "a", Logo: blocked.URL + "/logo.png"}})

	done := make(chan struct{})
	go func() {
		r.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not cancel the pending load")
	}
	if r.Pending() != 0 || len(r.Snapshot()) != 0 {
		t.Error("resolver not empty after Close")
	}

	// Reconcile after Close is a no-op
	r.Reconcile([]scene.Team{{ID: "b", Logo: "data:,x"}})
	if r.Pending() != 0 {
		t.Error("closed resolver started a load")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(blocked.Close)

	r := newTestResolver(t, nil)
	r.Reconcile([]scene.Team{{ID: "a", Logo: blocked.URL}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestSnapshotIsStable(t *testing.T) {
	r := newTestResolver(t, nil)
	src := dataURL("image/png", pngBytes(t, 4, 4, color.White))
	r.Reconcile([]scene.Team{{ID: "a", Logo: src}})
	wait(t, r)

	snap := r.Snapshot()
	r.Reconcile(nil)

	if _, ok := snap.Frame("a", time.Second); !ok {
		t.Error("snapshot lost a handle after reconcile")
	}
	if _, ok := r.Frame("a", 0); ok {
		t.Error("resolver kept a handle for an empty list")
	}
}
