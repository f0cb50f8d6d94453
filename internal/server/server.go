// Package server exposes scrim lists over HTTP: downloads of the still,
// GIF and MP4 exports, a websocket live preview, health and metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/export"
	"github.com/ivlev/scrim2gif/internal/metrics"
	"github.com/ivlev/scrim2gif/internal/renderer"
	"github.com/ivlev/scrim2gif/internal/scene"
	"github.com/ivlev/scrim2gif/internal/video"
)

const (
	exportTimeout   = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
	wsWriteTimeout  = 10 * time.Second
)

// ListStore is where lists come from; scene.Dir is the file-backed one.
type ListStore interface {
	Lists() ([]*scene.ScrimList, error)
	Get(id string) (*scene.ScrimList, error)
}

// Options carries the collaborators. Zero values get defaults, except
// Encoder: without one the MP4 route answers 503.
type Options struct {
	Store    ListStore
	Fonts    *renderer.FontSet
	Recorder *metrics.Recorder
	Encoder  video.Encoder
	Clock    clockwork.Clock
}

type Server struct {
	cfg      *config.Config
	store    ListStore
	fonts    *renderer.FontSet
	rec      *metrics.Recorder
	encoder  video.Encoder
	clock    clockwork.Clock
	renderer *renderer.Renderer
	pipeline *export.Pipeline
	logos    *logoCache
	upgrader websocket.Upgrader
	router   chi.Router
}

func New(cfg *config.Config, opts Options) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Store == nil {
		opts.Store = scene.Dir{Path: cfg.ScenesDir}
	}
	if opts.Fonts == nil {
		opts.Fonts = renderer.LoadFonts(cfg)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	r := renderer.New(cfg, opts.Fonts)
	s := &Server{
		cfg:      cfg,
		store:    opts.Store,
		fonts:    opts.Fonts,
		rec:      opts.Recorder,
		encoder:  opts.Encoder,
		clock:    opts.Clock,
		renderer: r,
		pipeline: export.NewPipeline(cfg, r, opts.Recorder),
		logos:    newLogoCache(cfg, opts.Recorder),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 << 10,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", s.rec.Handler())

	r.Route("/lists", func(r chi.Router) {
		r.Get("/", s.listLists)
		r.Route("/{id}", func(r chi.Router) {
			// the preview stream is long-lived and must not inherit the timeout
			r.Get("/preview", s.preview)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(exportTimeout))
				r.Get("/", s.getList)
				r.Get("/still.png", s.still)
				r.Get("/reveal.gif", s.reveal)
				r.Get("/reveal.mp4", s.video)
			})
		})
	})
	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("[*] HTTP сервер запущен")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("[*] Остановка HTTP сервера")
		return srv.Shutdown(shutdownCtx)
	})
	err := g.Wait()
	s.Close()
	return err
}

// Close releases logo resolvers and the shared renderer.
func (s *Server) Close() {
	s.logos.close()
	s.renderer.Close()
}
