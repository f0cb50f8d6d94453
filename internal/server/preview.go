package server

import (
	"context"
	"image"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/scrim2gif/internal/preview"
	"github.com/ivlev/scrim2gif/internal/renderer"
)

// wsSink sends every preview frame as one binary JPEG message.
type wsSink struct {
	conn    *websocket.Conn
	quality int
}

func (s *wsSink) WriteFrame(_ context.Context, img *image.RGBA, _ float64) error {
	s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	w, err := s.conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if err := preview.EncodeJPEG(w, img, s.quality); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// preview streams the looping reveal of one list until the client goes
// away. Logos appear as they finish loading.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	list, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[!] websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the client never sends anything we need; reading only detects close
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// the driver owns its surface, so every connection gets its own renderer
	rend := renderer.New(s.cfg, s.fonts)
	defer rend.Close()

	d := preview.NewDriver(s.cfg, rend, s.clock)
	d.SetScene(list, s.logos.resolver(list))

	log.Info().Str("list_id", list.ID).Str("remote", r.RemoteAddr).Msg("[>] Превью подключено")
	if err := d.Run(ctx, &wsSink{conn: conn}); err != nil {
		log.Debug().Err(err).Str("list_id", list.ID).Msg("preview stream ended")
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	log.Info().Str("list_id", list.ID).Msg("[>] Превью отключено")
}
