package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/scrim2gif/internal/export"
	"github.com/ivlev/scrim2gif/internal/scene"
)

type listSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date,omitempty"`
	Teams     int       `json:"teams"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("json response not written")
	}
}

// writeError maps lookup and export failures to a status and JSON body.
func writeError(w http.ResponseWriter, err error) {
	var failure *export.Failure
	switch {
	case errors.Is(err, scene.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "list not found"})
	case errors.As(err, &failure):
		log.Error().Err(err).Str("format", failure.Format).Msg("[!] Ошибка экспорта")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: failure.Error(), Hint: failure.Hint()})
	default:
		log.Error().Err(err).Msg("[!] Ошибка запроса")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func attachment(w http.ResponseWriter, contentType, name string, size int) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.Itoa(size))
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	generating, percent := s.pipeline.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        s.cfg.BuildVersion,
		"fallback_fonts": s.renderer.Fallback(),
		"generating":     generating,
		"progress":       percent,
		"mp4":            s.encoder != nil,
	})
}

func (s *Server) listLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.store.Lists()
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]listSummary, 0, len(lists))
	for _, l := range lists {
		out = append(out, listSummary{ID: l.ID, Name: l.Name, Date: l.Date, Teams: len(l.Teams), CreatedAt: l.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*scene.ScrimList, bool) {
	list, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return list, true
}

func (s *Server) getList(w http.ResponseWriter, r *http.Request) {
	list, ok := s.lookup(w, r)
	if !ok {
		return
	}
	data, err := yaml.Marshal(list)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}

func (s *Server) still(w http.ResponseWriter, r *http.Request) {
	list, ok := s.lookup(w, r)
	if !ok {
		return
	}
	logos := s.logos.snapshot(r.Context(), list)
	data, err := s.pipeline.ExportStill(r.Context(), list, logos)
	if err != nil {
		writeError(w, err)
		return
	}
	attachment(w, "image/png", scene.FileName(list, ".png"), len(data))
	w.Write(data)
}

func (s *Server) reveal(w http.ResponseWriter, r *http.Request) {
	list, ok := s.lookup(w, r)
	if !ok {
		return
	}
	logos := s.logos.snapshot(r.Context(), list)
	data, err := s.pipeline.ExportAnimated(r.Context(), list, logos, func(p int) {
		log.Debug().Str("list_id", list.ID).Int("percent", p).Msg("gif progress")
	})
	if err != nil {
		writeError(w, err)
		return
	}
	attachment(w, "image/gif", scene.FileName(list, ".gif"), len(data))
	w.Write(data)
}

func (s *Server) video(w http.ResponseWriter, r *http.Request) {
	if s.encoder == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "ffmpeg is not available", Hint: export.FallbackHint})
		return
	}
	list, ok := s.lookup(w, r)
	if !ok {
		return
	}

	tmp, err := os.CreateTemp("", "scrim2gif-*.mp4")
	if err != nil {
		writeError(w, err)
		return
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	logos := s.logos.snapshot(r.Context(), list)
	if err := s.pipeline.ExportVideo(r.Context(), list, logos, s.encoder, path, nil); err != nil {
		writeError(w, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		writeError(w, err)
		return
	}
	attachment(w, "video/mp4", scene.FileName(list, ".mp4"), 0)
	http.ServeContent(w, r, "", info.ModTime(), f)
}
