// Package engine runs one offline render: pick a scrim list, resolve its
// logos, export it in the configured format and write the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/export"
	"github.com/ivlev/scrim2gif/internal/logo"
	"github.com/ivlev/scrim2gif/internal/metrics"
	"github.com/ivlev/scrim2gif/internal/renderer"
	"github.com/ivlev/scrim2gif/internal/scene"
	"github.com/ivlev/scrim2gif/internal/video"
)

var ErrNoEncoder = errors.New("mp4 export needs ffmpeg")

type Project struct {
	Config   *config.Config
	Fonts    *renderer.FontSet
	Encoder  video.Encoder // nil disables mp4
	Recorder *metrics.Recorder
	Out      io.Writer
}

// Result describes a finished run.
type Result struct {
	InputPath  string
	OutputPath string
	Format     string
	Bytes      int64
	Frames     int
	LogoWait   time.Duration
	ExportTime time.Duration
	Total      time.Duration
}

func NewProject(cfg *config.Config, fonts *renderer.FontSet, enc video.Encoder, rec *metrics.Recorder) *Project {
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	return &Project{Config: cfg, Fonts: fonts, Encoder: enc, Recorder: rec, Out: os.Stdout}
}

func (p *Project) printf(format string, args ...any) {
	fmt.Fprintf(p.Out, format, args...)
}

func (p *Project) Run(ctx context.Context) (*Result, error) {
	cfg := p.Config
	start := time.Now()
	res := &Result{Format: cfg.Format}

	inputPath := cfg.InputPath
	if inputPath == "" {
		latest, err := scene.FindLatestList(cfg.ScenesDir)
		if err != nil {
			return nil, fmt.Errorf("список не найден в %s: %w", cfg.ScenesDir, err)
		}
		inputPath = latest
		p.printf("[*] Выбран файл: %s\n", inputPath)
	}
	res.InputPath = inputPath

	list, err := scene.ReadList(inputPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка: %w", err)
	}
	if cfg.Format == export.FormatMP4 && p.Encoder == nil {
		return nil, ErrNoEncoder
	}

	p.printf("--- [SCRIM LIST] ---\n")
	p.printf("[*] Список: %s | Команд: %d\n", list.Title(), len(list.Teams))
	p.printf("[*] Формат: %s | Холст: %dx%d\n", cfg.Format, cfg.Width, cfg.Height)
	p.printf("--------------------\n")

	resolver := logo.NewResolver(cfg, filepath.Dir(inputPath), p.Recorder)
	defer resolver.Close()

	logoStart := time.Now()
	resolver.Reconcile(list.Teams)
	waitCtx := ctx
	if cfg.LogoTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, cfg.LogoTimeout)
		defer cancel()
	}
	if err := resolver.Wait(waitCtx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Int("pending", resolver.Pending()).Msg("[!] Не все логотипы загружены, продолжаем без них")
	}
	logos := resolver.Snapshot()
	res.LogoWait = time.Since(logoStart)
	p.printf("[*] Логотипов: %d\n", len(logos))

	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(cfg.OutputDir, scene.FileName(list, "."+cfg.Format))
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, err
	}
	res.OutputPath = outputPath

	r := renderer.New(cfg, p.Fonts)
	defer r.Close()
	if r.Fallback() {
		p.printf("[!] Шрифты не найдены, используется встроенный\n")
	}
	pipeline := export.NewPipeline(cfg, r, p.Recorder)

	rendersBefore := p.Recorder.Snapshot().Renders
	exportStart := time.Now()
	switch cfg.Format {
	case export.FormatPNG:
		var data []byte
		if data, err = pipeline.ExportStill(ctx, list, logos); err == nil {
			err = writeAtomic(outputPath, data)
		}
	case export.FormatMP4:
		err = p.exportVideo(ctx, pipeline, list, logos, outputPath)
	default:
		var data []byte
		if data, err = pipeline.ExportAnimated(ctx, list, logos, p.progress()); err == nil {
			err = writeAtomic(outputPath, data)
		}
	}
	if err != nil {
		var failure *export.Failure
		if errors.As(err, &failure) && failure.Hint() != "" {
			p.printf("[!] %s\n", failure.Hint())
		}
		return nil, err
	}
	res.ExportTime = time.Since(exportStart)
	res.Frames = p.Recorder.Snapshot().Renders - rendersBefore

	if info, err := os.Stat(outputPath); err == nil {
		res.Bytes = info.Size()
	}
	res.Total = time.Since(start)

	if cfg.ShowStats {
		p.report(res)
	}
	return res, nil
}

// progress prints every quarter of the way.
func (p *Project) progress() export.ProgressFunc {
	next := 25
	return func(pct int) {
		for pct >= next && next <= 100 {
			p.printf("[>] Готово: %d%%\n", next)
			next += 25
		}
	}
}

// exportVideo encodes into a temp file next to the target and renames it
// into place, so a failed run never leaves a truncated file behind.
func (p *Project) exportVideo(ctx context.Context, pipeline *export.Pipeline, list *scene.ScrimList, logos logo.Snapshot, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".scrim2gif-*.mp4")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := pipeline.ExportVideo(ctx, list, logos, p.Encoder, tmpPath, p.progress()); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".scrim2gif-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
