package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/scrim2gif/internal/config"
	"github.com/ivlev/scrim2gif/internal/renderer"
	"github.com/ivlev/scrim2gif/internal/scene"
	"github.com/ivlev/scrim2gif/internal/video"
)

var testFonts = renderer.LoadFonts(nil)

func setup(t *testing.T, format string) (*config.Config, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	scenes := filepath.Join(dir, "lists")
	if err := os.MkdirAll(scenes, 0755); err != nil {
		t.Fatal(err)
	}

	// a local logo next to the list, referenced by relative path
	logo := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range logo.Pix {
		logo.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, logo); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(scenes, "nova.png"), buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	list := &scene.ScrimList{
		Name: "Friday Scrims",
		Teams: []scene.Team{
			{ID: "a", Name: "Nova", Logo: "nova.png"},
			{ID: "b", Name: "Vega", Logo: "missing.png"},
		},
	}
	if err := scene.WriteList(list, filepath.Join(scenes, "friday.yaml")); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Width, cfg.Height = 108, 144
	cfg.GIFWidth, cfg.GIFHeight = 54, 72
	cfg.ScenesDir = scenes
	cfg.OutputDir = filepath.Join(dir, "output")
	cfg.Format = format
	cfg.LogoTrim = false
	return cfg, &bytes.Buffer{}
}

func newProject(cfg *config.Config, out *bytes.Buffer, enc video.Encoder) *Project {
	p := NewProject(cfg, testFonts, enc, nil)
	p.Out = out
	return p
}

func TestRunGIF(t *testing.T) {
	cfg, out := setup(t, "gif")
	res, err := newProject(cfg, out, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if filepath.Base(res.OutputPath) != "Friday Scrims.gif" {
		t.Errorf("unexpected output path %s", res.OutputPath)
	}
	if res.Frames != 73 {
		t.Errorf("expected 73 rendered frames, got %d", res.Frames)
	}
	f, err := os.Open(res.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 73 {
		t.Errorf("expected 73 frames, got %d", len(g.Image))
	}

	log := out.String()
	for _, want := range []string{"[*] Выбран файл:", "FRIDAY SCRIMS", "[*] Логотипов: 1", "[>] Готово: 100%"} {
		if !strings.Contains(log, want) {
			t.Errorf("output missing %q:\n%s", want, log)
		}
	}

	// no temp files left behind
	entries, _ := os.ReadDir(cfg.OutputDir)
	if len(entries) != 1 {
		t.Errorf("expected only the gif in the output dir, got %d entries", len(entries))
	}
}

func TestRunPNGWithStats(t *testing.T) {
	cfg, out := setup(t, "png")
	cfg.ShowStats = true
	cfg.OutputPath = filepath.Join(cfg.OutputDir, "custom", "still.png")

	res, err := newProject(cfg, out, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.OutputPath != cfg.OutputPath || res.Frames != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	data, err := os.ReadFile(res.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 108 {
		t.Errorf("unexpected still size %v", img.Bounds())
	}

	if !strings.Contains(out.String(), "PERFORMANCE REPORT") {
		t.Errorf("missing report:\n%s", out.String())
	}
	bench, err := os.ReadFile(filepath.Join(filepath.Dir(res.OutputPath), "benchmark.log"))
	if err != nil || !strings.Contains(string(bench), "Format: png") {
		t.Errorf("benchmark.log not written: %v %q", err, bench)
	}
}

type fileEncoder struct{ frames int }

type fileStream struct {
	enc  *fileEncoder
	path string
}

func (e *fileEncoder) Start(_ context.Context, path string, w, h, fps int) (video.Stream, error) {
	return &fileStream{enc: e, path: path}, nil
}

func (s *fileStream) WriteFrame(image.Image) error {
	s.enc.frames++
	return nil
}

func (s *fileStream) Close() error { return os.WriteFile(s.path, []byte("mp4"), 0644) }
func (s *fileStream) Abort()       {}

func TestRunMP4(t *testing.T) {
	cfg, out := setup(t, "mp4")
	if _, err := newProject(cfg, out, nil).Run(context.Background()); !errors.Is(err, ErrNoEncoder) {
		t.Errorf("expected ErrNoEncoder, got %v", err)
	}

	enc := &fileEncoder{}
	res, err := newProject(cfg, out, enc).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if enc.frames != 73 || res.Bytes != 3 {
		t.Errorf("unexpected encode: %d frames, %d bytes", enc.frames, res.Bytes)
	}
	entries, _ := os.ReadDir(cfg.OutputDir)
	if len(entries) != 1 || entries[0].Name() != "Friday Scrims.mp4" {
		t.Errorf("unexpected output dir contents %v", entries)
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg, out := setup(t, "gif")
	cfg.ScenesDir = filepath.Join(t.TempDir(), "empty")
	if _, err := newProject(cfg, out, nil).Run(context.Background()); err == nil {
		t.Error("expected an error without any list")
	}

	cfg.InputPath = filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := newProject(cfg, out, nil).Run(context.Background()); !errors.Is(err, scene.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	cfg, out := setup(t, "gif")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newProject(cfg, out, nil).Run(ctx); err == nil {
		t.Error("expected an error for a cancelled run")
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "Friday Scrims.gif")); !os.IsNotExist(err) {
		t.Errorf("cancelled run left an output file: %v", err)
	}
}
