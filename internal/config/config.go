package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Canonical surface. All layout is expressed in these units and scaled
// to the real surface size at draw time.
const (
	CanonicalWidth  = 1080
	CanonicalHeight = 1440
)

type Config struct {
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`
	OutputDir  string `yaml:"output_dir"`
	ScenesDir  string `yaml:"scenes_dir"`
	Format     string `yaml:"format"` // gif, png, mp4
	ListenAddr string `yaml:"listen"`
	LogLevel   string `yaml:"log_level"`
	ShowStats  bool   `yaml:"stats"`
	ShareURL   string `yaml:"share_url"`

	FFmpegQuality int    `yaml:"ffmpeg_quality"`
	VideoEncoder  string `yaml:"video_encoder"`

	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	GIFWidth  int `yaml:"gif_width"`
	GIFHeight int `yaml:"gif_height"`

	FPS           int           `yaml:"fps"`
	Duration      time.Duration `yaml:"duration"`
	Hold          time.Duration `yaml:"hold"`
	RevealTime    time.Duration `yaml:"reveal_time"`
	Stagger       time.Duration `yaml:"stagger"`
	LoopPause     time.Duration `yaml:"loop_pause"`
	PreviewFPS    int           `yaml:"preview_fps"`
	PreviewWidth  int           `yaml:"preview_width"`
	PreviewHeight int           `yaml:"preview_height"`

	HeadingFont     string `yaml:"heading_font"`
	HeadingBoldFont string `yaml:"heading_bold_font"`
	LabelFont       string `yaml:"label_font"`

	LogoTimeout     time.Duration `yaml:"logo_timeout"`
	LogoConcurrency int           `yaml:"logo_concurrency"`
	LogoMaxSize     int           `yaml:"logo_max_size"`
	LogoTrim        bool          `yaml:"logo_trim"`

	BuildVersion string `yaml:"-"`
}

// FrameParams describes one frame request for the renderer and its layers.
type FrameParams struct {
	Width, Height float64 // canonical units
	Progress      float64
	TimeMs        float64
}

func Default() *Config {
	return &Config{
		OutputDir:       "output",
		ScenesDir:       "input/lists",
		Format:          "gif",
		ListenAddr:      ":8090",
		LogLevel:        "info",
		Width:           CanonicalWidth,
		Height:          CanonicalHeight,
		GIFWidth:        640,
		GIFHeight:       854,
		FPS:             12,
		Duration:        4 * time.Second,
		Hold:            2 * time.Second,
		RevealTime:      4500 * time.Millisecond,
		Stagger:         120 * time.Millisecond,
		LoopPause:       2500 * time.Millisecond,
		PreviewFPS:      24,
		PreviewWidth:    540,
		PreviewHeight:   720,
		LogoTimeout:     10 * time.Second,
		LogoConcurrency: 4,
		LogoMaxSize:     512,
		LogoTrim:        true,
		FFmpegQuality:   23,
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", c.Width, c.Height)
	}
	if c.GIFWidth <= 0 || c.GIFHeight <= 0 {
		return fmt.Errorf("invalid gif size %dx%d", c.GIFWidth, c.GIFHeight)
	}
	if c.FPS <= 0 || c.PreviewFPS <= 0 {
		return fmt.Errorf("fps must be positive")
	}
	if c.Duration <= 0 || c.Hold < 0 {
		return fmt.Errorf("invalid duration %s / hold %s", c.Duration, c.Hold)
	}
	if c.RevealTime <= 0 || c.Stagger < 0 {
		return fmt.Errorf("invalid reveal timing %s / %s", c.RevealTime, c.Stagger)
	}
	// GIF кадры уменьшаются равномерно, поэтому пропорции должны совпадать (с точностью до пикселя)
	want := float64(c.GIFWidth) * float64(c.Height) / float64(c.Width)
	if diff := want - float64(c.GIFHeight); diff > 1 || diff < -1 {
		return fmt.Errorf("gif size %dx%d does not keep the %dx%d aspect", c.GIFWidth, c.GIFHeight, c.Width, c.Height)
	}
	switch c.Format {
	case "gif", "png", "mp4":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}

// GIFHeightFor returns the export height that keeps the canvas aspect for
// a given width, rounded to the nearest even number of rows. The result is
// always within one row of the exact height, so it passes Validate.
func (c *Config) GIFHeightFor(width int) int {
	return 2 * int(math.Round(float64(width)*float64(c.Height)/float64(c.Width)/2))
}
