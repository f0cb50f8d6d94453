package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "SCRIM2GIF_"

// LoadDotEnv loads a .env file into the process environment if present.
// A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides fields from SCRIM2GIF_* environment variables.
func (c *Config) ApplyEnv() {
	str(&c.OutputDir, "OUTPUT_DIR")
	str(&c.ScenesDir, "SCENES_DIR")
	str(&c.ListenAddr, "LISTEN")
	str(&c.LogLevel, "LOG_LEVEL")
	str(&c.ShareURL, "SHARE_URL")
	str(&c.HeadingFont, "HEADING_FONT")
	str(&c.HeadingBoldFont, "HEADING_BOLD_FONT")
	str(&c.LabelFont, "LABEL_FONT")
	str(&c.VideoEncoder, "VIDEO_ENCODER")
	integer(&c.FPS, "FPS")
	integer(&c.PreviewFPS, "PREVIEW_FPS")
	integer(&c.LogoConcurrency, "LOGO_CONCURRENCY")
	integer(&c.FFmpegQuality, "FFMPEG_QUALITY")
	duration(&c.LogoTimeout, "LOGO_TIMEOUT")
	boolean(&c.LogoTrim, "LOGO_TRIM")
	boolean(&c.ShowStats, "STATS")
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func str(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func integer(dst *int, key string) {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func duration(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func boolean(dst *bool, key string) {
	if v, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
