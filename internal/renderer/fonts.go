package renderer

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/opentype"

	"github.com/ivlev/scrim2gif/internal/config"
)

// Role selects a typeface and weight.
type Role int

const (
	HeadingMedium Role = iota // 500/600 body text
	HeadingBold               // 700 names and field labels
	Label                     // 600-900 display text
)

// FontSet holds the parsed typefaces. It is safe to share between
// renderers; faces are created per renderer because they are not.
type FontSet struct {
	fonts    [3]*opentype.Font
	Fallback bool // at least one role uses the built-in Go fonts
}

// LoadFonts parses the configured font files. Missing or broken files fall
// back to the Go fonts; the only effect is a cosmetic difference.
func LoadFonts(cfg *config.Config) *FontSet {
	fs := &FontSet{}
	paths := [3]string{}
	if cfg != nil {
		paths = [3]string{cfg.HeadingFont, cfg.HeadingBoldFont, cfg.LabelFont}
	}
	fallbacks := [3][]byte{gomedium.TTF, gobold.TTF, gobold.TTF}

	for i, path := range paths {
		if path != "" {
			f, err := parseFontFile(path)
			if err == nil {
				fs.fonts[i] = f
				continue
			}
			log.Warn().Err(err).Str("path", path).Msg("[!] Шрифт недоступен, используется встроенный")
		}
		f, err := opentype.Parse(fallbacks[i])
		if err != nil {
			// embedded fonts always parse
			panic(err)
		}
		fs.fonts[i] = f
		fs.Fallback = true
	}
	return fs
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

type faceKey struct {
	role Role
	size float64
}

// faces caches font.Face values for one renderer.
type faces struct {
	set   *FontSet
	cache map[faceKey]font.Face
}

func newFaces(set *FontSet) *faces {
	return &faces{set: set, cache: make(map[faceKey]font.Face)}
}

func (f *faces) get(role Role, size float64) font.Face {
	key := faceKey{role, size}
	if face, ok := f.cache[key]; ok {
		return face
	}
	face, err := opentype.NewFace(f.set.fonts[role], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		// size is always positive here, NewFace cannot fail
		panic(err)
	}
	f.cache[key] = face
	return face
}

func (f *faces) close() {
	for k, face := range f.cache {
		face.Close()
		delete(f.cache, k)
	}
}
