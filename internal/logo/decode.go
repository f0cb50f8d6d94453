package logo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/scrim2gif/internal/analyzer"
)

var (
	ErrUnsupportedSource = errors.New("unsupported logo source")
	ErrDecode            = errors.New("logo decode failed")
)

// DecodeOptions control how a fetched logo is turned into a handle.
type DecodeOptions struct {
	MaxSize  int     // longest side after fitting, pixels; 0 keeps the size
	Trim     bool    // crop flat or transparent margins (static logos)
	PDFDPI   float64 // raster resolution for PDF logos
	Detector analyzer.Detector
}

// Decode turns raw logo bytes into a handle. Multi-frame GIFs become
// animated handles; PDFs are rasterized from their first page.
func Decode(src string, data []byte, opts DecodeOptions) (Handle, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: empty data: %w", src, ErrDecode)
	}
	fit := func(img image.Image) image.Image { return fitImage(img, opts.MaxSize) }

	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		doc, err := openPDF(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", src, err, ErrDecode)
		}
		dpi := opts.PDFDPI
		if dpi <= 0 {
			dpi = 144
		}
		img, err := firstPage(doc, dpi)
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", src, err, ErrDecode)
		}
		return &staticHandle{src: src, img: fit(trim(img, opts))}, nil

	case bytes.HasPrefix(data, []byte("GIF8")):
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", src, err, ErrDecode)
		}
		if len(g.Image) == 0 {
			return nil, fmt.Errorf("%s: gif has no frames: %w", src, ErrDecode)
		}
		if len(g.Image) > 1 {
			frames, delays := compose(g, fit)
			return newAnimated(src, frames, delays), nil
		}
		return &staticHandle{src: src, img: fit(trim(g.Image[0], opts))}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", src, err, ErrDecode)
	}
	return &staticHandle{src: src, img: fit(trim(img, opts))}, nil
}

func trim(img image.Image, opts DecodeOptions) image.Image {
	if !opts.Trim || opts.Detector == nil {
		return img
	}
	return analyzer.Trim(img, opts.Detector, 2)
}

// fitImage scales img down so its longest side is at most maxSize and
// moves it to the origin.
func fitImage(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		if b.Min == (image.Point{}) {
			return img
		}
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
		return out
	}
	scale := float64(maxSize) / float64(max(w, h))
	nw, nh := max(1, int(float64(w)*scale+0.5)), max(1, int(float64(h)*scale+0.5))

	out := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}
