package preview

import (
	"context"
	"image"
	"image/jpeg"
	"io"
)

const DefaultJPEGQuality = 80

// JPEGSink writes each frame as a JPEG to W.
type JPEGSink struct {
	W       io.Writer
	Quality int
}

func (s *JPEGSink) WriteFrame(_ context.Context, img *image.RGBA, _ float64) error {
	return EncodeJPEG(s.W, img, s.Quality)
}

// EncodeJPEG encodes img with quality q (0 selects the default).
func EncodeJPEG(w io.Writer, img image.Image, q int) error {
	if q <= 0 || q > 100 {
		q = DefaultJPEGQuality
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
}
