package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
)

// ShareBadge renders url as a QR code for the header. size is the badge
// size in canonical units.
func ShareBadge(url string, size int) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid badge size %d", size)
	}
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("share badge: %w", err)
	}
	q.DisableBorder = true
	q.ForegroundColor = color.NRGBA{R: 12, G: 4, B: 30, A: 255}
	q.BackgroundColor = color.NRGBA{R: 232, G: 224, B: 255, A: 230}
	// oversample so the code stays sharp when scaled into the header
	return q.Image(size * 3), nil
}
