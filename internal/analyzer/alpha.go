package analyzer

import "image"

// AlphaDetector reports the bounding box of pixels that are at least
// MinAlpha opaque. It is the cheap path for logos with transparent padding.
type AlphaDetector struct {
	MinAlpha uint32 // 16-bit alpha, 0-0xffff
}

func NewAlphaDetector() *AlphaDetector {
	return &AlphaDetector{MinAlpha: 0x0a00}
}

func (d *AlphaDetector) Detect(img image.Image) ([]Block, error) {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	opaque := true

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a < 0xffff {
				opaque = false
			}
			if a < d.MinAlpha {
				continue
			}
			minX, minY = min(minX, x), min(minY, y)
			maxX, maxY = max(maxX, x), max(maxY, y)
		}
	}

	// a fully opaque image says nothing about where the content is
	if opaque || maxX < minX {
		return nil, nil
	}
	return []Block{{Rect: image.Rect(minX, minY, maxX+1, maxY+1), Kind: "opaque", Confidence: 0.9}}, nil
}
