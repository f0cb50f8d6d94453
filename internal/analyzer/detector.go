package analyzer

import "image"

// Block is a region of a logo image that carries visible content.
type Block struct {
	Rect       image.Rectangle
	Kind       string  // "edge" or "opaque"
	Confidence float64 // 0.0-1.0
}

// Detector finds content regions in an image.
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}
