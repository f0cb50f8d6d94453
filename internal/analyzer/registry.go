package analyzer

import (
	"fmt"
	"image"
)

// NewDetector creates a detector for the given trim mode.
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "auto", "":
		return Combined{NewAlphaDetector(), NewContrastDetector()}, nil
	case "contrast":
		return NewContrastDetector(), nil
	case "alpha":
		return NewAlphaDetector(), nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}

// Combined runs several detectors and concatenates their blocks.
type Combined []Detector

func (c Combined) Detect(img image.Image) ([]Block, error) {
	var blocks []Block
	for _, d := range c {
		b, err := d.Detect(img)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b...)
	}
	return blocks, nil
}
