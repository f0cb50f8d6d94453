package analyzer

import (
	"image"
	"image/draw"
)

// ContentBounds returns the region of img worth keeping: the intersection
// of what each detector kind considers content, grown by pad pixels. When
// nothing is detected the full bounds are returned.
func ContentBounds(img image.Image, d Detector, pad int) image.Rectangle {
	b := img.Bounds()
	blocks, err := d.Detect(img)
	if err != nil || len(blocks) == 0 {
		return b
	}

	union := map[string]image.Rectangle{}
	for _, bl := range blocks {
		union[bl.Kind] = union[bl.Kind].Union(bl.Rect)
	}
	r := b
	for _, u := range union {
		r = r.Intersect(u)
	}
	if r.Empty() {
		return b
	}
	return r.Inset(-pad).Intersect(b)
}

// Trim crops img to ContentBounds, copying into a new image anchored at the
// origin. The original is returned untouched when there is nothing to trim.
func Trim(img image.Image, d Detector, pad int) image.Image {
	r := ContentBounds(img, d, pad)
	if r == img.Bounds() {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}
