package export

import (
	"image"
	"image/color"
	"sort"
)

// Colours are reduced to 4 bits per channel before palette search, so the
// histogram and the lookup table have 4096 entries.
const (
	bins       = 1 << 12
	maxPalette = 256
)

func binOf(r, g, b uint8) int {
	return int(r>>4)<<8 | int(g>>4)<<4 | int(b>>4)
}

// binColor is the centre of a bin in 8-bit space (0xa -> 0xaa).
func binColor(k int) (r, g, b int) {
	return (k >> 8 & 0xf) * 17, (k >> 4 & 0xf) * 17, (k & 0xf) * 17
}

type entry struct {
	bin   int
	count int
}

type box struct {
	entries []entry
	count   int
}

func (b *box) span() (channel, width int) {
	lo := [3]int{255, 255, 255}
	hi := [3]int{}
	for _, e := range b.entries {
		r, g, bl := binColor(e.bin)
		for i, v := range [3]int{r, g, bl} {
			lo[i] = min(lo[i], v)
			hi[i] = max(hi[i], v)
		}
	}
	for i := range lo {
		if w := hi[i] - lo[i]; w > width {
			channel, width = i, w
		}
	}
	return channel, width
}

func channelOf(bin, channel int) int {
	r, g, b := binColor(bin)
	return [3]int{r, g, b}[channel]
}

// split cuts b at the weighted median of its widest channel.
func (b *box) split() (*box, *box) {
	ch, _ := b.span()
	sort.Slice(b.entries, func(i, j int) bool {
		ci, cj := channelOf(b.entries[i].bin, ch), channelOf(b.entries[j].bin, ch)
		if ci != cj {
			return ci < cj
		}
		return b.entries[i].bin < b.entries[j].bin
	})

	half, acc, cut := b.count/2, 0, 1
	for i, e := range b.entries[:len(b.entries)-1] {
		acc += e.count
		cut = i + 1
		if acc >= half {
			break
		}
	}
	lo := &box{entries: b.entries[:cut]}
	hi := &box{entries: b.entries[cut:]}
	for _, e := range lo.entries {
		lo.count += e.count
	}
	hi.count = b.count - lo.count
	return lo, hi
}

func (b *box) mean() color.RGBA {
	var r, g, bl, n int
	for _, e := range b.entries {
		cr, cg, cb := binColor(e.bin)
		r += cr * e.count
		g += cg * e.count
		bl += cb * e.count
		n += e.count
	}
	if n == 0 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: uint8((r + n/2) / n), G: uint8((g + n/2) / n), B: uint8((bl + n/2) / n), A: 255}
}

// Quantize maps img to at most 256 colours with median cut over the
// rgb444 histogram. Alpha is dropped; frames are opaque.
func Quantize(img *image.RGBA) *image.Paletted {
	rect := img.Rect
	w, h := rect.Dx(), rect.Dy()

	var hist [bins]int
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			hist[binOf(row[x], row[x+1], row[x+2])]++
		}
	}

	root := &box{}
	for k, n := range hist {
		if n > 0 {
			root.entries = append(root.entries, entry{bin: k, count: n})
			root.count += n
		}
	}
	if len(root.entries) == 0 {
		root.entries = []entry{{bin: 0, count: 1}}
		root.count = 1
	}

	boxes := []*box{root}
	for len(boxes) < maxPalette {
		best, bestScore := -1, 0
		for i, b := range boxes {
			if len(b.entries) < 2 {
				continue
			}
			_, width := b.span()
			if score := width * b.count; score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		lo, hi := boxes[best].split()
		boxes[best] = lo
		boxes = append(boxes, hi)
	}

	pal := make(color.Palette, len(boxes))
	var lut [bins]uint8
	for i, b := range boxes {
		pal[i] = b.mean()
		for _, e := range b.entries {
			lut[e.bin] = uint8(i)
		}
	}
	refine(&lut, &hist, pal)

	out := image.NewPaletted(image.Rect(0, 0, w, h), pal)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range dst {
			p := row[x*4:]
			dst[x] = lut[binOf(p[0], p[1], p[2])]
		}
	}
	return out
}

// refine points every used bin at its nearest palette colour. A bin's own
// box mean is not always the closest once neighbouring boxes are averaged.
func refine(lut *[bins]uint8, hist *[bins]int, pal color.Palette) {
	rgb := make([][3]int, len(pal))
	for i, c := range pal {
		rc := c.(color.RGBA)
		rgb[i] = [3]int{int(rc.R), int(rc.G), int(rc.B)}
	}
	for k := range hist {
		if hist[k] == 0 {
			continue
		}
		r, g, b := binColor(k)
		best, bestD := int(lut[k]), 1<<30
		for i, c := range rgb {
			dr, dg, db := r-c[0], g-c[1], b-c[2]
			if d := dr*dr + dg*dg + db*db; d < bestD {
				best, bestD = i, d
			}
		}
		lut[k] = uint8(best)
	}
}
