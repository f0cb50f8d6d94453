package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/ivlev/scrim2gif/internal/renderer"
	"github.com/ivlev/scrim2gif/internal/scene"
)

// ExportStill renders the fully revealed list once at canvas resolution and
// encodes it as PNG. There is no quantization.
func (p *Pipeline) ExportStill(ctx context.Context, list *scene.ScrimList, logos renderer.LogoSource) (out []byte, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			err = &Failure{Format: FormatPNG, Err: err}
		}
		p.rec.RecordExport(FormatPNG, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dst := image.NewRGBA(p.canvasRect())
	t0 := time.Now()
	if err := p.renderer.Render(dst, list, 1, StillTimeMs, logos); err != nil {
		return nil, err
	}
	p.rec.RecordRender(time.Since(t0))

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}
