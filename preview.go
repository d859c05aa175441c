package pixlift

import (
	"context"
	"math"

	"github.com/pixlift/pixlift/internal/pixel"
	"github.com/pixlift/pixlift/internal/resample"
	"github.com/pixlift/pixlift/internal/scale"
)

// Preview is a bounded stand-in for the full output, small enough to
// display or thumbnail regardless of how large the output is.
//
// For direct results the preview is a downscale of the finished pixels. For
// chunked results it is scaled from the original source toward the logical
// output size, which approximates the full rendition without materializing
// any tiles.
type Preview struct {
	// Buffer holds the preview pixels.
	Buffer *Buffer

	// FullWidth, FullHeight are the logical output dimensions the preview
	// stands in for.
	FullWidth  int
	FullHeight int
}

// Scale returns the linear shrink from the full output to the preview,
// e.g. 0.1024 for a 10000-wide output previewed at 1024.
func (p *Preview) Scale() float64 {
	if p == nil || p.Buffer == nil || p.FullWidth <= 0 {
		return 0
	}
	return float64(p.Buffer.Width()) / float64(p.FullWidth)
}

// previewDims fits full dimensions into the bound preserving aspect ratio.
// Outputs already within the bound keep their size; otherwise the longer
// axis lands exactly on the bound and both axes stay at least 1.
func previewDims(fullW, fullH, bound int) (int, int) {
	if fullW <= bound && fullH <= bound {
		return fullW, fullH
	}
	s := float64(bound) / float64(max(fullW, fullH))
	w := int(math.Round(float64(fullW) * s))
	h := int(math.Round(float64(fullH) * s))
	if fullW >= fullH {
		w = bound
	} else {
		h = bound
	}
	return max(w, 1), max(h, 1)
}

// previewFromDirect downscales finished output pixels in one pass.
func (e *Engine) previewFromDirect(out *pixel.Buffer, f resample.Filter) (*Preview, error) {
	fullW, fullH := out.Bounds()
	pw, ph := previewDims(fullW, fullH, e.cfg.previewBound)
	if pw == fullW && ph == fullH {
		return &Preview{Buffer: out.Clone(), FullWidth: fullW, FullHeight: fullH}, nil
	}

	buf, err := e.pool.Get(pw, ph)
	if err != nil {
		return nil, err
	}
	resample.Resize(buf, out, f)
	return &Preview{Buffer: buf, FullWidth: fullW, FullHeight: fullH}, nil
}

// previewFromSource scales the original source toward the preview size of
// the logical output. Chunked results use this: it runs the same progression
// a tiny direct output would, and never touches tiles.
func (e *Engine) previewFromSource(ctx context.Context, src *pixel.Buffer, fullW, fullH int, f resample.Filter) (*Preview, error) {
	pw, ph := previewDims(fullW, fullH, e.cfg.previewBound)

	plan, err := scale.PlanFor(src.Width(), src.Height(), pw, ph)
	if err != nil {
		return nil, err
	}
	runner := &scale.Runner{Filter: f, Pool: e.pool, Log: e.log}
	buf, err := runner.Run(ctx, src, plan)
	if err != nil {
		return nil, err
	}
	return &Preview{Buffer: buf, FullWidth: fullW, FullHeight: fullH}, nil
}
