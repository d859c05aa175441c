package resample

import (
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/pixlift/pixlift/internal/pixel"
)

// Resize resamples all of src into all of dst using the given filter.
// Destination pixels are replaced, not blended. Target dimensions are taken
// from dst; equal dimensions degrade to a plain copy.
func Resize(dst, src *pixel.Buffer, f Filter) {
	ResizeRect(dst, src, 0, 0, src.Width(), src.Height(), f)
}

// ResizeRect resamples the sw x sh region of src at (sx, sy) into all of
// dst. The region must be non-empty and inside src; tile materialization
// relies on this to scale one source cell straight into its output tile
// without an intermediate crop buffer.
func ResizeRect(dst, src *pixel.Buffer, sx, sy, sw, sh int, f Filter) {
	if sw == dst.Width() && sh == dst.Height() {
		dst.CopyRect(src, sx, sy, 0, 0, sw, sh)
		return
	}

	srcRect := image.Rect(sx, sy, sx+sw, sy+sh)
	if f == Lanczos {
		resizeLanczos(dst, src, srcRect)
		return
	}

	dv := dst.NRGBA()
	scaler(f).Scale(dv, dv.Bounds(), src.NRGBA(), srcRect, draw.Src, nil)
}

// scaler maps a filter to its x/image/draw kernel.
func scaler(f Filter) draw.Scaler {
	switch f {
	case Nearest:
		return draw.NearestNeighbor
	case Bilinear:
		return draw.ApproxBiLinear
	default:
		return draw.CatmullRom
	}
}

// resizeLanczos runs the imaging Lanczos kernel and copies the result into
// dst. imaging operates on whole images, so sub-rectangle sources crop
// first.
func resizeLanczos(dst, src *pixel.Buffer, srcRect image.Rectangle) {
	view := src.NRGBA()
	var in image.Image = view
	if srcRect != view.Bounds() {
		in = imaging.Crop(view, srcRect)
	}

	out := imaging.Resize(in, dst.Width(), dst.Height(), imaging.Lanczos)
	// imaging returns a contiguous NRGBA with stride width*4, the Buffer layout.
	copy(dst.Data(), out.Pix)
}
