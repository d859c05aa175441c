package pixlift

import (
	"image"
	"io"

	"github.com/pixlift/pixlift/internal/pixel"
	"github.com/pixlift/pixlift/internal/resample"
	"github.com/pixlift/pixlift/internal/scale"
	"github.com/pixlift/pixlift/internal/tile"
)

// Public names for the types the engine hands out. The implementations live
// in internal packages; these aliases are the supported surface.
type (
	// Buffer is a width x height RGBA8 pixel buffer with straight alpha.
	Buffer = pixel.Buffer

	// Pool reuses buffers and guards allocations.
	Pool = pixel.Pool

	// PoolStats is a snapshot of pool activity.
	PoolStats = pixel.PoolStats

	// ChunkedImage is a tiled logical image read through GetChunk.
	ChunkedImage = tile.Image

	// Tile is one cell of a chunked image.
	Tile = tile.Tile

	// CacheStats is a snapshot of a chunked image's tile cache.
	CacheStats = tile.CacheStats

	// Filter selects the resampling kernel.
	Filter = resample.Filter

	// Plan is a progressive scaling plan.
	Plan = scale.Plan

	// Stage is one step of a Plan.
	Stage = scale.Stage
)

// Resampling filters.
const (
	// FilterDefault resolves to the engine's configured filter.
	FilterDefault = resample.FilterDefault

	Nearest    = resample.Nearest
	Bilinear   = resample.Bilinear
	CatmullRom = resample.CatmullRom
	Lanczos    = resample.Lanczos
)

// ParseFilter maps a case-insensitive filter name to a Filter.
func ParseFilter(name string) (Filter, error) {
	return resample.ParseFilter(name)
}

// NewBuffer allocates a transparent width x height buffer.
func NewBuffer(width, height int) (*Buffer, error) {
	return pixel.New(width, height)
}

// BufferFromImage converts any image.Image into a Buffer. Returns nil for
// nil or empty images.
func BufferFromImage(img image.Image) *Buffer {
	return pixel.FromImage(img)
}

// Decode reads an encoded image (PNG, JPEG, GIF, BMP, TIFF, WebP) into a
// Buffer.
func Decode(r io.Reader) (*Buffer, error) {
	return pixel.Decode(r)
}

// DecodeBytes decodes an in-memory encoded image into a Buffer.
func DecodeBytes(data []byte) (*Buffer, error) {
	return pixel.DecodeBytes(data)
}

// PlanFor returns the progressive plan from a source size to a target size.
// Each stage grows at most 2x per axis; an axis that reaches its target
// holds while the other catches up.
func PlanFor(srcW, srcH, dstW, dstH int) (Plan, error) {
	return scale.PlanFor(srcW, srcH, dstW, dstH)
}
