package pixlift

import "github.com/pixlift/pixlift/internal/pixel"

// Default safety limits for direct materialization.
const (
	// DefaultMaxDimension is the largest width or height a direct output
	// may have. Matches the 15-bit extent many raster consumers cap at.
	DefaultMaxDimension = 32767

	// DefaultMaxSafePixels is the largest pixel count a direct output may
	// have; 50 megapixels is 200 MB of RGBA8.
	DefaultMaxSafePixels int64 = 50_000_000

	// DefaultPreviewBound is the longest preview edge in pixels.
	DefaultPreviewBound = 1024

	// DefaultCacheBudget bounds resident tile bytes in lazy chunked images.
	DefaultCacheBudget int64 = 256 << 20
)

// Limits bounds what a single direct allocation may attempt. Outputs over
// the limits switch to the chunked representation instead of failing.
type Limits struct {
	// MaxDimension caps width and height independently.
	MaxDimension int

	// MaxSafePixels caps width times height.
	MaxSafePixels int64
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{
		MaxDimension:  DefaultMaxDimension,
		MaxSafePixels: DefaultMaxSafePixels,
	}
}

// Exceeds reports whether a width x height output is over either limit.
// Non-positive dimensions are not a limits question and report false.
func (l Limits) Exceeds(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if l.MaxDimension > 0 && (width > l.MaxDimension || height > l.MaxDimension) {
		return true
	}
	return l.MaxSafePixels > 0 && int64(width)*int64(height) > l.MaxSafePixels
}

// MaxBytes returns the allocation guard in bytes, or 0 when unlimited.
func (l Limits) MaxBytes() int64 {
	if l.MaxSafePixels <= 0 {
		return 0
	}
	return l.MaxSafePixels * pixel.BytesPerPixel
}

// ExceedsLimits reports whether an output of the given size would exceed
// the default limits.
func ExceedsLimits(width, height int) bool {
	return DefaultLimits().Exceeds(width, height)
}
