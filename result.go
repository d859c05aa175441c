package pixlift

import (
	"time"

	"github.com/pixlift/pixlift/internal/pixel"
	"github.com/pixlift/pixlift/internal/tile"
)

// Kind reports which representation a Result carries.
type Kind uint8

const (
	// KindDirect means the whole output fits in one buffer.
	KindDirect Kind = iota

	// KindChunked means the output is a tiled logical image.
	KindChunked
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "Direct"
	case KindChunked:
		return "Chunked"
	default:
		return "Unknown"
	}
}

// Stats describes how a Process call ran.
type Stats struct {
	// Stages is the length of the source-to-target progression.
	Stages int

	// Tiles is the tile count of a chunked result, 0 for direct.
	Tiles int

	// FallbackUsed marks a direct attempt that switched to chunked after a
	// refused allocation.
	FallbackUsed bool

	// Filter is the kernel the run resolved to.
	Filter Filter
}

// Result is the outcome of one Process call. Exactly one of Direct or
// Chunked yields the output, reported by Kind.
type Result struct {
	kind    Kind
	direct  *pixel.Buffer
	chunked *tile.Image

	// RequestedWidth, RequestedHeight are the rounded target dimensions.
	RequestedWidth  int
	RequestedHeight int

	// ScaleFactor is the factor the target was computed from.
	ScaleFactor float64

	// Preview is the bounded stand-in for the output, nil when disabled.
	Preview *Preview

	// Elapsed is the wall time the call took.
	Elapsed time.Duration

	// Stats describes how the call ran.
	Stats Stats
}

// Kind reports the representation of the result.
func (r *Result) Kind() Kind { return r.kind }

// Width returns the logical output width regardless of representation.
func (r *Result) Width() int { return r.RequestedWidth }

// Height returns the logical output height regardless of representation.
func (r *Result) Height() int { return r.RequestedHeight }

// Direct returns the output buffer when the result is direct.
func (r *Result) Direct() (*Buffer, bool) {
	if r.kind != KindDirect || r.direct == nil {
		return nil, false
	}
	return r.direct, true
}

// Chunked returns the logical image when the result is chunked.
func (r *Result) Chunked() (*ChunkedImage, bool) {
	if r.kind != KindChunked || r.chunked == nil {
		return nil, false
	}
	return r.chunked, true
}

// Close releases resources held by chunked results and refuses further
// chunk reads. Safe to call on any result, more than once.
func (r *Result) Close() {
	if r == nil {
		return
	}
	if r.chunked != nil {
		r.chunked.Release()
	}
}
