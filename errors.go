package pixlift

import (
	"errors"

	"github.com/pixlift/pixlift/internal/pixel"
	"github.com/pixlift/pixlift/internal/scale"
	"github.com/pixlift/pixlift/internal/tile"
)

// Errors returned by the engine. Wrapped causes stay reachable through
// errors.Is and errors.As.
var (
	// ErrInvalidScaleFactor is returned for scale factors that are not
	// finite positive numbers.
	ErrInvalidScaleFactor = errors.New("pixlift: invalid scale factor")

	// ErrEmptySource is returned when the source buffer is nil or has no
	// pixels.
	ErrEmptySource = errors.New("pixlift: empty source")

	// ErrProcessingFailed wraps internal failures of the selected strategy.
	// Caller mistakes (bad factor, empty source, empty region) are returned
	// as themselves, never wrapped in ErrProcessingFailed.
	ErrProcessingFailed = errors.New("pixlift: processing failed")

	// ErrAllocation is returned when a buffer request exceeds the allocation
	// guard. Process handles it internally by falling back to chunked mode;
	// callers see it from direct buffer APIs such as Buffer and Pool.
	ErrAllocation = pixel.ErrTooLarge

	// ErrInvalidPlan reports a scaling plan whose stages do not chain from
	// source to target.
	ErrInvalidPlan = scale.ErrInvalidPlan

	// ErrRegionOutOfRange reports a GetChunk request with non-positive width
	// or height. Out-of-bounds origins are not an error; they clamp.
	ErrRegionOutOfRange = tile.ErrEmptyRegion

	// ErrClosed reports a chunk read on a closed result.
	ErrClosed = tile.ErrClosed
)
