// Package tile implements chunked logical images: outputs too large to
// materialize in one buffer are described as a grid of tiles, each carrying
// the recipe to re-derive its pixels from the source on demand.
package tile

import (
	"errors"
	"fmt"
)

// Common errors for chunked images.
var (
	// ErrEmptyRegion is returned when a requested region has non-positive
	// width or height. Out-of-range origins are not an error; they clamp.
	ErrEmptyRegion = errors.New("tile: empty region")

	// ErrInvalidGrid is returned when partition dimensions are non-positive.
	ErrInvalidGrid = errors.New("tile: invalid grid dimensions")

	// ErrBudget is returned when no grid can keep every scaled tile within
	// the pixel budget, which happens only at extreme scale factors.
	ErrBudget = errors.New("tile: tile budget unsatisfiable")
)

// DefaultTilePixels is the default per-tile output pixel budget (2048x2048).
const DefaultTilePixels = 1 << 22

// Tile is one cell of a chunked image.
//
// A tile is an immutable descriptor: grid position, placement in output
// space, and the source-space region its pixels re-derive from. Pixel data
// lives in the materialization cache, never in the tile itself, so tiles
// stay cheap to copy and region reads can never disturb the grid geometry.
type Tile struct {
	// Col, Row are the tile's grid coordinates.
	Col, Row int

	// X, Y, Width, Height place the tile in output space.
	X, Y          int
	Width, Height int

	// SrcX, SrcY, SrcWidth, SrcHeight is the source region the tile
	// resamples from.
	SrcX, SrcY          int
	SrcWidth, SrcHeight int
}

// Bounds returns the tile's output-space rectangle as (x, y, w, h).
func (t Tile) Bounds() (x, y, w, h int) {
	return t.X, t.Y, t.Width, t.Height
}

// PixelCount returns the number of output pixels the tile covers.
func (t Tile) PixelCount() int64 {
	return int64(t.Width) * int64(t.Height)
}

// String returns the tile as "(col,row) WxH at (x,y)".
func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d) %dx%d at (%d,%d)", t.Col, t.Row, t.Width, t.Height, t.X, t.Y)
}
