package tile

import (
	"fmt"
	"math"
	"sort"
)

// Grid is the tile layout of one chunked image.
//
// Cut points are integers in both source and output space, so tiles cover
// both spaces exactly with no overlap and every tile is at least one pixel
// wide in each. Tiles are stored row-major.
type Grid struct {
	width, height       int
	srcWidth, srcHeight int
	cols, rows          int

	// Output-space cut points, len cols+1 and rows+1. Tile (c, r) spans
	// [xcuts[c], xcuts[c+1]) x [ycuts[r], ycuts[r+1]).
	xcuts, ycuts []int

	tiles []Tile
}

// Partition cuts a srcW x srcH source into a grid whose scaled tiles each
// stay within budgetPixels output pixels. A budget of zero or less selects
// DefaultTilePixels.
//
// The grid starts square-ish near the budget and grows denser until every
// tile fits. Cell counts are capped at one source pixel and one output pixel
// per cell; if even the densest grid has an over-budget tile the scale
// factor is too extreme to chunk and ErrBudget is returned.
func Partition(srcW, srcH, dstW, dstH int, budgetPixels int64) (*Grid, error) {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return nil, fmt.Errorf("%w: %dx%d -> %dx%d", ErrInvalidGrid, srcW, srcH, dstW, dstH)
	}
	if budgetPixels <= 0 {
		budgetPixels = DefaultTilePixels
	}

	side := int(math.Sqrt(float64(budgetPixels)))
	if side < 1 {
		side = 1
	}
	maxCols := min(srcW, dstW)
	maxRows := min(srcH, dstH)
	cols := min(ceilDiv(dstW, side), maxCols)
	rows := min(ceilDiv(dstH, side), maxRows)

	var srcX, srcY, outX, outY []int
	for {
		srcX, outX = axisCuts(srcW, dstW, cols)
		srcY, outY = axisCuts(srcH, dstH, rows)
		maxW := maxDiff(outX)
		maxH := maxDiff(outY)
		if int64(maxW)*int64(maxH) <= budgetPixels {
			break
		}
		canW := cols < maxCols
		canH := rows < maxRows
		if !canW && !canH {
			return nil, fmt.Errorf("%w: smallest tile %dx%d exceeds %d pixels",
				ErrBudget, maxW, maxH, budgetPixels)
		}
		if canW {
			cols = min(cols*2, maxCols)
		}
		if canH {
			rows = min(rows*2, maxRows)
		}
	}

	g := &Grid{
		width:     dstW,
		height:    dstH,
		srcWidth:  srcW,
		srcHeight: srcH,
		cols:      cols,
		rows:      rows,
		xcuts:     outX,
		ycuts:     outY,
		tiles:     make([]Tile, 0, cols*rows),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.tiles = append(g.tiles, Tile{
				Col:       c,
				Row:       r,
				X:         outX[c],
				Y:         outY[r],
				Width:     outX[c+1] - outX[c],
				Height:    outY[r+1] - outY[r],
				SrcX:      srcX[c],
				SrcY:      srcY[r],
				SrcWidth:  srcX[c+1] - srcX[c],
				SrcHeight: srcY[r+1] - srcY[r],
			})
		}
	}
	return g, nil
}

// axisCuts cuts one axis into n cells: source cuts by integer division,
// output cuts by scaling each source cut with round-half-up. With n at most
// min(src, dst) both sequences are strictly increasing and end exactly at
// their extents.
func axisCuts(src, dst, n int) (srcCuts, outCuts []int) {
	srcCuts = make([]int, n+1)
	outCuts = make([]int, n+1)
	for i := 0; i <= n; i++ {
		sc := int64(i) * int64(src) / int64(n)
		srcCuts[i] = int(sc)
		outCuts[i] = int((sc*int64(dst) + int64(src)/2) / int64(src))
	}
	return srcCuts, outCuts
}

func maxDiff(cuts []int) int {
	m := 0
	for i := 1; i < len(cuts); i++ {
		if d := cuts[i] - cuts[i-1]; d > m {
			m = d
		}
	}
	return m
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Width returns the output width the grid covers.
func (g *Grid) Width() int { return g.width }

// Height returns the output height the grid covers.
func (g *Grid) Height() int { return g.height }

// SourceWidth returns the source width the grid was cut from.
func (g *Grid) SourceWidth() int { return g.srcWidth }

// SourceHeight returns the source height the grid was cut from.
func (g *Grid) SourceHeight() int { return g.srcHeight }

// Cols returns the number of tile columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of tile rows.
func (g *Grid) Rows() int { return g.rows }

// TileCount returns the total number of tiles.
func (g *Grid) TileCount() int { return len(g.tiles) }

// Tiles returns all tiles in row-major order. The returned slice is the
// grid's own and should not be modified.
func (g *Grid) Tiles() []Tile { return g.tiles }

// TileAt returns the tile at grid position (col, row).
func (g *Grid) TileAt(col, row int) (Tile, bool) {
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return Tile{}, false
	}
	return g.tiles[row*g.cols+col], true
}

// TileIndex returns the row-major index of grid position (col, row), which
// doubles as the tile's cache key.
func (g *Grid) TileIndex(col, row int) int {
	return row*g.cols + col
}

// TilesInRect returns the tiles intersecting the output-space rectangle,
// row-major. The rectangle is clamped to the grid; a rectangle fully
// outside, or with non-positive extent, yields nil.
func (g *Grid) TilesInRect(x, y, w, h int) []Tile {
	if w <= 0 || h <= 0 {
		return nil
	}
	x1 := max(x, 0)
	y1 := max(y, 0)
	x2 := min(x+w, g.width)
	y2 := min(y+h, g.height)
	if x1 >= x2 || y1 >= y2 {
		return nil
	}

	c1 := g.locate(g.xcuts, x1)
	c2 := g.locate(g.xcuts, x2-1)
	r1 := g.locate(g.ycuts, y1)
	r2 := g.locate(g.ycuts, y2-1)

	out := make([]Tile, 0, (c2-c1+1)*(r2-r1+1))
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			out = append(out, g.tiles[r*g.cols+c])
		}
	}
	return out
}

// locate returns the cell index whose [cuts[i], cuts[i+1]) span contains v.
// v must already be clamped to [0, extent).
func (g *Grid) locate(cuts []int, v int) int {
	return sort.SearchInts(cuts, v+1) - 1
}
