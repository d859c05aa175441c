// Package pixel provides pixel buffer management for pixlift.
//
// Buffers are RGBA8 with straight (non-premultiplied) alpha, stored in a
// contiguous row-major byte slice with no row padding. This is the layout of
// image.NRGBA, so buffers convert to and from the standard library image
// types without per-pixel work.
package pixel

import (
	"errors"
	"image"
)

// Common errors for buffer operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("pixel: invalid dimensions")

	// ErrTooLarge is returned when a requested buffer exceeds the pool's
	// allocation limit.
	ErrTooLarge = errors.New("pixel: allocation over limit")

	// ErrOutOfBounds is returned when pixel coordinates are outside buffer bounds.
	ErrOutOfBounds = errors.New("pixel: coordinates out of bounds")
)

// BytesPerPixel is the size of one RGBA8 pixel.
const BytesPerPixel = 4

// ByteSize returns the number of bytes a width x height buffer occupies.
// Computed in int64 so oversized requests do not wrap before they can be
// rejected.
func ByteSize(width, height int) int64 {
	return int64(width) * int64(height) * BytesPerPixel
}

// Buffer is a contiguous RGBA8 pixel buffer.
//
// Rows are stored top to bottom with stride width*4; a fresh buffer is fully
// transparent (all bytes zero). Alpha is straight, not premultiplied.
//
// Thread safety: Buffer is safe for concurrent read access. Write operations
// require external synchronization.
type Buffer struct {
	data   []byte
	width  int
	height int
}

// New creates a zeroed buffer with the given dimensions.
// Returns ErrInvalidDimensions if either dimension is non-positive.
func New(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Buffer{
		data:   make([]byte, width*height*BytesPerPixel),
		width:  width,
		height: height,
	}, nil
}

// FromRaw wraps existing pixel data without copying.
// len(data) must be exactly width*height*4.
func FromRaw(data []byte, width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if int64(len(data)) != ByteSize(width, height) {
		return nil, ErrInvalidDimensions
	}

	return &Buffer{
		data:   data,
		width:  width,
		height: height,
	}, nil
}

// Clone creates a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([]byte, len(b.data))
	copy(data, b.data)

	return &Buffer{
		data:   data,
		width:  b.width,
		height: b.height,
	}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int {
	return b.height
}

// Bounds returns the buffer dimensions as (width, height).
func (b *Buffer) Bounds() (int, int) {
	return b.width, b.height
}

// Stride returns the number of bytes per row.
func (b *Buffer) Stride() int {
	return b.width * BytesPerPixel
}

// ByteSize returns the total size of the pixel data in bytes.
func (b *Buffer) ByteSize() int {
	return len(b.data)
}

// Data returns the raw pixel data slice.
// Modifying this data modifies the buffer.
func (b *Buffer) Data() []byte {
	return b.data
}

// Row returns the pixel data for row y.
// Returns nil if y is out of bounds.
func (b *Buffer) Row(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.Stride()
	return b.data[start : start+b.Stride()]
}

// At returns the color at (x, y) as (r, g, b, a) in 0-255 range.
// Returns (0,0,0,0) if coordinates are out of bounds.
func (b *Buffer) At(x, y int) (r, g, bl, a uint8) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0, 0, 0, 0
	}
	off := (y*b.width + x) * BytesPerPixel
	return b.data[off], b.data[off+1], b.data[off+2], b.data[off+3]
}

// Set sets the color at (x, y).
// Returns ErrOutOfBounds if coordinates are outside buffer bounds.
func (b *Buffer) Set(x, y int, r, g, bl, a uint8) error {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return ErrOutOfBounds
	}
	off := (y*b.width + x) * BytesPerPixel
	b.data[off] = r
	b.data[off+1] = g
	b.data[off+2] = bl
	b.data[off+3] = a
	return nil
}

// Clear sets all pixels to transparent black.
func (b *Buffer) Clear() {
	clear(b.data)
}

// Fill sets all pixels to the given color.
func (b *Buffer) Fill(r, g, bl, a uint8) {
	row := b.Row(0)
	for x := 0; x < b.width; x++ {
		off := x * BytesPerPixel
		row[off] = r
		row[off+1] = g
		row[off+2] = bl
		row[off+3] = a
	}
	for y := 1; y < b.height; y++ {
		copy(b.Row(y), row)
	}
}

// CopyRect copies a w x h block from src at (srcX, srcY) into b at
// (dstX, dstY). The block is clipped to both buffers; pixels that fall
// outside either are skipped. Copying row by row, source and destination
// must not alias.
func (b *Buffer) CopyRect(src *Buffer, srcX, srcY, dstX, dstY, w, h int) {
	// Shift both origins into range together so the rectangles stay aligned.
	if srcX < 0 {
		dstX -= srcX
		w += srcX
		srcX = 0
	}
	if srcY < 0 {
		dstY -= srcY
		h += srcY
		srcY = 0
	}
	if dstX < 0 {
		srcX -= dstX
		w += dstX
		dstX = 0
	}
	if dstY < 0 {
		srcY -= dstY
		h += dstY
		dstY = 0
	}
	w = min(w, src.width-srcX, b.width-dstX)
	h = min(h, src.height-srcY, b.height-dstY)
	if w <= 0 || h <= 0 {
		return
	}

	rowBytes := w * BytesPerPixel
	for y := 0; y < h; y++ {
		srcOff := ((srcY+y)*src.width + srcX) * BytesPerPixel
		dstOff := ((dstY+y)*b.width + dstX) * BytesPerPixel
		copy(b.data[dstOff:dstOff+rowBytes], src.data[srcOff:srcOff+rowBytes])
	}
}

// NRGBA returns the buffer as an *image.NRGBA sharing the underlying pixels.
// Mutating the returned image mutates the buffer.
func (b *Buffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.data,
		Stride: b.Stride(),
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}

// ToImage returns a detached copy of the buffer as an *image.NRGBA.
func (b *Buffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.data)
	return img
}

// IsEmpty returns true if the buffer is nil or has zero dimensions.
func (b *Buffer) IsEmpty() bool {
	return b == nil || b.width == 0 || b.height == 0
}
