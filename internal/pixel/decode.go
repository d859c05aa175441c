package pixel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"

	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding

	_ "golang.org/x/image/bmp"  // register BMP decoding
	_ "golang.org/x/image/tiff" // register TIFF decoding
	_ "golang.org/x/image/webp" // register WebP decoding
)

// ErrEmptyData is returned when image data is empty.
var ErrEmptyData = errors.New("pixel: empty data")

// Decode decodes an image from the reader, auto-detecting the format.
// PNG, JPEG and GIF decode through the standard library; WebP, BMP and TIFF
// through golang.org/x/image.
func Decode(r io.Reader) (*Buffer, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("pixel: decode: %w", err)
	}
	return FromImage(img), nil
}

// DecodeBytes decodes an image from a byte slice, auto-detecting the format.
func DecodeBytes(data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// FromImage copies a standard library image into a new Buffer.
// Returns nil if img is nil or has no pixels.
func FromImage(img image.Image) *Buffer {
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil
	}
	buf, _ := New(width, height)

	// Fast path for NRGBA: identical layout, row copies suffice.
	if nrgba, ok := img.(*image.NRGBA); ok {
		rowBytes := width * BytesPerPixel
		for y := 0; y < height; y++ {
			srcOff := nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(buf.Row(y), nrgba.Pix[srcOff:srcOff+rowBytes])
		}
		return buf
	}

	// Generic path: draw handles premultiplied, paletted and YCbCr sources.
	draw.Draw(buf.NRGBA(), image.Rect(0, 0, width, height), img, bounds.Min, draw.Src)
	return buf
}
