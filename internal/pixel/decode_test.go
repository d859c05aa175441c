package pixel

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// =============================================================================
// Decode Tests
// =============================================================================

func TestFromImage_NRGBAFastPath(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 2, nrgba(10, 20, 30, 40))

	buf := FromImage(img)
	if buf == nil {
		t.Fatal("FromImage() returned nil")
	}
	if r, g, b, a := buf.At(1, 2); r != 10 || g != 20 || b != 30 || a != 40 {
		t.Errorf("At(1,2) = (%d,%d,%d,%d), want (10,20,30,40)", r, g, b, a)
	}
}

func TestFromImage_NRGBASubImage(t *testing.T) {
	base := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	base.SetNRGBA(3, 3, nrgba(50, 60, 70, 80))

	sub := base.SubImage(image.Rect(2, 2, 6, 6)).(*image.NRGBA)
	buf := FromImage(sub)

	if w, h := buf.Bounds(); w != 4 || h != 4 {
		t.Fatalf("Bounds() = (%d,%d), want (4,4)", w, h)
	}
	// (3,3) in the base is (1,1) in the sub-image.
	if r, _, _, _ := buf.At(1, 1); r != 50 {
		t.Errorf("At(1,1) r = %d, want 50 (sub-image offset ignored)", r)
	}
}

func TestFromImage_PremultipliedRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	// Premultiplied half-transparent red: (128,0,0,128) -> straight (255,0,0,128).
	img.Pix[0], img.Pix[3] = 128, 128

	buf := FromImage(img)
	r, _, _, a := buf.At(0, 0)
	if r != 255 || a != 128 {
		t.Errorf("At(0,0) = r=%d a=%d, want r=255 a=128", r, a)
	}
}

func TestFromImage_Nil(t *testing.T) {
	if FromImage(nil) != nil {
		t.Error("FromImage(nil) should return nil")
	}
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if FromImage(empty) != nil {
		t.Error("FromImage() of an empty image should return nil")
	}
}

func TestDecode_PNGRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	src.SetNRGBA(2, 1, nrgba(9, 8, 7, 255))

	var enc bytes.Buffer
	if err := png.Encode(&enc, src); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}

	buf, err := DecodeBytes(enc.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	if r, g, b, _ := buf.At(2, 1); r != 9 || g != 8 || b != 7 {
		t.Errorf("At(2,1) = (%d,%d,%d), want (9,8,7)", r, g, b)
	}
}

func TestDecodeBytes_Empty(t *testing.T) {
	if _, err := DecodeBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("DecodeBytes(nil) error = %v, want ErrEmptyData", err)
	}
}

func TestDecodeBytes_Garbage(t *testing.T) {
	if _, err := DecodeBytes([]byte("not an image")); err == nil {
		t.Error("DecodeBytes() of garbage should fail")
	}
}

func nrgba(r, g, b, a uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
