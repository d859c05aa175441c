package pixel

import (
	"errors"
	"testing"
)

// =============================================================================
// Buffer Tests
// =============================================================================

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative width", -1, 10},
		{"negative height", 10, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.width, tt.height)
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("New(%d,%d) error = %v, want ErrInvalidDimensions",
					tt.width, tt.height, err)
			}
		})
	}
}

func TestNew_Zeroed(t *testing.T) {
	buf, err := New(3, 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w, h := buf.Bounds(); w != 3 || h != 2 {
		t.Errorf("Bounds() = (%d,%d), want (3,2)", w, h)
	}
	if buf.ByteSize() != 3*2*4 {
		t.Errorf("ByteSize() = %d, want %d", buf.ByteSize(), 3*2*4)
	}
	for _, b := range buf.Data() {
		if b != 0 {
			t.Fatal("new buffer is not fully transparent")
		}
	}
}

func TestByteSize_NoOverflow(t *testing.T) {
	// 50000 x 50000 x 4 overflows int32; the int64 result must not.
	got := ByteSize(50000, 50000)
	want := int64(10_000_000_000)
	if got != want {
		t.Errorf("ByteSize(50000,50000) = %d, want %d", got, want)
	}
}

func TestBuffer_SetAt(t *testing.T) {
	buf, _ := New(4, 4)

	if err := buf.Set(2, 3, 10, 20, 30, 40); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	r, g, b, a := buf.At(2, 3)
	if r != 10 || g != 20 || b != 30 || a != 40 {
		t.Errorf("At(2,3) = (%d,%d,%d,%d), want (10,20,30,40)", r, g, b, a)
	}

	if err := buf.Set(4, 0, 1, 1, 1, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Set(4,0) error = %v, want ErrOutOfBounds", err)
	}
	if r, g, b, a := buf.At(-1, 0); r != 0 || g != 0 || b != 0 || a != 0 {
		t.Errorf("At(-1,0) = (%d,%d,%d,%d), want zeros", r, g, b, a)
	}
}

func TestBuffer_Row(t *testing.T) {
	buf, _ := New(5, 3)

	row := buf.Row(1)
	if len(row) != 5*4 {
		t.Errorf("Row(1) length = %d, want %d", len(row), 5*4)
	}
	row[0] = 99
	if r, _, _, _ := buf.At(0, 1); r != 99 {
		t.Error("Row(1) does not alias buffer data")
	}

	if buf.Row(-1) != nil || buf.Row(3) != nil {
		t.Error("out-of-bounds Row() should return nil")
	}
}

func TestBuffer_Fill(t *testing.T) {
	buf, _ := New(7, 5)
	buf.Fill(1, 2, 3, 4)

	for y := 0; y < 5; y++ {
		for x := 0; x < 7; x++ {
			r, g, b, a := buf.At(x, y)
			if r != 1 || g != 2 || b != 3 || a != 4 {
				t.Fatalf("At(%d,%d) = (%d,%d,%d,%d), want (1,2,3,4)", x, y, r, g, b, a)
			}
		}
	}
}

func TestBuffer_Clone(t *testing.T) {
	buf, _ := New(2, 2)
	_ = buf.Set(0, 0, 5, 6, 7, 8)

	dup := buf.Clone()
	_ = dup.Set(0, 0, 9, 9, 9, 9)

	if r, _, _, _ := buf.At(0, 0); r != 5 {
		t.Error("Clone() shares data with the original")
	}
}

func TestFromRaw(t *testing.T) {
	data := make([]byte, 2*3*4)
	buf, err := FromRaw(data, 2, 3)
	if err != nil {
		t.Fatalf("FromRaw() error = %v", err)
	}
	data[0] = 42
	if r, _, _, _ := buf.At(0, 0); r != 42 {
		t.Error("FromRaw() should wrap data without copying")
	}

	if _, err := FromRaw(make([]byte, 10), 2, 3); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("FromRaw() with short data error = %v, want ErrInvalidDimensions", err)
	}
}

// =============================================================================
// CopyRect Tests
// =============================================================================

func TestBuffer_CopyRect(t *testing.T) {
	newSrc := func() *Buffer {
		src, _ := New(4, 4)
		src.Fill(100, 100, 100, 255)
		return src
	}

	tests := []struct {
		name                   string
		srcX, srcY, dstX, dstY int
		w, h                   int
		wantSet                [][2]int // dst pixels that must be copied
		wantClear              [][2]int // dst pixels that must stay transparent
	}{
		{
			name: "fully inside",
			srcX: 0, srcY: 0, dstX: 1, dstY: 1, w: 2, h: 2,
			wantSet:   [][2]int{{1, 1}, {2, 2}},
			wantClear: [][2]int{{0, 0}, {3, 3}},
		},
		{
			name: "negative source origin clips",
			srcX: -2, srcY: -2, dstX: 0, dstY: 0, w: 4, h: 4,
			wantSet:   [][2]int{{2, 2}, {3, 3}},
			wantClear: [][2]int{{0, 0}, {1, 1}},
		},
		{
			name: "negative dest origin clips",
			srcX: 0, srcY: 0, dstX: -3, dstY: -3, w: 4, h: 4,
			wantSet:   [][2]int{{0, 0}},
			wantClear: [][2]int{{1, 1}, {2, 2}},
		},
		{
			name: "overruns both extents",
			srcX: 2, srcY: 2, dstX: 4, dstY: 4, w: 10, h: 10,
			wantSet:   [][2]int{{4, 4}, {5, 5}},
			wantClear: [][2]int{{0, 0}, {3, 3}},
		},
		{
			name: "disjoint is a no-op",
			srcX: 10, srcY: 10, dstX: 0, dstY: 0, w: 2, h: 2,
			wantClear: [][2]int{{0, 0}, {1, 1}},
		},
		{
			name: "empty is a no-op",
			srcX: 0, srcY: 0, dstX: 0, dstY: 0, w: 0, h: 2,
			wantClear: [][2]int{{0, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst, _ := New(6, 6)
			dst.CopyRect(newSrc(), tt.srcX, tt.srcY, tt.dstX, tt.dstY, tt.w, tt.h)

			for _, p := range tt.wantSet {
				if _, _, _, a := dst.At(p[0], p[1]); a != 255 {
					t.Errorf("pixel (%d,%d) not copied", p[0], p[1])
				}
			}
			for _, p := range tt.wantClear {
				if _, _, _, a := dst.At(p[0], p[1]); a != 0 {
					t.Errorf("pixel (%d,%d) should be transparent", p[0], p[1])
				}
			}
		})
	}
}

// =============================================================================
// Interop Tests
// =============================================================================

func TestBuffer_NRGBA_SharesPixels(t *testing.T) {
	buf, _ := New(3, 3)
	img := buf.NRGBA()

	img.Pix[0] = 77
	if r, _, _, _ := buf.At(0, 0); r != 77 {
		t.Error("NRGBA() should share the underlying pixels")
	}
	if img.Stride != 3*4 {
		t.Errorf("NRGBA().Stride = %d, want %d", img.Stride, 3*4)
	}
}

func TestBuffer_ToImage_Detached(t *testing.T) {
	buf, _ := New(2, 2)
	img := buf.ToImage()

	img.Pix[0] = 50
	if r, _, _, _ := buf.At(0, 0); r != 0 {
		t.Error("ToImage() should copy, not alias")
	}
}
