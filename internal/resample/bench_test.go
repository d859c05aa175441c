package resample

import (
	"testing"

	"github.com/pixlift/pixlift/internal/pixel"
)

// =============================================================================
// Resize Benchmarks
// =============================================================================

func benchSource(b *testing.B, w, h int) *pixel.Buffer {
	b.Helper()
	src, err := pixel.New(w, h)
	if err != nil {
		b.Fatalf("pixel.New() error = %v", err)
	}
	for y := range h {
		for x := range w {
			_ = src.Set(x, y, uint8(x), uint8(y), uint8(x+y), 255)
		}
	}
	return src
}

func BenchmarkResize_Double(b *testing.B) {
	src := benchSource(b, 512, 512)
	filters := []Filter{Nearest, Bilinear, CatmullRom, Lanczos}

	for _, f := range filters {
		b.Run(f.String(), func(b *testing.B) {
			dst, _ := pixel.New(1024, 1024)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				Resize(dst, src, f)
			}
		})
	}
}

func BenchmarkResize_SameSizeCopy(b *testing.B) {
	src := benchSource(b, 1024, 1024)
	dst, _ := pixel.New(1024, 1024)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Resize(dst, src, CatmullRom)
	}
}

func BenchmarkResizeRect_SubRegion(b *testing.B) {
	// One source cell doubled into its tile, the chunked materialization shape.
	src := benchSource(b, 512, 512)
	dst, _ := pixel.New(512, 512)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ResizeRect(dst, src, 128, 128, 256, 256, CatmullRom)
	}
}
