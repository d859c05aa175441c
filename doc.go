// Package pixlift provides progressive chunked image upscaling for Go.
//
// # Overview
//
// pixlift scales raster images by large factors without the quality collapse
// of single-jump resampling or the memory blowups of huge allocations.
// Scaling runs as a chain of bounded steps of at most 2x per axis, and
// outputs too large to hold in one allocation come back as a chunked logical
// image whose regions materialize on demand.
//
// # Quick Start
//
//	import "github.com/pixlift/pixlift"
//
//	eng := pixlift.New()
//	defer eng.Close()
//
//	src, _ := pixlift.DecodeBytes(pngData)
//	res, err := eng.Process(ctx, src, 4.0)
//	if err != nil {
//	    return err
//	}
//	defer res.Close()
//
//	if buf, ok := res.Direct(); ok {
//	    // The whole output fits in one buffer.
//	    _ = buf
//	} else if img, ok := res.Chunked(); ok {
//	    // Too large to hold at once; read windows as needed.
//	    chunk, _ := img.GetChunk(ctx, 0, 0, 1024, 1024)
//	    _ = chunk
//	}
//
// Every result also carries a bounded Preview suitable for display.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Engine, Result, Preview, ChunkedImage, Buffer
//   - internal/pixel: RGBA8 buffers, pooling, decoding
//   - internal/resample: single-step kernels (x/image, imaging)
//   - internal/scale: progressive plans and their execution
//   - internal/tile: grids, materialization cache, chunked images
//   - internal/parallel: the worker pool tiles run on
//
// # Direct vs Chunked
//
// Targets within the configured Limits process directly into one buffer.
// Targets over the limits, or direct attempts that fail allocation, switch
// to the chunked representation transparently; Result.Kind reports which
// path ran.
//
// # Coordinate System
//
// Origin (0,0) at top-left, X increases right, Y increases down. Pixels are
// 8-bit RGBA with straight (non-premultiplied) alpha.
package pixlift

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 1
)
