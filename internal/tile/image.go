package tile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/pixlift/pixlift/internal/parallel"
	"github.com/pixlift/pixlift/internal/pixel"
	"github.com/pixlift/pixlift/internal/resample"
	"github.com/pixlift/pixlift/internal/scale"
)

// ErrClosed is returned by region reads on a closed image.
var ErrClosed = errors.New("tile: image closed")

// Image is a logical image too large to hold in one buffer.
//
// Width and Height describe the full output; pixel access goes through
// GetChunk, which materializes only the tiles the requested window touches.
// Each tile scales independently from its source region, so adjacent tiles
// may differ by a hair along shared edges with smooth filters.
//
// The image keeps a reference to the source buffer for re-derivation; the
// source must stay valid and unmodified for the image's lifetime.
type Image struct {
	src        *pixel.Buffer
	grid       *Grid
	cache      *Cache
	pool       *pixel.Pool
	workers    *parallel.Pool
	filter     resample.Filter
	log        *logrus.Logger
	overLimits bool
	closed     atomic.Bool
}

// ImageConfig configures NewImage. Source and Grid are required; everything
// else has a usable zero value.
type ImageConfig struct {
	Source *pixel.Buffer
	Grid   *Grid

	// Pool supplies chunk and working buffers. Nil gets an unlimited pool.
	Pool *pixel.Pool

	// Workers runs tile jobs. Nil materializes serially.
	Workers *parallel.Pool

	Filter resample.Filter
	Log    *logrus.Logger

	// CacheBudget bounds resident tile payload bytes. Zero or less means
	// unlimited. Ignored when Pinned.
	CacheBudget int64

	// Compress stores cached tiles zstd-compressed.
	Compress bool

	// Pinned keeps every materialized tile resident, for eager images.
	Pinned bool

	// OverLimits marks an image whose logical size was over the caller's
	// direct-materialization limits. Exposed through ExceedsLimits.
	OverLimits bool
}

// NewImage builds a chunked image over the given source and grid.
func NewImage(cfg ImageConfig) (*Image, error) {
	if cfg.Source.IsEmpty() {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidGrid)
	}
	if cfg.Grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidGrid)
	}
	sw, sh := cfg.Source.Bounds()
	if sw != cfg.Grid.SourceWidth() || sh != cfg.Grid.SourceHeight() {
		return nil, fmt.Errorf("%w: source %dx%d, grid cut from %dx%d",
			ErrInvalidGrid, sw, sh, cfg.Grid.SourceWidth(), cfg.Grid.SourceHeight())
	}
	pool := cfg.Pool
	if pool == nil {
		pool = pixel.NewPool(0, 0)
	}
	log := cfg.Log
	if log == nil {
		log = nopLogger
	}
	return &Image{
		src:        cfg.Source,
		grid:       cfg.Grid,
		cache:      NewCache(cfg.CacheBudget, cfg.Compress, cfg.Pinned),
		pool:       pool,
		workers:    cfg.Workers,
		filter:     cfg.Filter,
		log:        log,
		overLimits: cfg.OverLimits,
	}, nil
}

// Width returns the logical output width.
func (img *Image) Width() int { return img.grid.Width() }

// Height returns the logical output height.
func (img *Image) Height() int { return img.grid.Height() }

// Bounds returns the logical output dimensions.
func (img *Image) Bounds() (width, height int) {
	return img.grid.Width(), img.grid.Height()
}

// Grid returns the image's tile layout.
func (img *Image) Grid() *Grid { return img.grid }

// Tiles returns all tile descriptors in row-major order.
func (img *Image) Tiles() []Tile { return img.grid.Tiles() }

// Filter returns the resampling filter tiles materialize with.
func (img *Image) Filter() resample.Filter { return img.filter }

// ExceedsLimits reports whether the logical size was over the caller's
// direct-materialization limits when the image was built. False for images
// built by the allocation-refusal fallback.
func (img *Image) ExceedsLimits() bool { return img.overLimits }

// CacheStats returns a snapshot of the materialization cache.
func (img *Image) CacheStats() CacheStats { return img.cache.Stats() }

// GetChunk returns the w x h region of the logical image at (x, y) as a
// freshly allocated buffer the caller owns.
//
// Non-positive w or h is ErrEmptyRegion. The window is otherwise clipped to
// the logical bounds: pixels outside come back transparent, a window fully
// outside is all transparent. Tiles the window touches materialize at most
// once and come from cache after that, so repeated reads of the same region
// are idempotent and cheap.
func (img *Image) GetChunk(ctx context.Context, x, y, w, h int) (*pixel.Buffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyRegion, w, h)
	}
	if img.closed.Load() {
		return nil, ErrClosed
	}

	out, err := img.pool.Get(w, h)
	if err != nil {
		return nil, err
	}

	tiles := img.grid.TilesInRect(x, y, w, h)
	img.log.WithFields(logrus.Fields{
		"window": fmt.Sprintf("%dx%d+%d+%d", w, h, x, y),
		"tiles":  len(tiles),
	}).Debug("chunk read")
	if len(tiles) == 0 {
		return out, nil
	}

	jobs := make([]parallel.Job, len(tiles))
	for i, t := range tiles {
		t := t
		jobs[i] = func(jctx context.Context) error {
			return img.copyTile(jctx, t, out, x, y)
		}
	}
	if err := img.runJobs(ctx, jobs); err != nil {
		img.pool.Put(out)
		return nil, err
	}
	return out, nil
}

// MaterializeAll builds every tile in the image, deduplicated against the
// cache. onTile, if non-nil, is called after each tile completes with the
// overall fraction done; completion order is not deterministic under
// parallel workers. On a bounded cache this is a warm-up; on a pinned cache
// it leaves the whole image resident.
func (img *Image) MaterializeAll(ctx context.Context, onTile func(done float64, tile, total int)) error {
	if img.closed.Load() {
		return ErrClosed
	}
	tiles := img.grid.Tiles()
	total := len(tiles)
	var done atomic.Int64

	jobs := make([]parallel.Job, total)
	for i, t := range tiles {
		jobs[i] = func(jctx context.Context) error {
			idx := img.grid.TileIndex(t.Col, t.Row)
			if _, err := img.cache.GetOrBuild(jctx, idx, func() (*pixel.Buffer, error) {
				return img.materializeTile(jctx, t)
			}); err != nil {
				return fmt.Errorf("tile %s: %w", t, err)
			}
			if onTile != nil {
				n := done.Add(1)
				onTile(float64(n)/float64(total), int(n), total)
			}
			return nil
		}
	}
	return img.runJobs(ctx, jobs)
}

// Close drops all cached tiles. The image stays usable; later reads
// re-materialize.
func (img *Image) Close() {
	img.cache.Clear()
}

// Release drops cached tiles and refuses further reads.
func (img *Image) Release() {
	img.closed.Store(true)
	img.cache.Clear()
}

// copyTile materializes one tile and copies its overlap with the request
// window into out at the right offset.
func (img *Image) copyTile(ctx context.Context, t Tile, out *pixel.Buffer, reqX, reqY int) error {
	idx := img.grid.TileIndex(t.Col, t.Row)
	buf, err := img.cache.GetOrBuild(ctx, idx, func() (*pixel.Buffer, error) {
		return img.materializeTile(ctx, t)
	})
	if err != nil {
		return fmt.Errorf("tile %s: %w", t, err)
	}

	x1 := max(t.X, reqX)
	y1 := max(t.Y, reqY)
	x2 := min(t.X+t.Width, reqX+out.Width())
	y2 := min(t.Y+t.Height, reqY+out.Height())
	if x1 >= x2 || y1 >= y2 {
		return nil
	}
	out.CopyRect(buf, x1-t.X, y1-t.Y, x1-reqX, y1-reqY, x2-x1, y2-y1)
	return nil
}

// materializeTile scales one tile's source region to the tile's output size
// using the same progressive plan a direct scale would.
func (img *Image) materializeTile(ctx context.Context, t Tile) (*pixel.Buffer, error) {
	plan, err := scale.PlanFor(t.SrcWidth, t.SrcHeight, t.Width, t.Height)
	if err != nil {
		return nil, err
	}

	// Single-stage tiles resample straight from the source region.
	if len(plan.Stages) == 1 {
		dst, err := img.pool.Get(t.Width, t.Height)
		if err != nil {
			return nil, err
		}
		resample.ResizeRect(dst, img.src, t.SrcX, t.SrcY, t.SrcWidth, t.SrcHeight, img.filter)
		return dst, nil
	}

	crop, err := img.pool.Get(t.SrcWidth, t.SrcHeight)
	if err != nil {
		return nil, err
	}
	crop.CopyRect(img.src, t.SrcX, t.SrcY, 0, 0, t.SrcWidth, t.SrcHeight)
	runner := &scale.Runner{Filter: img.filter, Pool: img.pool, Log: img.log}
	out, err := runner.Run(ctx, crop, plan)
	img.pool.Put(crop)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// runJobs executes jobs on the worker pool, or inline when no pool was
// configured.
func (img *Image) runJobs(ctx context.Context, jobs []parallel.Job) error {
	if img.workers != nil {
		return img.workers.Execute(ctx, jobs)
	}
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := job(ctx); err != nil {
			return err
		}
	}
	return nil
}

var nopLogger = newNopLogger()

func newNopLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
