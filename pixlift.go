package pixlift

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pixlift/pixlift/internal/parallel"
	"github.com/pixlift/pixlift/internal/pixel"
	"github.com/pixlift/pixlift/internal/resample"
	"github.com/pixlift/pixlift/internal/scale"
	"github.com/pixlift/pixlift/internal/tile"
)

// poolBucketCap bounds retained buffers per size; staged scaling cycles
// through at most two intermediates per size class.
const poolBucketCap = 4

// stageWeight is the progress share of the scaling work itself; the
// remainder covers preview generation and completion.
const stageWeight = 0.9

// Engine runs progressive upscales with shared buffer pooling and workers.
//
// An Engine is safe for concurrent use. Close releases its workers;
// processing after Close still works, with tile jobs running serially.
// Chunked results stay usable until their own Close.
type Engine struct {
	cfg     config
	pool    *pixel.Pool
	workers *parallel.Pool
	log     *logrus.Logger
}

// New creates an Engine. Options override the defaults: stock Limits, lazy
// chunking, CatmullRom, one worker per CPU, previews bound to 1024.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	budget := cfg.allocBudget
	if budget <= 0 {
		budget = cfg.limits.MaxBytes()
	}
	return &Engine{
		cfg:     cfg,
		pool:    pixel.NewPool(poolBucketCap, budget),
		workers: parallel.New(cfg.workers),
		log:     Logger(),
	}
}

// Close releases the engine's worker pool.
func (e *Engine) Close() {
	e.workers.Close()
}

// Limits returns the engine's direct-materialization limits.
func (e *Engine) Limits() Limits {
	return e.cfg.limits
}

// PoolStats returns a snapshot of the engine's buffer pool.
func (e *Engine) PoolStats() PoolStats {
	return e.pool.Stats()
}

// ProgressFunc receives processing milestones. done is in [0, 1], never
// decreases, and ends at 1; message names the work that just completed.
// Callbacks run synchronously on processing goroutines; keep them fast.
type ProgressFunc func(done float64, message string)

// Request describes one ProcessEx call.
type Request struct {
	// ScaleFactor multiplies both source dimensions. Must be finite and
	// positive; factors at or below 1 are legal and downscale.
	ScaleFactor float64

	// Filter overrides the engine's filter for this request. The zero
	// value FilterDefault keeps the engine's choice.
	Filter Filter

	// OnProgress, if non-nil, receives milestones as work completes.
	OnProgress ProgressFunc
}

// Process scales src by factor with engine defaults. See ProcessEx.
func (e *Engine) Process(ctx context.Context, src *Buffer, factor float64) (*Result, error) {
	return e.ProcessEx(ctx, src, Request{ScaleFactor: factor})
}

// ProcessEx scales src per the request and returns a direct or chunked
// result.
//
// Targets within the engine's Limits materialize directly. Targets over the
// limits, and direct attempts whose allocation is refused, produce a
// chunked result instead; the refusal case is recorded in
// Stats.FallbackUsed. Context cancellation returns the context's error;
// internal failures wrap ErrProcessingFailed. The caller owns the result
// and should Close it.
//
// For chunked results, src must stay valid and unmodified until the result
// is closed; tiles re-derive from it.
func (e *Engine) ProcessEx(ctx context.Context, src *Buffer, req Request) (*Result, error) {
	start := time.Now()

	if src.IsEmpty() {
		return nil, ErrEmptySource
	}
	factor := req.ScaleFactor
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScaleFactor, factor)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := e.cfg.filter
	if req.Filter != FilterDefault {
		filter = req.Filter
	}

	srcW, srcH := src.Bounds()
	dstW := scaleDim(srcW, factor)
	dstH := scaleDim(srcH, factor)

	plan, err := scale.PlanFor(srcW, srcH, dstW, dstH)
	if err != nil {
		// Positive inputs only fail planning when the factor blows past
		// the representable extent.
		return nil, fmt.Errorf("%w: factor %g yields %dx%d", ErrInvalidScaleFactor, factor, dstW, dstH)
	}

	res := &Result{
		RequestedWidth:  dstW,
		RequestedHeight: dstH,
		ScaleFactor:     factor,
		Stats: Stats{
			Stages: len(plan.Stages),
			Filter: filter,
		},
	}
	progress := newProgress(req.OnProgress)
	log := e.log.WithFields(logrus.Fields{
		"source": fmt.Sprintf("%dx%d", srcW, srcH),
		"target": fmt.Sprintf("%dx%d", dstW, dstH),
		"factor": factor,
		"filter": filter.String(),
	})

	if !e.cfg.limits.Exceeds(dstW, dstH) {
		out, err := e.runDirect(ctx, src, plan, filter, progress)
		switch {
		case err == nil:
			res.kind = KindDirect
			res.direct = out
			log.WithField("stages", len(plan.Stages)).Info("processed direct")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		case errors.Is(err, pixel.ErrTooLarge):
			// A tight pool can refuse an in-limits allocation; degrade to
			// chunked rather than fail.
			res.Stats.FallbackUsed = true
			log.WithField("error", err.Error()).Warn("direct allocation refused, falling back to chunked")
		default:
			return nil, fmt.Errorf("%w: %w", ErrProcessingFailed, err)
		}
	}

	if res.direct == nil {
		img, err := e.runChunked(ctx, src, dstW, dstH, filter, progress)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrProcessingFailed, err)
		}
		res.kind = KindChunked
		res.chunked = img
		res.Stats.Tiles = img.Grid().TileCount()
		log.WithFields(logrus.Fields{
			"tiles":    res.Stats.Tiles,
			"strategy": e.cfg.strategy.String(),
			"fallback": res.Stats.FallbackUsed,
		}).Info("processed chunked")
	}

	if e.cfg.preview {
		p, err := e.buildPreview(ctx, src, res, filter)
		if err != nil {
			res.Close()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: preview: %w", ErrProcessingFailed, err)
		}
		res.Preview = p
		progress.report(0.95, "preview")
	}

	progress.report(1, "done")
	res.Elapsed = time.Since(start)
	return res, nil
}

// runDirect executes the whole plan into one output buffer.
func (e *Engine) runDirect(ctx context.Context, src *pixel.Buffer, plan scale.Plan, f resample.Filter, progress *progressTracker) (*pixel.Buffer, error) {
	runner := &scale.Runner{
		Filter: f,
		Pool:   e.pool,
		Log:    e.log,
		OnStage: func(done float64, stage, total int) {
			progress.report(done*stageWeight, fmt.Sprintf("stage %d/%d", stage, total))
		},
	}
	return runner.Run(ctx, src, plan)
}

// runChunked builds the tiled representation. Eager strategy materializes
// and pins every tile now; lazy defers to the first region read.
func (e *Engine) runChunked(ctx context.Context, src *pixel.Buffer, dstW, dstH int, f resample.Filter, progress *progressTracker) (*tile.Image, error) {
	grid, err := tile.Partition(src.Width(), src.Height(), dstW, dstH, e.cfg.tilePixels)
	if err != nil {
		return nil, err
	}
	img, err := tile.NewImage(tile.ImageConfig{
		Source:      src,
		Grid:        grid,
		Pool:        e.pool,
		Workers:     e.workers,
		Filter:      f,
		Log:         e.log,
		CacheBudget: e.cfg.cacheBudget,
		Compress:    e.cfg.compressCache,
		Pinned:      e.cfg.strategy == StrategyEager,
		OverLimits:  e.cfg.limits.Exceeds(dstW, dstH),
	})
	if err != nil {
		return nil, err
	}

	if e.cfg.strategy == StrategyEager {
		err := img.MaterializeAll(ctx, func(done float64, t, total int) {
			progress.report(done*stageWeight, fmt.Sprintf("tile %d/%d", t, total))
		})
		if err != nil {
			img.Release()
			return nil, err
		}
	} else {
		progress.report(stageWeight, "tiled")
	}
	return img, nil
}

// buildPreview derives the bounded preview for the finished result.
func (e *Engine) buildPreview(ctx context.Context, src *pixel.Buffer, res *Result, f resample.Filter) (*Preview, error) {
	if res.kind == KindDirect {
		return e.previewFromDirect(res.direct, f)
	}
	return e.previewFromSource(ctx, src, res.RequestedWidth, res.RequestedHeight, f)
}

// scaleDim rounds a scaled dimension half away from zero and never returns
// below 1, so extreme downscales keep one pixel per axis.
func scaleDim(dim int, factor float64) int {
	v := int(math.Round(float64(dim) * factor))
	if v < 1 {
		return 1
	}
	return v
}

// progressTracker serializes and monotonizes milestone delivery. Tile
// completions arrive from many goroutines in arbitrary order; callers only
// ever see non-decreasing values.
type progressTracker struct {
	fn   ProgressFunc
	mu   sync.Mutex
	last float64
}

func newProgress(fn ProgressFunc) *progressTracker {
	return &progressTracker{fn: fn}
}

func (p *progressTracker) report(v float64, message string) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if v <= p.last {
		return
	}
	p.last = v
	p.fn(v, message)
}
