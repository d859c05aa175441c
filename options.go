package pixlift

import (
	"github.com/pixlift/pixlift/internal/resample"
	"github.com/pixlift/pixlift/internal/tile"
)

// Strategy selects how chunked outputs hold their pixels.
type Strategy uint8

const (
	// StrategyLazy records tile recipes only; tiles materialize when a
	// region read touches them and live in a bounded cache. The default.
	StrategyLazy Strategy = iota

	// StrategyEager materializes every tile up front and pins them all
	// resident. Region reads never pay scaling cost afterwards.
	StrategyEager
)

// String returns a string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyLazy:
		return "Lazy"
	case StrategyEager:
		return "Eager"
	default:
		return "Unknown"
	}
}

// Option configures an Engine during creation.
//
// Example:
//
//	// Defaults: lazy chunking, CatmullRom, stock limits
//	eng := pixlift.New()
//
//	// Tuned for a thumbnail service
//	eng := pixlift.New(
//	    pixlift.WithFilter(pixlift.Lanczos),
//	    pixlift.WithPreviewBound(512),
//	)
type Option func(*config)

// config holds resolved Engine configuration.
type config struct {
	limits        Limits
	previewBound  int
	filter        resample.Filter
	strategy      Strategy
	workers       int
	tilePixels    int64
	cacheBudget   int64
	allocBudget   int64
	compressCache bool
	preview       bool
}

// defaultConfig returns the default engine configuration.
func defaultConfig() config {
	return config{
		limits:       DefaultLimits(),
		previewBound: DefaultPreviewBound,
		filter:       resample.CatmullRom,
		strategy:     StrategyLazy,
		workers:      0, // one per CPU
		tilePixels:   tile.DefaultTilePixels,
		cacheBudget:  DefaultCacheBudget,
		preview:      true,
	}
}

// WithLimits replaces the direct-materialization limits. Zero fields mean
// unlimited for that bound.
func WithLimits(l Limits) Option {
	return func(c *config) {
		c.limits = l
	}
}

// WithPreviewBound sets the longest preview edge in pixels. Values below 1
// keep the default.
func WithPreviewBound(bound int) Option {
	return func(c *config) {
		if bound >= 1 {
			c.previewBound = bound
		}
	}
}

// WithoutPreview disables preview generation; Result.Preview will be nil.
func WithoutPreview() Option {
	return func(c *config) {
		c.preview = false
	}
}

// WithFilter sets the engine's default resampling filter. Individual
// requests may still override it.
func WithFilter(f Filter) Option {
	return func(c *config) {
		c.filter = f
	}
}

// WithStrategy selects lazy or eager chunked materialization.
func WithStrategy(s Strategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

// WithWorkers sets the worker count for tile jobs. Values below 1 mean one
// worker per CPU.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithTilePixelBudget caps the output pixels of a single tile. Values below
// 1 keep the default.
func WithTilePixelBudget(pixels int64) Option {
	return func(c *config) {
		if pixels >= 1 {
			c.tilePixels = pixels
		}
	}
}

// WithCacheBudget bounds resident tile bytes for lazy chunked images. Zero
// or negative means unlimited.
func WithCacheBudget(bytes int64) Option {
	return func(c *config) {
		c.cacheBudget = bytes
	}
}

// WithAllocationBudget caps any single buffer allocation in bytes. Zero
// derives the cap from Limits. A cap below what a direct output needs makes
// Process fall back to the chunked representation.
func WithAllocationBudget(bytes int64) Option {
	return func(c *config) {
		c.allocBudget = bytes
	}
}

// WithCompressedCache stores cached tiles zstd-compressed, trading decode
// CPU on chunk reads for a much smaller resident footprint.
func WithCompressedCache() Option {
	return func(c *config) {
		c.compressCache = true
	}
}
