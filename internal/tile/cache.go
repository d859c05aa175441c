package tile

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/pixlift/pixlift/internal/pixel"
)

// CacheStats is a snapshot of cache behavior.
type CacheStats struct {
	Entries   int
	Bytes     int64 // resident payload bytes
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache holds materialized tile pixels keyed by tile index.
//
// A tile materializes at most once while resident: the first requester
// builds, concurrent requesters for the same tile wait on its entry. Entries
// are evicted least-recently-used once resident bytes exceed the budget. A
// pinned cache never evicts, which is how eager chunked images keep every
// tile resident. Compressed caches store zstd payloads and decompress on
// every hit, trading CPU for resident memory.
type Cache struct {
	mu       sync.Mutex
	entries  map[int]*cacheEntry
	budget   int64 // payload byte budget, <= 0 means unlimited
	compress bool
	pinned   bool

	tick      int64
	used      int64
	hits      uint64
	misses    uint64
	evictions uint64
}

type cacheEntry struct {
	ready         chan struct{} // closed once data and err are valid
	data          []byte        // raw or zstd pixel payload
	width, height int
	atime         int64
	building      bool
}

// NewCache returns a cache with the given payload byte budget. Pinned
// caches ignore the budget and never evict.
func NewCache(budgetBytes int64, compress, pinned bool) *Cache {
	return &Cache{
		entries:  make(map[int]*cacheEntry),
		budget:   budgetBytes,
		compress: compress,
		pinned:   pinned,
	}
}

// GetOrBuild returns the pixels of tile idx, invoking build at most once per
// residency. build runs outside the cache lock; a failed build leaves no
// entry behind, so a later caller retries it. The returned buffer may share
// the cache's storage and must be treated as read-only.
func (c *Cache) GetOrBuild(ctx context.Context, idx int, build func() (*pixel.Buffer, error)) (*pixel.Buffer, error) {
	for {
		c.mu.Lock()
		e, ok := c.entries[idx]
		if !ok {
			e = &cacheEntry{ready: make(chan struct{}), building: true}
			c.entries[idx] = e
			c.misses++
			c.mu.Unlock()
			return c.buildEntry(idx, e, build)
		}
		if e.building {
			c.mu.Unlock()
			select {
			case <-e.ready:
				// Re-check: a failed build removes the entry.
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		c.tick++
		e.atime = c.tick
		c.hits++
		data, w, h := e.data, e.width, e.height
		c.mu.Unlock()

		if c.compress {
			raw, err := decompressZstd(data)
			if err != nil {
				return nil, fmt.Errorf("tile: cached tile payload: %w", err)
			}
			return pixel.FromRaw(raw, w, h)
		}
		return pixel.FromRaw(data, w, h)
	}
}

func (c *Cache) buildEntry(idx int, e *cacheEntry, build func() (*pixel.Buffer, error)) (*pixel.Buffer, error) {
	buf, err := build()

	c.mu.Lock()
	if err != nil {
		delete(c.entries, idx)
		close(e.ready)
		c.mu.Unlock()
		return nil, err
	}
	payload := buf.Data()
	if c.compress {
		payload = compressZstd(buf.Data())
	}
	e.data = payload
	e.width, e.height = buf.Bounds()
	e.building = false
	c.tick++
	e.atime = c.tick
	c.used += int64(len(payload))
	close(e.ready)
	c.evictLocked()
	c.mu.Unlock()
	return buf, nil
}

// evictLocked drops least-recently-used entries until resident bytes fit the
// budget, always keeping the newest entry so a budget smaller than one tile
// still caches that tile.
func (c *Cache) evictLocked() {
	if c.pinned || c.budget <= 0 {
		return
	}
	for c.used > c.budget && len(c.entries) > 1 {
		oldKey := -1
		oldTick := int64(math.MaxInt64)
		for k, e := range c.entries {
			if e.building {
				continue
			}
			if e.atime < oldTick {
				oldTick = e.atime
				oldKey = k
			}
		}
		if oldKey < 0 {
			return
		}
		c.used -= int64(len(c.entries[oldKey].data))
		delete(c.entries, oldKey)
		c.evictions++
	}
}

// Contains reports whether tile idx is resident and fully built.
func (c *Cache) Contains(idx int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[idx]
	return ok && !e.building
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   len(c.entries),
		Bytes:     c.used,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Clear drops every fully built entry. In-flight builds are left to finish.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.building {
			continue
		}
		c.used -= int64(len(e.data))
		delete(c.entries, k)
	}
}

// ============================================================
// zstd payload codec
// ============================================================

var zstdEncPool = sync.Pool{
	New: func() any { return mustNewZstdEncoder() },
}

var zstdDecPool = sync.Pool{
	New: func() any { return mustNewZstdDecoder() },
}

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(fmt.Sprintf("tile: zstd encoder: %v", err))
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(fmt.Sprintf("tile: zstd decoder: %v", err))
	}
	return dec
}

func compressZstd(data []byte) []byte {
	enc := zstdEncPool.Get().(*zstd.Encoder)
	defer zstdEncPool.Put(enc)
	return enc.EncodeAll(data, nil)
}

func decompressZstd(data []byte) ([]byte, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	defer zstdDecPool.Put(dec)
	return dec.DecodeAll(data, nil)
}
