// Package pixel provides pixel buffer management for pixlift.
package pixel

import (
	"fmt"
	"sync"
)

// Pool is a thread-safe pool for reusing Buffer instances.
//
// Pool groups buffers by their dimensions. A staged upscale allocates one
// intermediate per stage and frees it one stage later, and tile
// materialization requests the same tile size over and over, so identical
// sizes recur constantly; reuse keeps GC pressure flat.
//
// Pool is also the allocation guard: a request larger than maxBytes fails
// with ErrTooLarge instead of attempting the allocation. Callers treat that
// as the signal to switch strategies rather than as a fatal condition.
//
// Thread safety: all methods are safe for concurrent use.
type Pool struct {
	mu       sync.Mutex
	buckets  map[poolKey][]*Buffer
	maxEach  int   // max buffers retained per bucket
	maxBytes int64 // byte limit per request, 0 = unlimited

	allocs  uint64
	reuses  uint64
	returns uint64
	peak    int64 // largest granted request in bytes
}

// poolKey identifies a bucket of identically sized buffers.
type poolKey struct {
	width  int
	height int
}

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	// Allocs is the number of buffers created fresh.
	Allocs uint64
	// Reuses is the number of requests served from the pool.
	Reuses uint64
	// Returns is the number of buffers handed back via Put.
	Returns uint64
	// PeakRequestBytes is the byte size of the largest granted request.
	// Requests refused by the byte limit are not counted.
	PeakRequestBytes int64
}

// NewPool creates a pool retaining up to maxPerBucket buffers of each size.
// A maxPerBucket of 0 means unlimited retention. maxBytes caps the size of
// any single request; 0 means no cap.
func NewPool(maxPerBucket int, maxBytes int64) *Pool {
	return &Pool{
		buckets:  make(map[poolKey][]*Buffer),
		maxEach:  maxPerBucket,
		maxBytes: maxBytes,
	}
}

// Get retrieves a buffer from the pool or creates a new one.
// The returned buffer has the requested dimensions and is fully transparent.
// Requests over the byte limit fail with ErrTooLarge.
func (p *Pool) Get(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	size := ByteSize(width, height)
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	if p.maxBytes > 0 && size > p.maxBytes {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, limit %d",
			ErrTooLarge, width, height, size, p.maxBytes)
	}
	if size > p.peak {
		p.peak = size
	}

	bucket := p.buckets[key]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.reuses++
		p.mu.Unlock()

		// Clear before reuse so callers always start transparent.
		buf.Clear()
		return buf, nil
	}
	p.allocs++
	p.mu.Unlock()

	return New(width, height)
}

// Put returns a buffer to the pool for reuse.
// If buf is nil or the bucket is at capacity, the buffer is discarded.
func (p *Pool) Put(buf *Buffer) {
	if buf == nil {
		return
	}

	key := poolKey{width: buf.width, height: buf.height}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.returns++
	bucket := p.buckets[key]
	if p.maxEach > 0 && len(bucket) >= p.maxEach {
		// Bucket full, let the GC take it.
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Stats returns a snapshot of pool activity.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		Allocs:           p.allocs,
		Reuses:           p.reuses,
		Returns:          p.returns,
		PeakRequestBytes: p.peak,
	}
}
