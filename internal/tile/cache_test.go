package tile

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pixlift/pixlift/internal/pixel"
)

func solidBuffer(t *testing.T, w, h int, r, g, b, a uint8) *pixel.Buffer {
	t.Helper()
	buf, err := pixel.New(w, h)
	if err != nil {
		t.Fatalf("pixel.New(%d, %d) error: %v", w, h, err)
	}
	buf.Fill(r, g, b, a)
	return buf
}

// ============================================================
// Build-once semantics
// ============================================================

func TestCacheBuildsOnce(t *testing.T) {
	c := NewCache(0, false, false)
	var builds atomic.Int32
	build := func() (*pixel.Buffer, error) {
		builds.Add(1)
		return solidBuffer(t, 4, 4, 10, 20, 30, 255), nil
	}

	first, err := c.GetOrBuild(context.Background(), 7, build)
	if err != nil {
		t.Fatalf("GetOrBuild() error: %v", err)
	}
	second, err := c.GetOrBuild(context.Background(), 7, build)
	if err != nil {
		t.Fatalf("GetOrBuild() second call error: %v", err)
	}
	if got := builds.Load(); got != 1 {
		t.Errorf("build ran %d times, want 1", got)
	}
	if !bytes.Equal(first.Data(), second.Data()) {
		t.Error("cached pixels differ from built pixels")
	}

	stats := c.Stats()
	if stats.Entries != 1 || stats.Misses != 1 || stats.Hits != 1 {
		t.Errorf("Stats() = %+v, want 1 entry, 1 miss, 1 hit", stats)
	}
}

func TestCacheConcurrentRequestersDeduplicate(t *testing.T) {
	c := NewCache(0, false, false)
	var builds atomic.Int32

	const goroutines = 16
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			buf, err := c.GetOrBuild(context.Background(), 3, func() (*pixel.Buffer, error) {
				builds.Add(1)
				return solidBuffer(t, 8, 8, 1, 2, 3, 255), nil
			})
			if err == nil && buf.Width() != 8 {
				err = errors.New("wrong buffer")
			}
			errs[i] = err
		}()
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: %v", i, err)
		}
	}
	if got := builds.Load(); got != 1 {
		t.Errorf("build ran %d times, want 1", got)
	}
}

func TestCacheFailedBuildRetries(t *testing.T) {
	c := NewCache(0, false, false)
	boom := errors.New("no pixels today")
	calls := 0

	_, err := c.GetOrBuild(context.Background(), 0, func() (*pixel.Buffer, error) {
		calls++
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("GetOrBuild() error = %v, want %v", err, boom)
	}
	if c.Contains(0) {
		t.Error("failed build left an entry behind")
	}

	buf, err := c.GetOrBuild(context.Background(), 0, func() (*pixel.Buffer, error) {
		calls++
		return solidBuffer(t, 2, 2, 9, 9, 9, 255), nil
	})
	if err != nil {
		t.Fatalf("GetOrBuild() after failure error: %v", err)
	}
	if buf == nil || calls != 2 {
		t.Errorf("retry: buf=%v calls=%d, want rebuilt entry on second call", buf, calls)
	}
}

func TestCacheCanceledWaiter(t *testing.T) {
	c := NewCache(0, false, false)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrBuild(context.Background(), 5, func() (*pixel.Buffer, error) {
			close(started)
			<-release
			return solidBuffer(t, 2, 2, 0, 0, 0, 255), nil
		})
		done <- err
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrBuild(ctx, 5, func() (*pixel.Buffer, error) {
		t.Error("second requester must not build")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("waiting requester error = %v, want context.Canceled", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("builder error: %v", err)
	}
}

// ============================================================
// Eviction
// ============================================================

func TestCacheEvictsOldestOverBudget(t *testing.T) {
	// Each 4x4 tile is 64 payload bytes; budget fits two.
	c := NewCache(128, false, false)
	for idx := 0; idx < 3; idx++ {
		_, err := c.GetOrBuild(context.Background(), idx, func() (*pixel.Buffer, error) {
			return solidBuffer(t, 4, 4, uint8(idx), 0, 0, 255), nil
		})
		if err != nil {
			t.Fatalf("GetOrBuild(%d) error: %v", idx, err)
		}
	}

	stats := c.Stats()
	if stats.Entries != 2 || stats.Evictions != 1 || stats.Bytes != 128 {
		t.Errorf("Stats() = %+v, want 2 entries, 1 eviction, 128 bytes", stats)
	}
	if c.Contains(0) {
		t.Error("oldest entry survived eviction")
	}
	if !c.Contains(1) || !c.Contains(2) {
		t.Error("recent entries were evicted")
	}
}

func TestCacheKeepsNewestWhenBudgetTiny(t *testing.T) {
	// Budget smaller than one tile still caches the latest tile.
	c := NewCache(16, false, false)
	for idx := 0; idx < 2; idx++ {
		if _, err := c.GetOrBuild(context.Background(), idx, func() (*pixel.Buffer, error) {
			return solidBuffer(t, 4, 4, 0, 0, 0, 255), nil
		}); err != nil {
			t.Fatalf("GetOrBuild(%d) error: %v", idx, err)
		}
	}
	stats := c.Stats()
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want exactly the newest tile", stats.Entries)
	}
	if !c.Contains(1) {
		t.Error("newest entry missing")
	}
}

func TestCachePinnedNeverEvicts(t *testing.T) {
	c := NewCache(16, false, true)
	for idx := 0; idx < 3; idx++ {
		if _, err := c.GetOrBuild(context.Background(), idx, func() (*pixel.Buffer, error) {
			return solidBuffer(t, 4, 4, 0, 0, 0, 255), nil
		}); err != nil {
			t.Fatalf("GetOrBuild(%d) error: %v", idx, err)
		}
	}
	stats := c.Stats()
	if stats.Entries != 3 || stats.Evictions != 0 {
		t.Errorf("Stats() = %+v, want all 3 pinned with no evictions", stats)
	}
}

// ============================================================
// Compression
// ============================================================

func TestCacheCompressedRoundTrip(t *testing.T) {
	c := NewCache(0, true, false)
	src := solidBuffer(t, 32, 32, 200, 100, 50, 255)

	if _, err := c.GetOrBuild(context.Background(), 0, func() (*pixel.Buffer, error) {
		return src, nil
	}); err != nil {
		t.Fatalf("GetOrBuild() error: %v", err)
	}

	hit, err := c.GetOrBuild(context.Background(), 0, func() (*pixel.Buffer, error) {
		t.Error("hit must not rebuild")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("GetOrBuild() hit error: %v", err)
	}
	if !bytes.Equal(hit.Data(), src.Data()) {
		t.Error("decompressed pixels differ from original")
	}

	// A solid tile compresses far below its raw size.
	if raw := src.ByteSize(); c.Stats().Bytes >= raw {
		t.Errorf("resident bytes = %d, want below raw %d", c.Stats().Bytes, raw)
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache(0, false, false)
	if _, err := c.GetOrBuild(context.Background(), 1, func() (*pixel.Buffer, error) {
		return solidBuffer(t, 4, 4, 0, 0, 0, 255), nil
	}); err != nil {
		t.Fatalf("GetOrBuild() error: %v", err)
	}

	c.Clear()
	stats := c.Stats()
	if stats.Entries != 0 || stats.Bytes != 0 {
		t.Errorf("Stats() after Clear = %+v, want empty", stats)
	}
}
