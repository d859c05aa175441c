// Package parallel provides the worker pool that fans tile jobs out across
// CPU cores.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Job is one unit of work. Jobs receive the batch context and should stop
// early once it is cancelled.
type Job func(ctx context.Context) error

// Pool is a pool of goroutines for parallel tile work.
//
// Jobs are distributed across workers, each with its own queue. Workers
// steal from other queues when their own runs dry, which balances load when
// some jobs finish faster than others (cache hits, small edge tiles).
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	// workers is the number of worker goroutines.
	workers int

	// workQueues holds per-worker queues. Each worker primarily pulls from
	// its own queue but can steal from the others.
	workQueues []chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// New creates a pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// Workers start immediately and wait for jobs.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &Pool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			if work != nil {
				work()
			}

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
			} else {
				// Nothing to steal, block on own queue.
				select {
				case <-p.done:
					p.drainQueue(myQueue)
					return
				case work := <-myQueue:
					if work != nil {
						work()
					}
				}
			}
		}
	}
}

// drainQueue executes all remaining work in a queue.
func (p *Pool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal attempts to take work from another worker's queue.
// Returns nil if no work is available.
func (p *Pool) steal(myID int) func() {
	for i := 0; i < p.workers; i++ {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// Execute runs all jobs and waits for them to finish.
//
// The first job error cancels the batch context and is returned. Jobs that
// have not started by then still drain through the queues but see the
// cancelled context and return without doing work. When the pool is closed,
// jobs run serially on the calling goroutine so callers never hang on a
// dead pool.
func (p *Pool) Execute(ctx context.Context, jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}
	if !p.running.Load() {
		return runSerial(ctx, jobs)
	}

	bctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	wg.Add(len(jobs))

	for i, job := range jobs {
		j := job
		wrapped := func() {
			defer wg.Done()
			if bctx.Err() != nil {
				return
			}
			if err := j(bctx); err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}

		select {
		case p.workQueues[i%p.workers] <- wrapped:
		case <-p.done:
			// Pool is closing mid-batch, run inline so the batch completes.
			wrapped()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// runSerial executes jobs on the calling goroutine, stopping at the first
// error or cancellation.
func runSerial(ctx context.Context, jobs []Job) error {
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

// Close gracefully shuts down the pool. It stops accepting new batches,
// waits for queued work to finish, and stops all workers.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}
