package api

import (
	"context"
	"sync/atomic"
)

// DefaultMaxWorkers is the concurrency limit used when none is configured.
const DefaultMaxWorkers = 32

// WorkerPool bounds the number of positions replayed concurrently.
// Every replay works on its own Board, so the pool only limits CPU and
// memory use; it never shares game state between requests.
type WorkerPool struct {
	sem    chan struct{}
	queued int64 // Requests waiting for a slot
	active int64 // Requests holding a slot
	total  int64 // Requests completed
}

// NewWorkerPool creates a pool allowing maxWorkers concurrent replays.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &WorkerPool{sem: make(chan struct{}, maxWorkers)}
}

// Acquire waits for a free slot.
// Returns an error if the context is cancelled while waiting.
func (p *WorkerPool) Acquire(ctx context.Context) error {
	atomic.AddInt64(&p.queued, 1)
	defer atomic.AddInt64(&p.queued, -1)

	select {
	case p.sem <- struct{}{}:
		atomic.AddInt64(&p.active, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking; WebSocket messages use it.
// Returns false if the pool is full.
func (p *WorkerPool) TryAcquire() bool {
	select {
	case p.sem <- struct{}{}:
		atomic.AddInt64(&p.active, 1)
		return true
	default:
		return false
	}
}

// Release returns a slot to the pool.
func (p *WorkerPool) Release() {
	atomic.AddInt64(&p.active, -1)
	atomic.AddInt64(&p.total, 1)
	<-p.sem
}

// PoolStats is a snapshot of pool usage.
type PoolStats struct {
	Active int64 `json:"active"`
	Queued int64 `json:"queued"`
	Total  int64 `json:"total"`
	Max    int   `json:"max"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		Active: atomic.LoadInt64(&p.active),
		Queued: atomic.LoadInt64(&p.queued),
		Total:  atomic.LoadInt64(&p.total),
		Max:    cap(p.sem),
	}
}
