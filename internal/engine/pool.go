package engine

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many recognition attempts run at once across a process.
// Callers check a slot out, run, and return it; Do wraps that pattern.
// Constructed once and injected wherever recognition happens.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

func NewPool(size int) *Pool {
	if size <= 0 {
		size = 4
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// Size returns the configured bound.
func (p *Pool) Size() int { return p.size }

// Acquire checks out a worker slot, blocking until one frees or ctx ends.
func (p *Pool) Acquire(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

// Release returns a previously acquired slot.
func (p *Pool) Release() {
	p.sem.Release(1)
}

// Do runs fn inside a checked-out slot.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := p.Acquire(ctx); err != nil {
		return err
	}
	defer p.Release()
	return fn()
}
