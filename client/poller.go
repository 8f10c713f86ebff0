package client

import (
	"context"
	"sync"
	"time"
)

// Poller caches the result of a fetch and refreshes it at most once per
// MinInterval. Elapsed time is taken from time.Now readings, which carry the
// monotonic clock, so wall clock jumps do not trigger or suppress fetches.
type Poller[T any] struct {
	fetch       func(ctx context.Context) (T, error)
	minInterval time.Duration
	now         func() time.Time

	mu      sync.Mutex
	last    time.Time
	fetched bool
	value   T
}

// NewPoller wraps fetch.
func NewPoller[T any](fetch func(ctx context.Context) (T, error), minInterval time.Duration) *Poller[T] {
	return &Poller[T]{
		fetch:       fetch,
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Get returns the cached value while it is younger than MinInterval and
// fetches otherwise. Failed fetches are not cached. Concurrent callers share
// one fetch.
func (p *Poller[T]) Get(ctx context.Context) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fetched && p.now().Sub(p.last) < p.minInterval {
		return p.value, nil
	}
	return p.refreshLocked(ctx)
}

// Refresh fetches now, ignoring MinInterval.
func (p *Poller[T]) Refresh(ctx context.Context) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshLocked(ctx)
}

// Invalidate drops the cached value so the next Get fetches.
func (p *Poller[T]) Invalidate() {
	p.mu.Lock()
	p.fetched = false
	p.mu.Unlock()
}

func (p *Poller[T]) refreshLocked(ctx context.Context) (T, error) {
	v, err := p.fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	p.value = v
	p.last = p.now()
	p.fetched = true
	return v, nil
}

// Run calls Get every interval and hands each result to onUpdate until ctx
// is cancelled. It blocks; start it on its own goroutine.
func (p *Poller[T]) Run(ctx context.Context, every time.Duration, onUpdate func(T, error)) {
	timer := time.NewTimer(every)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			v, err := p.Get(ctx)
			if ctx.Err() != nil {
				return
			}
			if onUpdate != nil {
				onUpdate(v, err)
			}
			timer.Reset(every)
		}
	}
}
