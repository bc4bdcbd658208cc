// Package workers provides the bounded executor that keeps blocking media
// and network calls off the event-handling goroutines.
package workers

import (
	"context"
	"errors"
)

// Pool is a bounded executor for CPU- and IO-heavy operations. Callers block
// at the dispatch point until a slot frees, so inbound event handling stays
// responsive while long decode/transcribe/translate calls run elsewhere.
type Pool struct {
	slots chan struct{}
}

// NewPool builds a pool with the given number of concurrent slots.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size reports the configured slot count.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Do acquires a slot, runs fn, and returns its error. The calling goroutine
// suspends until the work completes. A canceled context aborts the wait for
// a slot; once fn is running it owns cancellation via the same context.
func (p *Pool) Do(ctx context.Context, fn func(context.Context) error) error {
	if p == nil {
		return errors.New("worker pool is nil")
	}
	if fn == nil {
		return errors.New("worker task is nil")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.slots <- struct{}{}:
	}
	defer func() { <-p.slots }()
	return fn(ctx)
}
