package workers_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stitcher/internal/workers"
)

func TestPoolRunsTaskAndReturnsError(t *testing.T) {
	pool := workers.NewPool(2)
	want := errors.New("boom")
	got := pool.Do(context.Background(), func(context.Context) error { return want })
	if !errors.Is(got, want) {
		t.Fatalf("expected task error, got %v", got)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const size = 3
	pool := workers.NewPool(size)

	var active, peak int64
	var wg sync.WaitGroup
	for i := 0; i < size*4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.Do(context.Background(), func(context.Context) error {
				now := atomic.AddInt64(&active, 1)
				for {
					prev := atomic.LoadInt64(&peak)
					if now <= prev || atomic.CompareAndSwapInt64(&peak, prev, now) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt64(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&peak); got > size {
		t.Fatalf("expected at most %d concurrent tasks, saw %d", size, got)
	}
}

func TestPoolHonorsContextWhileWaiting(t *testing.T) {
	pool := workers.NewPool(1)
	release := make(chan struct{})
	go func() {
		_ = pool.Do(context.Background(), func(context.Context) error {
			<-release
			return nil
		})
	}()
	// Give the occupying task time to claim the slot.
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := pool.Do(ctx, func(context.Context) error { return nil })
	close(release)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error while waiting for slot, got %v", err)
	}
}

func TestNewPoolClampsSize(t *testing.T) {
	if got := workers.NewPool(0).Size(); got != 1 {
		t.Fatalf("expected clamped size 1, got %d", got)
	}
}
