package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is a process-local Locker backed by a map of
// single-token channels. It is the implementation used by the test
// suite and by deployments without Redis; it provides the full
// serialization contract within one process but nothing across
// processes.
type MemoryLocker struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
	wait time.Duration
}

// NewMemoryLocker returns a MemoryLocker whose Acquire calls give up
// after the supplied wait bound. A non-positive wait falls back to
// three seconds.
func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	return &MemoryLocker{keys: make(map[string]chan struct{}), wait: wait}
}

// gate returns the buffered channel guarding key, creating it on
// first use. A token in the channel means the key is free.
func (l *MemoryLocker) gate(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.keys[key]
	if !ok {
		ch = make(chan struct{}, 1)
		ch <- struct{}{}
		l.keys[key] = ch
	}
	return ch
}

// Acquire takes the token for key, waiting up to the configured
// bound. The returned release function puts the token back and is
// safe to call more than once.
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ch := l.gate(key)
	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	select {
	case <-ch:
		var once sync.Once
		release := func() {
			once.Do(func() { ch <- struct{}{} })
		}
		return release, nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
