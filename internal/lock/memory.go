// Package lock provides per-user mutual exclusion for ledger writes.
package lock

import (
	"context"
	"sync"
)

// MemoryLocker serializes callers within one process.
type MemoryLocker struct {
	locks map[string]*memoryEntry
	mu    sync.Mutex
}

type memoryEntry struct {
	held chan struct{}
	refs int
}

// NewMemoryLocker creates an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*memoryEntry)}
}

// Lock blocks until key is free or ctx is done.
func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &memoryEntry{held: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.held <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.held
				l.drop(key, e)
			})
		}, nil
	case <-ctx.Done():
		l.drop(key, e)
		return nil, ctx.Err()
	}
}

// drop forgets the entry once nobody holds or waits on it.
func (l *MemoryLocker) drop(key string, e *memoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
