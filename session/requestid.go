package session

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// RequestIDAllocator issues strictly increasing request ids bounded by the
// peer's advertised MaxRequestId ceiling. golang.org/x/sync/semaphore is
// repurposed here as a credit pool rather than a concurrency limiter: its
// total weight tracks "ids available below the ceiling", TryAcquire(1)
// models "spend one id", and a peer's MaxRequestId bump releases more
// weight rather than returning previously-acquired permits (ids are
// never reused per spec.md's request-id monotonicity invariant).
type RequestIDAllocator struct {
	mu      sync.Mutex
	nextID  uint64
	ceiling uint64
	sem     *semaphore.Weighted
}

// NewRequestIDAllocator builds an allocator whose initial ceiling is the
// MaxRequestId the local side has already advertised (or been granted).
func NewRequestIDAllocator(initialCeiling uint64) *RequestIDAllocator {
	return &RequestIDAllocator{
		ceiling: initialCeiling,
		sem:     semaphore.NewWeighted(int64(initialCeiling)),
	}
}

// Allocate returns the next request id, or ErrTooManyRequests if the
// ceiling is exhausted — the caller is expected to send
// control.RequestsBlocked(Ceiling()) and retry once the peer raises the
// ceiling via MaxRequestId.
func (a *RequestIDAllocator) Allocate() (uint64, error) {
	if !a.sem.TryAcquire(1) {
		return 0, ErrTooManyRequests
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	return id, nil
}

// RaiseCeiling processes an incoming MaxRequestId, releasing additional
// credit. A newMax that does not exceed the current ceiling is ignored —
// MoQT's ceiling only ever moves forward.
func (a *RequestIDAllocator) RaiseCeiling(newMax uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if newMax <= a.ceiling {
		return
	}
	delta := newMax - a.ceiling
	a.ceiling = newMax
	a.sem.Release(int64(delta))
}

// Ceiling returns the current MaxRequestId value, for RequestsBlocked.
func (a *RequestIDAllocator) Ceiling() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ceiling
}
