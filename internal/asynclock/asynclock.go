// Package asynclock implements the FIFO-fair async mutex spec.md asks for
// to guard the playout buffer's heap and pending-callback slot: "a simple
// mutex with a waiters queue... acquire FIFO, release hands the lock to
// the next waiter." golang.org/x/sync is already a direct dependency of
// this module (the teacher exercises errgroup from it); this package
// fills out that dependency with its own waiters-queue primitive, since
// sync.Mutex makes no fairness guarantee and a starved waiter would
// violate the ordering contract a single-producer/single-consumer buffer
// depends on.
package asynclock

import "context"

// Mutex is a context-aware, FIFO-fair mutual exclusion lock. The zero
// value is ready to use.
type Mutex struct {
	ch chan struct{}
}

func (m *Mutex) ticket() chan struct{} {
	if m.ch == nil {
		m.ch = make(chan struct{}, 1)
	}
	return m.ch
}

// Lock blocks until the mutex is acquired or ctx is done. Waiters are
// served in the order Lock was called, since the underlying channel send
// queue is itself FIFO.
func (m *Mutex) Lock(ctx context.Context) error {
	select {
	case m.ticket() <- struct{}{}:
		return nil
	default:
	}
	select {
	case m.ticket() <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlock releases the mutex, waking the next waiter in FIFO order.
func (m *Mutex) Unlock() {
	select {
	case <-m.ticket():
	default:
		panic("asynclock: Unlock of unlocked Mutex")
	}
}
