// Package telemetry implements the small set of atomic delivery counters
// used across the session and playout packages, generalized from the
// teacher's MoQSession/Relay per-kind atomic.Int64/atomic.Uint32 send/drop
// counters (internal/distribution/moq_session.go's videoSent/videoDropped/
// damagedGroup fields) into a reusable, named counter set rather than
// ad-hoc fields duplicated in every component that needs one.
package telemetry

import "sync/atomic"

// Counters is a small set of named delivery counters. The zero value is
// ready to use; all methods are safe for concurrent use.
type Counters struct {
	streamErrors   atomic.Int64
	staleDrops     atomic.Int64
	objectsEvicted atomic.Int64
	objectsPushed  atomic.Int64
}

// IncStreamErrors records a data-stream decode error (scoped to that
// stream only, per spec.md §7 — it never terminates the session).
func (c *Counters) IncStreamErrors() { c.streamErrors.Add(1) }

// IncStaleDrops records a staged (pre-Active-subscription) object dropped
// by the bounded staging map's overflow policy.
func (c *Counters) IncStaleDrops() { c.staleDrops.Add(1) }

// IncObjectsEvicted records a playout buffer eviction of n objects.
func (c *Counters) IncObjectsEvicted(n int64) { c.objectsEvicted.Add(n) }

// IncObjectsPushed records a successful playout buffer push.
func (c *Counters) IncObjectsPushed() { c.objectsPushed.Add(1) }

// Snapshot is a point-in-time, non-atomic read of all counters.
type Snapshot struct {
	StreamErrors   int64
	StaleDrops     int64
	ObjectsEvicted int64
	ObjectsPushed  int64
}

// Snapshot reads all counters.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		StreamErrors:   c.streamErrors.Load(),
		StaleDrops:     c.staleDrops.Load(),
		ObjectsEvicted: c.objectsEvicted.Load(),
		ObjectsPushed:  c.objectsPushed.Load(),
	}
}
