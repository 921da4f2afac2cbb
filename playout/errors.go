// Package playout implements the pull-based playout reorder buffer:
// objects arrive out of order from a single producer (the session's data
// stream demultiplexer) and are delivered in non-decreasing Location
// order to a single consumer, with bounded memory enforced by a
// GOP-aware eviction policy. Grounded on rustyguts-bken's client/internal/
// jitter package's depth-buffered, single-reader reorder shape, adapted
// from a fixed-modulus ring buffer (16-bit sequence numbers) to a
// container/heap min-heap keyed by moqtype.Location.Compare, since
// Location has no fixed modulus to ring over.
package playout

import "errors"

// ErrClosed is returned by NextObject once Cleanup has run, distinguishing
// a deliberately torn-down buffer from ordinary source exhaustion (which
// reports ok=false with a nil error instead).
var ErrClosed = errors.New("playout: buffer closed")
