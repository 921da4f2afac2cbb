// Package clock defines the Source collaborator spec.md carves out as
// external: "Clock synchronization over HTTP time servers (exposed as a
// Clock capability yielding a corrected epoch-ms)." Only the interface
// and a trivial uncorrected default are implemented here; a real NTP- or
// HTTP-time-server-backed corrected clock is out of scope per spec.md §1.
package clock

import "time"

// Source yields the current time as epoch milliseconds, possibly
// corrected against a reference clock. Used by the session and playout
// packages for playout latency accounting.
type Source interface {
	NowMs() int64
}

// System is the uncorrected default Source, backed by time.Now.
type System struct{}

// NowMs returns the current wall-clock time as epoch milliseconds.
func (System) NowMs() int64 {
	return time.Now().UnixMilli()
}

var _ Source = System{}
