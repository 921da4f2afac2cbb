package session

import (
	"context"
	"io"
)

// Transport is the QUIC/WebTransport collaborator a Session depends on
// (spec.md §6: "exposed as bidirectional control stream plus ordered
// unidirectional data streams"). Concrete implementations live in the
// transport package; Session depends only on this interface so it never
// imports quic-go or webtransport-go directly.
type Transport interface {
	// OpenBidi opens (or, for the first call on an accepted connection,
	// returns) the session's single bidirectional control stream.
	OpenBidi(ctx context.Context) (io.ReadWriteCloser, error)
	// OpenUni opens a new unidirectional stream for sending objects.
	OpenUni(ctx context.Context) (io.WriteCloser, error)
	// AcceptUni blocks until the peer opens a unidirectional stream, or
	// returns an error once the transport is closed.
	AcceptUni(ctx context.Context) (io.ReadCloser, error)
	// Close tears down the underlying connection.
	Close() error
}

// Clock yields the current time as epoch milliseconds, mirroring
// clock.Source structurally so clock.System satisfies it without this
// package importing clock (spec.md §4.5 defines both collaborator
// interfaces in session).
type Clock interface {
	NowMs() int64
}
