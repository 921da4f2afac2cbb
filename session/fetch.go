package session

import (
	"context"
	"sync"

	"github.com/moqtail/moqt-go/clock"
	"github.com/moqtail/moqt-go/control"
	"github.com/moqtail/moqt-go/internal/telemetry"
	"github.com/moqtail/moqt-go/object"
	"github.com/moqtail/moqt-go/playout"
)

// Fetch is the requester-side handle for an in-flight or active Fetch
// request, progressing Pending->Streaming->Ended per spec.md §4.5. Unlike
// Subscription it carries a single bounded range rather than an
// open-ended live feed, but reuses the same playout.Buffer pull shape for
// delivery ordering.
type Fetch struct {
	mu        sync.Mutex
	requestId uint64
	state     FetchState

	objects chan object.MoqtObject
	buffer  *playout.Buffer

	resolved chan struct{}
	ok       control.FetchOk
	openErr  error
}

func newFetch(requestID uint64) *Fetch {
	return &Fetch{
		requestId: requestID,
		state:     FetchPending,
		objects:   make(chan object.MoqtObject, 32),
		resolved:  make(chan struct{}),
	}
}

// RequestId returns the Fetch request's id.
func (f *Fetch) RequestId() uint64 { return f.requestId }

// State returns the fetch's current sub-state.
func (f *Fetch) State() FetchState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// resolveOk transitions Pending->Streaming on a FetchOk.
func (f *Fetch) resolveOk(ctx context.Context, ok control.FetchOk, cfg playout.Config, clk clock.Source, tel *telemetry.Counters) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FetchPending {
		return
	}
	f.ok = ok
	f.state = FetchStreaming
	f.buffer = playout.New(ctx, f.objects, cfg, clk, tel)
	close(f.resolved)
}

// resolveError transitions Pending->Ended on a FetchError.
func (f *Fetch) resolveError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FetchPending {
		return
	}
	f.openErr = err
	f.state = FetchEnded
	close(f.resolved)
}

// end transitions the fetch to Ended, on CancelFetch or session teardown.
func (f *Fetch) end() {
	f.mu.Lock()
	buf := f.buffer
	if f.state == FetchEnded {
		f.mu.Unlock()
		return
	}
	f.state = FetchEnded
	f.mu.Unlock()
	if buf != nil {
		buf.Cleanup()
	}
}

// deliver routes one received object into the fetch's feed.
func (f *Fetch) deliver(obj object.MoqtObject) bool {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()
	if state == FetchEnded {
		return false
	}
	select {
	case f.objects <- obj:
		return true
	default:
		return false
	}
}

// Wait blocks until the Fetch request resolves (FetchOk or FetchError).
func (f *Fetch) Wait(ctx context.Context) error {
	select {
	case <-f.resolved:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.openErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Objects returns the next object in the fetched range, in Location order.
func (f *Fetch) Objects(ctx context.Context) (obj object.MoqtObject, ok bool, err error) {
	f.mu.Lock()
	buf := f.buffer
	f.mu.Unlock()
	if buf == nil {
		return object.MoqtObject{}, false, ErrSessionClosed
	}
	return buf.NextObject(ctx)
}
