package session

import (
	"context"
	"sync"

	"github.com/moqtail/moqt-go/clock"
	"github.com/moqtail/moqt-go/control"
	"github.com/moqtail/moqt-go/internal/telemetry"
	"github.com/moqtail/moqt-go/moqtype"
	"github.com/moqtail/moqt-go/object"
	"github.com/moqtail/moqt-go/playout"
)

// Subscription is the subscriber-side handle for an in-flight or active
// Subscribe request. It mirrors the Pending->Active->Ended progression the
// teacher's MoQSession tracks per-subscription
// (internal/distribution/moq_session.go's subscriptions map), generalized
// to the explicit state machine spec.md §4.5 requires.
type Subscription struct {
	mu         sync.Mutex
	requestId  uint64
	trackAlias uint64
	name       moqtype.FullTrackName
	state      SubscriptionState

	objects chan object.MoqtObject // fed by the session's data-stream router
	buffer  *playout.Buffer

	resolved chan struct{} // closed once a SubscribeOk/SubscribeError arrives
	ok       control.SubscribeOk
	openErr  error
}

func newSubscription(requestID, trackAlias uint64, name moqtype.FullTrackName) *Subscription {
	return &Subscription{
		requestId:  requestID,
		trackAlias: trackAlias,
		name:       name,
		state:      SubscriptionPending,
		objects:    make(chan object.MoqtObject, 32),
		resolved:   make(chan struct{}),
	}
}

// RequestId returns the Subscribe request's id.
func (s *Subscription) RequestId() uint64 { return s.requestId }

// TrackAlias returns the alias assigned to this subscription's track.
func (s *Subscription) TrackAlias() uint64 { return s.trackAlias }

// State returns the subscription's current sub-state.
func (s *Subscription) State() SubscriptionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// resolveOk transitions Pending->Active on a SubscribeOk, starting the
// playout buffer that backs Objects().
func (s *Subscription) resolveOk(ctx context.Context, ok control.SubscribeOk, cfg playout.Config, clk clock.Source, tel *telemetry.Counters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SubscriptionPending {
		return
	}
	s.ok = ok
	s.state = SubscriptionActive
	s.buffer = playout.New(ctx, s.objects, cfg, clk, tel)
	close(s.resolved)
}

// resolveError transitions Pending->Ended on a SubscribeError.
func (s *Subscription) resolveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SubscriptionPending {
		return
	}
	s.openErr = err
	s.state = SubscriptionEnded
	close(s.resolved)
}

// end transitions Active->Ended, e.g. on SubscribeDone or session teardown.
func (s *Subscription) end() {
	s.mu.Lock()
	buf := s.buffer
	if s.state == SubscriptionEnded {
		s.mu.Unlock()
		return
	}
	s.state = SubscriptionEnded
	s.mu.Unlock()
	if buf != nil {
		buf.Cleanup()
	}
}

// deliver routes one received object into the subscription's buffer feed.
// It reports false (and drops the object) once the subscription has ended
// or its feed is saturated — a slow reader loses the newest objects rather
// than stalling the session's data-stream router.
func (s *Subscription) deliver(obj object.MoqtObject) bool {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == SubscriptionEnded {
		return false
	}
	select {
	case s.objects <- obj:
		return true
	default:
		return false
	}
}

// Wait blocks until the Subscribe request resolves (SubscribeOk or
// SubscribeError), or ctx is done.
func (s *Subscription) Wait(ctx context.Context) error {
	select {
	case <-s.resolved:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.openErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Objects returns the next object in Location order, pulling from the
// subscription's playout buffer. ok is false once the track has ended.
func (s *Subscription) Objects(ctx context.Context) (obj object.MoqtObject, ok bool, err error) {
	s.mu.Lock()
	buf := s.buffer
	s.mu.Unlock()
	if buf == nil {
		return object.MoqtObject{}, false, ErrSessionClosed
	}
	return buf.NextObject(ctx)
}
