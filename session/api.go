package session

import (
	"context"
	"fmt"
	"io"

	"github.com/moqtail/moqt-go/control"
	"github.com/moqtail/moqt-go/moqtype"
	"github.com/moqtail/moqt-go/object"
	"github.com/moqtail/moqt-go/wire"
)

// allocateRequestId requests the next local request id, sending
// RequestsBlocked and surfacing ErrTooManyRequests if the local credit is
// exhausted.
func (s *Session) allocateRequestId() (uint64, error) {
	id, err := s.reqIDs.Allocate()
	if err != nil {
		_ = s.writeControl(control.RequestsBlocked{Maximum: s.reqIDs.Ceiling()})
		return 0, err
	}
	return id, nil
}

// Subscribe requests delivery of name starting from the latest object,
// returning a handle that resolves once the peer replies SubscribeOk or
// SubscribeError. Call Wait before pulling Objects.
func (s *Session) Subscribe(ctx context.Context, name moqtype.FullTrackName, priority uint8, order control.GroupOrder) (*Subscription, error) {
	requestID, err := s.allocateRequestId()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	trackAlias := s.nextTrackAlias
	s.nextTrackAlias++
	s.mu.Unlock()

	if err := s.aliases.Add(trackAlias, name); err != nil {
		return nil, err
	}

	sub := newSubscription(requestID, trackAlias, name)
	s.mu.Lock()
	s.subscriptions[requestID] = sub
	s.mu.Unlock()

	msg := control.Subscribe{
		RequestId:     requestID,
		TrackAlias:    trackAlias,
		FullTrackName: name,
		Priority:      priority,
		GroupOrder:    order,
		Forward:       true,
		FilterType:    control.FilterLatestObject,
	}
	if err := s.writeControl(msg); err != nil {
		s.mu.Lock()
		delete(s.subscriptions, requestID)
		s.mu.Unlock()
		s.aliases.Remove(trackAlias)
		return nil, err
	}
	return sub, nil
}

// SubscribeAbsoluteRange is Subscribe's bounded-range variant, per
// control.NewSubscribeAbsoluteRange.
func (s *Session) SubscribeAbsoluteRange(ctx context.Context, name moqtype.FullTrackName, priority uint8, order control.GroupOrder, start moqtype.Location, endGroup uint64) (*Subscription, error) {
	requestID, err := s.allocateRequestId()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	trackAlias := s.nextTrackAlias
	s.nextTrackAlias++
	s.mu.Unlock()
	if err := s.aliases.Add(trackAlias, name); err != nil {
		return nil, err
	}

	msg, err := control.NewSubscribeAbsoluteRange(requestID, trackAlias, name, priority, order, true, start, endGroup, nil)
	if err != nil {
		s.aliases.Remove(trackAlias)
		return nil, err
	}

	sub := newSubscription(requestID, trackAlias, name)
	s.mu.Lock()
	s.subscriptions[requestID] = sub
	s.mu.Unlock()

	if err := s.writeControl(msg); err != nil {
		s.mu.Lock()
		delete(s.subscriptions, requestID)
		s.mu.Unlock()
		s.aliases.Remove(trackAlias)
		return nil, err
	}
	return sub, nil
}

// Unsubscribe cancels an active or pending subscription.
func (s *Session) Unsubscribe(sub *Subscription) error {
	if err := s.writeControl(control.Unsubscribe{RequestId: sub.RequestId()}); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.subscriptions, sub.RequestId())
	s.mu.Unlock()
	s.aliases.Remove(sub.TrackAlias())
	sub.end()
	return nil
}

// Fetch requests a bounded historical range of objects from name.
func (s *Session) Fetch(ctx context.Context, name moqtype.FullTrackName, priority uint8, order control.GroupOrder, start, end moqtype.Location) (*Fetch, error) {
	requestID, err := s.allocateRequestId()
	if err != nil {
		return nil, err
	}
	msg := control.Fetch{
		RequestId:  requestID,
		Priority:   priority,
		GroupOrder: order,
		Kind:       control.FetchKindStandAlone,
		StandAlone: control.FetchStandAlone{FullTrackName: name, Start: start, End: end},
	}
	f := newFetch(requestID)
	s.mu.Lock()
	s.fetches[requestID] = f
	s.mu.Unlock()
	if err := s.writeControl(msg); err != nil {
		s.mu.Lock()
		delete(s.fetches, requestID)
		s.mu.Unlock()
		return nil, err
	}
	return f, nil
}

// CancelFetch aborts an in-flight Fetch.
func (s *Session) CancelFetch(f *Fetch) error {
	if err := s.writeControl(control.FetchCancel{RequestId: f.RequestId()}); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.fetches, f.RequestId())
	s.mu.Unlock()
	f.end()
	return nil
}

// AnnounceNamespace declares a publisher's namespace to the peer,
// returning a handle tracking Offered->Acknowledged->Withdrawn.
func (s *Session) AnnounceNamespace(ctx context.Context, namespace moqtype.Tuple) (*Announcement, error) {
	requestID, err := s.allocateRequestId()
	if err != nil {
		return nil, err
	}
	a := newAnnouncement(requestID, namespace)
	s.mu.Lock()
	s.announcements[requestID] = a
	s.mu.Unlock()
	if err := s.writeControl(control.PublishNamespace{RequestId: requestID, Namespace: namespace}); err != nil {
		s.mu.Lock()
		delete(s.announcements, requestID)
		s.mu.Unlock()
		return nil, err
	}
	return a, nil
}

// WithdrawNamespace withdraws a previously announced namespace.
func (s *Session) WithdrawNamespace(a *Announcement) error {
	if err := s.writeControl(control.PublishNamespaceDone{RequestId: a.RequestId()}); err != nil {
		return err
	}
	a.withdraw()
	return nil
}

// SubscribeNamespacePrefix asks the peer to notify this session of
// PublishNamespace activity under prefix.
func (s *Session) SubscribeNamespacePrefix(ctx context.Context, prefix moqtype.Tuple) (*NamespaceSubscription, error) {
	requestID, err := s.allocateRequestId()
	if err != nil {
		return nil, err
	}
	n := newNamespaceSubscription(requestID, prefix)
	s.mu.Lock()
	s.namespaceSubs[requestID] = n
	s.mu.Unlock()
	if err := s.writeControl(control.SubscribeNamespace{RequestId: requestID, NamespacePrefix: prefix}); err != nil {
		s.mu.Lock()
		delete(s.namespaceSubs, requestID)
		s.mu.Unlock()
		return nil, err
	}
	return n, nil
}

// UnsubscribeNamespacePrefix cancels a SubscribeNamespacePrefix.
func (s *Session) UnsubscribeNamespacePrefix(n *NamespaceSubscription) error {
	if err := s.writeControl(control.UnsubscribeNamespace{RequestId: n.RequestId(), NamespacePrefix: n.Prefix()}); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.namespaceSubs, n.RequestId())
	s.mu.Unlock()
	n.end()
	return nil
}

// QueryTrackStatus asks the peer for the current status of name, blocking
// until a reply arrives or ctx is done.
func (s *Session) QueryTrackStatus(ctx context.Context, name moqtype.FullTrackName) (control.TrackStatus, error) {
	requestID, err := s.allocateRequestId()
	if err != nil {
		return control.TrackStatus{}, err
	}
	w := &trackStatusWaiter{result: make(chan trackStatusResult, 1)}
	s.mu.Lock()
	s.trackStatusWaiters[requestID] = w
	s.mu.Unlock()

	if err := s.writeControl(control.TrackStatusRequest{RequestId: requestID, FullTrackName: name}); err != nil {
		s.mu.Lock()
		delete(s.trackStatusWaiters, requestID)
		s.mu.Unlock()
		return control.TrackStatus{}, err
	}

	select {
	case r := <-w.result:
		return r.status, r.err
	case <-ctx.Done():
		s.mu.Lock()
		delete(s.trackStatusWaiters, requestID)
		s.mu.Unlock()
		return control.TrackStatus{}, ctx.Err()
	}
}

// OpenTrack registers name as locally published, returning a TrackWriter
// the application pushes objects to. The writer stays unbound (Push
// blocks) until the peer subscribes to name.
func (s *Session) OpenTrack(name moqtype.FullTrackName, pref object.ForwardingPreference) *TrackWriter {
	track := newPublishedTrack(name, pref)
	s.mu.Lock()
	s.published[fullTrackNameKey(name)] = track
	s.mu.Unlock()
	return &TrackWriter{session: s, track: track}
}

// TrackWriter lets a publisher push objects onto a track it has
// announced, opening one unidirectional stream per (group, subgroup)
// pair per spec.md §3/§6.
type TrackWriter struct {
	session *Session
	track   *publishedTrack
}

// Push opens (or reuses) the stream for obj's group/subgroup and writes
// its frame. It blocks until the track is bound to a peer subscription,
// or ctx is done.
func (w *TrackWriter) Push(ctx context.Context, obj object.MoqtObject) error {
	select {
	case <-w.track.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	key := streamKey{group: obj.Location.Group}
	if w.track.pref == object.ForwardingSubgroup && obj.SubgroupId != nil {
		key.subgroup = *obj.SubgroupId
	}

	w.track.mu.Lock()
	stream, ok := w.track.streams[key]
	alias := w.track.trackAlias
	closed := w.track.closed
	w.track.mu.Unlock()
	if closed {
		return fmt.Errorf("session: track writer closed")
	}

	if !ok {
		newStream, err := w.session.transport.OpenUni(ctx)
		if err != nil {
			return fmt.Errorf("session: open data stream: %w", err)
		}
		hdr := object.StreamHeader{TrackAlias: alias, Group: obj.Location.Group, Subgroup: key.subgroup, Pref: w.track.pref}
		hb := wire.NewBuffer()
		if err := hdr.Serialize(hb); err != nil {
			newStream.Close()
			return err
		}
		if _, err := newStream.Write(hb.Bytes()); err != nil {
			newStream.Close()
			return err
		}
		w.track.mu.Lock()
		w.track.streams[key] = newStream
		w.track.mu.Unlock()
		stream = newStream
	}

	frame := object.Frame{Object: obj.Location.Object, Priority: obj.PublisherPriority, ExtensionHeaders: obj.ExtensionHeaders, Payload: obj.Payload}
	fb := wire.NewBuffer()
	if err := frame.Serialize(fb); err != nil {
		return err
	}
	if _, err := stream.Write(fb.Bytes()); err != nil {
		return err
	}

	w.track.mu.Lock()
	w.track.hasContent = true
	if obj.Location.Compare(w.track.largest) > 0 {
		w.track.largest = obj.Location
	}
	w.track.mu.Unlock()
	return nil
}

// Close closes every stream this writer has opened and marks the track
// unavailable to further pushes, e.g. when the application stops
// publishing.
func (w *TrackWriter) Close() error {
	w.track.mu.Lock()
	w.track.closed = true
	streams := w.track.streams
	w.track.streams = make(map[streamKey]io.WriteCloser)
	w.track.mu.Unlock()

	var firstErr error
	for _, st := range streams {
		if err := st.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
