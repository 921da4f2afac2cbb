package session

import (
	"context"
	"fmt"

	"github.com/moqtail/moqt-go/control"
	"github.com/moqtail/moqt-go/moqtype"
)

// dispatchControl routes one decoded control message to its handler, in
// the same switch-on-type shape control.Encode/Decode already use. A
// handler error is fatal to the session (it is returned up through
// controlLoop/Run); handlers that only reject a single request reply with
// an *Error message instead of returning an error.
func (s *Session) dispatchControl(ctx context.Context, msgType control.MsgType, msg any) error {
	switch m := msg.(type) {
	case control.Subscribe:
		return s.handleSubscribe(ctx, m)
	case control.SubscribeOk:
		s.handleSubscribeOk(ctx, m)
	case control.SubscribeError:
		s.handleSubscribeError(m)
	case control.SubscribeUpdate:
		s.handleSubscribeUpdate(m)
	case control.SubscribeDone:
		s.handleSubscribeDone(m)
	case control.Unsubscribe:
		s.handleUnsubscribe(m)
	case control.Fetch:
		return s.handleFetch(ctx, m)
	case control.FetchOk:
		s.handleFetchOk(ctx, m)
	case control.FetchError:
		s.handleFetchError(m)
	case control.FetchCancel:
		s.handleFetchCancel(m)
	case control.PublishNamespace:
		return s.handlePublishNamespace(m)
	case control.PublishNamespaceOk:
		s.handlePublishNamespaceOk(m)
	case control.PublishNamespaceError:
		s.handlePublishNamespaceError(m)
	case control.PublishNamespaceDone:
		s.handlePublishNamespaceDone(m)
	case control.PublishNamespaceCancel:
		s.handlePublishNamespaceDone(control.PublishNamespaceDone{RequestId: m.RequestId})
	case control.SubscribeNamespace:
		return s.handleSubscribeNamespace(m)
	case control.SubscribeNamespaceOk:
		s.handleSubscribeNamespaceOk(m)
	case control.SubscribeNamespaceError:
		s.handleSubscribeNamespaceError(m)
	case control.UnsubscribeNamespace:
		// No server-side bookkeeping beyond the peer's own NamespaceSubscription
		// handle is kept for prefixes we do not ourselves track.
	case control.TrackStatusRequest:
		return s.handleTrackStatusRequest(m)
	case control.TrackStatus:
		s.resolveTrackStatus(m.RequestId, trackStatusResult{status: m})
	case control.TrackStatusOk:
		// Acknowledged independent of payload; nothing further to resolve.
	case control.TrackStatusError:
		s.resolveTrackStatus(m.RequestId, trackStatusResult{err: &Termination{Code: TerminationCode(m.ErrorCode), Reason: m.ReasonPhrase.Text}})
	case control.GoAway:
		s.handleGoAway(m)
	case control.MaxRequestId:
		s.reqIDs.RaiseCeiling(m.RequestId)
	case control.RequestsBlocked:
		s.handleRequestsBlocked(m)
	case control.ReservedSetup:
		s.log.Debug("session: reserved setup code on control stream after handshake", "code", m.Code)
	default:
		return fmt.Errorf("session: unexpected control message type 0x%x (%T)", uint64(msgType), msg)
	}
	return nil
}

func (s *Session) handleSubscribeOk(ctx context.Context, m control.SubscribeOk) {
	s.mu.RLock()
	sub := s.subscriptions[m.RequestId]
	s.mu.RUnlock()
	if sub == nil {
		return
	}
	sub.resolveOk(ctx, m, s.cfg.Playout, s.clk, s.tel)
	s.drainStaged(sub.TrackAlias(), sub)
}

func (s *Session) handleSubscribeError(m control.SubscribeError) {
	s.mu.Lock()
	sub := s.subscriptions[m.RequestId]
	s.mu.Unlock()
	if sub == nil {
		return
	}
	sub.resolveError(&Termination{Code: TerminationCode(m.ErrorCode), Reason: m.ReasonPhrase.Text})
	s.aliases.Remove(sub.TrackAlias())
}

func (s *Session) handleSubscribeUpdate(m control.SubscribeUpdate) {
	// Range/priority narrowing is advisory to the publisher's send policy;
	// this module has no per-publish-side rate shaping to adjust yet.
	s.log.Debug("session: SubscribeUpdate received", "requestId", m.RequestId)
}

func (s *Session) handleSubscribeDone(m control.SubscribeDone) {
	s.mu.Lock()
	sub := s.subscriptions[m.RequestId]
	delete(s.subscriptions, m.RequestId)
	s.mu.Unlock()
	if sub == nil {
		return
	}
	s.aliases.Remove(sub.TrackAlias())
	sub.end()
}

// handleUnsubscribe is received by a publisher: the peer is cancelling a
// subscription they hold on one of our published tracks.
func (s *Session) handleUnsubscribe(m control.Unsubscribe) {
	s.mu.Lock()
	var track *publishedTrack
	for _, t := range s.byAlias {
		if t.bound {
			// best-effort: a real implementation would key byAlias by
			// requestId too; single-subscriber scope makes this safe.
			track = t
			break
		}
	}
	s.mu.Unlock()
	if track != nil {
		track.closeAllStreams()
	}
}

func (s *Session) handleSubscribe(ctx context.Context, m control.Subscribe) error {
	key := fullTrackNameKey(m.FullTrackName)
	s.mu.Lock()
	track, exists := s.published[key]
	s.mu.Unlock()

	if !exists {
		reason, _ := moqtype.NewReasonPhrase("track not published", 0)
		return s.writeControl(control.SubscribeError{RequestId: m.RequestId, ErrorCode: 0, ReasonPhrase: reason})
	}
	if err := s.aliases.Add(m.TrackAlias, m.FullTrackName); err != nil {
		reason, _ := moqtype.NewReasonPhrase("track alias already in use", 0)
		return s.writeControl(control.SubscribeError{RequestId: m.RequestId, ErrorCode: control.RetryTrackAlias, ReasonPhrase: reason, TrackAlias: m.TrackAlias + 1})
	}
	track.bind(m.TrackAlias)

	s.mu.Lock()
	s.byAlias[m.TrackAlias] = track
	s.mu.Unlock()

	track.mu.Lock()
	ok := control.SubscribeOk{
		RequestId:       m.RequestId,
		GroupOrder:      control.GroupOrderAscending,
		ContentExists:   track.hasContent,
		LargestLocation: track.largest,
	}
	track.mu.Unlock()
	return s.writeControl(ok)
}

func (s *Session) handleFetch(ctx context.Context, m control.Fetch) error {
	// This module serves live subscriptions; it keeps no retained object
	// history for a publisher to answer a historical Fetch against, so
	// every incoming Fetch is rejected. Fetch's client-side API (session
	// issuing a Fetch to a peer that does retain history) is fully
	// implemented in api.go.
	reason, _ := moqtype.NewReasonPhrase("fetch not supported: no retained history", 0)
	return s.writeControl(control.FetchError{RequestId: m.RequestId, ErrorCode: 0, ReasonPhrase: reason})
}

func (s *Session) handleFetchOk(ctx context.Context, m control.FetchOk) {
	s.mu.RLock()
	f := s.fetches[m.RequestId]
	s.mu.RUnlock()
	if f == nil {
		return
	}
	f.resolveOk(ctx, m, s.cfg.Playout, s.clk, s.tel)
}

func (s *Session) handleFetchError(m control.FetchError) {
	s.mu.Lock()
	f := s.fetches[m.RequestId]
	s.mu.Unlock()
	if f == nil {
		return
	}
	f.resolveError(&Termination{Code: TerminationCode(m.ErrorCode), Reason: m.ReasonPhrase.Text})
}

func (s *Session) handleFetchCancel(m control.FetchCancel) {
	s.log.Debug("session: FetchCancel received", "requestId", m.RequestId)
}

func (s *Session) handlePublishNamespace(m control.PublishNamespace) error {
	s.mu.RLock()
	for _, sub := range s.namespaceSubs {
		if isPrefixOf(sub.Prefix(), m.Namespace) {
			sub.notify(m.Namespace)
		}
	}
	s.mu.RUnlock()
	return s.writeControl(control.PublishNamespaceOk{RequestId: m.RequestId})
}

func (s *Session) handlePublishNamespaceOk(m control.PublishNamespaceOk) {
	s.mu.RLock()
	a := s.announcements[m.RequestId]
	s.mu.RUnlock()
	if a != nil {
		a.acknowledge()
	}
}

func (s *Session) handlePublishNamespaceError(m control.PublishNamespaceError) {
	s.mu.Lock()
	a := s.announcements[m.RequestId]
	s.mu.Unlock()
	if a != nil {
		a.reject(&Termination{Code: TerminationCode(m.ErrorCode), Reason: m.ReasonPhrase.Text})
	}
}

func (s *Session) handlePublishNamespaceDone(m control.PublishNamespaceDone) {
	s.mu.Lock()
	a := s.announcements[m.RequestId]
	s.mu.Unlock()
	if a != nil {
		a.withdraw()
	}
}

func (s *Session) handleSubscribeNamespace(m control.SubscribeNamespace) error {
	// Bookkeeping only: this module does not re-broadcast namespaces a
	// third party announces, since a Session models a single peer-to-peer
	// link rather than a relay's fan-out tree.
	return s.writeControl(control.SubscribeNamespaceOk{RequestId: m.RequestId})
}

func (s *Session) handleSubscribeNamespaceOk(m control.SubscribeNamespaceOk) {
	s.mu.RLock()
	n := s.namespaceSubs[m.RequestId]
	s.mu.RUnlock()
	if n != nil {
		n.resolveOk()
	}
}

func (s *Session) handleSubscribeNamespaceError(m control.SubscribeNamespaceError) {
	s.mu.Lock()
	n := s.namespaceSubs[m.RequestId]
	s.mu.Unlock()
	if n != nil {
		n.resolveError(&Termination{Code: TerminationCode(m.ErrorCode), Reason: m.ReasonPhrase.Text})
	}
}

func (s *Session) handleTrackStatusRequest(m control.TrackStatusRequest) error {
	key := fullTrackNameKey(m.FullTrackName)
	s.mu.RLock()
	track, exists := s.published[key]
	s.mu.RUnlock()

	if !exists {
		status, _ := control.NewTrackStatus(m.RequestId, control.TrackStatusDoesNotExist, moqtype.Location{}, nil)
		return s.writeControl(status)
	}
	track.mu.Lock()
	largest, hasContent := track.largest, track.hasContent
	track.mu.Unlock()

	code := control.TrackStatusNotYetBegun
	loc := moqtype.Location{}
	if hasContent {
		code = control.TrackStatusInProgress
		loc = largest
	}
	status, err := control.NewTrackStatus(m.RequestId, code, loc, nil)
	if err != nil {
		return err
	}
	return s.writeControl(status)
}

func (s *Session) resolveTrackStatus(requestID uint64, result trackStatusResult) {
	s.mu.Lock()
	w := s.trackStatusWaiters[requestID]
	delete(s.trackStatusWaiters, requestID)
	s.mu.Unlock()
	if w == nil {
		return
	}
	w.result <- result
}

func (s *Session) handleGoAway(m control.GoAway) {
	s.mu.Lock()
	s.state = Draining
	s.mu.Unlock()

	s.goAwayMu.Lock()
	handlers := append([]func(control.GoAway){}, s.goAwayHandlers...)
	s.goAwayMu.Unlock()
	for _, h := range handlers {
		h(m)
	}
}

// handleRequestsBlocked grants the peer more request-id headroom: since
// this session governs its own ceiling advertisement independent of the
// RequestIDAllocator (which tracks ids *we* issue), a RequestsBlocked
// simply asks us to raise the MaxRequestId we advertise to the peer.
func (s *Session) handleRequestsBlocked(m control.RequestsBlocked) {
	const increment = 100
	newCeiling := m.Maximum + increment
	if err := s.writeControl(control.MaxRequestId{RequestId: newCeiling}); err != nil {
		s.log.Debug("session: failed to grant MaxRequestId after RequestsBlocked", "err", err)
		return
	}
	s.mu.Lock()
	s.peerRequestIdCeilIn = newCeiling
	s.mu.Unlock()
}

func isPrefixOf(prefix, ns moqtype.Tuple) bool {
	if len(prefix.Fields) > len(ns.Fields) {
		return false
	}
	for i, f := range prefix.Fields {
		if string(f) != string(ns.Fields[i]) {
			return false
		}
	}
	return true
}

func (p *publishedTrack) closeAllStreams() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, st := range p.streams {
		st.Close()
		delete(p.streams, k)
	}
}
