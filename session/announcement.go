package session

import (
	"context"
	"sync"

	"github.com/moqtail/moqt-go/moqtype"
)

// Announcement is the publisher-side handle for an outgoing
// PublishNamespace, progressing Offered->Acknowledged->Withdrawn per
// spec.md §4.5.
type Announcement struct {
	mu        sync.Mutex
	requestId uint64
	namespace moqtype.Tuple
	state     AnnouncementState

	resolved chan struct{}
	openErr  error
}

func newAnnouncement(requestID uint64, namespace moqtype.Tuple) *Announcement {
	return &Announcement{
		requestId: requestID,
		namespace: namespace,
		state:     AnnouncementOffered,
		resolved:  make(chan struct{}),
	}
}

// RequestId returns the PublishNamespace request's id.
func (a *Announcement) RequestId() uint64 { return a.requestId }

// Namespace returns the announced namespace.
func (a *Announcement) Namespace() moqtype.Tuple { return a.namespace }

// State returns the announcement's current sub-state.
func (a *Announcement) State() AnnouncementState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// acknowledge transitions Offered->Acknowledged on a PublishNamespaceOk.
func (a *Announcement) acknowledge() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != AnnouncementOffered {
		return
	}
	a.state = AnnouncementAcknowledged
	close(a.resolved)
}

// reject transitions Offered->Withdrawn on a PublishNamespaceError.
func (a *Announcement) reject(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != AnnouncementOffered {
		return
	}
	a.openErr = err
	a.state = AnnouncementWithdrawn
	close(a.resolved)
}

// withdraw transitions Acknowledged->Withdrawn, e.g. on
// PublishNamespaceCancel or local teardown.
func (a *Announcement) withdraw() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == AnnouncementWithdrawn {
		return
	}
	wasOffered := a.state == AnnouncementOffered
	a.state = AnnouncementWithdrawn
	if wasOffered {
		close(a.resolved)
	}
}

// Wait blocks until the PublishNamespace resolves (Ok or Error).
func (a *Announcement) Wait(ctx context.Context) error {
	select {
	case <-a.resolved:
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.openErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NamespaceSubscription is the subscriber-side handle for an outgoing
// SubscribeNamespace, progressing Pending->Active->Ended per spec.md §4.5.
// Unlike Subscription it carries no object feed: activity is reported as
// the namespaces of PublishNamespace messages received under the prefix;
// PublishNamespaceDone is not reported.
type NamespaceSubscription struct {
	mu        sync.Mutex
	requestId uint64
	prefix    moqtype.Tuple
	state     NamespaceSubState

	resolved  chan struct{}
	openErr   error
	announced chan moqtype.Tuple // namespaces announced under the prefix
}

func newNamespaceSubscription(requestID uint64, prefix moqtype.Tuple) *NamespaceSubscription {
	return &NamespaceSubscription{
		requestId: requestID,
		prefix:    prefix,
		state:     NamespaceSubPending,
		resolved:  make(chan struct{}),
		announced: make(chan moqtype.Tuple, 32),
	}
}

// RequestId returns the SubscribeNamespace request's id.
func (n *NamespaceSubscription) RequestId() uint64 { return n.requestId }

// Prefix returns the subscribed namespace prefix.
func (n *NamespaceSubscription) Prefix() moqtype.Tuple { return n.prefix }

// State returns the namespace subscription's current sub-state.
func (n *NamespaceSubscription) State() NamespaceSubState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *NamespaceSubscription) resolveOk() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != NamespaceSubPending {
		return
	}
	n.state = NamespaceSubActive
	close(n.resolved)
}

func (n *NamespaceSubscription) resolveError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != NamespaceSubPending {
		return
	}
	n.openErr = err
	n.state = NamespaceSubEnded
	close(n.resolved)
}

func (n *NamespaceSubscription) end() {
	n.mu.Lock()
	if n.state == NamespaceSubEnded {
		n.mu.Unlock()
		return
	}
	n.state = NamespaceSubEnded
	n.mu.Unlock()
}

// notify records a namespace announcement observed under the prefix.
func (n *NamespaceSubscription) notify(ns moqtype.Tuple) {
	select {
	case n.announced <- ns:
	default:
	}
}

// Wait blocks until the SubscribeNamespace resolves (Ok or Error).
func (n *NamespaceSubscription) Wait(ctx context.Context) error {
	select {
	case <-n.resolved:
		n.mu.Lock()
		defer n.mu.Unlock()
		return n.openErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Announced returns the channel of namespaces announced under the
// subscribed prefix.
func (n *NamespaceSubscription) Announced() <-chan moqtype.Tuple { return n.announced }
