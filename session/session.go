package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moqtail/moqt-go/control"
	"github.com/moqtail/moqt-go/internal/telemetry"
	"github.com/moqtail/moqt-go/moqtype"
	"github.com/moqtail/moqt-go/object"
	"github.com/moqtail/moqt-go/playout"
	"github.com/moqtail/moqt-go/wire"
)

// Version is the draft-11 MoQT version this module speaks.
const Version uint64 = 0xff00000b

// Role distinguishes which side of the handshake a Session plays.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// Config holds a Session's tunables.
type Config struct {
	InitialMaxRequestId uint64
	GoAwayGrace         time.Duration
	Playout             playout.Config
	Logger              *slog.Logger
}

func (c *Config) setDefaults() {
	if c.InitialMaxRequestId == 0 {
		c.InitialMaxRequestId = 100
	}
	if c.GoAwayGrace == 0 {
		c.GoAwayGrace = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// publishedTrack is a locally announced track an application has opened
// for writing via OpenTrack. It stays unbound until a matching Subscribe
// arrives from the peer and assigns it the subscriber's track alias.
type publishedTrack struct {
	mu         sync.Mutex
	name       moqtype.FullTrackName
	pref       object.ForwardingPreference
	trackAlias uint64
	bound      bool
	ready      chan struct{}
	largest    moqtype.Location
	hasContent bool
	streams    map[streamKey]io.WriteCloser
	closed     bool
}

type streamKey struct {
	group, subgroup uint64
}

func newPublishedTrack(name moqtype.FullTrackName, pref object.ForwardingPreference) *publishedTrack {
	return &publishedTrack{
		name:    name,
		pref:    pref,
		ready:   make(chan struct{}),
		streams: make(map[streamKey]io.WriteCloser),
	}
}

func (p *publishedTrack) bind(trackAlias uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bound {
		return
	}
	p.trackAlias = trackAlias
	p.bound = true
	close(p.ready)
}

// trackStatusWaiter correlates an outgoing TrackStatusRequest with its
// eventual TrackStatus/TrackStatusOk/TrackStatusError reply.
type trackStatusWaiter struct {
	result chan trackStatusResult
}

type trackStatusResult struct {
	status control.TrackStatus
	err    error
}

// Session is one MoQT connection: a control stream plus the data streams
// it governs. Field layout and the RWMutex-guarded maps mirror the
// teacher's MoQSession (internal/distribution/moq_session.go), generalized
// from a single-purpose video relay into the full request/response
// surface spec.md §4–§6 describes.
type Session struct {
	role      Role
	cfg       Config
	transport Transport
	clk       Clock
	log       *slog.Logger
	tel       *telemetry.Counters

	controlMu sync.Mutex // serializes writes to the control stream
	control   io.ReadWriteCloser
	readBuf   *wire.Buffer

	mu    sync.RWMutex
	state SessionState

	aliases             *trackAliasTable
	reqIDs              *RequestIDAllocator
	nextTrackAlias      uint64 // local counter for trackAlias on outgoing Subscribes
	peerMaxRequestId    uint64
	peerRequestIdCeilIn uint64 // last MaxRequestId we granted the peer

	subscriptions map[uint64]*Subscription
	fetches       map[uint64]*Fetch
	announcements map[uint64]*Announcement
	namespaceSubs map[uint64]*NamespaceSubscription

	published map[string]*publishedTrack // keyed by fullTrackNameKey
	byAlias   map[uint64]*publishedTrack // local tracks, by the alias a peer assigned them

	trackStatusWaiters map[uint64]*trackStatusWaiter

	staging   map[uint64][]object.MoqtObject // trackAlias -> objects arrived pre-Active
	stagingMu sync.Mutex

	goAwayMu       sync.Mutex
	goAwayHandlers []func(control.GoAway)

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

func newSession(role Role, transport Transport, clk Clock, cfg Config) *Session {
	cfg.setDefaults()
	return &Session{
		role:               role,
		cfg:                cfg,
		transport:          transport,
		clk:                clk,
		log:                cfg.Logger,
		tel:                &telemetry.Counters{},
		readBuf:            wire.NewBuffer(),
		state:              Handshaking,
		aliases:            newTrackAliasTable(),
		reqIDs:             NewRequestIDAllocator(cfg.InitialMaxRequestId),
		peerMaxRequestId:   cfg.InitialMaxRequestId,
		subscriptions:      make(map[uint64]*Subscription),
		fetches:            make(map[uint64]*Fetch),
		announcements:      make(map[uint64]*Announcement),
		namespaceSubs:      make(map[uint64]*NamespaceSubscription),
		published:          make(map[string]*publishedTrack),
		byAlias:            make(map[uint64]*publishedTrack),
		trackStatusWaiters: make(map[uint64]*trackStatusWaiter),
		staging:            make(map[uint64][]object.MoqtObject),
		closed:             make(chan struct{}),
	}
}

func fullTrackNameKey(name moqtype.FullTrackName) string {
	return name.Namespace.Path() + "\x00" + string(name.Name)
}

// Connect dials a relay as a client: opens the control stream, performs
// the CLIENT_SETUP/SERVER_SETUP exchange, and returns an Established
// Session. Run must still be called to start servicing it.
func Connect(ctx context.Context, transport Transport, clk Clock, cfg Config, versions []uint64) (*Session, error) {
	s := newSession(RoleClient, transport, clk, cfg)
	ctrl, err := transport.OpenBidi(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: open control stream: %w", err)
	}
	s.control = ctrl
	if err := s.clientHandshake(ctx, versions); err != nil {
		ctrl.Close()
		return nil, err
	}
	s.mu.Lock()
	s.state = Established
	s.mu.Unlock()
	return s, nil
}

// Accept completes the server side of a handshake on a transport a
// listener has already accepted a connection for.
func Accept(ctx context.Context, transport Transport, clk Clock, cfg Config) (*Session, error) {
	s := newSession(RoleServer, transport, clk, cfg)
	ctrl, err := transport.OpenBidi(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: accept control stream: %w", err)
	}
	s.control = ctrl
	if err := s.serverHandshake(ctx); err != nil {
		ctrl.Close()
		return nil, err
	}
	s.mu.Lock()
	s.state = Established
	s.mu.Unlock()
	return s, nil
}

func (s *Session) clientHandshake(ctx context.Context, versions []uint64) error {
	if err := s.writeControl(control.ClientSetup{Versions: versions}); err != nil {
		return fmt.Errorf("session: write CLIENT_SETUP: %w", err)
	}
	msgType, msg, err := s.readControlBlocking(ctx)
	if err != nil {
		return fmt.Errorf("session: read SERVER_SETUP: %w", err)
	}
	ss, ok := msg.(control.ServerSetup)
	if msgType != control.MsgServerSetup || !ok {
		return terminate(ProtocolViolation, "expected SERVER_SETUP", nil)
	}
	offered := false
	for _, v := range versions {
		if v == ss.SelectedVersion {
			offered = true
			break
		}
	}
	if !offered {
		return terminate(VersionNegotiationFailed, fmt.Sprintf("server selected unoffered version 0x%x", ss.SelectedVersion), nil)
	}
	return nil
}

func (s *Session) serverHandshake(ctx context.Context) error {
	msgType, msg, err := s.readControlBlocking(ctx)
	if err != nil {
		return fmt.Errorf("session: read CLIENT_SETUP: %w", err)
	}
	cs, ok := msg.(control.ClientSetup)
	if msgType != control.MsgClientSetup || !ok {
		return terminate(ProtocolViolation, "expected CLIENT_SETUP", nil)
	}
	supported := false
	for _, v := range cs.Versions {
		if v == Version {
			supported = true
			break
		}
	}
	if !supported {
		return terminate(VersionNegotiationFailed, fmt.Sprintf("no overlap with client-offered versions %v", cs.Versions), nil)
	}
	return s.writeControl(control.ServerSetup{SelectedVersion: Version})
}

func (s *Session) writeControl(msg any) error {
	w := wire.NewBuffer()
	if err := control.WriteControlMsg(w, msg); err != nil {
		return err
	}
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	_, err := s.control.Write(w.Bytes())
	return err
}

// readControlBlocking reads exactly one control message, growing readBuf
// with chunks from the control stream until a full frame is available.
func (s *Session) readControlBlocking(ctx context.Context) (control.MsgType, any, error) {
	for {
		mark := s.readBuf.Checkpoint()
		msgType, msg, err := control.ReadControlMsg(s.readBuf)
		if err == nil {
			s.readBuf.Commit()
			return msgType, msg, nil
		}
		if s.readBuf.Checkpoint() != mark {
			// ReadControlMsg rewinds on an incomplete frame, so a moved
			// cursor means a whole frame was read and failed to decode.
			return 0, nil, terminate(ProtocolViolation, "malformed control message", err)
		}
		s.readBuf.Restore(mark)

		chunk := make([]byte, 4096)
		n, readErr := s.control.Read(chunk)
		if n > 0 {
			s.readBuf.WriteBytes(chunk[:n])
		}
		if readErr != nil {
			if n == 0 {
				return 0, nil, readErr
			}
		}
		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		default:
		}
	}
}

// Run services the session until ctx is cancelled, the transport closes,
// or a protocol violation forces termination: one task reads the control
// stream, another accepts incoming data streams, mirroring the teacher's
// Run/readControlLoop split (internal/distribution/moq_session.go).
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.controlLoop(ctx) })
	g.Go(func() error { return s.dataStreamAcceptLoop(ctx) })
	err := g.Wait()
	s.teardown(err)
	return err
}

func (s *Session) controlLoop(ctx context.Context) error {
	for {
		select {
		case <-s.closed:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		msgType, msg, err := s.readControlBlocking(ctx)
		if err != nil {
			return fmt.Errorf("session: control read: %w", err)
		}
		if err := s.dispatchControl(ctx, msgType, msg); err != nil {
			return err
		}
	}
}

func (s *Session) dataStreamAcceptLoop(ctx context.Context) error {
	for {
		stream, err := s.transport.AcceptUni(ctx)
		if err != nil {
			select {
			case <-s.closed:
				return nil
			default:
			}
			return fmt.Errorf("session: accept data stream: %w", err)
		}
		go s.readDataStream(ctx, stream)
	}
}

// readDataStream drains a single unidirectional stream, parsing its
// header once and then a sequence of frames, routing each resulting
// object to the matching subscription's playout buffer. A decode error
// aborts only this stream, never the session, per spec.md §7.
func (s *Session) readDataStream(ctx context.Context, stream io.ReadCloser) {
	defer stream.Close()
	buf := wire.NewBuffer()
	if err := fillFor(stream, buf, func() (any, error) { return object.ParseStreamHeader(buf, object.ForwardingSubgroup) }); err != nil {
		s.tel.IncStreamErrors()
		s.log.Debug("data stream: header decode failed", "err", err)
		return
	}
	hdr, err := object.ParseStreamHeader(buf, object.ForwardingSubgroup)
	if err != nil {
		s.tel.IncStreamErrors()
		return
	}
	buf.Commit()

	for {
		if err := fillFor(stream, buf, func() (any, error) { return object.ParseFrame(buf) }); err != nil {
			if err != io.EOF {
				s.tel.IncStreamErrors()
			}
			return
		}
		frame, err := object.ParseFrame(buf)
		if err != nil {
			s.tel.IncStreamErrors()
			return
		}
		buf.Commit()

		name, ok := s.aliases.Lookup(hdr.TrackAlias)
		if !ok {
			continue // track alias not yet resolved to a subscription; drop silently
		}
		obj, err := object.FromStreamFrame(name, hdr, frame)
		if err != nil {
			s.tel.IncStreamErrors()
			continue
		}
		s.routeObject(hdr.TrackAlias, obj)
	}
}

// fillFor keeps reading chunks from stream into buf until decode
// succeeds once (restoring buf's checkpoint between attempts) or the
// stream errors out.
func fillFor(stream io.Reader, buf *wire.Buffer, decode func() (any, error)) error {
	for {
		mark := buf.Checkpoint()
		_, err := decode()
		buf.Restore(mark)
		if err == nil {
			return nil
		}
		chunk := make([]byte, 4096)
		n, readErr := stream.Read(chunk)
		if n > 0 {
			buf.WriteBytes(chunk[:n])
			continue
		}
		if readErr != nil {
			return readErr
		}
	}
}

// routeObject delivers obj to the Active subscription for trackAlias, or
// stages it in a bounded holding area if the subscription hasn't reached
// Active yet (SubscribeOk can race the first data stream).
func (s *Session) routeObject(trackAlias uint64, obj object.MoqtObject) {
	s.mu.RLock()
	var sub *Subscription
	for _, candidate := range s.subscriptions {
		if candidate.TrackAlias() == trackAlias {
			sub = candidate
			break
		}
	}
	s.mu.RUnlock()

	if sub != nil && sub.State() == SubscriptionActive {
		sub.deliver(obj)
		return
	}

	const maxStagedPerTrack = 64
	s.stagingMu.Lock()
	defer s.stagingMu.Unlock()
	pending := s.staging[trackAlias]
	if len(pending) >= maxStagedPerTrack {
		s.tel.IncStaleDrops()
		pending = pending[1:]
	}
	s.staging[trackAlias] = append(pending, obj)
}

// drainStaged flushes any objects staged for trackAlias into sub, called
// once sub transitions to Active.
func (s *Session) drainStaged(trackAlias uint64, sub *Subscription) {
	s.stagingMu.Lock()
	pending := s.staging[trackAlias]
	delete(s.staging, trackAlias)
	s.stagingMu.Unlock()
	for _, obj := range pending {
		sub.deliver(obj)
	}
}

// State returns the session's current top-level lifecycle state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// OnGoAway registers a callback invoked when the peer sends GoAway.
func (s *Session) OnGoAway(fn func(control.GoAway)) {
	s.goAwayMu.Lock()
	defer s.goAwayMu.Unlock()
	s.goAwayHandlers = append(s.goAwayHandlers, fn)
}

// Close sends GoAway carrying newSessionURI (empty means no redirect),
// moves the session to Draining, and tears it down once cfg.GoAwayGrace
// has elapsed or ctx is done, then closes the transport.
func (s *Session) Close(ctx context.Context, newSessionURI string) error {
	_ = s.writeControl(control.GoAway{NewSessionUri: newSessionURI})
	s.mu.Lock()
	s.state = Draining
	s.mu.Unlock()
	select {
	case <-time.After(s.cfg.GoAwayGrace):
	case <-ctx.Done():
	}
	s.teardown(nil)
	return s.transport.Close()
}

func (s *Session) teardown(cause error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = Closed
		s.mu.Unlock()
		s.closeErr = cause
		close(s.closed)
		for _, sub := range s.subscriptions {
			sub.end()
		}
		for _, f := range s.fetches {
			f.end()
		}
	})
}
