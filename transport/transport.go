// Package transport adapts github.com/quic-go/webtransport-go sessions to
// the session.Transport interface, so a session.Session never has to know
// it is speaking WebTransport over QUIC rather than, say, an in-memory
// pipe in a test. Dialer is the client half; Server is the listener half,
// grounded on the teacher's distribution.Server (internal/distribution
// /server.go) WebTransport upgrade path.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/quic-go/webtransport-go"

	"github.com/moqtail/moqt-go/session"
)

// Session close codes, sent via CloseWithError when this package tears
// down a WebTransport session itself rather than letting the peer's
// GoAway/teardown drive it.
const (
	errInternal      webtransport.SessionErrorCode = 1
	errSetupFailed   webtransport.SessionErrorCode = 2
	errControlStream webtransport.SessionErrorCode = 3
)

// wtTransport adapts a *webtransport.Session to session.Transport.
type wtTransport struct {
	sess *webtransport.Session
}

func (t *wtTransport) OpenBidi(ctx context.Context) (io.ReadWriteCloser, error) {
	s, err := t.sess.OpenStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("transport: open bidi stream: %w", err)
	}
	return s, nil
}

func (t *wtTransport) OpenUni(ctx context.Context) (io.WriteCloser, error) {
	s, err := t.sess.OpenUniStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("transport: open uni stream: %w", err)
	}
	return s, nil
}

func (t *wtTransport) AcceptUni(ctx context.Context) (io.ReadCloser, error) {
	s, err := t.sess.AcceptUniStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("transport: accept uni stream: %w", err)
	}
	return &receiveStreamCloser{s}, nil
}

func (t *wtTransport) Close() error {
	return t.sess.CloseWithError(0, "")
}

// receiveStreamCloser adapts webtransport.ReceiveStream (Read + CancelRead,
// no Close) to io.ReadCloser: Close cancels the read side instead of
// erroring the whole session.
type receiveStreamCloser struct {
	webtransport.ReceiveStream
}

func (r *receiveStreamCloser) Close() error {
	r.CancelRead(0)
	return nil
}

// Dialer dials a MoQT relay over WebTransport.
type Dialer struct {
	// TLSClientConfig is used as-is; set InsecureSkipVerify for relays
	// presenting a self-signed certs.CertInfo certificate.
	TLSClientConfig *tls.Config
	DialTimeout     time.Duration
}

// Dial opens a WebTransport session to urlStr (an "https://host:port/path"
// URL) and returns it wrapped as a session.Transport.
func (d Dialer) Dial(ctx context.Context, urlStr string) (session.Transport, error) {
	timeout := d.DialTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wd := webtransport.Dialer{
		TLSClientConfig: d.TLSClientConfig,
		QUICConfig: &quic.Config{
			MaxIdleTimeout: 30 * time.Second,
		},
	}
	_, sess, err := wd.Dial(dialCtx, urlStr, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", urlStr, err)
	}
	return &wtTransport{sess: sess}, nil
}

// Handler is the callback a Server invokes for every upgraded WebTransport
// session; it is expected to drive a session.Session to completion
// (typically via session.Accept followed by Session.Run).
type Handler func(ctx context.Context, t session.Transport, remoteAddr string)

// Server serves MoQT-over-WebTransport connections on a single HTTP/3
// listener, mirroring the teacher's distribution.Server.Start wiring of
// webtransport.Server over an http3.Server with a self-signed
// certs.CertInfo.
type Server struct {
	Addr      string
	TLSConfig *tls.Config
	Path      string
	Handler   Handler

	wt *webtransport.Server
}

// ListenAndServe starts the HTTP/3 WebTransport listener and blocks until
// ctx is cancelled or a fatal error occurs.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	path := s.Path
	if path == "" {
		path = "/moqt"
	}
	mux.HandleFunc(path, s.handleUpgrade)

	s.wt = &webtransport.Server{
		H3: http3.Server{
			Addr:      s.Addr,
			Handler:   mux,
			TLSConfig: s.TLSConfig,
			QUICConfig: &quic.Config{
				MaxIdleTimeout: 30 * time.Second,
			},
		},
		// Origin checks belong to a reverse proxy in front of this listener,
		// matching the teacher's own CheckOrigin stance.
		CheckOrigin: func(_ *http.Request) bool { return true },
	}

	stop := context.AfterFunc(ctx, func() { s.wt.Close() })
	defer stop()

	err := s.wt.ListenAndServe()
	if ctx.Err() != nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	sess, err := s.wt.Upgrade(w, r)
	if err != nil {
		return
	}
	if s.Handler == nil {
		sess.CloseWithError(errInternal, "no handler configured")
		return
	}
	s.Handler(r.Context(), &wtTransport{sess: sess}, r.RemoteAddr)
}
