// Command moqt-demo is a minimal two-role conferencing demo exercising
// the moqt-go session/transport stack end to end: a server role hosts
// one published track and answers subscriptions, a client role dials in,
// subscribes, and prints every object it receives. Role, addresses, and
// the track name are all environment-configured, following the
// envOr-into-config-structs shape cmd/prism/main.go uses.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moqtail/moqt-go/certs"
	"github.com/moqtail/moqt-go/clock"
	"github.com/moqtail/moqt-go/control"
	"github.com/moqtail/moqt-go/demo/signaling"
	"github.com/moqtail/moqt-go/moqtype"
	"github.com/moqtail/moqt-go/object"
	"github.com/moqtail/moqt-go/session"
	"github.com/moqtail/moqt-go/transport"
)

// appConfig is populated from the environment once at startup, the way
// distribution.ServerConfig/MoQSessionConfig are built from envOr calls
// in cmd/prism/main.go.
type appConfig struct {
	role      string
	addr      string
	trackName string
	roomID    string
	userID    string
}

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := appConfig{
		role:      envOr("MOQT_ROLE", "server"),
		addr:      envOr("MOQT_ADDR", "127.0.0.1:4433"),
		trackName: envOr("MOQT_TRACK", "demo/room1/video"),
		roomID:    envOr("MOQT_ROOM", "room1"),
		userID:    envOr("MOQT_USER", "guest"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	var err error
	switch cfg.role {
	case "server":
		err = runServer(ctx, cfg)
	case "client":
		err = runClient(ctx, cfg)
	default:
		err = fmt.Errorf("unknown MOQT_ROLE %q (want server or client)", cfg.role)
	}
	if err != nil {
		slog.Error("moqt-demo exited with error", "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg appConfig) error {
	slog.Info("generating self-signed certificate")
	cert, err := certs.Generate(certs.Options{
		ServerName: "moqt-demo",
		Addr:       cfg.addr,
		Validity:   14 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("generate cert: %w", err)
	}
	slog.Info("certificate generated", "fingerprint", cert.FingerprintBase64(), "expires", cert.NotAfter.Format(time.RFC3339))

	hub := signaling.NewInMemory()
	trackName := moqtype.NewFullTrackName(moqtype.TuplePath(cfg.roomID), cfg.trackName)

	srv := &transport.Server{
		Addr:      cfg.addr,
		TLSConfig: &tls.Config{Certificates: []tls.Certificate{cert.TLSCert}},
		Handler: func(ctx context.Context, t session.Transport, remoteAddr string) {
			slog.Info("peer connected", "remote", remoteAddr)
			sess, err := session.Accept(ctx, t, clock.System{}, session.Config{})
			if err != nil {
				slog.Warn("handshake failed", "remote", remoteAddr, "error", err)
				return
			}

			writer := sess.OpenTrack(trackName, object.ForwardingSubgroup)
			_ = hub.Send(ctx, cfg.roomID, signaling.Message{Type: signaling.TypeTrackAlias, TrackName: cfg.trackName})

			go publishTicks(ctx, writer, trackName)

			if err := sess.Run(ctx); err != nil {
				slog.Info("session ended", "remote", remoteAddr, "error", err)
			}
		},
	}

	slog.Info("moqt-demo server listening", "addr", cfg.addr, "track", cfg.trackName)
	return srv.ListenAndServe(ctx)
}

// publishTicks pushes one object per second for as long as ctx is alive,
// standing in for a real media encoder in this demo.
func publishTicks(ctx context.Context, w *session.TrackWriter, name moqtype.FullTrackName) {
	defer w.Close()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var group uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sgID := uint64(0)
			payload := []byte(fmt.Sprintf("tick %d", group))
			obj, err := object.NewMoqtObject(name, moqtype.Location{Group: group, Object: 0}, 128, object.ForwardingSubgroup, &sgID, nil, payload)
			if err != nil {
				slog.Warn("build object failed", "error", err)
				continue
			}
			if err := w.Push(ctx, obj); err != nil {
				slog.Warn("push failed", "error", err)
				return
			}
			group++
		}
	}
}

func runClient(ctx context.Context, cfg appConfig) error {
	dialer := transport.Dialer{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	t, err := dialer.Dial(ctx, "https://"+cfg.addr+"/moqt")
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.addr, err)
	}

	sess, err := session.Connect(ctx, t, clock.System{}, session.Config{}, []uint64{session.Version})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	go func() {
		if err := sess.Run(ctx); err != nil {
			slog.Info("session ended", "error", err)
		}
	}()

	trackName := moqtype.NewFullTrackName(moqtype.TuplePath(cfg.roomID), cfg.trackName)
	sub, err := sess.Subscribe(ctx, trackName, 128, control.GroupOrderAscending)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if err := sub.Wait(ctx); err != nil {
		return fmt.Errorf("subscribe resolve: %w", err)
	}
	slog.Info("subscribed", "track", cfg.trackName)

	for {
		obj, ok, err := sub.Objects(ctx)
		if err != nil {
			return fmt.Errorf("objects: %w", err)
		}
		if !ok {
			return nil
		}
		slog.Info("received object", "group", obj.Location.Group, "object", obj.Location.Object, "payload", string(obj.Payload))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
