package signaling

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryJoinBroadcastsPresence(t *testing.T) {
	h := NewInMemory()
	ctx := context.Background()

	aliceCh, err := h.Join(ctx, "room1", "alice")
	if err != nil {
		t.Fatalf("Join(alice): %v", err)
	}

	bobCh, err := h.Join(ctx, "room1", "bob")
	if err != nil {
		t.Fatalf("Join(bob): %v", err)
	}

	select {
	case msg := <-aliceCh:
		if msg.Type != TypeJoin || msg.UserID != "bob" {
			t.Fatalf("alice got %+v, want bob's join", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for bob's join notification")
	}

	// bob's own join message is not delivered to himself.
	select {
	case msg := <-bobCh:
		t.Fatalf("bob unexpectedly received %+v", msg)
	default:
	}
}

func TestInMemorySendFansOutExcludingSender(t *testing.T) {
	h := NewInMemory()
	ctx := context.Background()

	aliceCh, _ := h.Join(ctx, "room1", "alice")
	bobCh, _ := h.Join(ctx, "room1", "bob")
	<-aliceCh // drain the join notification bob's Join triggered

	if err := h.Send(ctx, "room1", Message{Type: TypeTrackAlias, UserID: "bob", TrackName: "video", TrackAlias: 7}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case msg := <-aliceCh:
		if msg.TrackAlias != 7 || msg.TrackName != "video" {
			t.Fatalf("alice got %+v, want track alias message", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for track alias broadcast")
	}

	select {
	case msg := <-bobCh:
		t.Fatalf("sender unexpectedly received its own message: %+v", msg)
	default:
	}
}

func TestInMemoryLeaveClosesChannel(t *testing.T) {
	h := NewInMemory()
	ctx := context.Background()

	aliceCh, _ := h.Join(ctx, "room1", "alice")
	if err := h.Leave(ctx, "room1", "alice"); err != nil {
		t.Fatalf("Leave: %v", err)
	}

	select {
	case _, ok := <-aliceCh:
		if ok {
			t.Fatal("expected closed channel after Leave")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}
