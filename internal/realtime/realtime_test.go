package realtime

import (
	"context"
	"testing"
)

func TestRoomForPair_IsOrderIndependent(t *testing.T) {
	ab := RoomForPair("b7", "a3")
	ba := RoomForPair("a3", "b7")
	if ab != ba {
		t.Fatalf("expected same room, got %q and %q", ab, ba)
	}
	if ab != "a3-b7" {
		t.Fatalf("unexpected room %q", ab)
	}
}

func TestRoomNames(t *testing.T) {
	if got := RoomForTicket("42"); got != "ticket_42" {
		t.Fatalf("unexpected ticket room %q", got)
	}
	if got := RoomForUser("u1"); got != "user_u1" {
		t.Fatalf("unexpected user room %q", got)
	}
	if got := Channel("irms", "ticket_42"); got != "irms:ticket_42" {
		t.Fatalf("unexpected channel %q", got)
	}
	if got := Channel("", "a-b"); got != "a-b" {
		t.Fatalf("unexpected channel %q", got)
	}
}

func TestNopPublisher(t *testing.T) {
	if err := NewNopPublisher().Publish(context.Background(), "a-b", EventNewMessage, nil); err != nil {
		t.Fatalf("nop publish returned %v", err)
	}
}
