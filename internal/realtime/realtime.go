// Package realtime pushes live events to connected clients through Redis
// pub/sub. Delivery is at-most-once: a publish with no subscriber is lost.
package realtime

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event names understood by clients.
const (
	EventNewMessage       = "newMessage"
	EventNewTicketMessage = "newTicketMessage"
	EventNotification     = "notification"
)

// Publisher delivers an event to every subscriber of a room.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload any) error
}

// Envelope is the JSON document written to the channel.
type Envelope struct {
	Event   string    `json:"event"`
	Room    string    `json:"room"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sent_at"`
}

// RoomForPair returns the direct chat room shared by two users. The ids are
// sorted so both sides compute the same name.
func RoomForPair(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "-")
}

// RoomForTicket returns the room of a ticket thread.
func RoomForTicket(ticketID string) string {
	return "ticket_" + ticketID
}

// RoomForUser returns the personal room used for notifications.
func RoomForUser(userID string) string {
	return "user_" + userID
}

type redisPublisher struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisPublisher publishes envelopes on "<prefix>:<room>".
func NewRedisPublisher(client *redis.Client, prefix string) Publisher {
	return &redisPublisher{client: client, prefix: prefix, now: time.Now}
}

func (p *redisPublisher) Publish(ctx context.Context, room, event string, payload any) error {
	body, err := json.Marshal(Envelope{
		Event:   event,
		Room:    room,
		Payload: payload,
		SentAt:  p.now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Channel(p.prefix, room), body).Err()
}

// Channel returns the Redis channel name for a room.
func Channel(prefix, room string) string {
	if prefix == "" {
		return room
	}
	return prefix + ":" + room
}

type nopPublisher struct{}

// NewNopPublisher discards every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, string, any) error { return nil }
