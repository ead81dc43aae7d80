package domain

import "time"

// DirectMessage is a one-to-one chat message.
type DirectMessage struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	Seen       bool
	SeenAt     *time.Time
	CreatedAt  time.Time
}
