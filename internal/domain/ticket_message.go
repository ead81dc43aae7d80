package domain

import "time"

// TicketMessage is one chat line in a ticket thread.
type TicketMessage struct {
	ID        string
	TicketID  string
	SenderID  string
	Text      string
	Seen      bool
	Seq       int64
	CreatedAt time.Time
}
