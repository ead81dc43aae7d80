package domain

import "time"

// TicketHistory is an immutable audit trail entry. ActorID is nil for system actions.
type TicketHistory struct {
	ID        string
	TicketID  string
	Action    string
	ActorID   *string
	Seq       int64
	CreatedAt time.Time
}
