package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen                TicketStatus = "Open"
	TicketStatusInProgress          TicketStatus = "In Progress"
	TicketStatusPendingConfirmation TicketStatus = "Pending Confirmation"
	TicketStatusClosed              TicketStatus = "Closed"
)

// TicketStatuses lists every accepted status value.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusPendingConfirmation,
	TicketStatusClosed,
}

// Valid reports whether s is an accepted status.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                       string
	Title                    string
	Description              string
	CreatedBy                string
	AssignedTo               *string
	Status                   TicketStatus
	PendingConfirmationSince *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// IsParticipant reports whether userID is the creator or the current assignee.
func (t *Ticket) IsParticipant(userID string) bool {
	if t.CreatedBy == userID {
		return true
	}
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// AssigneeRank is one row of the closed-ticket ranking.
type AssigneeRank struct {
	UserID      string
	Name        string
	Email       string
	ClosedCount int
}
