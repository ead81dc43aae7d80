package dto

import "time"

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	Status string `json:"status"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Text string `json:"text"`
}

// TicketSummary response.
type TicketSummary struct {
	ID                       string     `json:"id"`
	Title                    string     `json:"title"`
	Description              string     `json:"description"`
	Status                   string     `json:"status"`
	CreatedBy                string     `json:"created_by"`
	AssignedTo               *string    `json:"assigned_to"`
	PendingConfirmationSince *time.Time `json:"pending_confirmation_since,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Messages []TicketMessageResponse `json:"messages"`
	History  []TicketHistoryResponse `json:"history"`
}

// TicketMessageResponse represents a thread message.
type TicketMessageResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	Action    string    `json:"action"`
	ActorID   *string   `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AssigneeRankResponse is one row of the closed-ticket ranking.
type AssigneeRankResponse struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ClosedCount int    `json:"closed_count"`
}
