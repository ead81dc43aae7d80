package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketMessageAdded  EventType = "ticket_message_added"

	EventTaskAssigned        EventType = "task_assigned"
	EventSubmissionCreated   EventType = "submission_created"
	EventSubmissionReviewed  EventType = "submission_reviewed"
	EventInternAssignedBatch EventType = "intern_assigned_batch"
	EventInternAssignedHR    EventType = "intern_assigned_hr"
	EventBatchApproval       EventType = "batch_approval_decided"
	EventDirectMessageSent   EventType = "direct_message_sent"
	EventLeaveDecided        EventType = "leave_decided"
)

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New builds an event with a fresh id.
func New(eventType EventType, subjectID string, actorID *string, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: at,
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CreatedBy string `json:"created_by"`
	Title     string `json:"title"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	CreatedBy  string `json:"created_by"`
	AssigneeID string `json:"assignee_id"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	CreatedBy string              `json:"created_by"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	Message domain.TicketMessage `json:"message"`
}

// TaskAssignedPayload payload.
type TaskAssignedPayload struct {
	AssignedTo string    `json:"assigned_to"`
	Title      string    `json:"title"`
	EndDate    time.Time `json:"end_date"`
}

// SubmissionCreatedPayload payload.
type SubmissionCreatedPayload struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
}

// SubmissionReviewedPayload payload.
type SubmissionReviewedPayload struct {
	UserID   string              `json:"user_id"`
	TaskID   string              `json:"task_id"`
	Title    string              `json:"title"`
	Decision domain.ReviewStatus `json:"decision"`
	Delta    int                 `json:"delta"`
}

// InternAssignedBatchPayload payload.
type InternAssignedBatchPayload struct {
	InternID  string `json:"intern_id"`
	BatchName string `json:"batch_name"`
}

// InternAssignedHRPayload payload.
type InternAssignedHRPayload struct {
	InternID string `json:"intern_id"`
	HRID     string `json:"hr_id"`
}

// BatchApprovalPayload payload.
type BatchApprovalPayload struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Approved bool   `json:"approved"`
}

// DirectMessageSentPayload payload.
type DirectMessageSentPayload struct {
	Message domain.DirectMessage `json:"message"`
}

// LeaveDecidedPayload payload.
type LeaveDecidedPayload struct {
	UserID    string             `json:"user_id"`
	LeaveID   string             `json:"leave_id"`
	Status    domain.LeaveStatus `json:"status"`
	DecidedBy string             `json:"decided_by"`
}
