package dto

import "time"

// NotifyRequest sends one notification to a user.
type NotifyRequest struct {
	UserID  string  `json:"user_id"`
	TaskID  *string `json:"task_id"`
	Message string  `json:"message"`
	Type    string  `json:"type"`
}

// BroadcastRequest payload.
type BroadcastRequest struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NotificationResponse is one inbox entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	TaskID    *string   `json:"task_id,omitempty"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageRequest payload.
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// DirectMessageResponse is one chat line.
type DirectMessageResponse struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	Content    string     `json:"content"`
	Seen       bool       `json:"seen"`
	SeenAt     *time.Time `json:"seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AttendanceResponse is one attendance mark.
type AttendanceResponse struct {
	ID        string    `json:"id"`
	Day       string    `json:"day"`
	CreatedAt time.Time `json:"created_at"`
}
