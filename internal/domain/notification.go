package domain

import "time"

// Notification types used by the service.
const (
	NotificationInfo     = "Info"
	NotificationWarning  = "Warning"
	NotificationReminder = "Reminder"
	NotificationTask     = "Task"
	NotificationTicket   = "Ticket"
)

// Notification is an inbox entry for a user.
type Notification struct {
	ID        string
	UserID    string
	TaskID    *string
	Message   string
	Type      string
	IsRead    bool
	CreatedAt time.Time
}
