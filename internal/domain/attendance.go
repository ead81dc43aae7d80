package domain

import "time"

// Attendance is a user's mark for one calendar day (UTC).
type Attendance struct {
	ID        string
	UserID    string
	Day       time.Time
	CreatedAt time.Time
}
