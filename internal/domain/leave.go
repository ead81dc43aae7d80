package domain

import "time"

// LeaveType classifies a leave request.
type LeaveType string

const (
	LeaveSick     LeaveType = "Sick Leave"
	LeavePersonal LeaveType = "Personal Leave"
	LeaveVacation LeaveType = "Vacation"
	LeaveOther    LeaveType = "Other"
)

// Valid reports whether t is a known leave type.
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveSick, LeavePersonal, LeaveVacation, LeaveOther:
		return true
	}
	return false
}

// LeaveStatus is the decision state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

// LeaveRequest covers the calendar days StartDate..EndDate inclusive, both
// truncated to UTC midnight. InternName and InternEmail are filled on admin
// listings only.
type LeaveRequest struct {
	ID          string
	UserID      string
	Type        LeaveType
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
	Status      LeaveStatus
	DecidedBy   *string
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	InternName  string
	InternEmail string
}

// Days returns the number of calendar days requested.
func (l *LeaveRequest) Days() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}

// Overlaps reports whether any day in from..to (inclusive) falls inside the leave.
func (l *LeaveRequest) Overlaps(from, to time.Time) bool {
	return !l.StartDate.After(to) && !l.EndDate.Before(from)
}
