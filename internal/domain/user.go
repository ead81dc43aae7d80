package domain

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleIntern Role = "intern"
	RoleHR     Role = "hr"
	RoleHRHead Role = "hrHead"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleIntern, RoleHR, RoleHRHead:
		return true
	}
	return false
}

// IsHR is true for HR staff and their head.
func (r Role) IsHR() bool {
	return r == RoleHR || r == RoleHRHead
}

// User is an account of any role. TotalPoints is changed only by task review.
type User struct {
	ID                string
	Name              string
	Email             string
	MobileNumber      string
	PasswordHash      string
	Role              Role
	Department        string
	ProfilePicture    string
	LinkedInURL       string
	TotalPoints       int
	BatchID           *string
	UnapprovedBatchID *string
	BatchApproved     bool
	IsVerified        bool
	StartDate         time.Time
	EndDate           *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LeaderboardEntry is a user ranked by points.
type LeaderboardEntry struct {
	UserID      string
	Name        string
	Email       string
	Department  string
	TotalPoints int
}
