package domain

import "time"

// Team is a named subset of a batch's interns.
type Team struct {
	ID        string
	BatchID   string
	Name      string
	MemberIDs []string
	CreatedBy string
	Seq       int64
	CreatedAt time.Time
}

// HasMember reports whether userID is on the team.
func (t *Team) HasMember(userID string) bool {
	for _, id := range t.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
