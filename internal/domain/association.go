package domain

import "time"

// MaxInternsPerHR is the default association capacity.
const MaxInternsPerHR = 20

// HRAssociation maps one HR user to the interns they manage. An intern appears in
// at most one association.
type HRAssociation struct {
	ID        string
	HRID      string
	InternIDs []string
	CreatedAt time.Time
}
