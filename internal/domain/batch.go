package domain

import "time"

// Batch is a cohort of interns supervised by HR associations.
type Batch struct {
	ID             string
	Name           string
	StartDate      time.Time
	EndDate        *time.Time
	InternIDs      []string
	AssociationIDs []string
	AllTasks       int
	CompletedTasks int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasIntern reports whether internID is in the batch's intern set.
func (b *Batch) HasIntern(internID string) bool {
	for _, id := range b.InternIDs {
		if id == internID {
			return true
		}
	}
	return false
}

// Progress returns completed/all as a percentage rounded to two decimals.
func (b *Batch) Progress() float64 {
	if b.AllTasks <= 0 {
		return 0
	}
	p := float64(b.CompletedTasks) / float64(b.AllTasks) * 100
	return float64(int(p*100+0.5)) / 100
}

// TaskLink is the batch's denormalized view of a task.
type TaskLink struct {
	ID         string
	BatchID    string
	TaskID     string
	Status     TaskStatus
	AssignedTo string
	Seq        int64
}

// BatchSummary carries per-batch counts for listings.
type BatchSummary struct {
	ID           string
	Name         string
	StartDate    time.Time
	EndDate      *time.Time
	TotalInterns int
	TotalHR      int
}
