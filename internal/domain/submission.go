package domain

import "time"

// ReviewStatus is the outcome of a submission review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "Pending"
	ReviewAccepted ReviewStatus = "Accepted"
	ReviewRejected ReviewStatus = "Rejected"
)

// SelfEvaluation values accepted on submissions.
var SelfEvaluations = []string{"", "needs_improvement", "satisfactory", "good", "excellent"}

// Submission is an intern's delivered work for a task. CreatedAt is the
// submission time compared against the task deadline.
type Submission struct {
	ID             string
	UserID         string
	TaskID         string
	Comments       string
	FileURL        string
	ImageURL       string
	Methods        string
	Results        string
	Challenges     string
	TimeSpent      string
	GithubLink     string
	ExternalLink   string
	SelfEvaluation string
	Reviewed       bool
	ReviewStatus   ReviewStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OnTime reports whether the submission was made no later than the deadline.
func (s *Submission) OnTime(deadline time.Time) bool {
	return !s.CreatedAt.After(deadline)
}

// RankDelta returns the point change applied to a submitter when a review is
// recorded. A late Social submission is always penalized, even when accepted.
func RankDelta(decision ReviewStatus, taskType TaskType, onTime bool) int {
	switch {
	case decision == ReviewAccepted && onTime:
		return 1
	case decision == ReviewRejected && taskType == TaskTypeSocial:
		return -1
	case !onTime && taskType == TaskTypeSocial:
		return -1
	default:
		return 0
	}
}
