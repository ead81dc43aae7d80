package dto

import "time"

// CreateTaskRequest payload.
type CreateTaskRequest struct {
	AssignedTo  string    `json:"assigned_to"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TaskType    string    `json:"task_type"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// UpdateTaskRequest payload. Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	TaskType    *string    `json:"task_type"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// SubmitTaskRequest payload.
type SubmitTaskRequest struct {
	Comments       string `json:"comments"`
	FileURL        string `json:"file_url"`
	ImageURL       string `json:"image_url"`
	Methods        string `json:"methods"`
	Results        string `json:"results"`
	Challenges     string `json:"challenges"`
	TimeSpent      string `json:"time_spent"`
	GithubLink     string `json:"github_link"`
	ExternalLink   string `json:"external_link"`
	SelfEvaluation string `json:"self_evaluation"`
}

// ReviewRequest payload.
type ReviewRequest struct {
	UserID   string `json:"user_id"`
	Decision string `json:"decision"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID             string    `json:"id"`
	AssignedTo     string    `json:"assigned_to"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	TaskType       string    `json:"task_type"`
	Status         string    `json:"status"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	PenaltyApplied bool      `json:"penalty_applied"`
	CreatedAt      time.Time `json:"created_at"`
}

// SubmissionResponse is the public view of a submission.
type SubmissionResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	TaskID         string    `json:"task_id"`
	Comments       string    `json:"comments"`
	FileURL        string    `json:"file_url,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	Methods        string    `json:"methods,omitempty"`
	Results        string    `json:"results,omitempty"`
	Challenges     string    `json:"challenges,omitempty"`
	TimeSpent      string    `json:"time_spent,omitempty"`
	GithubLink     string    `json:"github_link,omitempty"`
	ExternalLink   string    `json:"external_link,omitempty"`
	SelfEvaluation string    `json:"self_evaluation,omitempty"`
	Reviewed       bool      `json:"reviewed"`
	ReviewStatus   string    `json:"review_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReviewResponse reports the effect of a review.
type ReviewResponse struct {
	Submission SubmissionResponse `json:"submission"`
	TaskStatus string             `json:"task_status"`
	Delta      int                `json:"delta"`
	OnTime     bool               `json:"on_time"`
}
