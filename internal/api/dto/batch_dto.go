package dto

import "time"

// CreateBatchRequest payload.
type CreateBatchRequest struct {
	Name      string     `json:"name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	InternIDs []string   `json:"interns"`
	HRIDs     []string   `json:"hr"`
}

// UpdateBatchRequest payload. Absent fields are left unchanged; a present
// list replaces the current set.
type UpdateBatchRequest struct {
	Name      *string    `json:"name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	InternIDs *[]string  `json:"interns"`
	HRIDs     *[]string  `json:"hr"`
}

// AssignInternRequest payload.
type AssignInternRequest struct {
	InternID string `json:"intern_id"`
}

// BatchResponse is the public view of a batch.
type BatchResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	InternIDs      []string   `json:"interns"`
	AssociationIDs []string   `json:"hr_associations"`
	AllTasks       int        `json:"all_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	Progress       float64    `json:"progress"`
}

// BatchDetailResponse adds teams and task links.
type BatchDetailResponse struct {
	BatchResponse
	Teams     []TeamResponse     `json:"teams"`
	TaskLinks []TaskLinkResponse `json:"tasks"`
}

// BatchSummaryResponse is one row of the batch listing.
type BatchSummaryResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	TotalInterns int        `json:"total_interns"`
	TotalHR      int        `json:"total_hr"`
}

// TaskLinkResponse is the batch view of a task.
type TaskLinkResponse struct {
	TaskID     string `json:"task_id"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
}

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"members"`
}

// RenameTeamRequest payload.
type RenameTeamRequest struct {
	Name string `json:"name"`
}

// TeamMembersRequest payload.
type TeamMembersRequest struct {
	MemberIDs []string `json:"members"`
}

// MoveMemberRequest payload.
type MoveMemberRequest struct {
	FromTeamID string `json:"from_team_id"`
	ToTeamID   string `json:"to_team_id"`
	UserID     string `json:"user_id"`
}

// TeamResponse is the public view of a team.
type TeamResponse struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batch_id"`
	Name      string    `json:"name"`
	MemberIDs []string  `json:"members"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignHRRequest payload. HRID defaults to the caller for HR users.
type AssignHRRequest struct {
	HRID     string `json:"hr_id"`
	InternID string `json:"intern_id"`
}

// AssignmentStatusRequest asks for the status of several interns.
type AssignmentStatusRequest struct {
	InternIDs []string `json:"intern_ids"`
}

// AssociationResponse is the public view of an HR association.
type AssociationResponse struct {
	ID        string   `json:"id"`
	HRID      string   `json:"hr_id"`
	InternIDs []string `json:"interns"`
}

// AssignmentStatusResponse tells whether an intern has an HR.
type AssignmentStatusResponse struct {
	InternID string  `json:"intern_id"`
	Assigned bool    `json:"assigned"`
	HRID     *string `json:"hr_id,omitempty"`
}
