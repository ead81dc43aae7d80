package dto

import "time"

// LeaveRequest payload. Dates are YYYY-MM-DD or RFC 3339.
type LeaveRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// LeaveDecisionRequest payload.
type LeaveDecisionRequest struct {
	Status string `json:"status"`
}

// LeaveResponse is one leave application.
type LeaveResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	InternName  string     `json:"intern_name,omitempty"`
	InternEmail string     `json:"intern_email,omitempty"`
	LeaveType   string     `json:"leave_type"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date"`
	Days        int        `json:"days"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	DecidedBy   *string    `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// WeeklyReportRequest payload. WeekOf is optional.
type WeeklyReportRequest struct {
	WeekOf         string `json:"week_of"`
	TasksCompleted string `json:"tasks_completed"`
	TasksNextWeek  string `json:"tasks_next_week"`
	SelfAssessment string `json:"self_assessment"`
}

// WeeklyReportResponse is one weekly status report.
type WeeklyReportResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	EmployeeName   string    `json:"employee_name"`
	Department     string    `json:"department,omitempty"`
	WeekOf         string    `json:"week_of"`
	TasksCompleted string    `json:"tasks_completed"`
	TasksNextWeek  string    `json:"tasks_next_week"`
	SelfAssessment string    `json:"self_assessment"`
	CreatedAt      time.Time `json:"created_at"`
}

// InternSummaryResponse is one row of the intern progress report.
type InternSummaryResponse struct {
	UserID             string  `json:"user_id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Department         string  `json:"department,omitempty"`
	AttendanceDays     int     `json:"attendance_days"`
	ExpectedDays       int     `json:"expected_days"`
	AttendancePercent  float64 `json:"attendance_percent"`
	TasksTotal         int     `json:"tasks_total"`
	TasksCompleted     int     `json:"tasks_completed"`
	PerformancePercent float64 `json:"performance_percent"`
	TotalPoints        int     `json:"total_points"`
}
