package domain

import "time"

// WeeklyReport is an intern's self-reported status for the week of WeekOf.
// EmployeeName and Department are copied from the account at submission.
type WeeklyReport struct {
	ID             string
	UserID         string
	EmployeeName   string
	Department     string
	WeekOf         time.Time
	TasksCompleted string
	TasksNextWeek  string
	SelfAssessment string
	CreatedAt      time.Time
}

// InternSummary is one row of the intern progress export.
type InternSummary struct {
	UserID             string
	Name               string
	Email              string
	Department         string
	AttendanceDays     int
	ExpectedDays       int
	AttendancePercent  float64
	TasksTotal         int
	TasksCompleted     int
	PerformancePercent float64
	TotalPoints        int
}
