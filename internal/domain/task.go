package domain

import "time"

// TaskType classifies tasks for point rules.
type TaskType string

const (
	TaskTypeTechnical TaskType = "Technical"
	TaskTypeSocial    TaskType = "Social"
)

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	return t == TaskTypeTechnical || t == TaskTypeSocial
}

// TaskStatus is the task lifecycle.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is work assigned to one user. EndDate is the deadline. PenaltyApplied
// is set once a review took points away for it.
type Task struct {
	ID             string
	AssignedTo     string
	Title          string
	Description    string
	Type           TaskType
	Status         TaskStatus
	StartDate      time.Time
	EndDate        time.Time
	PenaltyApplied bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
