package service

import (
	"context"
	"time"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// AttendanceService records daily presence marks.
type AttendanceService struct {
	attendance repository.AttendanceRepository
	now        func() time.Time
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo repository.AttendanceRepository, now func() time.Time) *AttendanceService {
	return &AttendanceService{attendance: repo, now: nowOrDefault(now)}
}

// MarkToday records the user's attendance for the current UTC day. The second
// return value is false when the day was already marked.
func (s *AttendanceService) MarkToday(ctx context.Context, userID string) (*domain.Attendance, bool, error) {
	att := &domain.Attendance{UserID: userID, Day: Today(s.now())}
	created, err := s.attendance.Mark(ctx, att)
	if err != nil {
		return nil, false, apperrors.MapError(err)
	}
	return att, created, nil
}

// List returns the user's marks, newest first.
func (s *AttendanceService) List(ctx context.Context, userID string) ([]domain.Attendance, error) {
	marks, err := s.attendance.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return marks, nil
}

// Today truncates t to midnight UTC.
func Today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
