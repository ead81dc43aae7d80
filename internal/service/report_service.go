package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
	"github.com/codebyviral/irms-backend/internal/sanitize"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// ReportService collects weekly status reports and builds progress summaries.
type ReportService struct {
	reports      repository.WeeklyReportRepository
	users        repository.UserRepository
	associations repository.AssociationRepository
	tasks        repository.TaskRepository
	attendance   repository.AttendanceRepository
	logger       *zap.Logger
	now          func() time.Time
}

// ReportDependencies wires the report service.
type ReportDependencies struct {
	WeeklyReportRepo repository.WeeklyReportRepository
	UserRepo         repository.UserRepository
	AssociationRepo  repository.AssociationRepository
	TaskRepo         repository.TaskRepository
	AttendanceRepo   repository.AttendanceRepository
	Logger           *zap.Logger
	Now              func() time.Time
}

// WeeklyReportInput is an intern's status for one week. A zero WeekOf means
// the current week.
type WeeklyReportInput struct {
	WeekOf         time.Time
	TasksCompleted string
	TasksNextWeek  string
	SelfAssessment string
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:      deps.WeeklyReportRepo,
		users:        deps.UserRepo,
		associations: deps.AssociationRepo,
		tasks:        deps.TaskRepo,
		attendance:   deps.AttendanceRepo,
		logger:       loggerOrNop(deps.Logger),
		now:          nowOrDefault(deps.Now),
	}
}

// SubmitWeekly stores the user's report for the week containing input.WeekOf.
// Name and department are taken from the account.
func (s *ReportService) SubmitWeekly(ctx context.Context, userID string, input WeeklyReportInput) (*domain.WeeklyReport, error) {
	report := &domain.WeeklyReport{
		UserID:         userID,
		TasksCompleted: sanitize.PlainText(input.TasksCompleted),
		TasksNextWeek:  sanitize.PlainText(input.TasksNextWeek),
		SelfAssessment: sanitize.PlainText(input.SelfAssessment),
	}
	var missing []string
	if report.TasksCompleted == "" {
		missing = append(missing, "tasks_completed")
	}
	if report.TasksNextWeek == "" {
		missing = append(missing, "tasks_next_week")
	}
	if report.SelfAssessment == "" {
		missing = append(missing, "self_assessment")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": userID})
	}
	weekOf := input.WeekOf
	if weekOf.IsZero() {
		weekOf = s.now()
	}
	report.WeekOf = WeekStart(weekOf)
	report.EmployeeName = user.Name
	report.Department = user.Department

	if err := s.reports.Create(ctx, report); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.NewConflict("report already submitted for this week", map[string]any{"week_of": report.WeekOf})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("weekly report submitted", zap.String("report_id", report.ID), zap.String("user_id", userID))
	return report, nil
}

// ListWeekly returns every report, latest week first.
func (s *ReportService) ListWeekly(ctx context.Context) ([]domain.WeeklyReport, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reports, nil
}

// WeeklyForUser returns one user's reports. Interns may only read their own.
func (s *ReportService) WeeklyForUser(ctx context.Context, viewer Actor, userID string) ([]domain.WeeklyReport, error) {
	if viewer.ID != userID && !viewer.IsStaff() {
		return nil, apperrors.NewForbidden("cannot read another user's reports")
	}
	reports, err := s.reports.ListByUsers(ctx, []string{userID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reports, nil
}

// HRProgress returns the weekly reports of the interns associated with hrID.
func (s *ReportService) HRProgress(ctx context.Context, hrID string) ([]domain.WeeklyReport, error) {
	assoc, err := s.associations.GetByHR(ctx, hrID)
	if err != nil {
		return nil, notFoundOr(err, "association", map[string]any{"hr_id": hrID})
	}
	reports, err := s.reports.ListByUsers(ctx, assoc.InternIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reports, nil
}

// InternSummaries computes attendance and task completion for every intern,
// ordered by name. Expected days run from the start date to today or the end
// date, whichever is earlier.
func (s *ReportService) InternSummaries(ctx context.Context) ([]domain.InternSummary, error) {
	interns, err := s.users.ListByRole(ctx, domain.RoleIntern)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	attended, err := s.attendance.CountByUser(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tasks, err := s.tasks.List(ctx, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	type taskCount struct{ total, completed int }
	perUser := make(map[string]*taskCount)
	for _, task := range tasks {
		c, ok := perUser[task.AssignedTo]
		if !ok {
			c = &taskCount{}
			perUser[task.AssignedTo] = c
		}
		c.total++
		if task.Status == domain.TaskStatusCompleted {
			c.completed++
		}
	}

	today := Today(s.now())
	out := make([]domain.InternSummary, 0, len(interns))
	for _, u := range interns {
		last := today
		if u.EndDate != nil && u.EndDate.Before(last) {
			last = Today(*u.EndDate)
		}
		expected := int(last.Sub(Today(u.StartDate)).Hours()/24) + 1
		if expected < 1 {
			expected = 1
		}
		row := domain.InternSummary{
			UserID:         u.ID,
			Name:           u.Name,
			Email:          u.Email,
			Department:     u.Department,
			AttendanceDays: attended[u.ID],
			ExpectedDays:   expected,
			TotalPoints:    u.TotalPoints,
		}
		row.AttendancePercent = percent(row.AttendanceDays, expected)
		if c := perUser[u.ID]; c != nil {
			row.TasksTotal, row.TasksCompleted = c.total, c.completed
			row.PerformancePercent = percent(c.completed, c.total)
		}
		out = append(out, row)
	}
	return out, nil
}

// WeekStart returns the Monday (UTC) of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := Today(t)
	return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
}

// percent is part/whole as a percentage rounded to two decimals, capped at 100.
func percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	p := math.Round(float64(part)*10000/float64(whole)) / 100
	return math.Min(p, 100)
}
