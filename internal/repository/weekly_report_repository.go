package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// WeeklyReportRepository stores intern weekly status reports. One report per
// user and week; Create returns ErrDuplicate otherwise.
type WeeklyReportRepository interface {
	Create(ctx context.Context, report *domain.WeeklyReport) error
	List(ctx context.Context) ([]domain.WeeklyReport, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]domain.WeeklyReport, error)
}

const weeklyReportColumns = `id, user_id, employee_name, department, week_of, tasks_completed,
               tasks_next_week, self_assessment, created_at`

type weeklyReportRepository struct {
	pool *pgxpool.Pool
}

// NewWeeklyReportRepository constructs repository.
func NewWeeklyReportRepository(pool *pgxpool.Pool) WeeklyReportRepository {
	return &weeklyReportRepository{pool: pool}
}

func (r *weeklyReportRepository) Create(ctx context.Context, report *domain.WeeklyReport) error {
	const query = `
        INSERT INTO weekly_reports (user_id, employee_name, department, week_of, tasks_completed,
            tasks_next_week, self_assessment)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		report.UserID,
		report.EmployeeName,
		report.Department,
		report.WeekOf,
		report.TasksCompleted,
		report.TasksNextWeek,
		report.SelfAssessment,
	).Scan(&report.ID, &report.CreatedAt)
	return mapWriteErr(err)
}

func (r *weeklyReportRepository) List(ctx context.Context) ([]domain.WeeklyReport, error) {
	return r.fetchMany(ctx, `SELECT `+weeklyReportColumns+` FROM weekly_reports
        ORDER BY week_of DESC, created_at DESC`)
}

func (r *weeklyReportRepository) ListByUsers(ctx context.Context, userIDs []string) ([]domain.WeeklyReport, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return r.fetchMany(ctx, `SELECT `+weeklyReportColumns+` FROM weekly_reports
        WHERE user_id = ANY($1) ORDER BY week_of DESC, created_at DESC`, userIDs)
}

func (r *weeklyReportRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.WeeklyReport, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WeeklyReport
	for rows.Next() {
		var report domain.WeeklyReport
		if err := rows.Scan(
			&report.ID,
			&report.UserID,
			&report.EmployeeName,
			&report.Department,
			&report.WeekOf,
			&report.TasksCompleted,
			&report.TasksNextWeek,
			&report.SelfAssessment,
			&report.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	return result, rows.Err()
}
