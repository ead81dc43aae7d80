package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// AttendanceRepository stores daily attendance marks.
type AttendanceRepository interface {
	Mark(ctx context.Context, att *domain.Attendance) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Attendance, error)
	InternsWithoutMark(ctx context.Context, day time.Time) ([]string, error)
	InternsAbsentBetween(ctx context.Context, from, to time.Time) ([]string, error)
	CountByUser(ctx context.Context) (map[string]int, error)
}

type attendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository constructs repository.
func NewAttendanceRepository(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

// Mark records attendance for att.Day. It reports false, and loads the existing
// row into att, when the day was already marked.
func (r *attendanceRepository) Mark(ctx context.Context, att *domain.Attendance) (bool, error) {
	const insert = `
        INSERT INTO attendance (user_id, day) VALUES ($1,$2)
        ON CONFLICT (user_id, day) DO NOTHING
        RETURNING id, created_at`
	db := conn(ctx, r.pool)
	err := db.QueryRow(ctx, insert, att.UserID, att.Day).Scan(&att.ID, &att.CreatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	const existing = `SELECT id, created_at FROM attendance WHERE user_id=$1 AND day=$2`
	if err := db.QueryRow(ctx, existing, att.UserID, att.Day).Scan(&att.ID, &att.CreatedAt); err != nil {
		return false, err
	}
	return false, nil
}

func (r *attendanceRepository) ListByUser(ctx context.Context, userID string) ([]domain.Attendance, error) {
	const query = `
        SELECT id, user_id, day, created_at
        FROM attendance WHERE user_id=$1 ORDER BY day DESC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attendance
	for rows.Next() {
		var att domain.Attendance
		if err := rows.Scan(&att.ID, &att.UserID, &att.Day, &att.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}

func (r *attendanceRepository) InternsWithoutMark(ctx context.Context, day time.Time) ([]string, error) {
	const query = `
        SELECT u.id FROM users u
        WHERE u.role='intern' AND NOT EXISTS (
            SELECT 1 FROM attendance a WHERE a.user_id = u.id AND a.day = $1
        )
        ORDER BY u.id`
	return collectStrings(conn(ctx, r.pool).Query(ctx, query, day))
}

// InternsAbsentBetween returns interns who marked attendance at least once before
// from but on no day in from..to.
func (r *attendanceRepository) InternsAbsentBetween(ctx context.Context, from, to time.Time) ([]string, error) {
	const query = `
        SELECT u.id FROM users u
        WHERE u.role='intern'
          AND EXISTS (SELECT 1 FROM attendance a WHERE a.user_id = u.id AND a.day < $1)
          AND NOT EXISTS (
            SELECT 1 FROM attendance a WHERE a.user_id = u.id AND a.day BETWEEN $1 AND $2
          )
        ORDER BY u.id`
	return collectStrings(conn(ctx, r.pool).Query(ctx, query, from, to))
}

func (r *attendanceRepository) CountByUser(ctx context.Context) (map[string]int, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT user_id, COUNT(*) FROM attendance GROUP BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			userID string
			n      int
		)
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, err
		}
		counts[userID] = n
	}
	return counts, rows.Err()
}
