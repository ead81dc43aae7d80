package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// LeaveRepository stores intern leave requests.
type LeaveRepository interface {
	Create(ctx context.Context, leave *domain.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.LeaveRequest, error)
	ListByUser(ctx context.Context, userID string) ([]domain.LeaveRequest, error)
	ListAll(ctx context.Context, status *domain.LeaveStatus) ([]domain.LeaveRequest, error)
	HasOverlap(ctx context.Context, userID string, from, to time.Time) (bool, error)
	Decide(ctx context.Context, id string, status domain.LeaveStatus, decidedBy string) error
	ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]domain.LeaveRequest, error)
}

const leaveColumns = `l.id, l.user_id, l.leave_type, l.start_date, l.end_date, l.reason, l.status,
               l.decided_by, l.decided_at, l.created_at, l.updated_at`

type leaveRepository struct {
	pool *pgxpool.Pool
}

// NewLeaveRepository constructs repository.
func NewLeaveRepository(pool *pgxpool.Pool) LeaveRepository {
	return &leaveRepository{pool: pool}
}

func (r *leaveRepository) Create(ctx context.Context, leave *domain.LeaveRequest) error {
	const query = `
        INSERT INTO leave_requests (user_id, leave_type, start_date, end_date, reason, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		leave.UserID,
		leave.Type,
		leave.StartDate,
		leave.EndDate,
		leave.Reason,
		leave.Status,
	).Scan(&leave.ID, &leave.CreatedAt, &leave.UpdatedAt)
	return mapWriteErr(err)
}

func (r *leaveRepository) GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	return r.fetchSingle(ctx, `SELECT `+leaveColumns+` FROM leave_requests l WHERE l.id=$1`, id)
}

func (r *leaveRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	return r.fetchSingle(ctx, `SELECT `+leaveColumns+` FROM leave_requests l WHERE l.id=$1 FOR UPDATE`, id)
}

func (r *leaveRepository) ListByUser(ctx context.Context, userID string) ([]domain.LeaveRequest, error) {
	const query = `SELECT ` + leaveColumns + `, '', ''
        FROM leave_requests l WHERE l.user_id=$1 ORDER BY l.created_at DESC`
	return r.fetchMany(ctx, query, userID)
}

// ListAll returns requests with the intern's name and email, newest first.
func (r *leaveRepository) ListAll(ctx context.Context, status *domain.LeaveStatus) ([]domain.LeaveRequest, error) {
	const query = `SELECT ` + leaveColumns + `, u.name, u.email
        FROM leave_requests l JOIN users u ON u.id = l.user_id
        WHERE ($1::text IS NULL OR l.status = $1)
        ORDER BY l.created_at DESC`
	return r.fetchMany(ctx, query, status)
}

// HasOverlap reports whether userID already has a pending or approved request
// touching from..to.
func (r *leaveRepository) HasOverlap(ctx context.Context, userID string, from, to time.Time) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM leave_requests
            WHERE user_id=$1 AND status IN ('Pending','Approved')
              AND start_date <= $3 AND end_date >= $2
        )`
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, query, userID, from, to).Scan(&exists)
	return exists, err
}

func (r *leaveRepository) Decide(ctx context.Context, id string, status domain.LeaveStatus, decidedBy string) error {
	const query = `
        UPDATE leave_requests SET status=$1, decided_by=$2, decided_at=NOW(), updated_at=NOW()
        WHERE id=$3`
	return expectRows(conn(ctx, r.pool).Exec(ctx, query, status, decidedBy, id))
}

func (r *leaveRepository) ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]domain.LeaveRequest, error) {
	const query = `SELECT ` + leaveColumns + `, '', ''
        FROM leave_requests l
        WHERE l.status='Approved' AND l.start_date <= $2 AND l.end_date >= $1
        ORDER BY l.start_date ASC`
	return r.fetchMany(ctx, query, from, to)
}

func (r *leaveRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.LeaveRequest, error) {
	var leave domain.LeaveRequest
	if err := conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(leaveFields(&leave)...); err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *leaveRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.LeaveRequest, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LeaveRequest
	for rows.Next() {
		var leave domain.LeaveRequest
		if err := scanLeaveWithIntern(rows, &leave); err != nil {
			return nil, err
		}
		result = append(result, leave)
	}
	return result, rows.Err()
}

func leaveFields(leave *domain.LeaveRequest) []any {
	return []any{
		&leave.ID,
		&leave.UserID,
		&leave.Type,
		&leave.StartDate,
		&leave.EndDate,
		&leave.Reason,
		&leave.Status,
		&leave.DecidedBy,
		&leave.DecidedAt,
		&leave.CreatedAt,
		&leave.UpdatedAt,
	}
}

func scanLeaveWithIntern(row pgx.Row, leave *domain.LeaveRequest) error {
	return row.Scan(append(leaveFields(leave), &leave.InternName, &leave.InternEmail)...)
}
