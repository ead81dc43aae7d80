package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// UserRepository defines persistence access for accounts of every role.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListPendingApprovals(ctx context.Context) ([]domain.User, error)
	ListUnverified(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.User, error)
	AdjustPoints(ctx context.Context, id string, delta int) error
	SetBatch(ctx context.Context, id string, batchID *string) error
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Delete(ctx context.Context, id string) error
}

const userColumns = `id, name, email, mobile_number, password_hash, role, department, profile_picture,
               linkedin_url, total_points, batch_id, unapproved_batch_id, batch_approved, is_verified,
               start_date, end_date, created_at, updated_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, mobile_number, password_hash, role, department, profile_picture,
            linkedin_url, unapproved_batch_id, is_verified, start_date, end_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`

	err := conn(ctx, r.pool).QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.MobileNumber,
		user.PasswordHash,
		user.Role,
		user.Department,
		user.ProfilePicture,
		user.LinkedInURL,
		user.UnapprovedBatchID,
		user.IsVerified,
		user.StartDate,
		user.EndDate,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapWriteErr(err)
}

// Update writes profile and credential fields. Points and batch membership have
// their own methods.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, mobile_number=$3, password_hash=$4, role=$5, department=$6,
            profile_picture=$7, linkedin_url=$8, unapproved_batch_id=$9, is_verified=$10, end_date=$11,
            updated_at=NOW()
        WHERE id=$12`

	return expectRows(conn(ctx, r.pool).Exec(ctx, query,
		user.Name,
		user.Email,
		user.MobileNumber,
		user.PasswordHash,
		user.Role,
		user.Department,
		user.ProfilePicture,
		user.LinkedInURL,
		user.UnapprovedBatchID,
		user.IsVerified,
		user.EndDate,
		user.ID,
	))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER($1)`, email)
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.fetchMany(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.fetchMany(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[]) ORDER BY name ASC`, ids)
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.fetchMany(ctx, `SELECT `+userColumns+` FROM users WHERE role=$1 ORDER BY name ASC`, role)
}

func (r *userRepository) ListPendingApprovals(ctx context.Context) ([]domain.User, error) {
	return r.fetchMany(ctx, `SELECT `+userColumns+` FROM users
        WHERE unapproved_batch_id IS NOT NULL AND batch_approved=FALSE ORDER BY created_at ASC`)
}

func (r *userRepository) ListUnverified(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return r.fetchMany(ctx, `SELECT `+userColumns+` FROM users
        WHERE role=$1 AND is_verified=FALSE ORDER BY created_at ASC`, role)
}

func (r *userRepository) ListEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.User, error) {
	return r.fetchMany(ctx, `SELECT `+userColumns+` FROM users
        WHERE end_date IS NOT NULL AND end_date < $1 ORDER BY end_date ASC`, cutoff)
}

func (r *userRepository) AdjustPoints(ctx context.Context, id string, delta int) error {
	const query = `UPDATE users SET total_points = total_points + $1, updated_at=NOW() WHERE id=$2`
	return expectRows(conn(ctx, r.pool).Exec(ctx, query, delta, id))
}

// SetBatch records the approved batch of a user. A nil batch clears membership.
func (r *userRepository) SetBatch(ctx context.Context, id string, batchID *string) error {
	const query = `
        UPDATE users SET batch_id=$1, batch_approved=($1::uuid IS NOT NULL), unapproved_batch_id=NULL, updated_at=NOW()
        WHERE id=$2`
	return expectRows(conn(ctx, r.pool).Exec(ctx, query, batchID, id))
}

func (r *userRepository) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, name, email, department, total_points
        FROM users WHERE role='intern'
        ORDER BY total_points DESC, name ASC
        LIMIT $1`
	rows, err := conn(ctx, r.pool).Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Name, &entry.Email, &entry.Department, &entry.TotalPoints); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id=$1`, id))
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.User, error) {
	user, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.MobileNumber,
		&user.PasswordHash,
		&user.Role,
		&user.Department,
		&user.ProfilePicture,
		&user.LinkedInURL,
		&user.TotalPoints,
		&user.BatchID,
		&user.UnapprovedBatchID,
		&user.BatchApproved,
		&user.IsVerified,
		&user.StartDate,
		&user.EndDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
