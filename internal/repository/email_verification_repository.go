package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// EmailVerificationRepository keeps at most one outstanding signup code per user.
type EmailVerificationRepository interface {
	Upsert(ctx context.Context, v *domain.EmailVerification) error
	GetByUser(ctx context.Context, userID string) (*domain.EmailVerification, error)
	Delete(ctx context.Context, userID string) error
}

type emailVerificationRepository struct {
	pool *pgxpool.Pool
}

// NewEmailVerificationRepository constructs repository.
func NewEmailVerificationRepository(pool *pgxpool.Pool) EmailVerificationRepository {
	return &emailVerificationRepository{pool: pool}
}

// Upsert replaces any earlier code for the user.
func (r *emailVerificationRepository) Upsert(ctx context.Context, v *domain.EmailVerification) error {
	const query = `
        INSERT INTO email_verifications (user_id, code_hash, expires_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id) DO UPDATE
            SET code_hash=EXCLUDED.code_hash, expires_at=EXCLUDED.expires_at, created_at=NOW()
        RETURNING created_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, v.UserID, v.CodeHash, v.ExpiresAt).Scan(&v.CreatedAt)
	return mapWriteErr(err)
}

func (r *emailVerificationRepository) GetByUser(ctx context.Context, userID string) (*domain.EmailVerification, error) {
	const query = `
        SELECT user_id, code_hash, expires_at, created_at
        FROM email_verifications WHERE user_id=$1`
	var v domain.EmailVerification
	if err := conn(ctx, r.pool).QueryRow(ctx, query, userID).Scan(
		&v.UserID,
		&v.CodeHash,
		&v.ExpiresAt,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *emailVerificationRepository) Delete(ctx context.Context, userID string) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx, `DELETE FROM email_verifications WHERE user_id=$1`, userID))
}
