package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// SubmissionRepository stores task submissions. At most one row exists per
// (user, task); Create returns ErrDuplicate otherwise.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByUserAndTask(ctx context.Context, userID, taskID string) (*domain.Submission, error)
	GetByUserAndTaskForUpdate(ctx context.Context, userID, taskID string) (*domain.Submission, error)
	MarkReviewed(ctx context.Context, id string, status domain.ReviewStatus) error
	DeleteByTask(ctx context.Context, taskID string) (int64, error)
	List(ctx context.Context) ([]domain.Submission, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]domain.Submission, error)
}

const submissionColumns = `id, user_id, task_id, comments, file_url, image_url, methods, results, challenges,
               time_spent, github_link, external_link, self_evaluation, reviewed, review_status,
               created_at, updated_at`

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository constructs repository.
func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

func (r *submissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	const query = `
        INSERT INTO task_submissions (user_id, task_id, comments, file_url, image_url, methods, results,
            challenges, time_spent, github_link, external_link, self_evaluation, review_status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        RETURNING id, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		sub.UserID,
		sub.TaskID,
		sub.Comments,
		sub.FileURL,
		sub.ImageURL,
		sub.Methods,
		sub.Results,
		sub.Challenges,
		sub.TimeSpent,
		sub.GithubLink,
		sub.ExternalLink,
		sub.SelfEvaluation,
		sub.ReviewStatus,
		sub.CreatedAt,
	).Scan(&sub.ID, &sub.UpdatedAt)
	return mapWriteErr(err)
}

func (r *submissionRepository) GetByUserAndTask(ctx context.Context, userID, taskID string) (*domain.Submission, error) {
	return scanSubmission(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM task_submissions WHERE user_id=$1 AND task_id=$2`, userID, taskID))
}

func (r *submissionRepository) GetByUserAndTaskForUpdate(ctx context.Context, userID, taskID string) (*domain.Submission, error) {
	return scanSubmission(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM task_submissions WHERE user_id=$1 AND task_id=$2 FOR UPDATE`, userID, taskID))
}

func (r *submissionRepository) MarkReviewed(ctx context.Context, id string, status domain.ReviewStatus) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx,
		`UPDATE task_submissions SET reviewed=TRUE, review_status=$1, updated_at=NOW() WHERE id=$2`, status, id))
}

func (r *submissionRepository) DeleteByTask(ctx context.Context, taskID string) (int64, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM task_submissions WHERE task_id=$1`, taskID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *submissionRepository) List(ctx context.Context) ([]domain.Submission, error) {
	return r.fetchMany(ctx, `SELECT `+submissionColumns+` FROM task_submissions ORDER BY created_at DESC`)
}

func (r *submissionRepository) ListByUsers(ctx context.Context, userIDs []string) ([]domain.Submission, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return r.fetchMany(ctx, `SELECT `+submissionColumns+` FROM task_submissions
        WHERE user_id = ANY($1::uuid[]) ORDER BY created_at DESC`, userIDs)
}

func (r *submissionRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Submission, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sub)
	}
	return result, rows.Err()
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var sub domain.Submission
	if err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.TaskID,
		&sub.Comments,
		&sub.FileURL,
		&sub.ImageURL,
		&sub.Methods,
		&sub.Results,
		&sub.Challenges,
		&sub.TimeSpent,
		&sub.GithubLink,
		&sub.ExternalLink,
		&sub.SelfEvaluation,
		&sub.Reviewed,
		&sub.ReviewStatus,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}
