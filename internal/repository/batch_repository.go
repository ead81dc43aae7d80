package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// BatchRepository manages batches, their intern and HR sets and the
// denormalized task links with their counters.
type BatchRepository interface {
	Create(ctx context.Context, batch *domain.Batch) error
	Update(ctx context.Context, batch *domain.Batch) error
	GetByID(ctx context.Context, id string) (*domain.Batch, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Batch, error)
	List(ctx context.Context) ([]domain.BatchSummary, error)
	ListIDsByAssociation(ctx context.Context, associationID string) ([]string, error)
	Delete(ctx context.Context, id string) error

	AddIntern(ctx context.Context, batchID, internID string) error
	RemoveIntern(ctx context.Context, batchID, internID string) error
	RemoveInternFromOtherBatches(ctx context.Context, internID, keepBatchID string) ([]string, error)
	SetAssociations(ctx context.Context, batchID string, associationIDs []string) error

	AddTaskLink(ctx context.Context, link *domain.TaskLink) error
	GetTaskLinkByTask(ctx context.Context, taskID string) (*domain.TaskLink, error)
	ListTaskLinks(ctx context.Context, batchID string) ([]domain.TaskLink, error)
	ListTaskLinksByAssignee(ctx context.Context, userID string) ([]domain.TaskLink, error)
	SetTaskLinkStatus(ctx context.Context, taskID string, status domain.TaskStatus) error
	AdjustCounters(ctx context.Context, batchID string, allDelta, completedDelta int) error
}

type batchRepository struct {
	pool *pgxpool.Pool
}

// NewBatchRepository constructs repository.
func NewBatchRepository(pool *pgxpool.Pool) BatchRepository {
	return &batchRepository{pool: pool}
}

func (r *batchRepository) Create(ctx context.Context, batch *domain.Batch) error {
	const query = `
        INSERT INTO batches (name, start_date, end_date)
        VALUES ($1,$2,$3)
        RETURNING id, all_tasks, completed_tasks, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		batch.Name,
		batch.StartDate,
		batch.EndDate,
	).Scan(&batch.ID, &batch.AllTasks, &batch.CompletedTasks, &batch.CreatedAt, &batch.UpdatedAt)
	return mapWriteErr(err)
}

func (r *batchRepository) Update(ctx context.Context, batch *domain.Batch) error {
	const query = `
        UPDATE batches SET name=$1, start_date=$2, end_date=$3, updated_at=NOW()
        WHERE id=$4`
	return expectRows(conn(ctx, r.pool).Exec(ctx, query, batch.Name, batch.StartDate, batch.EndDate, batch.ID))
}

func (r *batchRepository) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	return r.fetch(ctx, id, false)
}

func (r *batchRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Batch, error) {
	return r.fetch(ctx, id, true)
}

func (r *batchRepository) fetch(ctx context.Context, id string, lock bool) (*domain.Batch, error) {
	query := `
        SELECT id, name, start_date, end_date, all_tasks, completed_tasks, created_at, updated_at
        FROM batches WHERE id=$1`
	if lock {
		query += ` FOR UPDATE`
	}

	db := conn(ctx, r.pool)
	var batch domain.Batch
	if err := db.QueryRow(ctx, query, id).Scan(
		&batch.ID,
		&batch.Name,
		&batch.StartDate,
		&batch.EndDate,
		&batch.AllTasks,
		&batch.CompletedTasks,
		&batch.CreatedAt,
		&batch.UpdatedAt,
	); err != nil {
		return nil, err
	}

	interns, err := collectStrings(db.Query(ctx, `SELECT intern_id FROM batch_interns WHERE batch_id=$1 ORDER BY seq ASC`, id))
	if err != nil {
		return nil, err
	}
	associations, err := collectStrings(db.Query(ctx, `SELECT association_id FROM batch_hr WHERE batch_id=$1 ORDER BY seq ASC`, id))
	if err != nil {
		return nil, err
	}
	batch.InternIDs = interns
	batch.AssociationIDs = associations
	return &batch, nil
}

func (r *batchRepository) List(ctx context.Context) ([]domain.BatchSummary, error) {
	const query = `
        SELECT b.id, b.name, b.start_date, b.end_date,
            (SELECT COUNT(*) FROM batch_interns bi WHERE bi.batch_id = b.id),
            (SELECT COUNT(*) FROM batch_hr bh WHERE bh.batch_id = b.id)
        FROM batches b
        ORDER BY b.created_at DESC`
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BatchSummary
	for rows.Next() {
		var summary domain.BatchSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.StartDate,
			&summary.EndDate,
			&summary.TotalInterns,
			&summary.TotalHR,
		); err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, rows.Err()
}

func (r *batchRepository) ListIDsByAssociation(ctx context.Context, associationID string) ([]string, error) {
	return collectStrings(conn(ctx, r.pool).Query(ctx,
		`SELECT batch_id FROM batch_hr WHERE association_id=$1 ORDER BY seq ASC`, associationID))
}

func (r *batchRepository) Delete(ctx context.Context, id string) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx, `DELETE FROM batches WHERE id=$1`, id))
}

func (r *batchRepository) AddIntern(ctx context.Context, batchID, internID string) error {
	const query = `
        INSERT INTO batch_interns (batch_id, intern_id) VALUES ($1,$2)
        ON CONFLICT (batch_id, intern_id) DO NOTHING`
	_, err := conn(ctx, r.pool).Exec(ctx, query, batchID, internID)
	return mapWriteErr(err)
}

func (r *batchRepository) RemoveIntern(ctx context.Context, batchID, internID string) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM batch_interns WHERE batch_id=$1 AND intern_id=$2`, batchID, internID)
	return err
}

// RemoveInternFromOtherBatches detaches the intern from every batch except
// keepBatchID and returns the ids it was removed from. An empty keepBatchID
// removes the intern everywhere.
func (r *batchRepository) RemoveInternFromOtherBatches(ctx context.Context, internID, keepBatchID string) ([]string, error) {
	if keepBatchID == "" {
		return collectStrings(conn(ctx, r.pool).Query(ctx,
			`DELETE FROM batch_interns WHERE intern_id=$1 RETURNING batch_id`, internID))
	}
	return collectStrings(conn(ctx, r.pool).Query(ctx,
		`DELETE FROM batch_interns WHERE intern_id=$1 AND batch_id<>$2 RETURNING batch_id`, internID, keepBatchID))
}

func (r *batchRepository) SetAssociations(ctx context.Context, batchID string, associationIDs []string) error {
	db := conn(ctx, r.pool)
	if _, err := db.Exec(ctx, `DELETE FROM batch_hr WHERE batch_id=$1`, batchID); err != nil {
		return err
	}
	for _, id := range associationIDs {
		if _, err := db.Exec(ctx,
			`INSERT INTO batch_hr (batch_id, association_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			batchID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *batchRepository) AddTaskLink(ctx context.Context, link *domain.TaskLink) error {
	const query = `
        INSERT INTO batch_task_links (batch_id, task_id, status, assigned_to)
        VALUES ($1,$2,$3,$4)
        RETURNING id, seq`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		link.BatchID,
		link.TaskID,
		link.Status,
		link.AssignedTo,
	).Scan(&link.ID, &link.Seq)
	return mapWriteErr(err)
}

func (r *batchRepository) GetTaskLinkByTask(ctx context.Context, taskID string) (*domain.TaskLink, error) {
	const query = `
        SELECT id, batch_id, task_id, status, assigned_to, seq
        FROM batch_task_links WHERE task_id=$1`
	link, err := scanTaskLink(conn(ctx, r.pool).QueryRow(ctx, query, taskID))
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (r *batchRepository) ListTaskLinks(ctx context.Context, batchID string) ([]domain.TaskLink, error) {
	const query = `
        SELECT id, batch_id, task_id, status, assigned_to, seq
        FROM batch_task_links WHERE batch_id=$1 ORDER BY seq ASC`
	return r.queryTaskLinks(ctx, query, batchID)
}

// ListTaskLinksByAssignee returns the links of every task currently assigned
// to userID, across batches.
func (r *batchRepository) ListTaskLinksByAssignee(ctx context.Context, userID string) ([]domain.TaskLink, error) {
	const query = `
        SELECT l.id, l.batch_id, l.task_id, l.status, l.assigned_to, l.seq
        FROM batch_task_links l
        JOIN tasks t ON t.id = l.task_id
        WHERE t.assigned_to=$1
        ORDER BY l.seq ASC`
	return r.queryTaskLinks(ctx, query, userID)
}

func (r *batchRepository) queryTaskLinks(ctx context.Context, query string, arg string) ([]domain.TaskLink, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TaskLink
	for rows.Next() {
		link, err := scanTaskLink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *link)
	}
	return result, rows.Err()
}

func (r *batchRepository) SetTaskLinkStatus(ctx context.Context, taskID string, status domain.TaskStatus) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx,
		`UPDATE batch_task_links SET status=$1 WHERE task_id=$2`, status, taskID))
}

// AdjustCounters shifts the task counters, flooring both at zero.
func (r *batchRepository) AdjustCounters(ctx context.Context, batchID string, allDelta, completedDelta int) error {
	const query = `
        UPDATE batches SET all_tasks = GREATEST(0, all_tasks + $1),
            completed_tasks = GREATEST(0, completed_tasks + $2), updated_at=NOW()
        WHERE id=$3`
	return expectRows(conn(ctx, r.pool).Exec(ctx, query, allDelta, completedDelta, batchID))
}

func scanTaskLink(row pgx.Row) (*domain.TaskLink, error) {
	var link domain.TaskLink
	if err := row.Scan(&link.ID, &link.BatchID, &link.TaskID, &link.Status, &link.AssignedTo, &link.Seq); err != nil {
		return nil, err
	}
	return &link, nil
}

func collectStrings(rows pgx.Rows, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
