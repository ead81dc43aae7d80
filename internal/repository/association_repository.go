package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// AssociationRepository stores HR to intern associations.
type AssociationRepository interface {
	Create(ctx context.Context, assoc *domain.HRAssociation) error
	GetByID(ctx context.Context, id string) (*domain.HRAssociation, error)
	GetByHR(ctx context.Context, hrID string) (*domain.HRAssociation, error)
	GetByHRForUpdate(ctx context.Context, hrID string) (*domain.HRAssociation, error)
	FindByIntern(ctx context.Context, internID string) (*domain.HRAssociation, error)
	AddIntern(ctx context.Context, associationID, internID string) error
	RemoveIntern(ctx context.Context, internID string) error
	AssignedInterns(ctx context.Context, internIDs []string) ([]string, error)
	DeleteByHR(ctx context.Context, hrID string) error
}

type associationRepository struct {
	pool *pgxpool.Pool
}

// NewAssociationRepository constructs repository.
func NewAssociationRepository(pool *pgxpool.Pool) AssociationRepository {
	return &associationRepository{pool: pool}
}

func (r *associationRepository) Create(ctx context.Context, assoc *domain.HRAssociation) error {
	const query = `
        INSERT INTO hr_associations (hr_id) VALUES ($1)
        RETURNING id, created_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query, assoc.HRID).Scan(&assoc.ID, &assoc.CreatedAt)
	return mapWriteErr(err)
}

func (r *associationRepository) GetByID(ctx context.Context, id string) (*domain.HRAssociation, error) {
	return r.fetch(ctx, `SELECT id, hr_id, created_at FROM hr_associations WHERE id=$1`, id)
}

func (r *associationRepository) GetByHR(ctx context.Context, hrID string) (*domain.HRAssociation, error) {
	return r.fetch(ctx, `SELECT id, hr_id, created_at FROM hr_associations WHERE hr_id=$1`, hrID)
}

func (r *associationRepository) GetByHRForUpdate(ctx context.Context, hrID string) (*domain.HRAssociation, error) {
	return r.fetch(ctx, `SELECT id, hr_id, created_at FROM hr_associations WHERE hr_id=$1 FOR UPDATE`, hrID)
}

func (r *associationRepository) FindByIntern(ctx context.Context, internID string) (*domain.HRAssociation, error) {
	const query = `
        SELECT a.id, a.hr_id, a.created_at
        FROM hr_associations a
        JOIN hr_association_interns i ON i.association_id = a.id
        WHERE i.intern_id=$1`
	return r.fetch(ctx, query, internID)
}

func (r *associationRepository) fetch(ctx context.Context, query string, arg string) (*domain.HRAssociation, error) {
	db := conn(ctx, r.pool)
	var assoc domain.HRAssociation
	if err := db.QueryRow(ctx, query, arg).Scan(&assoc.ID, &assoc.HRID, &assoc.CreatedAt); err != nil {
		return nil, err
	}
	interns, err := collectStrings(db.Query(ctx,
		`SELECT intern_id FROM hr_association_interns WHERE association_id=$1 ORDER BY seq ASC`, assoc.ID))
	if err != nil {
		return nil, err
	}
	assoc.InternIDs = interns
	return &assoc, nil
}

// AddIntern returns ErrDuplicate when the intern already belongs to any association.
func (r *associationRepository) AddIntern(ctx context.Context, associationID, internID string) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO hr_association_interns (association_id, intern_id) VALUES ($1,$2)`,
		associationID, internID)
	return mapWriteErr(err)
}

func (r *associationRepository) RemoveIntern(ctx context.Context, internID string) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM hr_association_interns WHERE intern_id=$1`, internID)
	return err
}

func (r *associationRepository) AssignedInterns(ctx context.Context, internIDs []string) ([]string, error) {
	if len(internIDs) == 0 {
		return nil, nil
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT intern_id FROM hr_association_interns WHERE intern_id = ANY($1::uuid[])`, internIDs)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *associationRepository) DeleteByHR(ctx context.Context, hrID string) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM hr_associations WHERE hr_id=$1`, hrID)
	return err
}
