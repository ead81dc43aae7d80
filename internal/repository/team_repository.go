package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// TeamRepository manages persistence for batch-owned teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Rename(ctx context.Context, id, name string) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Team, error)
	ListByBatch(ctx context.Context, batchID string) ([]domain.Team, error)
	Delete(ctx context.Context, id string) error
	AddMembers(ctx context.Context, teamID string, userIDs []string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	RemoveUserFromBatchTeams(ctx context.Context, batchID, userID string) error
	RemoveUserFromAllTeams(ctx context.Context, userID string) error
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO batch_teams (batch_id, name, created_by)
        VALUES ($1,$2,NULLIF($3,'')::uuid)
        RETURNING id, seq, created_at`
	if err := conn(ctx, r.pool).QueryRow(ctx, query,
		team.BatchID,
		team.Name,
		team.CreatedBy,
	).Scan(&team.ID, &team.Seq, &team.CreatedAt); err != nil {
		return mapWriteErr(err)
	}
	return r.AddMembers(ctx, team.ID, team.MemberIDs)
}

func (r *teamRepository) Rename(ctx context.Context, id, name string) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx, `UPDATE batch_teams SET name=$1 WHERE id=$2`, name, id))
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	return r.fetch(ctx, id, false)
}

func (r *teamRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Team, error) {
	return r.fetch(ctx, id, true)
}

func (r *teamRepository) fetch(ctx context.Context, id string, lock bool) (*domain.Team, error) {
	query := `
        SELECT id, batch_id, name, COALESCE(created_by::text, ''), seq, created_at
        FROM batch_teams WHERE id=$1`
	if lock {
		query += ` FOR UPDATE`
	}

	db := conn(ctx, r.pool)
	var team domain.Team
	if err := db.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.BatchID,
		&team.Name,
		&team.CreatedBy,
		&team.Seq,
		&team.CreatedAt,
	); err != nil {
		return nil, err
	}
	members, err := collectStrings(db.Query(ctx,
		`SELECT user_id FROM batch_team_members WHERE team_id=$1 ORDER BY seq ASC`, id))
	if err != nil {
		return nil, err
	}
	team.MemberIDs = members
	return &team, nil
}

func (r *teamRepository) ListByBatch(ctx context.Context, batchID string) ([]domain.Team, error) {
	const query = `
        SELECT id, batch_id, name, COALESCE(created_by::text, ''), seq, created_at
        FROM batch_teams WHERE batch_id=$1 ORDER BY seq ASC`
	db := conn(ctx, r.pool)
	rows, err := db.Query(ctx, query, batchID)
	if err != nil {
		return nil, err
	}

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.BatchID, &team.Name, &team.CreatedBy, &team.Seq, &team.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, team)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		members, err := collectStrings(db.Query(ctx,
			`SELECT user_id FROM batch_team_members WHERE team_id=$1 ORDER BY seq ASC`, result[i].ID))
		if err != nil {
			return nil, err
		}
		result[i].MemberIDs = members
	}
	return result, nil
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx, `DELETE FROM batch_teams WHERE id=$1`, id))
}

func (r *teamRepository) AddMembers(ctx context.Context, teamID string, userIDs []string) error {
	db := conn(ctx, r.pool)
	for _, userID := range userIDs {
		if _, err := db.Exec(ctx,
			`INSERT INTO batch_team_members (team_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			teamID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM batch_team_members WHERE team_id=$1 AND user_id=$2`, teamID, userID)
	return err
}

func (r *teamRepository) RemoveUserFromBatchTeams(ctx context.Context, batchID, userID string) error {
	const query = `
        DELETE FROM batch_team_members m
        USING batch_teams t
        WHERE m.team_id = t.id AND t.batch_id=$1 AND m.user_id=$2`
	_, err := conn(ctx, r.pool).Exec(ctx, query, batchID, userID)
	return err
}

func (r *teamRepository) RemoveUserFromAllTeams(ctx context.Context, userID string) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM batch_team_members WHERE user_id=$1`, userID)
	return err
}
