package testfixtures

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
)

type teamRepo struct{ s *Store }

// Teams returns the in-memory TeamRepository.
func (s *Store) Teams() repository.TeamRepository {
	return &teamRepo{s: s}
}

func (r *teamRepo) indexOf(id string) int {
	for i := range r.s.t.teams {
		if r.s.t.teams[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *teamRepo) Create(_ context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team.ID = r.s.nextID()
	team.Seq = r.s.nextSeq()
	team.CreatedAt = r.s.clock.Now()
	row := copyTeam(*team)
	row.MemberIDs = nil
	for _, id := range team.MemberIDs {
		if !containsString(row.MemberIDs, id) {
			row.MemberIDs = append(row.MemberIDs, id)
		}
	}
	r.s.t.teams = append(r.s.t.teams, row)
	return nil
}

func (r *teamRepo) Rename(_ context.Context, id, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	r.s.t.teams[i].Name = name
	return nil
}

func (r *teamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, pgx.ErrNoRows
	}
	t := copyTeam(r.s.t.teams[i])
	return &t, nil
}

func (r *teamRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Team, error) {
	return r.GetByID(ctx, id)
}

func (r *teamRepo) ListByBatch(_ context.Context, batchID string) ([]domain.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Team
	for _, t := range r.s.t.teams {
		if t.BatchID == batchID {
			out = append(out, copyTeam(t))
		}
	}
	return out, nil
}

func (r *teamRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	r.s.t.teams = append(r.s.t.teams[:i], r.s.t.teams[i+1:]...)
	return nil
}

func (r *teamRepo) AddMembers(_ context.Context, teamID string, userIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(teamID)
	if i < 0 {
		return pgx.ErrNoRows
	}
	for _, id := range userIDs {
		if !containsString(r.s.t.teams[i].MemberIDs, id) {
			r.s.t.teams[i].MemberIDs = append(r.s.t.teams[i].MemberIDs, id)
		}
	}
	return nil
}

func (r *teamRepo) RemoveMember(_ context.Context, teamID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if i := r.indexOf(teamID); i >= 0 {
		r.s.t.teams[i].MemberIDs, _ = removeString(r.s.t.teams[i].MemberIDs, userID)
	}
	return nil
}

func (r *teamRepo) RemoveUserFromBatchTeams(_ context.Context, batchID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.t.teams {
		if r.s.t.teams[i].BatchID == batchID {
			r.s.t.teams[i].MemberIDs, _ = removeString(r.s.t.teams[i].MemberIDs, userID)
		}
	}
	return nil
}

func (r *teamRepo) RemoveUserFromAllTeams(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.t.teams {
		r.s.t.teams[i].MemberIDs, _ = removeString(r.s.t.teams[i].MemberIDs, userID)
	}
	return nil
}
