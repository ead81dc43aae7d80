package testfixtures

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
)

type batchRepo struct{ s *Store }

// Batches returns the in-memory BatchRepository.
func (s *Store) Batches() repository.BatchRepository {
	return &batchRepo{s: s}
}

func (r *batchRepo) indexOf(id string) int {
	for i := range r.s.t.batches {
		if r.s.t.batches[i].ID == id {
			return i
		}
	}
	return -1
}

func sameEndDate(a, b domain.Batch) bool {
	if a.EndDate == nil || b.EndDate == nil {
		return a.EndDate == nil && b.EndDate == nil
	}
	return a.EndDate.Equal(*b.EndDate)
}

func (r *batchRepo) duplicate(batch *domain.Batch) bool {
	for _, b := range r.s.t.batches {
		if b.ID != batch.ID && b.Name == batch.Name && sameEndDate(b, *batch) {
			return true
		}
	}
	return false
}

func (r *batchRepo) Create(_ context.Context, batch *domain.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.duplicate(batch) {
		return repository.ErrDuplicate
	}
	batch.ID = r.s.nextID()
	batch.AllTasks, batch.CompletedTasks = 0, 0
	now := r.s.clock.Now()
	batch.CreatedAt, batch.UpdatedAt = now, now
	row := copyBatch(*batch)
	row.InternIDs, row.AssociationIDs = nil, nil
	r.s.t.batches = append(r.s.t.batches, row)
	return nil
}

func (r *batchRepo) Update(_ context.Context, batch *domain.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(batch.ID)
	if i < 0 {
		return pgx.ErrNoRows
	}
	if r.duplicate(batch) {
		return repository.ErrDuplicate
	}
	row := &r.s.t.batches[i]
	row.Name = batch.Name
	row.StartDate = batch.StartDate
	row.EndDate = batch.EndDate
	row.UpdatedAt = r.s.clock.Now()
	return nil
}

func (r *batchRepo) GetByID(_ context.Context, id string) (*domain.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, pgx.ErrNoRows
	}
	b := copyBatch(r.s.t.batches[i])
	return &b, nil
}

func (r *batchRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r *batchRepo) List(_ context.Context) ([]domain.BatchSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.BatchSummary, 0, len(r.s.t.batches))
	for i := len(r.s.t.batches) - 1; i >= 0; i-- {
		b := r.s.t.batches[i]
		out = append(out, domain.BatchSummary{
			ID:           b.ID,
			Name:         b.Name,
			StartDate:    b.StartDate,
			EndDate:      b.EndDate,
			TotalInterns: len(b.InternIDs),
			TotalHR:      len(b.AssociationIDs),
		})
	}
	return out, nil
}

func (r *batchRepo) ListIDsByAssociation(_ context.Context, associationID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for _, b := range r.s.t.batches {
		if containsString(b.AssociationIDs, associationID) {
			out = append(out, b.ID)
		}
	}
	return out, nil
}

func (r *batchRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	r.s.t.batches = append(r.s.t.batches[:i], r.s.t.batches[i+1:]...)

	teams := r.s.t.teams[:0:0]
	for _, t := range r.s.t.teams {
		if t.BatchID != id {
			teams = append(teams, t)
		}
	}
	r.s.t.teams = teams

	links := r.s.t.links[:0:0]
	for _, l := range r.s.t.links {
		if l.BatchID != id {
			links = append(links, l)
		}
	}
	r.s.t.links = links
	return nil
}

// AddIntern mirrors the unique intern index: an intern held by another batch
// is a duplicate, the same batch is a no-op.
func (r *batchRepo) AddIntern(_ context.Context, batchID, internID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(batchID)
	if i < 0 {
		return pgx.ErrNoRows
	}
	for _, b := range r.s.t.batches {
		if containsString(b.InternIDs, internID) {
			if b.ID == batchID {
				return nil
			}
			return repository.ErrDuplicate
		}
	}
	r.s.t.batches[i].InternIDs = append(r.s.t.batches[i].InternIDs, internID)
	return nil
}

func (r *batchRepo) RemoveIntern(_ context.Context, batchID, internID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if i := r.indexOf(batchID); i >= 0 {
		r.s.t.batches[i].InternIDs, _ = removeString(r.s.t.batches[i].InternIDs, internID)
	}
	return nil
}

func (r *batchRepo) RemoveInternFromOtherBatches(_ context.Context, internID, keepBatchID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var removedFrom []string
	for i := range r.s.t.batches {
		b := &r.s.t.batches[i]
		if keepBatchID != "" && b.ID == keepBatchID {
			continue
		}
		var removed bool
		b.InternIDs, removed = removeString(b.InternIDs, internID)
		if removed {
			removedFrom = append(removedFrom, b.ID)
		}
	}
	return removedFrom, nil
}

func (r *batchRepo) SetAssociations(_ context.Context, batchID string, associationIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(batchID)
	if i < 0 {
		return pgx.ErrNoRows
	}
	var ids []string
	for _, id := range associationIDs {
		if !containsString(ids, id) {
			ids = append(ids, id)
		}
	}
	r.s.t.batches[i].AssociationIDs = ids
	return nil
}

func (r *batchRepo) AddTaskLink(_ context.Context, link *domain.TaskLink) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.t.links {
		if l.TaskID == link.TaskID {
			return repository.ErrDuplicate
		}
	}
	link.ID = r.s.nextID()
	link.Seq = r.s.nextSeq()
	r.s.t.links = append(r.s.t.links, *link)
	return nil
}

func (r *batchRepo) GetTaskLinkByTask(_ context.Context, taskID string) (*domain.TaskLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.t.links {
		if l.TaskID == taskID {
			return &l, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *batchRepo) ListTaskLinks(_ context.Context, batchID string) ([]domain.TaskLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TaskLink
	for _, l := range r.s.t.links {
		if l.BatchID == batchID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *batchRepo) ListTaskLinksByAssignee(_ context.Context, userID string) ([]domain.TaskLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TaskLink
	for _, l := range r.s.t.links {
		for _, task := range r.s.t.tasks {
			if task.ID == l.TaskID && task.AssignedTo == userID {
				out = append(out, l)
				break
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *batchRepo) SetTaskLinkStatus(_ context.Context, taskID string, status domain.TaskStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.t.links {
		if r.s.t.links[i].TaskID == taskID {
			r.s.t.links[i].Status = status
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *batchRepo) AdjustCounters(_ context.Context, batchID string, allDelta, completedDelta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(batchID)
	if i < 0 {
		return pgx.ErrNoRows
	}
	b := &r.s.t.batches[i]
	b.AllTasks = max(0, b.AllTasks+allDelta)
	b.CompletedTasks = max(0, b.CompletedTasks+completedDelta)
	return nil
}
