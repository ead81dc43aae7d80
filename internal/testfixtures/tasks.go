package testfixtures

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
)

type taskRepo struct{ s *Store }

// Tasks returns the in-memory TaskRepository.
func (s *Store) Tasks() repository.TaskRepository {
	return &taskRepo{s: s}
}

func (r *taskRepo) indexOf(id string) int {
	for i := range r.s.t.tasks {
		if r.s.t.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *taskRepo) Create(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	task.ID = r.s.nextID()
	now := r.s.clock.Now()
	task.CreatedAt, task.UpdatedAt = now, now
	r.s.t.tasks = append(r.s.t.tasks, *task)
	return nil
}

func (r *taskRepo) Update(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(task.ID)
	if i < 0 {
		return pgx.ErrNoRows
	}
	row := &r.s.t.tasks[i]
	row.Title = task.Title
	row.Description = task.Description
	row.Type = task.Type
	row.StartDate = task.StartDate
	row.EndDate = task.EndDate
	row.UpdatedAt = r.s.clock.Now()
	return nil
}

func (r *taskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, pgx.ErrNoRows
	}
	t := r.s.t.tasks[i]
	return &t, nil
}

func (r *taskRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Task, error) {
	return r.GetByID(ctx, id)
}

func (r *taskRepo) List(_ context.Context, assignedTo *string) ([]domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Task
	for i := len(r.s.t.tasks) - 1; i >= 0; i-- {
		t := r.s.t.tasks[i]
		if assignedTo == nil || t.AssignedTo == *assignedTo {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *taskRepo) SetStatus(_ context.Context, id string, status domain.TaskStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	r.s.t.tasks[i].Status = status
	r.s.t.tasks[i].UpdatedAt = r.s.clock.Now()
	return nil
}

func (r *taskRepo) MarkPenaltyApplied(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	r.s.t.tasks[i].PenaltyApplied = true
	r.s.t.tasks[i].UpdatedAt = r.s.clock.Now()
	return nil
}

// Delete removes the task with its submissions and batch link.
func (r *taskRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	r.s.t.tasks = append(r.s.t.tasks[:i], r.s.t.tasks[i+1:]...)

	subs := r.s.t.submissions[:0:0]
	for _, sub := range r.s.t.submissions {
		if sub.TaskID != id {
			subs = append(subs, sub)
		}
	}
	r.s.t.submissions = subs

	links := r.s.t.links[:0:0]
	for _, l := range r.s.t.links {
		if l.TaskID != id {
			links = append(links, l)
		}
	}
	r.s.t.links = links
	return nil
}

type submissionRepo struct{ s *Store }

// Submissions returns the in-memory SubmissionRepository.
func (s *Store) Submissions() repository.SubmissionRepository {
	return &submissionRepo{s: s}
}

func (r *submissionRepo) Create(_ context.Context, sub *domain.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.t.submissions {
		if existing.UserID == sub.UserID && existing.TaskID == sub.TaskID {
			return repository.ErrDuplicate
		}
	}
	sub.ID = r.s.nextID()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = r.s.clock.Now()
	}
	sub.UpdatedAt = sub.CreatedAt
	r.s.t.submissions = append(r.s.t.submissions, *sub)
	return nil
}

func (r *submissionRepo) GetByUserAndTask(_ context.Context, userID, taskID string) (*domain.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.t.submissions {
		if sub.UserID == userID && sub.TaskID == taskID {
			return &sub, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *submissionRepo) GetByUserAndTaskForUpdate(ctx context.Context, userID, taskID string) (*domain.Submission, error) {
	return r.GetByUserAndTask(ctx, userID, taskID)
}

func (r *submissionRepo) MarkReviewed(_ context.Context, id string, status domain.ReviewStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.t.submissions {
		if r.s.t.submissions[i].ID == id {
			r.s.t.submissions[i].Reviewed = true
			r.s.t.submissions[i].ReviewStatus = status
			r.s.t.submissions[i].UpdatedAt = r.s.clock.Now()
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *submissionRepo) DeleteByTask(_ context.Context, taskID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.t.submissions[:0:0]
	var removed int64
	for _, sub := range r.s.t.submissions {
		if sub.TaskID == taskID {
			removed++
			continue
		}
		kept = append(kept, sub)
	}
	r.s.t.submissions = kept
	return removed, nil
}

func (r *submissionRepo) List(_ context.Context) ([]domain.Submission, error) {
	return r.filter(func(domain.Submission) bool { return true }), nil
}

func (r *submissionRepo) ListByUsers(_ context.Context, userIDs []string) ([]domain.Submission, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return r.filter(func(sub domain.Submission) bool { return containsString(userIDs, sub.UserID) }), nil
}

func (r *submissionRepo) filter(keep func(domain.Submission) bool) []domain.Submission {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Submission
	for i := len(r.s.t.submissions) - 1; i >= 0; i-- {
		if sub := r.s.t.submissions[i]; keep(sub) {
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
