package testfixtures

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
)

type leaveRepo struct{ s *Store }

// Leaves returns the in-memory LeaveRepository.
func (s *Store) Leaves() repository.LeaveRepository {
	return &leaveRepo{s: s}
}

func (r *leaveRepo) Create(_ context.Context, leave *domain.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	leave.ID = r.s.nextID()
	now := r.s.clock.Now()
	leave.CreatedAt, leave.UpdatedAt = now, now
	stored := *leave
	stored.InternName, stored.InternEmail = "", ""
	r.s.t.leaves = append(r.s.t.leaves, stored)
	return nil
}

func (r *leaveRepo) GetByID(_ context.Context, id string) (*domain.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.t.leaves {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *leaveRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *leaveRepo) ListByUser(_ context.Context, userID string) ([]domain.LeaveRequest, error) {
	return r.filter(func(l domain.LeaveRequest) bool { return l.UserID == userID }), nil
}

func (r *leaveRepo) ListAll(_ context.Context, status *domain.LeaveStatus) ([]domain.LeaveRequest, error) {
	out := r.filter(func(l domain.LeaveRequest) bool { return status == nil || l.Status == *status })
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range out {
		for _, u := range r.s.t.users {
			if u.ID == out[i].UserID {
				out[i].InternName, out[i].InternEmail = u.Name, u.Email
			}
		}
	}
	return out, nil
}

func (r *leaveRepo) HasOverlap(_ context.Context, userID string, from, to time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.t.leaves {
		if l.UserID == userID && l.Status != domain.LeaveRejected && l.Overlaps(from, to) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveRepo) Decide(_ context.Context, id string, status domain.LeaveStatus, decidedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.t.leaves {
		if l := &r.s.t.leaves[i]; l.ID == id {
			now := r.s.clock.Now()
			by := decidedBy
			l.Status = status
			l.DecidedBy = &by
			l.DecidedAt = &now
			l.UpdatedAt = now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *leaveRepo) ListApprovedOverlapping(_ context.Context, from, to time.Time) ([]domain.LeaveRequest, error) {
	out := r.filter(func(l domain.LeaveRequest) bool {
		return l.Status == domain.LeaveApproved && l.Overlaps(from, to)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// filter returns matches newest first.
func (r *leaveRepo) filter(keep func(domain.LeaveRequest) bool) []domain.LeaveRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.LeaveRequest
	for i := len(r.s.t.leaves) - 1; i >= 0; i-- {
		if l := r.s.t.leaves[i]; keep(l) {
			out = append(out, l)
		}
	}
	return out
}

type weeklyReportRepo struct{ s *Store }

// WeeklyReports returns the in-memory WeeklyReportRepository.
func (s *Store) WeeklyReports() repository.WeeklyReportRepository {
	return &weeklyReportRepo{s: s}
}

func (r *weeklyReportRepo) Create(_ context.Context, report *domain.WeeklyReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.t.weeklyReports {
		if existing.UserID == report.UserID && existing.WeekOf.Equal(report.WeekOf) {
			return repository.ErrDuplicate
		}
	}
	report.ID = r.s.nextID()
	report.CreatedAt = r.s.clock.Now()
	r.s.t.weeklyReports = append(r.s.t.weeklyReports, *report)
	return nil
}

func (r *weeklyReportRepo) List(_ context.Context) ([]domain.WeeklyReport, error) {
	return r.filter(func(domain.WeeklyReport) bool { return true }), nil
}

func (r *weeklyReportRepo) ListByUsers(_ context.Context, userIDs []string) ([]domain.WeeklyReport, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return r.filter(func(w domain.WeeklyReport) bool { return containsString(userIDs, w.UserID) }), nil
}

func (r *weeklyReportRepo) filter(keep func(domain.WeeklyReport) bool) []domain.WeeklyReport {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.WeeklyReport
	for i := len(r.s.t.weeklyReports) - 1; i >= 0; i-- {
		if w := r.s.t.weeklyReports[i]; keep(w) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WeekOf.After(out[j].WeekOf) })
	return out
}

type verificationRepo struct{ s *Store }

// EmailVerifications returns the in-memory EmailVerificationRepository.
func (s *Store) EmailVerifications() repository.EmailVerificationRepository {
	return &verificationRepo{s: s}
}

func (r *verificationRepo) Upsert(_ context.Context, v *domain.EmailVerification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v.CreatedAt = r.s.clock.Now()
	for i := range r.s.t.verifications {
		if r.s.t.verifications[i].UserID == v.UserID {
			r.s.t.verifications[i] = *v
			return nil
		}
	}
	r.s.t.verifications = append(r.s.t.verifications, *v)
	return nil
}

func (r *verificationRepo) GetByUser(_ context.Context, userID string) (*domain.EmailVerification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.t.verifications {
		if v.UserID == userID {
			return &v, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *verificationRepo) Delete(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	before := len(r.s.t.verifications)
	r.s.t.verifications = filterSlice(r.s.t.verifications, func(v domain.EmailVerification) bool { return v.UserID != userID })
	if len(r.s.t.verifications) == before {
		return pgx.ErrNoRows
	}
	return nil
}
