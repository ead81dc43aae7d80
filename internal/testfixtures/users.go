package testfixtures

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
)

type userRepo struct{ s *Store }

// Users returns the in-memory UserRepository.
func (s *Store) Users() repository.UserRepository {
	return &userRepo{s: s}
}

func (r *userRepo) indexOf(id string) int {
	for i := range r.s.t.users {
		if r.s.t.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *userRepo) emailTaken(email, exceptID string) bool {
	for _, u := range r.s.t.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(user.Email, "") {
		return repository.ErrDuplicate
	}
	if user.ID == "" {
		user.ID = r.s.nextID()
	}
	now := r.s.clock.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.t.users = append(r.s.t.users, *user)
	return nil
}

// Update writes the same columns as the SQL repository; points and batch
// membership have their own methods.
func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(user.ID)
	if i < 0 {
		return pgx.ErrNoRows
	}
	if r.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicate
	}
	row := &r.s.t.users[i]
	row.Name = user.Name
	row.Email = user.Email
	row.MobileNumber = user.MobileNumber
	row.PasswordHash = user.PasswordHash
	row.Role = user.Role
	row.Department = user.Department
	row.ProfilePicture = user.ProfilePicture
	row.LinkedInURL = user.LinkedInURL
	row.UnapprovedBatchID = user.UnapprovedBatchID
	row.IsVerified = user.IsVerified
	row.EndDate = user.EndDate
	row.UpdatedAt = r.s.clock.Now()
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, pgx.ErrNoRows
	}
	u := r.s.t.users[i]
	return &u, nil
}

func (r *userRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.t.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepo) List(_ context.Context) ([]domain.User, error) {
	return r.filter(func(domain.User) bool { return true }, newestUserFirst), nil
}

func (r *userRepo) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool { return containsString(ids, u.ID) }, userByName), nil
}

func (r *userRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool { return u.Role == role }, userByName), nil
}

func (r *userRepo) ListPendingApprovals(_ context.Context) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool {
		return u.UnapprovedBatchID != nil && !u.BatchApproved
	}, nil), nil
}

func (r *userRepo) ListUnverified(_ context.Context, role domain.Role) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool { return u.Role == role && !u.IsVerified }, nil), nil
}

func (r *userRepo) ListEndedBefore(_ context.Context, cutoff time.Time) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool {
		return u.EndDate != nil && u.EndDate.Before(cutoff)
	}, func(a, b domain.User) bool { return a.EndDate.Before(*b.EndDate) }), nil
}

func (r *userRepo) AdjustPoints(_ context.Context, id string, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	r.s.t.users[i].TotalPoints += delta
	return nil
}

func (r *userRepo) SetBatch(_ context.Context, id string, batchID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	row := &r.s.t.users[i]
	row.BatchID = batchID
	row.BatchApproved = batchID != nil
	row.UnapprovedBatchID = nil
	return nil
}

func (r *userRepo) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	interns := r.filter(func(u domain.User) bool { return u.Role == domain.RoleIntern }, func(a, b domain.User) bool {
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		return a.Name < b.Name
	})
	if len(interns) > limit {
		interns = interns[:limit]
	}
	out := make([]domain.LeaderboardEntry, 0, len(interns))
	for _, u := range interns {
		out = append(out, domain.LeaderboardEntry{
			UserID:      u.ID,
			Name:        u.Name,
			Email:       u.Email,
			Department:  u.Department,
			TotalPoints: u.TotalPoints,
		})
	}
	return out, nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	r.s.t.users = append(r.s.t.users[:i], r.s.t.users[i+1:]...)
	r.s.cascadeUser(id)
	return nil
}

// cascadeUser mirrors the ON DELETE rules of the users foreign keys.
// Callers hold s.mu.
func (s *Store) cascadeUser(id string) {
	t := &s.t
	for i := range t.batches {
		t.batches[i].InternIDs, _ = removeString(t.batches[i].InternIDs, id)
	}
	for i := range t.teams {
		t.teams[i].MemberIDs, _ = removeString(t.teams[i].MemberIDs, id)
		if t.teams[i].CreatedBy == id {
			t.teams[i].CreatedBy = ""
		}
	}

	var associations []domain.HRAssociation
	for _, a := range t.associations {
		if a.HRID == id {
			for j := range t.batches {
				t.batches[j].AssociationIDs, _ = removeString(t.batches[j].AssociationIDs, a.ID)
			}
			continue
		}
		a.InternIDs, _ = removeString(a.InternIDs, id)
		associations = append(associations, a)
	}
	t.associations = associations

	var tasks []domain.Task
	var droppedTasks []string
	for _, task := range t.tasks {
		if task.AssignedTo == id {
			droppedTasks = append(droppedTasks, task.ID)
			continue
		}
		tasks = append(tasks, task)
	}
	t.tasks = tasks
	t.links = filterSlice(t.links, func(l domain.TaskLink) bool { return !containsString(droppedTasks, l.TaskID) })
	t.submissions = filterSlice(t.submissions, func(sub domain.Submission) bool {
		return sub.UserID != id && !containsString(droppedTasks, sub.TaskID)
	})

	var tickets []domain.Ticket
	var droppedTickets []string
	for _, ticket := range t.tickets {
		if ticket.CreatedBy == id {
			droppedTickets = append(droppedTickets, ticket.ID)
			continue
		}
		if ticket.AssignedTo != nil && *ticket.AssignedTo == id {
			ticket.AssignedTo = nil
		}
		tickets = append(tickets, ticket)
	}
	t.tickets = tickets
	t.ticketMessages = filterSlice(t.ticketMessages, func(m domain.TicketMessage) bool {
		return m.SenderID != id && !containsString(droppedTickets, m.TicketID)
	})
	t.ticketHistory = filterSlice(t.ticketHistory, func(h domain.TicketHistory) bool {
		return !containsString(droppedTickets, h.TicketID)
	})
	for i := range t.ticketHistory {
		if a := t.ticketHistory[i].ActorID; a != nil && *a == id {
			t.ticketHistory[i].ActorID = nil
		}
	}

	t.notifications = filterSlice(t.notifications, func(n domain.Notification) bool { return n.UserID != id })
	for i := range t.notifications {
		if tid := t.notifications[i].TaskID; tid != nil && containsString(droppedTasks, *tid) {
			t.notifications[i].TaskID = nil
		}
	}
	t.directMessages = filterSlice(t.directMessages, func(m domain.DirectMessage) bool {
		return m.SenderID != id && m.ReceiverID != id
	})
	t.attendance = filterSlice(t.attendance, func(a domain.Attendance) bool { return a.UserID != id })
	t.resets = filterSlice(t.resets, func(p domain.PasswordResetToken) bool { return p.UserID != id })
	t.leaves = filterSlice(t.leaves, func(l domain.LeaveRequest) bool { return l.UserID != id })
	for i := range t.leaves {
		if d := t.leaves[i].DecidedBy; d != nil && *d == id {
			t.leaves[i].DecidedBy = nil
		}
	}
	t.weeklyReports = filterSlice(t.weeklyReports, func(w domain.WeeklyReport) bool { return w.UserID != id })
	t.verifications = filterSlice(t.verifications, func(v domain.EmailVerification) bool { return v.UserID != id })
}

func (r *userRepo) filter(keep func(domain.User) bool, less func(a, b domain.User) bool) []domain.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.User
	for _, u := range r.s.t.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func userByName(a, b domain.User) bool { return a.Name < b.Name }

func newestUserFirst(a, b domain.User) bool { return a.CreatedAt.After(b.CreatedAt) }
