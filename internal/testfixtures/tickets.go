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

type ticketRepo struct{ s *Store }

// Tickets returns the in-memory TicketRepository.
func (s *Store) Tickets() repository.TicketRepository {
	return &ticketRepo{s: s}
}

func (r *ticketRepo) indexOf(id string) int {
	for i := range r.s.t.tickets {
		if r.s.t.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket.ID = r.s.nextID()
	now := r.s.clock.Now()
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	r.s.t.tickets = append(r.s.t.tickets, *ticket)
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, pgx.ErrNoRows
	}
	t := r.s.t.tickets[i]
	return &t, nil
}

func (r *ticketRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *ticketRepo) SetAssignee(_ context.Context, id, assigneeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	assignee := assigneeID
	r.s.t.tickets[i].AssignedTo = &assignee
	r.s.t.tickets[i].UpdatedAt = r.s.clock.Now()
	return nil
}

func (r *ticketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, pendingSince *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return pgx.ErrNoRows
	}
	r.s.t.tickets[i].Status = status
	r.s.t.tickets[i].PendingConfirmationSince = pendingSince
	r.s.t.tickets[i].UpdatedAt = r.s.clock.Now()
	return nil
}

func (r *ticketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := ""
	if filter.SearchTerm != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}
	var out []domain.Ticket
	for i := len(r.s.t.tickets) - 1; i >= 0; i-- {
		t := r.s.t.tickets[i]
		if filter.CreatedBy != nil && t.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(filter.Offset, 0)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func containsStatus(list []domain.TicketStatus, v domain.TicketStatus) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (r *ticketRepo) ListPendingConfirmationBefore(_ context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.s.t.tickets {
		if t.Status == domain.TicketStatusPendingConfirmation && t.PendingConfirmationSince != nil &&
			t.PendingConfirmationSince.Before(cutoff) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PendingConfirmationSince.Before(*out[j].PendingConfirmationSince)
	})
	return out, nil
}

func (r *ticketRepo) ClosedCountsByAssignee(_ context.Context) ([]domain.AssigneeRank, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int{}
	for _, t := range r.s.t.tickets {
		if t.Status == domain.TicketStatusClosed && t.AssignedTo != nil {
			counts[*t.AssignedTo]++
		}
	}
	var out []domain.AssigneeRank
	for _, u := range r.s.t.users {
		if n, ok := counts[u.ID]; ok {
			out = append(out, domain.AssigneeRank{UserID: u.ID, Name: u.Name, Email: u.Email, ClosedCount: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ClosedCount != out[j].ClosedCount {
			return out[i].ClosedCount > out[j].ClosedCount
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

type ticketMessageRepo struct{ s *Store }

// TicketMessages returns the in-memory TicketMessageRepository.
func (s *Store) TicketMessages() repository.TicketMessageRepository {
	return &ticketMessageRepo{s: s}
}

func (r *ticketMessageRepo) Create(_ context.Context, msg *domain.TicketMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg.ID = r.s.nextID()
	msg.Seq = r.s.nextSeq()
	msg.CreatedAt = r.s.clock.Now()
	r.s.t.ticketMessages = append(r.s.t.ticketMessages, *msg)
	return nil
}

func (r *ticketMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TicketMessage
	for _, m := range r.s.t.ticketMessages {
		if m.TicketID == ticketID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *ticketMessageRepo) MarkSeen(_ context.Context, ticketID, viewerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var flipped int64
	for i := range r.s.t.ticketMessages {
		m := &r.s.t.ticketMessages[i]
		if m.TicketID == ticketID && m.SenderID != viewerID && !m.Seen {
			m.Seen = true
			flipped++
		}
	}
	return flipped, nil
}

type ticketHistoryRepo struct{ s *Store }

// TicketHistory returns the in-memory TicketHistoryRepository.
func (s *Store) TicketHistory() repository.TicketHistoryRepository {
	return &ticketHistoryRepo{s: s}
}

func (r *ticketHistoryRepo) Create(_ context.Context, history *domain.TicketHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	history.ID = r.s.nextID()
	history.Seq = r.s.nextSeq()
	if history.CreatedAt.IsZero() {
		history.CreatedAt = r.s.clock.Now()
	}
	r.s.t.ticketHistory = append(r.s.t.ticketHistory, *history)
	return nil
}

func (r *ticketHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TicketHistory
	for _, h := range r.s.t.ticketHistory {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out, nil
}
