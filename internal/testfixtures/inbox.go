package testfixtures

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
)

type notificationRepo struct{ s *Store }

// Notifications returns the in-memory NotificationRepository.
func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepo{s: s}
}

func (r *notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.nextID()
	n.IsRead = false
	n.CreatedAt = r.s.clock.Now()
	r.s.t.notifications = append(r.s.t.notifications, *n)
	return nil
}

func (r *notificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Notification
	for i := len(r.s.t.notifications) - 1; i >= 0; i-- {
		n := r.s.t.notifications[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.t.notifications {
		if n := &r.s.t.notifications[i]; n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *notificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for i := range r.s.t.notifications {
		if n := &r.s.t.notifications[i]; n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

type directMessageRepo struct{ s *Store }

// DirectMessages returns the in-memory DirectMessageRepository.
func (s *Store) DirectMessages() repository.DirectMessageRepository {
	return &directMessageRepo{s: s}
}

func (r *directMessageRepo) Create(_ context.Context, msg *domain.DirectMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msg.ID = r.s.nextID()
	msg.CreatedAt = r.s.clock.Now()
	r.s.t.directMessages = append(r.s.t.directMessages, *msg)
	return nil
}

func (r *directMessageRepo) ListConversation(_ context.Context, userA, userB string) ([]domain.DirectMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.DirectMessage
	for _, m := range r.s.t.directMessages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *directMessageRepo) MarkSeen(_ context.Context, senderID, receiverID string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for i := range r.s.t.directMessages {
		m := &r.s.t.directMessages[i]
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.Seen {
			seenAt := at
			m.Seen = true
			m.SeenAt = &seenAt
			count++
		}
	}
	return count, nil
}

type attendanceRepo struct{ s *Store }

// Attendance returns the in-memory AttendanceRepository.
func (s *Store) Attendance() repository.AttendanceRepository {
	return &attendanceRepo{s: s}
}

func (r *attendanceRepo) Mark(_ context.Context, att *domain.Attendance) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.t.attendance {
		if existing.UserID == att.UserID && existing.Day.Equal(att.Day) {
			att.ID = existing.ID
			att.CreatedAt = existing.CreatedAt
			return false, nil
		}
	}
	att.ID = r.s.nextID()
	att.CreatedAt = r.s.clock.Now()
	r.s.t.attendance = append(r.s.t.attendance, *att)
	return true, nil
}

func (r *attendanceRepo) ListByUser(_ context.Context, userID string) ([]domain.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Attendance
	for i := len(r.s.t.attendance) - 1; i >= 0; i-- {
		if a := r.s.t.attendance[i]; a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *attendanceRepo) InternsWithoutMark(_ context.Context, day time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	marked := map[string]bool{}
	for _, a := range r.s.t.attendance {
		if a.Day.Equal(day) {
			marked[a.UserID] = true
		}
	}
	var out []string
	for _, u := range r.s.t.users {
		if u.Role == domain.RoleIntern && !marked[u.ID] {
			out = append(out, u.ID)
		}
	}
	return out, nil
}

func (r *attendanceRepo) InternsAbsentBetween(_ context.Context, from, to time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	before := map[string]bool{}
	within := map[string]bool{}
	for _, a := range r.s.t.attendance {
		switch {
		case a.Day.Before(from):
			before[a.UserID] = true
		case !a.Day.After(to):
			within[a.UserID] = true
		}
	}
	var out []string
	for _, u := range r.s.t.users {
		if u.Role == domain.RoleIntern && before[u.ID] && !within[u.ID] {
			out = append(out, u.ID)
		}
	}
	return out, nil
}

func (r *attendanceRepo) CountByUser(_ context.Context) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[string]int)
	for _, a := range r.s.t.attendance {
		counts[a.UserID]++
	}
	return counts, nil
}

type passwordResetRepo struct{ s *Store }

// PasswordResets returns the in-memory PasswordResetRepository.
func (s *Store) PasswordResets() repository.PasswordResetRepository {
	return &passwordResetRepo{s: s}
}

func (r *passwordResetRepo) Create(_ context.Context, token *domain.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token.ID = r.s.nextID()
	token.CreatedAt = r.s.clock.Now()
	r.s.t.resets = append(r.s.t.resets, *token)
	return nil
}

func (r *passwordResetRepo) GetByToken(_ context.Context, value string) (*domain.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.t.resets {
		if t.Token == value {
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *passwordResetRepo) MarkUsed(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.t.resets {
		if t := &r.s.t.resets[i]; t.ID == id && t.UsedAt == nil {
			now := r.s.clock.Now()
			t.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}
