// Package testfixtures provides in-memory repositories, a controllable clock and
// deterministic identifiers for service and handler tests.
//
// All repositories share one Store so cross-table reads (joins in SQL) see the
// same data. The TxManager snapshots the store and restores it when the
// transaction function fails. Deleting a user cascades the way the schema's
// foreign keys do; batch counters are left for the caller to reconcile.
// Deleting a batch drops its teams and task links.
package testfixtures

import (
	"context"
	"sync"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/repository"
)

// Store holds every table in memory.
type Store struct {
	mu    sync.Mutex
	clock *Clock
	ids   *IDGenerator
	seq   int64
	t     tables
}

type tables struct {
	users          []domain.User
	batches        []domain.Batch
	teams          []domain.Team
	links          []domain.TaskLink
	associations   []domain.HRAssociation
	tasks          []domain.Task
	submissions    []domain.Submission
	tickets        []domain.Ticket
	ticketMessages []domain.TicketMessage
	ticketHistory  []domain.TicketHistory
	notifications  []domain.Notification
	directMessages []domain.DirectMessage
	attendance     []domain.Attendance
	resets         []domain.PasswordResetToken
	leaves         []domain.LeaveRequest
	weeklyReports  []domain.WeeklyReport
	verifications  []domain.EmailVerification
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock makes the store stamp rows with clock.
func WithClock(clock *Clock) StoreOption {
	return func(s *Store) {
		s.clock = clock
	}
}

// NewStore builds an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{ids: NewUUIDGenerator()}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = NewClock(ReferenceTime())
	}
	return s
}

// Clock returns the clock used for row timestamps.
func (s *Store) Clock() *Clock {
	return s.clock
}

func (s *Store) nextID() string {
	return s.ids.Next()
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

type txKey struct{}

type txManager struct {
	store *Store
}

// TxManager returns a TxManager that rolls the store back on error.
func (s *Store) TxManager() repository.TxManager {
	return &txManager{store: s}
}

func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	m.store.mu.Lock()
	snapshot := m.store.t.clone()
	m.store.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.mu.Lock()
		m.store.t = snapshot
		m.store.mu.Unlock()
		return err
	}
	return nil
}

func (t tables) clone() tables {
	out := tables{
		users:          append([]domain.User(nil), t.users...),
		links:          append([]domain.TaskLink(nil), t.links...),
		tasks:          append([]domain.Task(nil), t.tasks...),
		submissions:    append([]domain.Submission(nil), t.submissions...),
		tickets:        append([]domain.Ticket(nil), t.tickets...),
		ticketMessages: append([]domain.TicketMessage(nil), t.ticketMessages...),
		ticketHistory:  append([]domain.TicketHistory(nil), t.ticketHistory...),
		notifications:  append([]domain.Notification(nil), t.notifications...),
		directMessages: append([]domain.DirectMessage(nil), t.directMessages...),
		attendance:     append([]domain.Attendance(nil), t.attendance...),
		resets:         append([]domain.PasswordResetToken(nil), t.resets...),
		leaves:         append([]domain.LeaveRequest(nil), t.leaves...),
		weeklyReports:  append([]domain.WeeklyReport(nil), t.weeklyReports...),
		verifications:  append([]domain.EmailVerification(nil), t.verifications...),
	}
	for _, b := range t.batches {
		out.batches = append(out.batches, copyBatch(b))
	}
	for _, team := range t.teams {
		out.teams = append(out.teams, copyTeam(team))
	}
	for _, a := range t.associations {
		out.associations = append(out.associations, copyAssociation(a))
	}
	return out
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func copyBatch(b domain.Batch) domain.Batch {
	b.InternIDs = copyStrings(b.InternIDs)
	b.AssociationIDs = copyStrings(b.AssociationIDs)
	return b
}

func copyTeam(t domain.Team) domain.Team {
	t.MemberIDs = copyStrings(t.MemberIDs)
	return t
}

func copyAssociation(a domain.HRAssociation) domain.HRAssociation {
	a.InternIDs = copyStrings(a.InternIDs)
	return a
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(list []string, v string) ([]string, bool) {
	out := list[:0:0]
	removed := false
	for _, s := range list {
		if s == v {
			removed = true
			continue
		}
		out = append(out, s)
	}
	return out, removed
}

func filterSlice[T any](in []T, keep func(T) bool) []T {
	var out []T
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
