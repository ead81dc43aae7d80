package testfixtures

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/realtime"
)

// SeedUser inserts a user with the given role and fails the test on error.
func (s *Store) SeedUser(t testing.TB, name string, role domain.Role) domain.User {
	t.Helper()
	user := &domain.User{
		Name:      name,
		Email:     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Role:      role,
		StartDate: s.clock.Now(),
	}
	if err := s.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %q: %v", name, err)
	}
	return *user
}

// SeedBatch inserts an empty batch and fails the test on error.
func (s *Store) SeedBatch(t testing.TB, name string) domain.Batch {
	t.Helper()
	batch := &domain.Batch{Name: name, StartDate: s.clock.Now()}
	if err := s.Batches().Create(context.Background(), batch); err != nil {
		t.Fatalf("seed batch %q: %v", name, err)
	}
	return *batch
}

// Published is one event captured by RecordingPublisher.
type Published struct {
	Room    string
	Event   string
	Payload any
}

// RecordingPublisher captures realtime publishes.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Published
}

var _ realtime.Publisher = (*RecordingPublisher)(nil)

// Publish records the event.
func (p *RecordingPublisher) Publish(_ context.Context, room, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Published{Room: room, Event: event, Payload: payload})
	return nil
}

// Events returns a copy of everything published so far.
func (p *RecordingPublisher) Events() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Published(nil), p.events...)
}
