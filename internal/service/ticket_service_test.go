package service

import (
	"testing"
	"time"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/realtime"
	"github.com/codebyviral/irms-backend/internal/repository"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

func TestCreateTicketSeedsSingleHistoryEntry(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)

	ticket, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{
		Title:       "Laptop <b>broken</b>",
		Description: "Screen flickers",
	})
	mustNoErr(t, err)

	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("expected Open, got %s", ticket.Status)
	}
	if ticket.Title != "Laptop broken" {
		t.Fatalf("expected markup stripped, got %q", ticket.Title)
	}
	history, err := h.store.TicketHistory().ListByTicket(testContext(t), ticket.ID)
	mustNoErr(t, err)
	if len(history) != 1 || history[0].Action != "Ticket created" {
		t.Fatalf("expected one creation entry, got %+v", history)
	}
}

func TestCreateTicketRequiresTitleAndDescription(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)

	_, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{Title: "<p></p>", Description: "x"})
	assertCode(t, err, apperrors.CodeValidation)

	tickets, err := h.store.Tickets().ListWithFilter(testContext(t), repository.TicketFilter{})
	mustNoErr(t, err)
	if len(tickets) != 0 {
		t.Fatalf("expected no ticket stored, got %d", len(tickets))
	}
}

func TestAssignTicketOnlyOnce(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)
	hr := h.user(t, "Hank", domain.RoleHR)
	other := h.user(t, "Olga", domain.RoleHR)

	ticket, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{Title: "VPN", Description: "No access"})
	mustNoErr(t, err)

	assigned, err := h.tickets.AssignTicket(testContext(t), ticket.ID, hr.ID)
	mustNoErr(t, err)
	if assigned.AssignedTo == nil || *assigned.AssignedTo != hr.ID {
		t.Fatalf("expected assignee %s, got %v", hr.ID, assigned.AssignedTo)
	}

	_, err = h.tickets.AssignTicket(testContext(t), ticket.ID, other.ID)
	assertCode(t, err, apperrors.CodeAlreadyAssigned)

	stored, err := h.store.Tickets().GetByID(testContext(t), ticket.ID)
	mustNoErr(t, err)
	if *stored.AssignedTo != hr.ID {
		t.Fatalf("assignee changed to %s", *stored.AssignedTo)
	}
	history, _ := h.store.TicketHistory().ListByTicket(testContext(t), ticket.ID)
	if len(history) != 2 || history[1].Action != "Assigned to Hank" {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestAssignMissingTicket(t *testing.T) {
	h := newHarness(t)
	hr := h.user(t, "Hank", domain.RoleHR)

	_, err := h.tickets.AssignTicket(testContext(t), "missing", hr.ID)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestTransitionStatus(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)
	hr := h.user(t, "Hank", domain.RoleHR)
	ticket, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{Title: "Badge", Description: "Lost"})
	mustNoErr(t, err)

	_, err = h.tickets.TransitionStatus(testContext(t), ticket.ID, "Resolved", hr.ID)
	assertCode(t, err, apperrors.CodeInvalidStatus)

	pending, err := h.tickets.TransitionStatus(testContext(t), ticket.ID, domain.TicketStatusPendingConfirmation, hr.ID)
	mustNoErr(t, err)
	if pending.PendingConfirmationSince == nil || !pending.PendingConfirmationSince.Equal(h.clock.Now()) {
		t.Fatalf("expected pending stamp at %s, got %v", h.clock.Now(), pending.PendingConfirmationSince)
	}

	reopened, err := h.tickets.TransitionStatus(testContext(t), ticket.ID, domain.TicketStatusInProgress, hr.ID)
	mustNoErr(t, err)
	if reopened.PendingConfirmationSince != nil {
		t.Fatalf("expected pending stamp cleared")
	}

	history, _ := h.store.TicketHistory().ListByTicket(testContext(t), ticket.ID)
	want := []string{"Ticket created", "Status changed to Pending Confirmation", "Status changed to In Progress"}
	if len(history) != len(want) {
		t.Fatalf("expected %d history entries, got %d", len(want), len(history))
	}
	for i, action := range want {
		if history[i].Action != action {
			t.Fatalf("history[%d] = %q, want %q", i, history[i].Action, action)
		}
	}
	if history[2].ActorID == nil || *history[2].ActorID != hr.ID {
		t.Fatalf("expected actor %s on status entry", hr.ID)
	}
}

func TestPostMessageRequiresParticipant(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)
	outsider := h.user(t, "Otto", domain.RoleIntern)
	ticket, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{Title: "Desk", Description: "Wobbly"})
	mustNoErr(t, err)

	_, err = h.tickets.PostMessage(testContext(t), ticket.ID, outsider.ID, "hello")
	assertCode(t, err, apperrors.CodeForbidden)

	msg, err := h.tickets.PostMessage(testContext(t), ticket.ID, intern.ID, "any update?")
	mustNoErr(t, err)
	if msg.Seen {
		t.Fatalf("new message must be unseen")
	}

	published := h.publisher.Events()
	if len(published) != 1 {
		t.Fatalf("expected one realtime event, got %d", len(published))
	}
	if published[0].Room != realtime.RoomForTicket(ticket.ID) || published[0].Event != realtime.EventNewTicketMessage {
		t.Fatalf("unexpected realtime event %+v", published[0])
	}
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)
	hr := h.user(t, "Hank", domain.RoleHR)
	ticket, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{Title: "Mail", Description: "Quota"})
	mustNoErr(t, err)
	_, err = h.tickets.AssignTicket(testContext(t), ticket.ID, hr.ID)
	mustNoErr(t, err)

	for _, post := range []struct{ sender, text string }{
		{intern.ID, "first"},
		{intern.ID, "second"},
		{hr.ID, "looking"},
	} {
		_, err := h.tickets.PostMessage(testContext(t), ticket.ID, post.sender, post.text)
		mustNoErr(t, err)
	}

	n, err := h.tickets.MarkSeen(testContext(t), actorFor(intern), ticket.ID)
	mustNoErr(t, err)
	if n != 1 {
		t.Fatalf("expected 1 message flipped for creator, got %d", n)
	}
	n, err = h.tickets.MarkSeen(testContext(t), actorFor(intern), ticket.ID)
	mustNoErr(t, err)
	if n != 0 {
		t.Fatalf("expected repeat to flip nothing, got %d", n)
	}
	n, err = h.tickets.MarkSeen(testContext(t), actorFor(hr), ticket.ID)
	mustNoErr(t, err)
	if n != 2 {
		t.Fatalf("expected 2 messages flipped for assignee, got %d", n)
	}

	msgs, err := h.tickets.ListMessages(testContext(t), actorFor(hr), ticket.ID)
	mustNoErr(t, err)
	if msgs[0].Text != "first" || msgs[2].Text != "looking" {
		t.Fatalf("messages out of order: %+v", msgs)
	}
}

func TestMarkSeenRequiresParticipant(t *testing.T) {
	h := newHarness(t)
	creator := h.user(t, "Ina", domain.RoleIntern)
	outsider := h.user(t, "Otto", domain.RoleIntern)
	admin := h.user(t, "Ada", domain.RoleAdmin)
	ticket, err := h.tickets.CreateTicket(testContext(t), creator.ID, TicketCreateInput{Title: "VPN", Description: "Down"})
	mustNoErr(t, err)
	_, err = h.tickets.PostMessage(testContext(t), ticket.ID, creator.ID, "still down")
	mustNoErr(t, err)

	_, err = h.tickets.MarkSeen(testContext(t), actorFor(outsider), ticket.ID)
	assertCode(t, err, apperrors.CodeForbidden)
	msgs, _ := h.store.TicketMessages().ListByTicket(testContext(t), ticket.ID)
	if msgs[0].Seen {
		t.Fatalf("outsider must not flip seen flags")
	}

	n, err := h.tickets.MarkSeen(testContext(t), actorFor(admin), ticket.ID)
	mustNoErr(t, err)
	if n != 1 {
		t.Fatalf("expected staff to mark 1 message, got %d", n)
	}

	_, err = h.tickets.MarkSeen(testContext(t), actorFor(creator), "missing")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestRankAssigneesOrdersByCountThenID(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)
	a := h.user(t, "Alice", domain.RoleHR)
	b := h.user(t, "Bob", domain.RoleHR)
	c := h.user(t, "Cara", domain.RoleHR)

	closeTicketFor := func(assignee domain.User) {
		ticket, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{Title: "T", Description: "D"})
		mustNoErr(t, err)
		_, err = h.tickets.AssignTicket(testContext(t), ticket.ID, assignee.ID)
		mustNoErr(t, err)
		_, err = h.tickets.TransitionStatus(testContext(t), ticket.ID, domain.TicketStatusClosed, assignee.ID)
		mustNoErr(t, err)
	}
	closeTicketFor(c)
	closeTicketFor(c)
	closeTicketFor(b)
	closeTicketFor(a)

	open, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{Title: "T", Description: "D"})
	mustNoErr(t, err)
	_, err = h.tickets.AssignTicket(testContext(t), open.ID, b.ID)
	mustNoErr(t, err)

	ranks, err := h.tickets.RankAssignees(testContext(t))
	mustNoErr(t, err)
	if len(ranks) != 3 {
		t.Fatalf("expected 3 ranked assignees, got %d", len(ranks))
	}
	if ranks[0].UserID != c.ID || ranks[0].ClosedCount != 2 || ranks[0].Name != "Cara" {
		t.Fatalf("unexpected leader %+v", ranks[0])
	}
	first, second := a.ID, b.ID
	if second < first {
		first, second = second, first
	}
	if ranks[1].UserID != first || ranks[2].UserID != second {
		t.Fatalf("ties not ordered by id: %+v", ranks)
	}
}

func TestExpirePendingConfirmations(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)
	hr := h.user(t, "Hank", domain.RoleHR)

	stale, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{Title: "Old", Description: "D"})
	mustNoErr(t, err)
	_, err = h.tickets.TransitionStatus(testContext(t), stale.ID, domain.TicketStatusPendingConfirmation, hr.ID)
	mustNoErr(t, err)

	h.clock.Advance(20 * time.Hour)
	fresh, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{Title: "New", Description: "D"})
	mustNoErr(t, err)
	_, err = h.tickets.TransitionStatus(testContext(t), fresh.ID, domain.TicketStatusPendingConfirmation, hr.ID)
	mustNoErr(t, err)

	h.clock.Advance(5 * time.Hour)
	closed, err := h.tickets.ExpirePendingConfirmations(testContext(t), 24*time.Hour)
	mustNoErr(t, err)
	if closed != 1 {
		t.Fatalf("expected 1 ticket closed, got %d", closed)
	}

	got, _ := h.store.Tickets().GetByID(testContext(t), stale.ID)
	if got.Status != domain.TicketStatusClosed || got.PendingConfirmationSince != nil {
		t.Fatalf("stale ticket not closed: %+v", got)
	}
	history, _ := h.store.TicketHistory().ListByTicket(testContext(t), stale.ID)
	last := history[len(history)-1]
	if last.Action != "Status changed to Closed" || last.ActorID != nil {
		t.Fatalf("expected system close entry, got %+v", last)
	}
	kept, _ := h.store.Tickets().GetByID(testContext(t), fresh.ID)
	if kept.Status != domain.TicketStatusPendingConfirmation {
		t.Fatalf("fresh ticket should stay pending, got %s", kept.Status)
	}

	again, err := h.tickets.ExpirePendingConfirmations(testContext(t), 24*time.Hour)
	mustNoErr(t, err)
	if again != 0 {
		t.Fatalf("expected nothing left to expire, got %d", again)
	}
}

func TestListTicketsScopesNonStaff(t *testing.T) {
	h := newHarness(t)
	ina := h.user(t, "Ina", domain.RoleIntern)
	ivan := h.user(t, "Ivan", domain.RoleIntern)
	admin := h.user(t, "Ada", domain.RoleAdmin)

	for _, creator := range []domain.User{ina, ivan, ina} {
		_, err := h.tickets.CreateTicket(testContext(t), creator.ID, TicketCreateInput{Title: "T", Description: "D"})
		mustNoErr(t, err)
	}

	own, err := h.tickets.ListTickets(testContext(t), actorFor(ina), TicketListFilter{})
	mustNoErr(t, err)
	if len(own) != 2 {
		t.Fatalf("expected 2 own tickets, got %d", len(own))
	}
	all, err := h.tickets.ListTickets(testContext(t), actorFor(admin), TicketListFilter{})
	mustNoErr(t, err)
	if len(all) != 3 {
		t.Fatalf("expected 3 tickets for admin, got %d", len(all))
	}

	_, err = h.tickets.GetTicket(testContext(t), actorFor(ivan), own[0].ID)
	assertCode(t, err, apperrors.CodeForbidden)
}
