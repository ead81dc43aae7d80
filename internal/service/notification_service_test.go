package service

import (
	"testing"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/realtime"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

func TestNotifyStoresAndPushes(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)

	note, err := h.notifications.Notify(testContext(t), intern.ID, nil, "<i>Welcome</i>", "")
	mustNoErr(t, err)
	if note.Message != "Welcome" || note.Type != domain.NotificationInfo || note.IsRead {
		t.Fatalf("unexpected notification %+v", note)
	}
	published := h.publisher.Events()
	if len(published) != 1 || published[0].Room != realtime.RoomForUser(intern.ID) || published[0].Event != realtime.EventNotification {
		t.Fatalf("unexpected pushes %+v", published)
	}

	_, err = h.notifications.Notify(testContext(t), intern.ID, nil, "<b></b>", "")
	assertCode(t, err, apperrors.CodeValidation)
}

func TestTicketEventsNotifyParticipants(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)
	hr := h.user(t, "Hank", domain.RoleHR)

	ticket, err := h.tickets.CreateTicket(testContext(t), intern.ID, TicketCreateInput{Title: "VPN", Description: "Down"})
	mustNoErr(t, err)
	_, err = h.tickets.AssignTicket(testContext(t), ticket.ID, hr.ID)
	mustNoErr(t, err)
	_, err = h.tickets.TransitionStatus(testContext(t), ticket.ID, domain.TicketStatusClosed, hr.ID)
	mustNoErr(t, err)

	hrInbox, _ := h.notifications.ListForUser(testContext(t), hr.ID, false)
	if len(hrInbox) != 1 || hrInbox[0].Type != domain.NotificationTicket {
		t.Fatalf("unexpected assignee inbox %+v", hrInbox)
	}
	internInbox, _ := h.notifications.ListForUser(testContext(t), intern.ID, false)
	if len(internInbox) != 2 || internInbox[0].Message != "Your ticket status changed to Closed" {
		t.Fatalf("unexpected creator inbox %+v", internInbox)
	}
}

func TestMarkReadAndMarkAllRead(t *testing.T) {
	h := newHarness(t)
	intern := h.user(t, "Ina", domain.RoleIntern)
	other := h.user(t, "Otto", domain.RoleIntern)

	first, err := h.notifications.Notify(testContext(t), intern.ID, nil, "one", domain.NotificationInfo)
	mustNoErr(t, err)
	for _, msg := range []string{"two", "three"} {
		_, err := h.notifications.Notify(testContext(t), intern.ID, nil, msg, domain.NotificationReminder)
		mustNoErr(t, err)
	}

	assertCode(t, h.notifications.MarkRead(testContext(t), other.ID, first.ID), apperrors.CodeNotFound)
	mustNoErr(t, h.notifications.MarkRead(testContext(t), intern.ID, first.ID))

	unread, _ := h.notifications.ListForUser(testContext(t), intern.ID, true)
	if len(unread) != 2 {
		t.Fatalf("expected 2 unread, got %d", len(unread))
	}
	n, err := h.notifications.MarkAllRead(testContext(t), intern.ID)
	mustNoErr(t, err)
	if n != 2 {
		t.Fatalf("expected 2 marked, got %d", n)
	}
	n, _ = h.notifications.MarkAllRead(testContext(t), intern.ID)
	if n != 0 {
		t.Fatalf("expected nothing left to mark, got %d", n)
	}
}

func TestBroadcastAudience(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, "Ada", domain.RoleAdmin)
	hr := h.user(t, "Hank", domain.RoleHR)
	loneHR := h.user(t, "Lou", domain.RoleHR)
	direct := h.user(t, "Dee", domain.RoleIntern)
	inBatch := h.user(t, "Bea", domain.RoleIntern)
	outsider := h.user(t, "Oz", domain.RoleIntern)

	_, err := h.membership.AssignInternToHR(testContext(t), hr.ID, direct.ID)
	mustNoErr(t, err)
	_, err = h.membership.CreateBatch(testContext(t), BatchInput{
		Name:      "Alpha",
		InternIDs: []string{inBatch.ID, direct.ID},
		HRIDs:     []string{hr.ID},
	})
	mustNoErr(t, err)

	_, err = h.notifications.Broadcast(testContext(t), actorFor(direct), "hi", "")
	assertCode(t, err, apperrors.CodeForbidden)
	_, err = h.notifications.Broadcast(testContext(t), actorFor(hr), "   ", "")
	assertCode(t, err, apperrors.CodeValidation)

	sent, err := h.notifications.Broadcast(testContext(t), actorFor(hr), "Standup at ten", domain.NotificationReminder)
	mustNoErr(t, err)
	if sent != 2 {
		t.Fatalf("expected HR to reach 2 interns, got %d", sent)
	}
	unread, _ := h.notifications.ListForUser(testContext(t), outsider.ID, true)
	if len(unread) != 0 {
		t.Fatalf("outsider must not be reached")
	}

	sent, err = h.notifications.Broadcast(testContext(t), actorFor(loneHR), "nobody", "")
	mustNoErr(t, err)
	if sent != 0 {
		t.Fatalf("HR without association reaches nobody, got %d", sent)
	}

	sent, err = h.notifications.Broadcast(testContext(t), actorFor(admin), "All hands", domain.NotificationInfo)
	mustNoErr(t, err)
	if sent != 3 {
		t.Fatalf("expected admin to reach every intern, got %d", sent)
	}
}
