package service

import (
	"testing"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/realtime"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

func TestChatSendAndSeen(t *testing.T) {
	h := newHarness(t)
	ina := h.user(t, "Ina", domain.RoleIntern)
	hank := h.user(t, "Hank", domain.RoleHR)

	_, err := h.chat.Send(testContext(t), ina.ID, hank.ID, "hello")
	mustNoErr(t, err)
	_, err = h.chat.Send(testContext(t), ina.ID, hank.ID, "are you there?")
	mustNoErr(t, err)
	_, err = h.chat.Send(testContext(t), hank.ID, ina.ID, "yes")
	mustNoErr(t, err)

	published := h.publisher.Events()
	if len(published) != 3 || published[0].Room != realtime.RoomForPair(hank.ID, ina.ID) || published[0].Event != realtime.EventNewMessage {
		t.Fatalf("unexpected pushes %+v", published)
	}

	convo, err := h.chat.Conversation(testContext(t), hank.ID, ina.ID)
	mustNoErr(t, err)
	if len(convo) != 3 || convo[0].Content != "hello" || convo[2].Content != "yes" {
		t.Fatalf("unexpected conversation %+v", convo)
	}

	n, err := h.chat.MarkSeen(testContext(t), hank.ID, ina.ID)
	mustNoErr(t, err)
	if n != 2 {
		t.Fatalf("expected 2 messages seen, got %d", n)
	}
	n, _ = h.chat.MarkSeen(testContext(t), hank.ID, ina.ID)
	if n != 0 {
		t.Fatalf("expected repeat to change nothing, got %d", n)
	}
}

func TestChatSendValidation(t *testing.T) {
	h := newHarness(t)
	ina := h.user(t, "Ina", domain.RoleIntern)

	_, err := h.chat.Send(testContext(t), ina.ID, ina.ID, "self")
	assertCode(t, err, apperrors.CodeValidation)
	_, err = h.chat.Send(testContext(t), ina.ID, "ghost", "boo")
	assertCode(t, err, apperrors.CodeNotFound)
	_, err = h.chat.Send(testContext(t), ina.ID, "ghost", "<script></script>")
	assertCode(t, err, apperrors.CodeValidation)
}
