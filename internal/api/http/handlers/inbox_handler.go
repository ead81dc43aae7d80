package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebyviral/irms-backend/internal/api/dto"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/service"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// InboxHandler serves notifications, direct chat and attendance.
type InboxHandler struct {
	notifications *service.NotificationService
	chat          *service.ChatService
	attendance    *service.AttendanceService
	users         *service.AuthService
}

// NewInboxHandler constructs handler.
func NewInboxHandler(notifications *service.NotificationService, chat *service.ChatService, attendance *service.AttendanceService, users *service.AuthService) *InboxHandler {
	return &InboxHandler{notifications: notifications, chat: chat, attendance: attendance, users: users}
}

// ListNotifications GET /notifications.
func (h *InboxHandler) ListNotifications(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	notes, err := h.notifications.ListForUser(c.UserContext(), p.UserID(), c.QueryBool("unread", false))
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notes))
	for i := range notes {
		items = append(items, notificationResponse(&notes[i]))
	}
	return data(c, items)
}

// Notify POST /notifications.
func (h *InboxHandler) Notify(c *fiber.Ctx) error {
	var req dto.NotifyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("user_id", req.UserID); err != nil {
		return err
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	if _, err := h.users.GetUser(c.UserContext(), req.UserID); err != nil {
		return err
	}
	note, err := h.notifications.Notify(c.UserContext(), req.UserID, req.TaskID, req.Message, req.Type)
	if err != nil {
		return err
	}
	return created(c, notificationResponse(note))
}

// MarkRead PATCH /notifications/:id/read.
func (h *InboxHandler) MarkRead(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.UserContext(), p.UserID(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllRead POST /notifications/read-all.
func (h *InboxHandler) MarkAllRead(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	n, err := h.notifications.MarkAllRead(c.UserContext(), p.UserID())
	if err != nil {
		return err
	}
	return data(c, fiber.Map{"updated": n})
}

// Broadcast POST /notifications/broadcast.
func (h *InboxHandler) Broadcast(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.BroadcastRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	sent, err := h.notifications.Broadcast(c.UserContext(), actorOf(p), req.Message, req.Type)
	if err != nil {
		return err
	}
	return data(c, fiber.Map{"recipients": sent})
}

// SendMessage POST /chat/messages.
func (h *InboxHandler) SendMessage(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("receiver_id", req.ReceiverID); err != nil {
		return err
	}
	msg, err := h.chat.Send(c.UserContext(), p.UserID(), req.ReceiverID, req.Content)
	if err != nil {
		return err
	}
	return created(c, directMessageResponse(msg))
}

// Conversation GET /chat/:userId.
func (h *InboxHandler) Conversation(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	msgs, err := h.chat.Conversation(c.UserContext(), p.UserID(), userID)
	if err != nil {
		return err
	}
	items := make([]dto.DirectMessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, directMessageResponse(&msgs[i]))
	}
	return data(c, items)
}

// MarkConversationSeen POST /chat/:userId/seen.
func (h *InboxHandler) MarkConversationSeen(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	n, err := h.chat.MarkSeen(c.UserContext(), p.UserID(), userID)
	if err != nil {
		return err
	}
	return data(c, fiber.Map{"updated": n})
}

// MarkAttendance POST /attendance.
func (h *InboxHandler) MarkAttendance(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	mark, isNew, err := h.attendance.MarkToday(c.UserContext(), p.UserID())
	if err != nil {
		return err
	}
	if isNew {
		return created(c, attendanceResponse(mark))
	}
	return data(c, attendanceResponse(mark))
}

// ListAttendance GET /attendance.
func (h *InboxHandler) ListAttendance(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return h.listAttendance(c, p.UserID())
}

// UserAttendance GET /attendance/:userId.
func (h *InboxHandler) UserAttendance(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	return h.listAttendance(c, userID)
}

func (h *InboxHandler) listAttendance(c *fiber.Ctx, userID string) error {
	marks, err := h.attendance.List(c.UserContext(), userID)
	if err != nil {
		return err
	}
	items := make([]dto.AttendanceResponse, 0, len(marks))
	for i := range marks {
		items = append(items, attendanceResponse(&marks[i]))
	}
	return data(c, items)
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		TaskID:    n.TaskID,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func directMessageResponse(m *domain.DirectMessage) dto.DirectMessageResponse {
	return dto.DirectMessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Seen:       m.Seen,
		SeenAt:     m.SeenAt,
		CreatedAt:  m.CreatedAt,
	}
}

func attendanceResponse(a *domain.Attendance) dto.AttendanceResponse {
	return dto.AttendanceResponse{
		ID:        a.ID,
		Day:       a.Day.Format("2006-01-02"),
		CreatedAt: a.CreatedAt,
	}
}
