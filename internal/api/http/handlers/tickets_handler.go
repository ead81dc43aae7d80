package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/codebyviral/irms-backend/internal/api/dto"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/service"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// TicketsHandler manages ticket endpoints for every role.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), p.UserID(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return created(c, ticketSummary(ticket))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), actorOf(p), parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return data(c, items)
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicket(c.UserContext(), actorOf(p), id)
	if err != nil {
		return err
	}
	return data(c, ticketDetail(detail))
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := checkIDs("assignee_id", req.AssigneeID); err != nil {
		return err
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}
	ticket, err := h.service.AssignTicket(c.UserContext(), id, req.AssigneeID)
	if err != nil {
		return err
	}
	return data(c, ticketSummary(ticket))
}

// UpdateStatus PATCH /tickets/:id/status. Participants may move their own
// tickets; staff may move any.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	actor := actorOf(p)
	if !actor.IsStaff() {
		if _, err := h.service.GetTicket(c.UserContext(), actor, id); err != nil {
			return err
		}
	}
	ticket, err := h.service.TransitionStatus(c.UserContext(), id, domain.TicketStatus(req.Status), p.UserID())
	if err != nil {
		return err
	}
	return data(c, ticketSummary(ticket))
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.service.PostMessage(c.UserContext(), id, p.UserID(), req.Text)
	if err != nil {
		return err
	}
	return created(c, ticketMessageResponse(msg))
}

// ListMessages GET /tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	msgs, err := h.service.ListMessages(c.UserContext(), actorOf(p), id)
	if err != nil {
		return err
	}
	items := make([]dto.TicketMessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, ticketMessageResponse(&msgs[i]))
	}
	return data(c, items)
}

// MarkSeen POST /tickets/:id/seen.
func (h *TicketsHandler) MarkSeen(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkSeen(c.UserContext(), actorOf(p), id)
	if err != nil {
		return err
	}
	return data(c, fiber.Map{"updated": n})
}

// Ranking GET /tickets/ranking.
func (h *TicketsHandler) Ranking(c *fiber.Ctx) error {
	ranks, err := h.service.RankAssignees(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.AssigneeRankResponse, 0, len(ranks))
	for _, r := range ranks {
		items = append(items, dto.AssigneeRankResponse{
			UserID:      r.UserID,
			Name:        r.Name,
			Email:       r.Email,
			ClosedCount: r.ClosedCount,
		})
	}
	return data(c, items)
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedTo = &assignee
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = &search
	}
	return filter
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                       t.ID,
		Title:                    t.Title,
		Description:              t.Description,
		Status:                   string(t.Status),
		CreatedBy:                t.CreatedBy,
		AssignedTo:               t.AssignedTo,
		PendingConfirmationSince: t.PendingConfirmationSince,
		CreatedAt:                t.CreatedAt,
		UpdatedAt:                t.UpdatedAt,
	}
}

func ticketDetail(d *service.TicketDetail) dto.TicketDetailResponse {
	resp := dto.TicketDetailResponse{
		TicketSummary: ticketSummary(d.Ticket),
		Messages:      make([]dto.TicketMessageResponse, 0, len(d.Messages)),
		History:       make([]dto.TicketHistoryResponse, 0, len(d.History)),
	}
	for i := range d.Messages {
		resp.Messages = append(resp.Messages, ticketMessageResponse(&d.Messages[i]))
	}
	for _, h := range d.History {
		resp.History = append(resp.History, dto.TicketHistoryResponse{
			Action:    h.Action,
			ActorID:   h.ActorID,
			CreatedAt: h.CreatedAt,
		})
	}
	return resp
}

func ticketMessageResponse(m *domain.TicketMessage) dto.TicketMessageResponse {
	return dto.TicketMessageResponse{
		ID:        m.ID,
		TicketID:  m.TicketID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		Seen:      m.Seen,
		CreatedAt: m.CreatedAt,
	}
}
