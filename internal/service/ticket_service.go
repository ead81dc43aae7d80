package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/events"
	"github.com/codebyviral/irms-backend/internal/realtime"
	"github.com/codebyviral/irms-backend/internal/repository"
	"github.com/codebyviral/irms-backend/internal/sanitize"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

const actionTicketCreated = "Ticket created"

// TicketService coordinates ticket workflows. It records state; it does not
// enforce a transition graph.
type TicketService struct {
	tx         repository.TxManager
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	history    repository.TicketHistoryRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	publisher  realtime.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TxManager   repository.TxManager
	TicketRepo  repository.TicketRepository
	MessageRepo repository.TicketMessageRepository
	HistoryRepo repository.TicketHistoryRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Publisher   realtime.Publisher
	Logger      *zap.Logger
	Now         func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
}

// TicketListFilter narrows ticket listings.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	AssignedTo *string
	Search     *string
	Limit      int
	Offset     int
}

// TicketDetail is a ticket with its thread and audit trail.
type TicketDetail struct {
	Ticket   *domain.Ticket
	Messages []domain.TicketMessage
	History  []domain.TicketHistory
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = realtime.NewNopPublisher()
	}
	return &TicketService{
		tx:         deps.TxManager,
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		history:    deps.HistoryRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		publisher:  publisher,
		logger:     loggerOrNop(deps.Logger),
		now:        nowOrDefault(deps.Now),
	}
}

// CreateTicket opens a ticket and seeds its history with a single entry.
func (s *TicketService) CreateTicket(ctx context.Context, creatorID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := sanitize.PlainText(input.Title)
	description := sanitize.PlainText(input.Description)

	missing := []string{}
	if title == "" {
		missing = append(missing, "title")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if creatorID == "" {
		missing = append(missing, "created_by")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		CreatedBy:   creatorID,
		Status:      domain.TicketStatusOpen,
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return apperrors.MapError(err)
		}
		return s.appendHistory(ctx, ticket.ID, actionTicketCreated, strPtr(creatorID))
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, events.New(events.EventTicketCreated, ticket.ID, strPtr(creatorID), s.now(),
		events.TicketCreatedPayload{CreatedBy: creatorID, Title: ticket.Title}))
	return ticket, nil
}

// AssignTicket sets the assignee once. A ticket that already has one is rejected.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID, assigneeID string) (*domain.Ticket, error) {
	if assigneeID == "" {
		return nil, apperrors.NewValidationError("assignee is required", map[string]any{"fields": []string{"assignee_id"}})
	}

	var ticket *domain.Ticket
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
		}
		if ticket.AssignedTo != nil {
			return apperrors.NewAlreadyAssigned(map[string]any{
				"ticket_id":   ticketID,
				"assigned_to": *ticket.AssignedTo,
			})
		}
		assignee, err := s.users.GetByID(ctx, assigneeID)
		if err != nil {
			return notFoundOr(err, "user", map[string]any{"user_id": assigneeID})
		}
		if err := s.tickets.SetAssignee(ctx, ticketID, assigneeID); err != nil {
			return apperrors.MapError(err)
		}
		ticket.AssignedTo = strPtr(assigneeID)
		ticket.UpdatedAt = s.now()
		return s.appendHistory(ctx, ticketID, "Assigned to "+assignee.Name, strPtr(assigneeID))
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, events.New(events.EventTicketAssigned, ticket.ID, strPtr(assigneeID), s.now(),
		events.TicketAssignedPayload{CreatedBy: ticket.CreatedBy, AssigneeID: assigneeID}))
	return ticket, nil
}

// TransitionStatus records a status change. Entering Pending Confirmation stamps
// the time the confirmation window opened; any other status clears it.
func (s *TicketService) TransitionStatus(ctx context.Context, ticketID string, status domain.TicketStatus, actorID string) (*domain.Ticket, error) {
	if !status.Valid() {
		allowed := make([]string, len(domain.TicketStatuses))
		for i, st := range domain.TicketStatuses {
			allowed[i] = string(st)
		}
		return nil, apperrors.NewInvalidStatus(string(status), allowed)
	}

	var (
		ticket    *domain.Ticket
		oldStatus domain.TicketStatus
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
		}
		oldStatus = ticket.Status

		now := s.now()
		var pendingSince *time.Time
		if status == domain.TicketStatusPendingConfirmation {
			pendingSince = &now
		}
		if err := s.tickets.UpdateStatus(ctx, ticketID, status, pendingSince); err != nil {
			return apperrors.MapError(err)
		}
		ticket.Status = status
		ticket.PendingConfirmationSince = pendingSince
		ticket.UpdatedAt = now

		var actor *string
		if actorID != "" {
			actor = strPtr(actorID)
		}
		return s.appendHistory(ctx, ticketID, statusAction(status), actor)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, events.New(events.EventTicketStatusChanged, ticket.ID, strPtr(actorID), s.now(),
		events.TicketStatusChangedPayload{CreatedBy: ticket.CreatedBy, OldStatus: oldStatus, NewStatus: status}))
	return ticket, nil
}

// PostMessage appends a chat line. Only the creator and the current assignee
// may write to a ticket thread.
func (s *TicketService) PostMessage(ctx context.Context, ticketID, senderID, text string) (*domain.TicketMessage, error) {
	text = sanitize.PlainText(text)
	if text == "" {
		return nil, apperrors.NewValidationError("message text is required", map[string]any{"fields": []string{"text"}})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !ticket.IsParticipant(senderID) {
		return nil, apperrors.NewForbidden("only the ticket creator or assignee can post messages")
	}

	msg := &domain.TicketMessage{
		TicketID: ticketID,
		SenderID: senderID,
		Text:     text,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.publisher.Publish(ctx, realtime.RoomForTicket(ticketID), realtime.EventNewTicketMessage, msg); err != nil {
		s.logger.Warn("realtime publish failed", zap.String("ticket_id", ticketID), zap.Error(err))
	}
	publish(ctx, s.dispatcher, events.New(events.EventTicketMessageAdded, ticketID, strPtr(senderID), s.now(),
		events.TicketMessageAddedPayload{Message: *msg}))
	return msg, nil
}

// ListMessages returns the thread in receipt order.
func (s *TicketService) ListMessages(ctx context.Context, actor Actor, ticketID string) ([]domain.TicketMessage, error) {
	if _, err := s.loadVisible(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// MarkSeen flags every message not written by the viewer as seen and returns
// how many changed. Repeating the call changes nothing. Only staff and the
// ticket's participants may mark messages.
func (s *TicketService) MarkSeen(ctx context.Context, viewer Actor, ticketID string) (int64, error) {
	if _, err := s.loadVisible(ctx, viewer, ticketID); err != nil {
		return 0, err
	}
	n, err := s.messages.MarkSeen(ctx, ticketID, viewer.ID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return n, nil
}

// RankAssignees orders assignees by closed tickets, highest first. Equal counts
// are ordered by user id.
func (s *TicketService) RankAssignees(ctx context.Context) ([]domain.AssigneeRank, error) {
	ranks, err := s.tickets.ClosedCountsByAssignee(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].ClosedCount != ranks[j].ClosedCount {
			return ranks[i].ClosedCount > ranks[j].ClosedCount
		}
		return ranks[i].UserID < ranks[j].UserID
	})
	return ranks, nil
}

// ListTickets returns every ticket to staff and own tickets to everyone else.
func (s *TicketService) ListTickets(ctx context.Context, actor Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		AssignedTo: filter.AssignedTo,
		Statuses:   filter.Statuses,
		SearchTerm: filter.Search,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if !actor.IsStaff() {
		repoFilter.CreatedBy = strPtr(actor.ID)
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket returns a ticket with its messages and history.
func (s *TicketService) GetTicket(ctx context.Context, actor Actor, ticketID string) (*TicketDetail, error) {
	ticket, err := s.loadVisible(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	history, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketDetail{Ticket: ticket, Messages: msgs, History: history}, nil
}

// ExpirePendingConfirmations closes tickets left in Pending Confirmation longer
// than window. Each ticket is closed in its own transaction; failures are
// logged and skipped.
func (s *TicketService) ExpirePendingConfirmations(ctx context.Context, window time.Duration) (int, error) {
	cutoff := s.now().Add(-window)
	stale, err := s.tickets.ListPendingConfirmationBefore(ctx, cutoff)
	if err != nil {
		return 0, apperrors.MapError(err)
	}

	closed := 0
	for _, candidate := range stale {
		changed := false
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			ticket, err := s.tickets.GetByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if ticket.Status != domain.TicketStatusPendingConfirmation ||
				ticket.PendingConfirmationSince == nil || !ticket.PendingConfirmationSince.Before(cutoff) {
				return nil
			}
			if err := s.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusClosed, nil); err != nil {
				return err
			}
			changed = true
			return s.appendHistory(ctx, ticket.ID, statusAction(domain.TicketStatusClosed), nil)
		})
		if err != nil {
			s.logger.Error("failed to close pending ticket", zap.String("ticket_id", candidate.ID), zap.Error(err))
			continue
		}
		if !changed {
			continue
		}
		closed++
		publish(ctx, s.dispatcher, events.New(events.EventTicketStatusChanged, candidate.ID, nil, s.now(),
			events.TicketStatusChangedPayload{
				CreatedBy: candidate.CreatedBy,
				OldStatus: domain.TicketStatusPendingConfirmation,
				NewStatus: domain.TicketStatusClosed,
			}))
	}
	return closed, nil
}

func (s *TicketService) loadVisible(ctx context.Context, actor Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !actor.IsStaff() && !ticket.IsParticipant(actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *TicketService) appendHistory(ctx context.Context, ticketID, action string, actorID *string) error {
	entry := &domain.TicketHistory{
		TicketID:  ticketID,
		Action:    action,
		ActorID:   actorID,
		CreatedAt: s.now(),
	}
	if err := s.history.Create(ctx, entry); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func statusAction(status domain.TicketStatus) string {
	return "Status changed to " + string(status)
}
