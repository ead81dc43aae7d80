package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codebyviral/irms-backend/internal/config"
	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/events"
	"github.com/codebyviral/irms-backend/internal/realtime"
	"github.com/codebyviral/irms-backend/internal/repository"
	"github.com/codebyviral/irms-backend/internal/sanitize"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// NotificationService turns domain events into inbox entries and live pushes.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	batches       repository.BatchRepository
	associations  repository.AssociationRepository
	dispatcher    events.Dispatcher
	publisher     realtime.Publisher
	logger        *zap.Logger
	cfg           config.NotificationConfig
	now           func() time.Time
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	BatchRepo        repository.BatchRepository
	AssociationRepo  repository.AssociationRepository
	Dispatcher       events.Dispatcher
	Publisher        realtime.Publisher
	Logger           *zap.Logger
	Config           config.NotificationConfig
	Now              func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = realtime.NewNopPublisher()
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		batches:       deps.BatchRepo,
		associations:  deps.AssociationRepo,
		dispatcher:    deps.Dispatcher,
		publisher:     publisher,
		logger:        loggerOrNop(deps.Logger),
		cfg:           deps.Config,
		now:           nowOrDefault(deps.Now),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleTicketMessageAdded)
	n.dispatcher.Subscribe(events.EventTaskAssigned, n.handleTaskAssigned)
	n.dispatcher.Subscribe(events.EventSubmissionReviewed, n.handleSubmissionReviewed)
	n.dispatcher.Subscribe(events.EventInternAssignedBatch, n.handleInternAssignedBatch)
	n.dispatcher.Subscribe(events.EventInternAssignedHR, n.handleInternAssignedHR)
	n.dispatcher.Subscribe(events.EventBatchApproval, n.handleBatchApproval)
	n.dispatcher.Subscribe(events.EventLeaveDecided, n.handleLeaveDecided)
}

// Notify stores an inbox entry for userID and pushes it to the user's room.
func (n *NotificationService) Notify(ctx context.Context, userID string, taskID *string, message, kind string) (*domain.Notification, error) {
	message = sanitize.PlainText(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message is required", map[string]any{"fields": []string{"message"}})
	}
	if kind == "" {
		kind = domain.NotificationInfo
	}

	note := &domain.Notification{UserID: userID, TaskID: taskID, Message: message, Type: kind}
	if err := n.notifications.Create(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := n.publisher.Publish(ctx, realtime.RoomForUser(userID), realtime.EventNotification, note); err != nil {
		n.logger.Warn("notification push failed", zap.String("user_id", userID), zap.Error(err))
	}
	return note, nil
}

// ListForUser returns the user's inbox, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	notes, err := n.notifications.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notes, nil
}

// MarkRead flags one of the user's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := n.notifications.MarkRead(ctx, notificationID, userID); err != nil {
		return notFoundOr(err, "notification", map[string]any{"notification_id": notificationID})
	}
	return nil
}

// MarkAllRead flags every unread notification of the user and returns how many changed.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := n.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// Broadcast notifies every intern the actor supervises. Admins reach all
// interns; HR reaches the interns of its association and of the batches that
// association is linked to. It returns the number of recipients.
func (n *NotificationService) Broadcast(ctx context.Context, actor Actor, message, kind string) (int, error) {
	if !actor.IsStaff() {
		return 0, apperrors.NewForbidden("only staff can broadcast notifications")
	}
	if sanitize.PlainText(message) == "" {
		return 0, apperrors.NewValidationError("message is required", map[string]any{"fields": []string{"message"}})
	}

	recipients, err := n.broadcastAudience(ctx, actor)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, userID := range recipients {
		if _, err := n.Notify(ctx, userID, nil, message, kind); err != nil {
			n.logger.Warn("broadcast delivery failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}

func (n *NotificationService) broadcastAudience(ctx context.Context, actor Actor) ([]string, error) {
	if actor.Role == domain.RoleAdmin {
		interns, err := n.users.ListByRole(ctx, domain.RoleIntern)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ids := make([]string, 0, len(interns))
		for _, u := range interns {
			ids = append(ids, u.ID)
		}
		return ids, nil
	}

	assoc, err := n.associations.GetByHR(ctx, actor.ID)
	if err != nil {
		if isNoRows(err) {
			return []string{}, nil
		}
		return nil, apperrors.MapError(err)
	}
	ids := append([]string{}, assoc.InternIDs...)

	batchIDs, err := n.batches.ListIDsByAssociation(ctx, assoc.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, batchID := range batchIDs {
		batch, err := n.batches.GetByID(ctx, batchID)
		if err != nil {
			if isNoRows(err) {
				continue
			}
			return nil, apperrors.MapError(err)
		}
		ids = append(ids, batch.InternIDs...)
	}
	return dedupe(ids), nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	if _, err := n.Notify(ctx, payload.AssigneeID, nil, "A ticket has been assigned to you", domain.NotificationTicket); err != nil {
		return err
	}
	if payload.CreatedBy != payload.AssigneeID {
		if _, err := n.Notify(ctx, payload.CreatedBy, nil, "Your ticket has been assigned", domain.NotificationTicket); err != nil {
			return err
		}
	}
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	msg := fmt.Sprintf("Your ticket status changed to %s", payload.NewStatus)
	_, err := n.Notify(ctx, payload.CreatedBy, nil, msg, domain.NotificationTicket)
	return err
}

func (n *NotificationService) handleTicketMessageAdded(_ context.Context, event events.Event) error {
	n.logger.Debug("TicketMessageAdded", zap.String("ticket_id", event.SubjectID))
	return nil
}

func (n *NotificationService) handleTaskAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TaskAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	msg := fmt.Sprintf("New task assigned: %s (due %s)", payload.Title, payload.EndDate.Format("2006-01-02"))
	_, err := n.Notify(ctx, payload.AssignedTo, strPtr(event.SubjectID), msg, domain.NotificationTask)
	return err
}

func (n *NotificationService) handleSubmissionReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SubmissionReviewedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	msg := fmt.Sprintf("Your submission for %q was %s", payload.Title, strings.ToLower(string(payload.Decision)))
	if payload.Delta != 0 {
		msg = fmt.Sprintf("%s (%+d points)", msg, payload.Delta)
	}
	_, err := n.Notify(ctx, payload.UserID, strPtr(payload.TaskID), msg, domain.NotificationTask)
	return err
}

func (n *NotificationService) handleInternAssignedBatch(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.InternAssignedBatchPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	_, err := n.Notify(ctx, payload.InternID, nil, fmt.Sprintf("You have been added to batch %s", payload.BatchName), domain.NotificationInfo)
	return err
}

func (n *NotificationService) handleInternAssignedHR(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.InternAssignedHRPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	msg := "An HR manager has been assigned to you"
	if hr, err := n.users.GetByID(ctx, payload.HRID); err == nil {
		msg = fmt.Sprintf("%s is now your HR manager", hr.Name)
	}
	_, err := n.Notify(ctx, payload.InternID, nil, msg, domain.NotificationInfo)
	return err
}

func (n *NotificationService) handleBatchApproval(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BatchApprovalPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.sendEmailNotificationStub(ctx, event)
	if !payload.Approved {
		// The account is gone; email is the only channel left.
		return nil
	}
	_, err := n.Notify(ctx, payload.UserID, nil, "Your batch request has been approved", domain.NotificationInfo)
	return err
}

func (n *NotificationService) handleLeaveDecided(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.LeaveDecidedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	message := fmt.Sprintf("Your leave application has been %s by %s.", strings.ToLower(string(payload.Status)), payload.DecidedBy)
	_, err := n.Notify(ctx, payload.UserID, nil, message, domain.NotificationInfo)
	return err
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
