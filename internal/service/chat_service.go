package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/codebyviral/irms-backend/internal/domain"
	"github.com/codebyviral/irms-backend/internal/events"
	"github.com/codebyviral/irms-backend/internal/realtime"
	"github.com/codebyviral/irms-backend/internal/repository"
	"github.com/codebyviral/irms-backend/internal/sanitize"
	apperrors "github.com/codebyviral/irms-backend/pkg/util"
)

// ChatService stores direct messages and pushes them to the pair's room.
type ChatService struct {
	messages   repository.DirectMessageRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	publisher  realtime.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

// ChatDependencies bundles collaborators for the chat service.
type ChatDependencies struct {
	MessageRepo repository.DirectMessageRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Publisher   realtime.Publisher
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = realtime.NewNopPublisher()
	}
	return &ChatService{
		messages:   deps.MessageRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		publisher:  publisher,
		logger:     loggerOrNop(deps.Logger),
		now:        nowOrDefault(deps.Now),
	}
}

// Send stores a message from senderID to receiverID.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID, content string) (*domain.DirectMessage, error) {
	content = sanitize.PlainText(content)
	if content == "" {
		return nil, apperrors.NewValidationError("message content is required", map[string]any{"fields": []string{"content"}})
	}
	if receiverID == "" || receiverID == senderID {
		return nil, apperrors.NewValidationError("invalid receiver", map[string]any{"receiver_id": receiverID})
	}
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		return nil, notFoundOr(err, "user", map[string]any{"user_id": receiverID})
	}

	msg := &domain.DirectMessage{SenderID: senderID, ReceiverID: receiverID, Content: content}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	room := realtime.RoomForPair(senderID, receiverID)
	if err := s.publisher.Publish(ctx, room, realtime.EventNewMessage, msg); err != nil {
		s.logger.Warn("direct message push failed", zap.String("room", room), zap.Error(err))
	}
	publish(ctx, s.dispatcher, events.New(events.EventDirectMessageSent, msg.ID, strPtr(senderID), s.now(),
		events.DirectMessageSentPayload{Message: *msg}))
	return msg, nil
}

// Conversation returns the messages exchanged by two users, oldest first.
func (s *ChatService) Conversation(ctx context.Context, userID, otherID string) ([]domain.DirectMessage, error) {
	msgs, err := s.messages.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// MarkSeen flags the messages otherID sent to viewerID as seen. It returns how
// many messages changed; repeating the call returns zero.
func (s *ChatService) MarkSeen(ctx context.Context, viewerID, otherID string) (int64, error) {
	count, err := s.messages.MarkSeen(ctx, otherID, viewerID, s.now())
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}
