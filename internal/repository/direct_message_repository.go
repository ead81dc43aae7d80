package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// DirectMessageRepository stores one-to-one chat messages.
type DirectMessageRepository interface {
	Create(ctx context.Context, msg *domain.DirectMessage) error
	ListConversation(ctx context.Context, userA, userB string) ([]domain.DirectMessage, error)
	MarkSeen(ctx context.Context, senderID, receiverID string, at time.Time) (int64, error)
}

type directMessageRepository struct {
	pool *pgxpool.Pool
}

// NewDirectMessageRepository constructs repository.
func NewDirectMessageRepository(pool *pgxpool.Pool) DirectMessageRepository {
	return &directMessageRepository{pool: pool}
}

func (r *directMessageRepository) Create(ctx context.Context, msg *domain.DirectMessage) error {
	const query = `
        INSERT INTO direct_messages (sender_id, receiver_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return conn(ctx, r.pool).QueryRow(ctx, query, msg.SenderID, msg.ReceiverID, msg.Content).
		Scan(&msg.ID, &msg.CreatedAt)
}

func (r *directMessageRepository) ListConversation(ctx context.Context, userA, userB string) ([]domain.DirectMessage, error) {
	const query = `
        SELECT id, sender_id, receiver_id, content, seen, seen_at, created_at
        FROM direct_messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at ASC, id ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DirectMessage
	for rows.Next() {
		var msg domain.DirectMessage
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Seen, &msg.SeenAt, &msg.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

// MarkSeen flags messages from senderID to receiverID as read.
func (r *directMessageRepository) MarkSeen(ctx context.Context, senderID, receiverID string, at time.Time) (int64, error) {
	const query = `
        UPDATE direct_messages SET seen=TRUE, seen_at=$3
        WHERE sender_id=$1 AND receiver_id=$2 AND seen=FALSE`
	tag, err := conn(ctx, r.pool).Exec(ctx, query, senderID, receiverID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
