package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// TicketMessageRepository manages ticket thread messages.
type TicketMessageRepository interface {
	Create(ctx context.Context, msg *domain.TicketMessage) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error)
	MarkSeen(ctx context.Context, ticketID, viewerID string) (int64, error)
}

type ticketMessageRepository struct {
	pool *pgxpool.Pool
}

// NewTicketMessageRepository builds repository.
func NewTicketMessageRepository(pool *pgxpool.Pool) TicketMessageRepository {
	return &ticketMessageRepository{pool: pool}
}

func (r *ticketMessageRepository) Create(ctx context.Context, msg *domain.TicketMessage) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, sender_id, text)
        VALUES ($1,$2,$3)
        RETURNING id, seq, created_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		msg.TicketID,
		msg.SenderID,
		msg.Text,
	).Scan(&msg.ID, &msg.Seq, &msg.CreatedAt)
}

func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	const query = `
        SELECT id, ticket_id, sender_id, text, seen, seq, created_at
        FROM ticket_messages WHERE ticket_id=$1 ORDER BY seq ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketMessage
	for rows.Next() {
		var msg domain.TicketMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderID,
			&msg.Text,
			&msg.Seen,
			&msg.Seq,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

// MarkSeen flags unseen messages not authored by the viewer and returns how many changed.
func (r *ticketMessageRepository) MarkSeen(ctx context.Context, ticketID, viewerID string) (int64, error) {
	const query = `
        UPDATE ticket_messages SET seen=TRUE
        WHERE ticket_id=$1 AND sender_id<>$2 AND seen=FALSE`
	tag, err := conn(ctx, r.pool).Exec(ctx, query, ticketID, viewerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
