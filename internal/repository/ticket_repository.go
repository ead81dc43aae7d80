package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codebyviral/irms-backend/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	CreatedBy  *string
	AssignedTo *string
	Statuses   []domain.TicketStatus
	SearchTerm *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	SetAssignee(ctx context.Context, id, assigneeID string) error
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, pendingSince *time.Time) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListPendingConfirmationBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error)
	ClosedCountsByAssignee(ctx context.Context) ([]domain.AssigneeRank, error)
}

const ticketColumns = `id, title, description, created_by, assigned_to, status, pending_confirmation_since,
               created_at, updated_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, created_by, assigned_to, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return mapWriteErr(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return scanTicket(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
}

func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return scanTicket(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1 FOR UPDATE`, id))
}

func (r *ticketRepository) SetAssignee(ctx context.Context, id, assigneeID string) error {
	return expectRows(conn(ctx, r.pool).Exec(ctx,
		`UPDATE tickets SET assigned_to=$1, updated_at=NOW() WHERE id=$2`, assigneeID, id))
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, pendingSince *time.Time) error {
	const query = `
        UPDATE tickets SET status=$1, pending_confirmation_since=$2, updated_at=NOW()
        WHERE id=$3`
	return expectRows(conn(ctx, r.pool).Exec(ctx, query, status, pendingSince, id))
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListPendingConfirmationBefore(ctx context.Context, cutoff time.Time) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets
        WHERE status=$1 AND pending_confirmation_since IS NOT NULL AND pending_confirmation_since < $2
        ORDER BY pending_confirmation_since ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, domain.TicketStatusPendingConfirmation, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ClosedCountsByAssignee groups closed tickets by assignee, highest count first.
func (r *ticketRepository) ClosedCountsByAssignee(ctx context.Context) ([]domain.AssigneeRank, error) {
	const query = `
        SELECT u.id, u.name, u.email, COUNT(t.id) AS closed
        FROM tickets t
        JOIN users u ON u.id = t.assigned_to
        WHERE t.status=$1 AND t.assigned_to IS NOT NULL
        GROUP BY u.id, u.name, u.email
        ORDER BY closed DESC, u.id ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, domain.TicketStatusClosed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssigneeRank
	for rows.Next() {
		var rank domain.AssigneeRank
		if err := rows.Scan(&rank.UserID, &rank.Name, &rank.Email, &rank.ClosedCount); err != nil {
			return nil, err
		}
		result = append(result, rank)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.Status,
		&ticket.PendingConfirmationSince,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
