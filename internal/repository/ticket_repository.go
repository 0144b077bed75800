package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-tickets/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Save assigns the
// aggregate ID on first save and returns domain.ErrTicketNotFound when an
// update targets a missing row; FindByID and Delete map absence to the same
// error.
type TicketRepository interface {
	Save(ctx context.Context, ticket *domain.Ticket) error
	FindByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == 0 {
		if err := r.insert(ctx, ticket); err != nil {
			return err
		}
	} else {
		if err := r.update(ctx, ticket); err != nil {
			return err
		}
	}
	return r.saveResponses(ctx, ticket)
}

func (r *ticketRepository) insert(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, priority_justification, user_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.PriorityJustification,
		ticket.UserID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4,
            priority_justification=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.PriorityJustification,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// saveResponses inserts the responses appended since the last save.
// Responses are append-only, so rows with an assigned ID are never touched.
func (r *ticketRepository) saveResponses(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO ticket_responses (ticket_id, text, admin_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	for i := range ticket.Responses {
		resp := &ticket.Responses[i]
		if resp.ID != 0 {
			continue
		}
		resp.TicketID = ticket.ID
		if err := r.pool.QueryRow(ctx, query, ticket.ID, resp.Text, resp.AdminID).
			Scan(&resp.ID, &resp.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, status, priority, priority_justification,
               user_id, created_at, updated_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.PriorityJustification,
		&ticket.UserID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}

	responses, err := r.listResponses(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Responses = responses
	return &ticket, nil
}

func (r *ticketRepository) listResponses(ctx context.Context, ticketID int64) ([]domain.AdminResponse, error) {
	const query = `
        SELECT id, ticket_id, text, admin_id, created_at
        FROM ticket_responses WHERE ticket_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []domain.AdminResponse
	for rows.Next() {
		var resp domain.AdminResponse
		if err := rows.Scan(&resp.ID, &resp.TicketID, &resp.Text, &resp.AdminID, &resp.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *ticketRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, title, description, status, priority, priority_justification,
               user_id, created_at, updated_at
        FROM tickets WHERE user_id=$1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.PriorityJustification,
			&ticket.UserID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
