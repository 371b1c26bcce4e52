package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// ErrTicketNotFound signals that no ticket exists for a channel id.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepository encapsulates ticket metadata persistence. A channel id
// with no row here is, by definition, not a ticket.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByChannelID(ctx context.Context, channelID string) (*domain.Ticket, error)
	UpdateState(ctx context.Context, channelID string, state domain.TicketState) error
	Delete(ctx context.Context, channelID string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (channel_id, guild_id, display_key, request_type, owner_user_id, category_id, state)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ChannelID,
		ticket.GuildID,
		ticket.DisplayKey,
		ticket.RequestType,
		ticket.OwnerID,
		ticket.CategoryID,
		ticket.State,
	).Scan(&ticket.CreatedAt)
}

func (r *ticketRepository) GetByChannelID(ctx context.Context, channelID string) (*domain.Ticket, error) {
	const query = `
        SELECT channel_id, guild_id, display_key, request_type, owner_user_id, category_id, state, created_at
        FROM tickets WHERE channel_id=$1`
	ticket := &domain.Ticket{}
	err := r.pool.QueryRow(ctx, query, channelID).Scan(
		&ticket.ChannelID,
		&ticket.GuildID,
		&ticket.DisplayKey,
		&ticket.RequestType,
		&ticket.OwnerID,
		&ticket.CategoryID,
		&ticket.State,
		&ticket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) UpdateState(ctx context.Context, channelID string, state domain.TicketState) error {
	const query = `UPDATE tickets SET state=$1, updated_at=NOW() WHERE channel_id=$2`
	cmd, err := r.pool.Exec(ctx, query, state, channelID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, channelID string) error {
	const query = `DELETE FROM tickets WHERE channel_id=$1`
	_, err := r.pool.Exec(ctx, query, channelID)
	return err
}
