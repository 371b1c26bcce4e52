package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// AutoResponseRepository stores trigger/reply pairs and the per-guild
// enabled flag.
type AutoResponseRepository interface {
	Upsert(ctx context.Context, response *domain.AutoResponse) error
	Remove(ctx context.Context, guildID, trigger string) (bool, error)
	ListByGuild(ctx context.Context, guildID string) ([]domain.AutoResponse, error)
	Enabled(ctx context.Context, guildID string) (bool, error)
	SetEnabled(ctx context.Context, guildID string, enabled bool) error
}

type autoResponseRepository struct {
	pool *pgxpool.Pool
}

// NewAutoResponseRepository instantiates the repository.
func NewAutoResponseRepository(pool *pgxpool.Pool) AutoResponseRepository {
	return &autoResponseRepository{pool: pool}
}

func (r *autoResponseRepository) Upsert(ctx context.Context, response *domain.AutoResponse) error {
	const query = `
        INSERT INTO autoresponses (guild_id, trigger, reply)
        VALUES ($1,$2,$3)
        ON CONFLICT (guild_id, trigger) DO UPDATE SET reply=EXCLUDED.reply
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query, response.GuildID, response.Trigger, response.Reply).Scan(&response.CreatedAt)
}

func (r *autoResponseRepository) Remove(ctx context.Context, guildID, trigger string) (bool, error) {
	const query = `DELETE FROM autoresponses WHERE guild_id=$1 AND trigger=$2`
	cmd, err := r.pool.Exec(ctx, query, guildID, trigger)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *autoResponseRepository) ListByGuild(ctx context.Context, guildID string) ([]domain.AutoResponse, error) {
	const query = `
        SELECT guild_id, trigger, reply, created_at
        FROM autoresponses WHERE guild_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []domain.AutoResponse
	for rows.Next() {
		var response domain.AutoResponse
		if err := rows.Scan(&response.GuildID, &response.Trigger, &response.Reply, &response.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, rows.Err()
}

func (r *autoResponseRepository) Enabled(ctx context.Context, guildID string) (bool, error) {
	const query = `SELECT enabled FROM autoresponse_settings WHERE guild_id=$1`
	var enabled bool
	err := r.pool.QueryRow(ctx, query, guildID).Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// enabled by default until a guild toggles it off
			return true, nil
		}
		return false, err
	}
	return enabled, nil
}

func (r *autoResponseRepository) SetEnabled(ctx context.Context, guildID string, enabled bool) error {
	const query = `
        INSERT INTO autoresponse_settings (guild_id, enabled)
        VALUES ($1,$2)
        ON CONFLICT (guild_id) DO UPDATE SET enabled=EXCLUDED.enabled`
	_, err := r.pool.Exec(ctx, query, guildID, enabled)
	return err
}
