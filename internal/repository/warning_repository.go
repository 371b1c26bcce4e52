package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// WarningRepository stores moderation warnings keyed by guild and user id.
type WarningRepository interface {
	Create(ctx context.Context, warning *domain.Warning) error
	ListByUser(ctx context.Context, guildID, userID string) ([]domain.Warning, error)
	ClearByUser(ctx context.Context, guildID, userID string) error
}

type warningRepository struct {
	pool *pgxpool.Pool
}

// NewWarningRepository instantiates the repository.
func NewWarningRepository(pool *pgxpool.Pool) WarningRepository {
	return &warningRepository{pool: pool}
}

func (r *warningRepository) Create(ctx context.Context, warning *domain.Warning) error {
	const query = `
        INSERT INTO warnings (guild_id, user_id, reason, issued_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		warning.GuildID,
		warning.UserID,
		warning.Reason,
		warning.IssuedBy,
	).Scan(&warning.ID, &warning.CreatedAt)
}

func (r *warningRepository) ListByUser(ctx context.Context, guildID, userID string) ([]domain.Warning, error) {
	const query = `
        SELECT id, guild_id, user_id, reason, issued_by, created_at
        FROM warnings WHERE guild_id=$1 AND user_id=$2 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []domain.Warning
	for rows.Next() {
		var warning domain.Warning
		if err := rows.Scan(&warning.ID, &warning.GuildID, &warning.UserID, &warning.Reason, &warning.IssuedBy, &warning.CreatedAt); err != nil {
			return nil, err
		}
		warnings = append(warnings, warning)
	}
	return warnings, rows.Err()
}

func (r *warningRepository) ClearByUser(ctx context.Context, guildID, userID string) error {
	const query = `DELETE FROM warnings WHERE guild_id=$1 AND user_id=$2`
	_, err := r.pool.Exec(ctx, query, guildID, userID)
	return err
}
