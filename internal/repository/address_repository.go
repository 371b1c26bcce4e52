package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// AddressRepository stores per-user payout addresses, keyed by user id and
// payment method.
type AddressRepository interface {
	Upsert(ctx context.Context, address *domain.PaymentAddress) error
	Get(ctx context.Context, userID string, method domain.PaymentMethod) (*domain.PaymentAddress, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PaymentAddress, error)
}

type addressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository instantiates the repository.
func NewAddressRepository(pool *pgxpool.Pool) AddressRepository {
	return &addressRepository{pool: pool}
}

func (r *addressRepository) Upsert(ctx context.Context, address *domain.PaymentAddress) error {
	const query = `
        INSERT INTO payment_addresses (user_id, method, address)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, method) DO UPDATE SET address=EXCLUDED.address, updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, address.UserID, address.Method, address.Address).Scan(&address.UpdatedAt)
}

func (r *addressRepository) Get(ctx context.Context, userID string, method domain.PaymentMethod) (*domain.PaymentAddress, error) {
	const query = `
        SELECT user_id, method, address, updated_at
        FROM payment_addresses WHERE user_id=$1 AND method=$2`
	address := &domain.PaymentAddress{}
	err := r.pool.QueryRow(ctx, query, userID, method).Scan(
		&address.UserID,
		&address.Method,
		&address.Address,
		&address.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]domain.PaymentAddress, error) {
	const query = `
        SELECT user_id, method, address, updated_at
        FROM payment_addresses WHERE user_id=$1 ORDER BY method`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []domain.PaymentAddress
	for rows.Next() {
		var address domain.PaymentAddress
		if err := rows.Scan(&address.UserID, &address.Method, &address.Address, &address.UpdatedAt); err != nil {
			return nil, err
		}
		addresses = append(addresses, address)
	}
	return addresses, rows.Err()
}
