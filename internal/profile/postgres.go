package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mholtet/embla/internal/domain"
)

// PostgresStore implements Store over the shared PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a profile store over the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Shopper reads one profile row.
func (s *PostgresStore) Shopper(ctx context.Context, id string) (domain.Shopper, error) {
	var shopper domain.Shopper
	err := s.pool.QueryRow(ctx, `
		SELECT id, display_name, points, loyalty_member, is_admin
		FROM shoppers
		WHERE id = $1
	`, id).Scan(&shopper.ID, &shopper.Name, &shopper.Points, &shopper.LoyaltyMember, &shopper.Admin)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Shopper{}, domain.Errorf(domain.ENOTFOUND, "profile.get", "Shopper not found")
	}
	if err != nil {
		return domain.Shopper{}, fmt.Errorf("failed to read shopper %s: %w", id, err)
	}
	return shopper, nil
}

// DebitPoints decrements the point balance, clamping at zero. The clamp
// happens in the UPDATE itself so a concurrent spend elsewhere cannot drive
// the balance negative.
func (s *PostgresStore) DebitPoints(ctx context.Context, id string, points int64) error {
	if points <= 0 {
		return nil
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE shoppers
		SET points = GREATEST(points - $2, 0)
		WHERE id = $1
	`, id, points)
	if err != nil {
		return fmt.Errorf("failed to debit points for shopper %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Errorf(domain.ENOTFOUND, "profile.debit", "Shopper not found")
	}
	return nil
}
