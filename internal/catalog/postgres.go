package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mholtet/embla/internal/domain"
)

// PostgresSource reads the product catalog from the shared PostgreSQL
// store. It is read-only: the engine never writes catalog rows.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a catalog source over the given pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// List fetches the full ordered product list with variants in one round of
// two queries. Products without variants are still returned; they simply
// have nothing purchasable.
func (s *PostgresSource) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, price_cents, old_price_cents,
		       point_award, category, image_urls
		FROM products
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	index := make(map[string]int)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents,
			&p.OldPriceCents, &p.PointAward, &p.Category, &p.Images); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	variantRows, err := s.pool.Query(ctx, `
		SELECT product_id, name, stock
		FROM product_variants
		ORDER BY product_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer variantRows.Close()

	for variantRows.Next() {
		var productID string
		var v domain.Variant
		if err := variantRows.Scan(&productID, &v.Name, &v.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		if i, ok := index[productID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	if err := variantRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read variants: %w", err)
	}

	return products, nil
}
