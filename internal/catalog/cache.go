package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mholtet/embla/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss reports that no snapshot has been cached yet.
var ErrCacheMiss = errors.New("snapshot cache miss")

// SnapshotCache persists the last good catalog snapshot in Redis so the
// process can render a catalog immediately after startup. The cache is
// non-authoritative: warmed data is render-only and carries no stock
// authority.
type SnapshotCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSnapshotCache creates a cache over the given client. A zero ttl means
// the snapshot never expires.
func NewSnapshotCache(client *redis.Client, key string, ttl time.Duration) *SnapshotCache {
	if key == "" {
		key = "catalog:snapshot"
	}
	return &SnapshotCache{client: client, key: key, ttl: ttl}
}

// Load returns the cached product list, or ErrCacheMiss.
func (c *SnapshotCache) Load(ctx context.Context) ([]domain.Product, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot failed: %w", err)
	}
	return products, nil
}

// Save stores the product list, replacing any previous snapshot.
func (c *SnapshotCache) Save(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
