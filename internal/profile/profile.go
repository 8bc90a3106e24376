// Package profile reads and updates shopper records in the remote profile
// store. The store is authoritative for point balances; the engine only
// caches what it reads.
package profile

import (
	"context"

	"github.com/mholtet/embla/internal/domain"
)

// Store is the shopper profile collaborator.
type Store interface {
	// Shopper reads a profile by id.
	Shopper(ctx context.Context, id string) (domain.Shopper, error)

	// DebitPoints decrements the shopper's point balance, clamped at zero
	// on the remote side. The engine's cached balance is best-effort; the
	// remote store decides whether the debit lands.
	DebitPoints(ctx context.Context, id string, points int64) error
}
