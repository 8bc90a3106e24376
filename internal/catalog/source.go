// Package catalog maintains a read-only snapshot of the remote product
// catalog. The snapshot is replaced whole on refresh, never mutated in
// place, so readers cannot observe a half-updated list.
package catalog

import (
	"context"

	"github.com/mholtet/embla/internal/domain"
)

// Source is the read interface of the external catalog store. List returns
// the full ordered product list; the snapshot store replaces its view with
// whatever comes back.
type Source interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]domain.Product, error)

func (f SourceFunc) List(ctx context.Context) ([]domain.Product, error) {
	return f(ctx)
}
