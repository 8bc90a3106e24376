package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mholtet/embla/internal/domain"
	"github.com/mholtet/embla/internal/telemetry"
)

// Cache persists the last good snapshot across restarts. Implementations
// are best-effort; failures must not break refresh.
type Cache interface {
	Load(ctx context.Context) ([]domain.Product, error)
	Save(ctx context.Context, products []domain.Product) error
}

// snapshot is one immutable generation of catalog data. A refresh builds a
// complete replacement and swaps it in atomically.
type snapshot struct {
	products []domain.Product
	byID     map[string]int

	// live is false for a snapshot warmed from the local cache. Warm data
	// may be rendered but is never trusted for stock-ceiling decisions.
	live bool

	fetchedAt time.Time
}

func newSnapshot(products []domain.Product, live bool) *snapshot {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return &snapshot{
		products:  products,
		byID:      byID,
		live:      live,
		fetchedAt: time.Now(),
	}
}

// Store holds the current catalog snapshot and drives refreshes. Multiple
// change notifications in quick succession coalesce into at most one queued
// refresh, and at most one refresh is in flight at a time (the Run loop is
// the only caller of the source).
type Store struct {
	source  Source
	cache   Cache
	logger  *slog.Logger
	metrics *telemetry.Business

	snap      atomic.Pointer[snapshot]
	refreshCh chan struct{}
}

// NewStore creates a snapshot store over the given source. The cache and
// metrics are optional.
func NewStore(source Source, cache Cache, metrics *telemetry.Business, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		source:    source,
		cache:     cache,
		logger:    logger,
		metrics:   metrics,
		refreshCh: make(chan struct{}, 1),
	}
	s.snap.Store(newSnapshot(nil, false))
	return s
}

// Warm loads the last good snapshot from the local cache, if one exists,
// so the catalog can render before the first live refresh completes. Warm
// data reports zero stock for every variant.
func (s *Store) Warm(ctx context.Context) {
	if s.cache == nil {
		return
	}
	products, err := s.cache.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("snapshot cache load failed", "error", err)
		}
		return
	}
	// Never replace live data with cached data.
	if s.snap.Load().live {
		return
	}
	s.snap.Store(newSnapshot(products, false))
	s.logger.Info("catalog warmed from cache", "products", len(products))
}

// Refresh fetches the full current product list and replaces the snapshot
// atomically. On failure the prior snapshot stays in place and the error is
// returned for the caller to log; mutation APIs reading through this store
// never see the failure.
func (s *Store) Refresh(ctx context.Context) error {
	start := time.Now()
	products, err := s.source.List(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CatalogRefreshes.WithLabelValues("error").Inc()
		}
		return err
	}

	s.snap.Store(newSnapshot(products, true))

	if s.metrics != nil {
		s.metrics.CatalogRefreshes.WithLabelValues("ok").Inc()
		s.metrics.CatalogRefreshDuration.Observe(time.Since(start).Seconds())
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, products); err != nil {
			s.logger.Warn("snapshot cache save failed", "error", err)
		}
	}
	return nil
}

// TriggerRefresh queues a refresh without blocking. Triggers arriving while
// one is already queued collapse into it.
func (s *Store) TriggerRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// Run drains refresh triggers until the context is canceled. Fetch failures
// are logged and swallowed; staleness is preferred over a broken listing.
func (s *Store) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.refreshCh:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error("catalog refresh failed, keeping prior snapshot", "error", err)
			}
		}
	}
}

// Products returns the products of the current snapshot in catalog order.
func (s *Store) Products() []domain.Product {
	return s.snap.Load().products
}

// Product looks up a product by id in the current snapshot.
func (s *Store) Product(id string) (domain.Product, bool) {
	snap := s.snap.Load()
	i, ok := snap.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return snap.products[i], true
}

// VariantStock returns the live stock count for a product variant. Unknown
// products and variants report zero, which reads as unpurchasable rather
// than an error. A snapshot warmed from the cache also reports zero: only
// live data backs stock-ceiling decisions.
func (s *Store) VariantStock(productID, variantName string) int32 {
	snap := s.snap.Load()
	if !snap.live {
		return 0
	}
	i, ok := snap.byID[productID]
	if !ok {
		return 0
	}
	v, ok := snap.products[i].Variant(variantName)
	if !ok {
		return 0
	}
	return v.Stock
}

// Live reports whether the current snapshot came from the source rather
// than the warm cache.
func (s *Store) Live() bool {
	return s.snap.Load().live
}
