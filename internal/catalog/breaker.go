package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/mholtet/embla/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// BreakerSource wraps a Source in a circuit breaker so a flapping catalog
// store fails fast instead of being hammered by every queued refresh. While
// the breaker is open, Refresh fails immediately and the prior snapshot
// stays in place.
type BreakerSource struct {
	src Source
	cb  *gobreaker.CircuitBreaker[[]domain.Product]
}

// NewBreakerSource wraps src. The breaker opens after three consecutive
// failures and probes again after thirty seconds.
func NewBreakerSource(src Source, logger *slog.Logger) *BreakerSource {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:    "catalog-source",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerSource{
		src: src,
		cb:  gobreaker.NewCircuitBreaker[[]domain.Product](settings),
	}
}

// List fetches through the breaker.
func (b *BreakerSource) List(ctx context.Context) ([]domain.Product, error) {
	return b.cb.Execute(func() ([]domain.Product, error) {
		return b.src.List(ctx)
	})
}
