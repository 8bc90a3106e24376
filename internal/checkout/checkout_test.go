package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mholtet/embla/internal/cart"
	"github.com/mholtet/embla/internal/domain"
	"github.com/mholtet/embla/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProfile implements PointDebiter with a func field.
type mockProfile struct {
	mu             sync.Mutex
	DebitFunc      func(ctx context.Context, shopperID string, points int64) error
	debitedShopper string
	debitedPoints  int64
	calls          int
}

func (m *mockProfile) DebitPoints(ctx context.Context, shopperID string, points int64) error {
	m.mu.Lock()
	m.calls++
	m.debitedShopper = shopperID
	m.debitedPoints = points
	fn := m.DebitFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, shopperID, points)
	}
	return nil
}

// mockChannel implements Channel with a func field, recording payloads.
type mockChannel struct {
	mu       sync.Mutex
	SendFunc func(ctx context.Context, destination, payload string) error
	sent     []string
	dest     string
}

func (m *mockChannel) Send(ctx context.Context, destination, payload string) error {
	m.mu.Lock()
	fn := m.SendFunc
	m.mu.Unlock()
	if fn != nil {
		if err := fn(ctx, destination, payload); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.sent = append(m.sent, payload)
	m.dest = destination
	m.mu.Unlock()
	return nil
}

func (m *mockChannel) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// fixedStock satisfies cart.StockReader with unlimited stock.
type fixedStock struct{}

func (fixedStock) VariantStock(productID, variantName string) int32 { return 100 }

func testEngine() *pricing.Engine {
	return pricing.New(pricing.Config{
		PointValueCents:          50,
		MaxRedemptionBasisPoints: 5000,
		GiftSurchargeCents:       200_000,
		Coupons:                  map[string]int64{"WELCOME10": 1000},
	})
}

func testFormatter(t *testing.T) *Formatter {
	t.Helper()
	f, err := NewFormatter("en-US", "USD")
	require.NoError(t, err)
	return f
}

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	c := cart.New(fixedStock{})
	p := domain.Product{
		ID:         "p1",
		Name:       "Scented candle",
		PriceCents: 500_000,
		PointAward: 5,
		Variants:   []domain.Variant{{Name: "amber", Stock: 100}},
	}
	require.NoError(t, c.Add(p, "amber", 2))
	return c
}

func member() domain.Shopper {
	return domain.Shopper{ID: "s1", Name: "Astrid", Points: 30_000, LoyaltyMember: true}
}

func TestSubmit_Success(t *testing.T) {
	profile := &mockProfile{}
	ch := &mockChannel{}
	c := filledCart(t)
	o := New(testEngine(), testFormatter(t), profile, ch, "shop-orders", nil, nil)

	order, err := o.Submit(context.Background(), Request{
		Cart:          c,
		Shopper:       member(),
		PaymentMethod: "cash on delivery",
	})
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, int64(1_000_000), order.Summary.TotalCents)
	assert.NotEmpty(t, order.Number)
	assert.Equal(t, 1, ch.sentCount())
	assert.Equal(t, "shop-orders", ch.dest)

	// The cart is cleared only after a successful hand-off.
	assert.True(t, c.IsEmpty())
	assert.Equal(t, StateCompleted, o.LastResult())
	assert.Equal(t, StateIdle, o.State())

	// No redemption requested, so no debit was issued.
	assert.Equal(t, 0, profile.calls)
}

func TestSubmit_DebitsPointsBeforeHandoff(t *testing.T) {
	profile := &mockProfile{}
	ch := &mockChannel{}
	c := filledCart(t)
	o := New(testEngine(), testFormatter(t), profile, ch, "shop-orders", nil, nil)

	order, err := o.Submit(context.Background(), Request{
		Cart:         c,
		Shopper:      member(),
		RedeemPoints: true,
	})
	require.NoError(t, err)

	// Subtotal 1_000_000, cap 500_000, point value 50 -> 10_000 points.
	assert.Equal(t, int64(10_000), order.Summary.PointsConsumed)
	assert.Equal(t, "s1", profile.debitedShopper)
	assert.Equal(t, int64(10_000), profile.debitedPoints)
	assert.Equal(t, int64(500_000), order.Summary.TotalCents)
}

func TestSubmit_PointDebitFailureAbortsBeforeHandoff(t *testing.T) {
	profile := &mockProfile{
		DebitFunc: func(ctx context.Context, shopperID string, points int64) error {
			return errors.New("profile store unreachable")
		},
	}
	ch := &mockChannel{}
	c := filledCart(t)
	o := New(testEngine(), testFormatter(t), profile, ch, "shop-orders", nil, nil)

	_, err := o.Submit(context.Background(), Request{
		Cart:         c,
		Shopper:      member(),
		RedeemPoints: true,
	})
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))

	// No message was sent and the cart survived for a retry.
	assert.Equal(t, 0, ch.sentCount())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, StateFailed, o.LastResult())
	assert.Equal(t, StateIdle, o.State())
}

func TestSubmit_HandoffFailurePreservesCart(t *testing.T) {
	profile := &mockProfile{}
	ch := &mockChannel{
		SendFunc: func(ctx context.Context, destination, payload string) error {
			return errors.New("broker down")
		},
	}
	c := filledCart(t)
	o := New(testEngine(), testFormatter(t), profile, ch, "shop-orders", nil, nil)

	_, err := o.Submit(context.Background(), Request{
		Cart:         c,
		Shopper:      member(),
		RedeemPoints: true,
	})
	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))

	// The debit already happened and is not rolled back; the cart stays.
	assert.Equal(t, 1, profile.calls)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, StateFailed, o.LastResult())

	// The orchestrator is reusable after the failure.
	ch.mu.Lock()
	ch.SendFunc = nil
	ch.mu.Unlock()
	_, err = o.Submit(context.Background(), Request{Cart: c, Shopper: member()})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, o.LastResult())
}

func TestSubmit_EmptyCart(t *testing.T) {
	o := New(testEngine(), testFormatter(t), &mockProfile{}, &mockChannel{}, "shop-orders", nil, nil)

	_, err := o.Submit(context.Background(), Request{
		Cart:    cart.New(fixedStock{}),
		Shopper: member(),
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, StateFailed, o.LastResult())
}

func TestSubmit_RejectsReentrantCalls(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	profile := &mockProfile{
		DebitFunc: func(ctx context.Context, shopperID string, points int64) error {
			close(started)
			<-release
			return nil
		},
	}
	ch := &mockChannel{}
	c := filledCart(t)
	o := New(testEngine(), testFormatter(t), profile, ch, "shop-orders", nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), Request{
			Cart:         c,
			Shopper:      member(),
			RedeemPoints: true,
		})
		done <- err
	}()

	<-started
	assert.Equal(t, StateProcessing, o.State())

	// A second submission while the first is processing is ignored.
	_, err := o.Submit(context.Background(), Request{Cart: c, Shopper: member()})
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, ch.sentCount())
}
