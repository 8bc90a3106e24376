package cart

import (
	"testing"

	"github.com/mholtet/embla/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStock implements StockReader over a fixed map keyed by
// productID/variantName.
type stubStock struct {
	levels map[string]int32
}

func (s *stubStock) VariantStock(productID, variantName string) int32 {
	return s.levels[productID+"/"+variantName]
}

func candle() domain.Product {
	return domain.Product{
		ID:         "p1",
		Name:       "Scented candle",
		PriceCents: 1800,
		PointAward: 5,
		Variants: []domain.Variant{
			{Name: "amber", Stock: 5},
			{Name: "pine", Stock: 0},
		},
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name      string
		variant   string
		quantity  int32
		stock     int32
		wantCode  string
		wantLines int
	}{
		{name: "in stock", variant: "amber", quantity: 2, stock: 5, wantLines: 1},
		{name: "exactly at ceiling", variant: "amber", quantity: 5, stock: 5, wantLines: 1},
		{name: "exceeds stock", variant: "amber", quantity: 6, stock: 5, wantCode: domain.ECONFLICT},
		{name: "unknown variant", variant: "teal", quantity: 1, stock: 5, wantCode: domain.EINVALID},
		{name: "zero quantity", variant: "amber", quantity: 0, stock: 5, wantCode: domain.EINVALID},
		{name: "negative quantity", variant: "amber", quantity: -1, stock: 5, wantCode: domain.EINVALID},
		{name: "variant out of stock", variant: "pine", quantity: 1, stock: 5, wantCode: domain.ECONFLICT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock := &stubStock{levels: map[string]int32{"p1/amber": tt.stock}}
			store := New(stock)

			err := store.Add(candle(), tt.variant, tt.quantity)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
				assert.Equal(t, 0, store.Len(), "rejected add must leave the cart unchanged")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLines, store.Len())
		})
	}
}

func TestAdd_MergesIdenticalSelection(t *testing.T) {
	stock := &stubStock{levels: map[string]int32{"p1/amber": 5}}
	store := New(stock)

	require.NoError(t, store.Add(candle(), "amber", 2))
	require.NoError(t, store.Add(candle(), "amber", 2))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int32(4), lines[0].Quantity)

	// The ceiling applies to the merged total, not the increment alone.
	err := store.Add(candle(), "amber", 2)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	max, ok := domain.StockLimit(err)
	require.True(t, ok)
	assert.Equal(t, int32(5), max)
	assert.Equal(t, int32(4), store.Lines()[0].Quantity)
}

func TestAdd_DistinctVariantsGetOwnLines(t *testing.T) {
	stock := &stubStock{levels: map[string]int32{"p1/amber": 5, "p1/pine": 5}}
	store := New(stock)

	require.NoError(t, store.Add(candle(), "amber", 1))
	require.NoError(t, store.Add(candle(), "pine", 1))
	assert.Equal(t, 2, store.Len())
}

func TestSetQuantity(t *testing.T) {
	stock := &stubStock{levels: map[string]int32{"p1/amber": 5}}
	store := New(stock)
	require.NoError(t, store.Add(candle(), "amber", 2))

	require.NoError(t, store.SetQuantity(0, 4))
	assert.Equal(t, int32(4), store.Lines()[0].Quantity)

	err := store.SetQuantity(0, 0)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	err = store.SetQuantity(3, 1)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestSetQuantity_RechecksLiveStock(t *testing.T) {
	stock := &stubStock{levels: map[string]int32{"p1/amber": 5}}
	store := New(stock)
	require.NoError(t, store.Add(candle(), "amber", 2))

	// Stock shrinks after add-time, e.g. a catalog push arrived.
	stock.levels["p1/amber"] = 3

	err := store.SetQuantity(0, 5)
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	max, ok := domain.StockLimit(err)
	require.True(t, ok)
	assert.Equal(t, int32(3), max)

	// Prior quantity survives the rejection.
	assert.Equal(t, int32(2), store.Lines()[0].Quantity)

	// Raising to the new ceiling still works.
	require.NoError(t, store.SetQuantity(0, 3))
}

func TestAdjust(t *testing.T) {
	stock := &stubStock{levels: map[string]int32{"p1/amber": 3}}
	store := New(stock)
	require.NoError(t, store.Add(candle(), "amber", 2))

	require.NoError(t, store.Adjust(0, 1))
	assert.Equal(t, int32(3), store.Lines()[0].Quantity)

	// Increment past the ceiling goes through the same validation as
	// direct entry.
	err := store.Adjust(0, 1)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	assert.Equal(t, int32(3), store.Lines()[0].Quantity)

	require.NoError(t, store.Adjust(0, -2))
	assert.Equal(t, int32(1), store.Lines()[0].Quantity)

	// Decrementing below one is invalid, not an implicit remove.
	err = store.Adjust(0, -1)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, 1, store.Len())

	err = store.Adjust(9, 1)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestRemoveAndClear(t *testing.T) {
	stock := &stubStock{levels: map[string]int32{"p1/amber": 5, "p1/pine": 5}}
	store := New(stock)
	require.NoError(t, store.Add(candle(), "amber", 1))
	require.NoError(t, store.Add(candle(), "pine", 1))

	store.Remove(0)
	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "pine", lines[0].Variant)

	// Out of range is a no-op, never a failure.
	store.Remove(5)
	store.Remove(-1)
	assert.Equal(t, 1, store.Len())

	store.Clear()
	assert.True(t, store.IsEmpty())
}

func TestLines_ReturnsCopy(t *testing.T) {
	stock := &stubStock{levels: map[string]int32{"p1/amber": 5}}
	store := New(stock)
	require.NoError(t, store.Add(candle(), "amber", 2))

	lines := store.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, int32(2), store.Lines()[0].Quantity)
}

func TestLine_CapturesProductAtAddTime(t *testing.T) {
	stock := &stubStock{levels: map[string]int32{"p1/amber": 5}}
	store := New(stock)

	p := candle()
	require.NoError(t, store.Add(p, "amber", 1))

	// A later catalog price change does not reach the captured snapshot.
	p.PriceCents = 9999
	assert.Equal(t, int64(1800), store.Lines()[0].Product.PriceCents)
}
