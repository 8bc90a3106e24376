package pricing

import (
	"strings"

	"github.com/mholtet/embla/internal/domain"
)

// Config holds the fixed pricing constants. All amounts are integer minor
// units; rates are basis points (1000 = 10%).
type Config struct {
	// PointValueCents is the redemption value of one loyalty point.
	PointValueCents int64

	// MaxRedemptionBasisPoints caps the point discount as a fraction of the
	// undiscounted subtotal.
	MaxRedemptionBasisPoints int64

	// GiftSurchargeCents is the flat gift-wrapping fee.
	GiftSurchargeCents int64

	// Coupons maps normalized coupon codes to discount rates in basis
	// points. The table is fixed at startup; any code outside it is
	// rejected.
	Coupons map[string]int64
}

// Engine derives a price summary from cart contents and shopper state.
// It holds only configuration and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New creates a pricing engine with the given constants.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Summary computes the full price breakdown. It is a pure function of its
// inputs: the same cart, coupon rate, shopper, and flags always yield the
// same summary.
//
// The coupon discount and the point discount are each computed against the
// undiscounted subtotal, then subtracted together; they do not stack
// sequentially. The gift surcharge is added after the discounts and is
// itself never discounted. The final total is floored at zero so combined
// discounts can never make the store owe the shopper money.
func (e *Engine) Summary(lines []domain.Line, couponBasisPoints int64, shopper domain.Shopper, redeemPoints, giftWrap bool) domain.PriceSummary {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.SubtotalCents()
	}

	couponDiscount := subtotal * couponBasisPoints / 10_000

	var pointsConsumed, pointsDiscount int64
	if redeemPoints && shopper.LoyaltyMember && shopper.Points > 0 && e.cfg.PointValueCents > 0 {
		// The cap is rounded down to a whole number of points so that the
		// discount is always an exact multiple of the point value.
		capCents := subtotal * e.cfg.MaxRedemptionBasisPoints / 10_000
		pointsConsumed = min(shopper.Points, capCents/e.cfg.PointValueCents)
		pointsDiscount = pointsConsumed * e.cfg.PointValueCents
	}

	var giftSurcharge int64
	if giftWrap {
		giftSurcharge = e.cfg.GiftSurchargeCents
	}

	total := subtotal - couponDiscount - pointsDiscount + giftSurcharge
	if total < 0 {
		total = 0
	}

	return domain.PriceSummary{
		SubtotalCents:       subtotal,
		CouponDiscountCents: couponDiscount,
		PointsDiscountCents: pointsDiscount,
		PointsConsumed:      pointsConsumed,
		GiftSurchargeCents:  giftSurcharge,
		TotalCents:          total,
	}
}

// ResolveCoupon resolves a shopper-entered code against the fixed coupon
// table. Codes are matched case-insensitively with surrounding whitespace
// trimmed. Unrecognized codes return ErrCouponRejected; callers must keep
// any previously applied rate in that case.
func (e *Engine) ResolveCoupon(code string) (int64, error) {
	normalized := NormalizeCoupon(code)
	if normalized == "" {
		return 0, domain.ErrCouponRejected
	}

	rate, ok := e.cfg.Coupons[normalized]
	if !ok {
		return 0, domain.ErrCouponRejected
	}
	return rate, nil
}

// NormalizeCoupon canonicalizes a shopper-entered coupon code: uppercase
// with surrounding whitespace trimmed.
func NormalizeCoupon(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PointAward totals the loyalty points the shopper will earn for the cart.
func PointAward(lines []domain.Line) int64 {
	var points int64
	for _, l := range lines {
		points += l.PointAward()
	}
	return points
}
