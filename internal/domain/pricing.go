package domain

// PriceSummary is the derived multi-component price breakdown for a cart.
// It is recomputed whole on every relevant change; callers never observe a
// partially updated summary. All amounts are integer minor units.
//
// The components relate as
//
//	TotalCents = max(0, Subtotal - CouponDiscount - PointsDiscount + GiftSurcharge)
//
// with both discounts computed independently against the undiscounted
// subtotal, and PointsConsumed * point value == PointsDiscountCents exactly.
type PriceSummary struct {
	SubtotalCents       int64
	CouponDiscountCents int64
	PointsDiscountCents int64
	PointsConsumed      int64
	GiftSurchargeCents  int64
	TotalCents          int64
}
