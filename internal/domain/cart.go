package domain

// =============================================================================
// CART DOMAIN TYPES & ERRORS
// =============================================================================

var (
	ErrProductNotFound  = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrLineNotFound     = &Error{Code: ENOTFOUND, Message: "Cart line not found"}
	ErrInvalidSelection = &Error{Code: EINVALID, Message: "Selected variant is not available for this product"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be at least 1"}
	ErrCouponRejected   = &Error{Code: EINVALID, Message: "Coupon code not recognized"}
	ErrEmptyCart        = &Error{Code: EINVALID, Message: "Cart is empty"}
)

// Line is one entry in the cart: a product snapshot plus a chosen variant
// and a quantity. The product fields are captured by value at add-time and
// are not live-linked to the catalog; later catalog changes do not alter
// the captured price or name.
type Line struct {
	Product  Product
	Variant  string
	Quantity int32
}

// SubtotalCents is the captured unit price times the quantity.
func (l Line) SubtotalCents() int64 {
	return l.Product.PriceCents * int64(l.Quantity)
}

// PointAward is the loyalty points the shopper earns for this line.
func (l Line) PointAward() int64 {
	return l.Product.PointAward * int64(l.Quantity)
}
