package domain

// Shopper is the engine's view of a customer profile. The point balance is
// authoritative server-side; this copy may go stale between reads, so point
// debits are clamped remotely rather than trusted locally.
type Shopper struct {
	ID   string
	Name string

	// Points is the cached loyalty point balance. Never negative.
	Points int64

	// LoyaltyMember gates point redemption.
	LoyaltyMember bool

	// Admin is carried for completeness; nothing in the pricing or cart
	// paths looks at it.
	Admin bool
}
