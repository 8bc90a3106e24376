package domain

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================

// Variant is a purchasable option of a product (e.g., a color) with its own
// independent stock count. The stock count is the sole authority for whether
// the choice is purchasable; it never goes negative.
type Variant struct {
	Name  string
	Stock int32
}

// Product represents one catalog entry as fetched from the catalog source.
// Prices are integer minor units (cents). Invariant: PriceCents >= 0.
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int64

	// OldPriceCents is the promotional strike-through price. Zero means no
	// promotion; it is never used in pricing.
	OldPriceCents int64

	// PointAward is the number of loyalty points earned per unit purchased.
	PointAward int64

	Category string
	Images   []string
	Variants []Variant
}

// Variant looks up a variant by name. Names are unique within a product.
func (p *Product) Variant(name string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// HasVariant reports whether the product carries a variant with this name.
func (p *Product) HasVariant(name string) bool {
	_, ok := p.Variant(name)
	return ok
}
