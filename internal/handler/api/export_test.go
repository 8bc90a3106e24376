package api

// Aliases exposing response types to the external test package, which
// lives outside the package to break the import cycle through routes.
type (
	CartResponse     = cartResponse
	CatalogResponse  = catalogResponse
	CheckoutResponse = checkoutResponse
)
