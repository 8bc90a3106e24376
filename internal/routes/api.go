package routes

import (
	"github.com/mholtet/embla/internal/router"
)

// RegisterAPIRoutes registers the storefront JSON API.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	// Catalog
	r.Get("/api/catalog", deps.CatalogHandler.List)

	// Cart
	r.Get("/api/cart", deps.CartHandler.View)
	r.Post("/api/cart/items", deps.CartHandler.AddItem)
	r.Put("/api/cart/items/{index}", deps.CartHandler.SetQuantity)
	r.Post("/api/cart/items/{index}/adjust", deps.CartHandler.Adjust)
	r.Delete("/api/cart/items/{index}", deps.CartHandler.RemoveItem)
	r.Delete("/api/cart", deps.CartHandler.Clear)
	r.Post("/api/cart/coupon", deps.CartHandler.ApplyCoupon)
	r.Put("/api/cart/options", deps.CartHandler.SetOptions)

	// Checkout
	r.Post("/api/checkout", deps.CheckoutHandler.Submit)

	// Operational endpoints
	r.Get("/healthz", deps.Healthz)
	r.Handle("GET", "/metrics", deps.MetricsHandler)
}
