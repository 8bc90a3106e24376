package routes

import (
	"net/http"

	"github.com/mholtet/embla/internal/handler/api"
)

// APIDeps contains the handlers behind the storefront JSON API.
type APIDeps struct {
	CatalogHandler  *api.CatalogHandler
	CartHandler     *api.CartHandler
	CheckoutHandler *api.CheckoutHandler

	// MetricsHandler serves the Prometheus scrape endpoint.
	MetricsHandler http.Handler

	// Healthz reports process liveness and snapshot state.
	Healthz http.HandlerFunc
}
