package api

import (
	"net/http"

	"github.com/mholtet/embla/internal/catalog"
	"github.com/mholtet/embla/internal/domain"
)

// CatalogHandler serves the current catalog snapshot.
type CatalogHandler struct {
	catalog *catalog.Store
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(store *catalog.Store) *CatalogHandler {
	return &CatalogHandler{catalog: store}
}

type variantResponse struct {
	Name  string `json:"name"`
	Stock int32  `json:"stock"`
}

type productResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	PriceCents    int64             `json:"price_cents"`
	OldPriceCents int64             `json:"old_price_cents,omitempty"`
	PointAward    int64             `json:"point_award,omitempty"`
	Category      string            `json:"category,omitempty"`
	Images        []string          `json:"images,omitempty"`
	Variants      []variantResponse `json:"variants"`
}

type catalogResponse struct {
	Live     bool              `json:"live"`
	Products []productResponse `json:"products"`
}

// List handles GET /api/catalog.
// The live flag tells the client whether stock figures are authoritative:
// a warm-cache snapshot renders products but reports every variant as
// unavailable until the first live refresh lands.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	live := h.catalog.Live()

	products := h.catalog.Products()
	resp := catalogResponse{
		Live:     live,
		Products: make([]productResponse, 0, len(products)),
	}
	for _, p := range products {
		resp.Products = append(resp.Products, toProductResponse(p, live))
	}

	respondJSON(w, http.StatusOK, resp)
}

func toProductResponse(p domain.Product, live bool) productResponse {
	pr := productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		OldPriceCents: p.OldPriceCents,
		PointAward:    p.PointAward,
		Category:      p.Category,
		Images:        p.Images,
		Variants:      make([]variantResponse, 0, len(p.Variants)),
	}
	for _, v := range p.Variants {
		stock := v.Stock
		if !live {
			stock = 0
		}
		pr.Variants = append(pr.Variants, variantResponse{Name: v.Name, Stock: stock})
	}
	return pr
}
