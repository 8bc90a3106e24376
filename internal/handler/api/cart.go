package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/mholtet/embla/internal/catalog"
	"github.com/mholtet/embla/internal/cookie"
	"github.com/mholtet/embla/internal/domain"
	"github.com/mholtet/embla/internal/pricing"
	"github.com/mholtet/embla/internal/profile"
	"github.com/mholtet/embla/internal/session"
	"github.com/mholtet/embla/internal/telemetry"
)

// CartHandler handles all cart-related routes.
type CartHandler struct {
	shopperSession
	catalog  *catalog.Store
	engine   *pricing.Engine
	metrics  *telemetry.Business
	validate *validator.Validate
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(
	sessions *session.Manager,
	cookies *cookie.Config,
	profiles profile.Store,
	store *catalog.Store,
	engine *pricing.Engine,
	metrics *telemetry.Business,
) *CartHandler {
	return &CartHandler{
		shopperSession: shopperSession{sessions: sessions, cookies: cookies, profiles: profiles},
		catalog:        store,
		engine:         engine,
		metrics:        metrics,
		validate:       validator.New(),
	}
}

type lineResponse struct {
	Index          int    `json:"index"`
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	Variant        string `json:"variant"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	SubtotalCents  int64  `json:"subtotal_cents"`
}

type summaryResponse struct {
	SubtotalCents       int64 `json:"subtotal_cents"`
	CouponDiscountCents int64 `json:"coupon_discount_cents"`
	PointsDiscountCents int64 `json:"points_discount_cents"`
	PointsConsumed      int64 `json:"points_consumed"`
	GiftSurchargeCents  int64 `json:"gift_surcharge_cents"`
	TotalCents          int64 `json:"total_cents"`
}

type cartResponse struct {
	Lines        []lineResponse  `json:"lines"`
	Summary      summaryResponse `json:"summary"`
	CouponCode   string          `json:"coupon_code,omitempty"`
	RedeemPoints bool            `json:"redeem_points"`
	GiftWrap     bool            `json:"gift_wrap"`
	PointAward   int64           `json:"point_award"`
}

// cartView assembles the cart response: the lines plus a price summary
// recomputed from current session state on every read.
func (h *CartHandler) cartView(s *session.Session, shopper domain.Shopper) cartResponse {
	lines := s.Cart.Lines()
	code, rate := s.Coupon()
	redeemPoints, giftWrap := s.Options()

	summary := h.engine.Summary(lines, rate, shopper, redeemPoints, giftWrap)

	resp := cartResponse{
		Lines: make([]lineResponse, 0, len(lines)),
		Summary: summaryResponse{
			SubtotalCents:       summary.SubtotalCents,
			CouponDiscountCents: summary.CouponDiscountCents,
			PointsDiscountCents: summary.PointsDiscountCents,
			PointsConsumed:      summary.PointsConsumed,
			GiftSurchargeCents:  summary.GiftSurchargeCents,
			TotalCents:          summary.TotalCents,
		},
		CouponCode:   code,
		RedeemPoints: redeemPoints,
		GiftWrap:     giftWrap,
		PointAward:   pricing.PointAward(lines),
	}
	for i, l := range lines {
		resp.Lines = append(resp.Lines, lineResponse{
			Index:          i,
			ProductID:      l.Product.ID,
			Name:           l.Product.Name,
			Variant:        l.Variant,
			Quantity:       l.Quantity,
			UnitPriceCents: l.Product.PriceCents,
			SubtotalCents:  l.SubtotalCents(),
		})
	}
	return resp
}

// respondCart writes the current cart view, or an error when the shopper
// profile lookup fails.
func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, s *session.Session) {
	shopper, err := h.shopper(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartView(s, shopper))
}

// View handles GET /api/cart.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, h.session(w, r))
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Variant   string `json:"variant" validate:"required"`
	Quantity  int32  `json:"quantity" validate:"required,min=1"`
}

// AddItem handles POST /api/cart/items. The product is looked up in the
// current snapshot and its price frozen into the line at add time.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, domain.Errorf(domain.EINVALID, "api.cart.add", "product_id, variant and a positive quantity are required"))
		return
	}

	product, ok := h.catalog.Product(req.ProductID)
	if !ok {
		respondError(w, r, domain.ErrProductNotFound)
		return
	}

	s := h.session(w, r)
	if err := s.Cart.Add(product, req.Variant, req.Quantity); err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.CartItemsAdded.WithLabelValues(product.ID).Inc()
	h.respondCart(w, r, s)
}

type setQuantityRequest struct {
	Quantity int32 `json:"quantity" validate:"required,min=1"`
}

// SetQuantity handles PUT /api/cart/items/{index}.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	idx, err := lineIndex(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, domain.ErrInvalidQuantity)
		return
	}

	s := h.session(w, r)
	if err := s.Cart.SetQuantity(idx, req.Quantity); err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.CartUpdated.Inc()
	h.respondCart(w, r, s)
}

type adjustRequest struct {
	Delta int32 `json:"delta" validate:"required"`
}

// Adjust handles POST /api/cart/items/{index}/adjust. Increment and
// decrement buttons funnel through the same quantity validation as direct
// numeric entry.
func (h *CartHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	idx, err := lineIndex(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, domain.Errorf(domain.EINVALID, "api.cart.adjust", "A nonzero delta is required"))
		return
	}

	s := h.session(w, r)
	if err := s.Cart.Adjust(idx, req.Delta); err != nil {
		respondError(w, r, err)
		return
	}

	h.metrics.CartUpdated.Inc()
	h.respondCart(w, r, s)
}

// RemoveItem handles DELETE /api/cart/items/{index}. Removing a line that
// no longer exists is a no-op, not an error.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	idx, err := lineIndex(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s := h.session(w, r)
	s.Cart.Remove(idx)

	h.metrics.CartUpdated.Inc()
	h.respondCart(w, r, s)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Cart.Clear()

	h.metrics.CartCleared.Inc()
	h.respondCart(w, r, s)
}

type couponRequest struct {
	Code string `json:"code" validate:"required"`
}

// ApplyCoupon handles POST /api/cart/coupon. A rejected code leaves any
// previously applied coupon in force.
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, domain.ErrCouponRejected)
		return
	}

	s := h.session(w, r)

	rate, err := h.engine.ResolveCoupon(req.Code)
	if err != nil {
		h.metrics.CouponRejected.Inc()
		respondError(w, r, err)
		return
	}

	code := pricing.NormalizeCoupon(req.Code)
	s.SetCoupon(code, rate)
	h.metrics.CouponApplied.WithLabelValues(code).Inc()
	h.respondCart(w, r, s)
}

type optionsRequest struct {
	RedeemPoints bool `json:"redeem_points"`
	GiftWrap     bool `json:"gift_wrap"`
}

// SetOptions handles PUT /api/cart/options.
func (h *CartHandler) SetOptions(w http.ResponseWriter, r *http.Request) {
	var req optionsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	s := h.session(w, r)
	s.SetOptions(req.RedeemPoints, req.GiftWrap)
	h.respondCart(w, r, s)
}
