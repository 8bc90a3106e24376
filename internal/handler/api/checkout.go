package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/mholtet/embla/internal/checkout"
	"github.com/mholtet/embla/internal/cookie"
	"github.com/mholtet/embla/internal/profile"
	"github.com/mholtet/embla/internal/session"
)

// CheckoutHandler runs the checkout orchestrator for the session's cart.
type CheckoutHandler struct {
	shopperSession
	validate *validator.Validate
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(
	sessions *session.Manager,
	cookies *cookie.Config,
	profiles profile.Store,
) *CheckoutHandler {
	return &CheckoutHandler{
		shopperSession: shopperSession{sessions: sessions, cookies: cookies, profiles: profiles},
		validate:       validator.New(),
	}
}

type checkoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,max=64"`
}

type checkoutResponse struct {
	State       string          `json:"state"`
	OrderNumber string          `json:"order_number,omitempty"`
	Summary     summaryResponse `json:"summary"`
}

// Submit handles POST /api/checkout. The orchestrator rejects a second
// submission while one is processing; failures return the user-facing
// message with the cart intact so the shopper can retry.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, checkout.ErrPaymentMethodRequired)
		return
	}

	s := h.session(w, r)

	shopper, err := h.shopper(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	code, rate := s.Coupon()
	redeemPoints, giftWrap := s.Options()

	order, err := s.Checkout.Submit(r.Context(), checkout.Request{
		Cart:              s.Cart,
		Shopper:           shopper,
		CouponCode:        code,
		CouponBasisPoints: rate,
		RedeemPoints:      redeemPoints,
		GiftWrap:          giftWrap,
		PaymentMethod:     req.PaymentMethod,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, checkoutResponse{
		State:       s.Checkout.LastResult().String(),
		OrderNumber: order.Number,
		Summary: summaryResponse{
			SubtotalCents:       order.Summary.SubtotalCents,
			CouponDiscountCents: order.Summary.CouponDiscountCents,
			PointsDiscountCents: order.Summary.PointsDiscountCents,
			PointsConsumed:      order.Summary.PointsConsumed,
			GiftSurchargeCents:  order.Summary.GiftSurchargeCents,
			TotalCents:          order.Summary.TotalCents,
		},
	})
}
