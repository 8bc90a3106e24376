// Package checkout sequences the side-effecting steps that finalize an
// order: debit redeemed points, format the order message, hand it to the
// communication channel, and clear the cart on success.
package checkout

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mholtet/embla/internal/domain"
	"github.com/mholtet/embla/internal/pricing"
	"github.com/mholtet/embla/internal/telemetry"
)

// State is the orchestrator's lifecycle for one attempt.
type State int32

const (
	StateIdle State = iota
	StateProcessing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrCheckoutInFlight      = &domain.Error{Code: domain.ECONFLICT, Message: "Checkout already in progress"}
	ErrPaymentMethodRequired = &domain.Error{Code: domain.EINVALID, Message: "A payment method is required"}
)

// PointDebiter is the slice of the profile store the orchestrator needs.
type PointDebiter interface {
	DebitPoints(ctx context.Context, shopperID string, points int64) error
}

// Channel accepts the formatted order message for a destination.
type Channel interface {
	Send(ctx context.Context, destination, payload string) error
}

// Cart is the slice of the cart store the orchestrator needs.
type Cart interface {
	Lines() []domain.Line
	Clear()
}

// Request carries one checkout attempt's inputs. The coupon rate and flags
// are the session state at the moment the shopper confirmed.
type Request struct {
	Cart              Cart
	Shopper           domain.Shopper
	CouponCode        string
	CouponBasisPoints int64
	RedeemPoints      bool
	GiftWrap          bool
	PaymentMethod     string
}

// Order is the result of a completed checkout.
type Order struct {
	Number  string
	Message string
	Summary domain.PriceSummary
}

// Orchestrator runs the checkout state machine. Only one checkout may be
// in flight at a time; a failed attempt leaves the cart intact and returns
// the orchestrator to Idle for a retry.
type Orchestrator struct {
	engine      *pricing.Engine
	formatter   *Formatter
	profile     PointDebiter
	channel     Channel
	destination string
	logger      *slog.Logger
	metrics     *telemetry.Business

	state     atomic.Int32
	lastState atomic.Int32
}

// New creates an orchestrator. The destination identifies the recipient on
// the communication channel. Metrics are optional.
func New(engine *pricing.Engine, formatter *Formatter, profile PointDebiter, ch Channel, destination string, metrics *telemetry.Business, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		engine:      engine,
		formatter:   formatter,
		profile:     profile,
		channel:     ch,
		destination: destination,
		logger:      logger,
		metrics:     metrics,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// LastResult returns the terminal state of the most recent attempt, or
// StateIdle if none has run yet.
func (o *Orchestrator) LastResult() State {
	return State(o.lastState.Load())
}

// Submit runs one checkout attempt. Re-entrant calls while an attempt is
// processing are rejected without touching any state. On any failure the
// cart is preserved and the orchestrator returns to Idle so the shopper
// can retry; after a successful hand-off the cart is cleared.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Order, error) {
	if !o.state.CompareAndSwap(int32(StateIdle), int32(StateProcessing)) {
		return nil, ErrCheckoutInFlight
	}

	order, err := o.run(ctx, req)
	if err != nil {
		o.lastState.Store(int32(StateFailed))
		o.state.Store(int32(StateIdle))
		return nil, err
	}

	o.lastState.Store(int32(StateCompleted))
	o.state.Store(int32(StateIdle))
	return order, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request) (*Order, error) {
	if o.metrics != nil {
		o.metrics.CheckoutStarted.Inc()
	}

	lines := req.Cart.Lines()
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	summary := o.engine.Summary(lines, req.CouponBasisPoints, req.Shopper, req.RedeemPoints, req.GiftWrap)

	// Step 1: debit redeemed points. The order is not placed if the remote
	// store cannot take the debit.
	if req.RedeemPoints && summary.PointsConsumed > 0 {
		if err := o.profile.DebitPoints(ctx, req.Shopper.ID, summary.PointsConsumed); err != nil {
			o.logger.Error("checkout point debit failed",
				"shopper", req.Shopper.ID, "points", summary.PointsConsumed, "error", err)
			if o.metrics != nil {
				o.metrics.CheckoutFailed.WithLabelValues("points_debit").Inc()
			}
			return nil, domain.WrapError(err, domain.EUNAVAILABLE, "checkout.debit",
				"Could not redeem points; your order was not placed")
		}
		if o.metrics != nil {
			o.metrics.PointsRedeemed.Add(float64(summary.PointsConsumed))
		}
	}

	// Step 2: format the order message. Pure; cannot fail.
	number := orderNumber()
	msg := o.formatter.Message(OrderDetails{
		Number:        number,
		Lines:         lines,
		Summary:       summary,
		CouponCode:    req.CouponCode,
		PaymentMethod: req.PaymentMethod,
		Shopper:       req.Shopper,
	})

	// Step 3: hand off. Points already debited are not refunded on a
	// hand-off failure; the cart survives for a retry.
	if err := o.channel.Send(ctx, o.destination, msg); err != nil {
		o.logger.Error("checkout hand-off failed", "order", number, "error", err)
		if o.metrics != nil {
			o.metrics.CheckoutFailed.WithLabelValues("handoff").Inc()
		}
		return nil, domain.WrapError(err, domain.EUNAVAILABLE, "checkout.handoff",
			"Could not submit your order; please try again")
	}

	req.Cart.Clear()

	if o.metrics != nil {
		o.metrics.CheckoutCompleted.Inc()
		o.metrics.OrderValue.Observe(float64(summary.TotalCents))
		o.metrics.OrderItemCount.Observe(float64(len(lines)))
		o.metrics.CartValue.Observe(float64(summary.SubtotalCents))
	}

	o.logger.Info("checkout completed",
		"order", number,
		"total_cents", summary.TotalCents,
		"lines", len(lines),
		"points_redeemed", summary.PointsConsumed)

	return &Order{Number: number, Message: msg, Summary: summary}, nil
}

// orderNumber derives a short human-readable order reference.
func orderNumber() string {
	id := uuid.New().String()
	return strings.ToUpper(id[:8])
}
