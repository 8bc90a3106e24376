package checkout

import (
	"fmt"
	"strings"

	"github.com/mholtet/embla/internal/domain"
	"github.com/mholtet/embla/internal/pricing"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders monetary amounts and order messages for one shop
// locale and currency.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

// NewFormatter creates a formatter for a BCP 47 locale tag (e.g. "en-US")
// and an ISO 4217 currency code (e.g. "USD").
func NewFormatter(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", currencyCode, err)
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
	}, nil
}

// Money renders an amount of minor units in the shop locale.
func (f *Formatter) Money(cents int64) string {
	return f.printer.Sprintf("%v", currency.Symbol(f.unit.Amount(float64(cents)/100)))
}

// OrderDetails is everything the formatter needs to render one order.
type OrderDetails struct {
	Number        string
	Lines         []domain.Line
	Summary       domain.PriceSummary
	CouponCode    string
	PaymentMethod string
	Shopper       domain.Shopper
}

// Message renders the order as a single human-readable text payload.
// Every line item appears as "name (variant) × quantity -> line total";
// the coupon, points and gift lines appear only when their amount is
// nonzero.
func (f *Formatter) Message(d OrderDetails) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order #%s\n", d.Number)
	if d.Shopper.Name != "" {
		fmt.Fprintf(&b, "For: %s\n", d.Shopper.Name)
	}
	b.WriteString("\n")

	for _, l := range d.Lines {
		fmt.Fprintf(&b, "%s (%s) × %d -> %s\n",
			l.Product.Name, l.Variant, l.Quantity, f.Money(l.SubtotalCents()))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", f.Money(d.Summary.SubtotalCents))
	if d.Summary.CouponDiscountCents > 0 {
		fmt.Fprintf(&b, "Coupon (%s): -%s\n", d.CouponCode, f.Money(d.Summary.CouponDiscountCents))
	}
	if d.Summary.PointsDiscountCents > 0 {
		fmt.Fprintf(&b, "Points redeemed (%d pts): -%s\n", d.Summary.PointsConsumed, f.Money(d.Summary.PointsDiscountCents))
	}
	if d.Summary.GiftSurchargeCents > 0 {
		fmt.Fprintf(&b, "Gift wrapping: +%s\n", f.Money(d.Summary.GiftSurchargeCents))
	}
	fmt.Fprintf(&b, "Total: %s\n", f.Money(d.Summary.TotalCents))

	if d.PaymentMethod != "" {
		fmt.Fprintf(&b, "\nPayment: %s\n", d.PaymentMethod)
	}
	if award := pricing.PointAward(d.Lines); award > 0 {
		fmt.Fprintf(&b, "Points earned: %d\n", award)
	}

	return b.String()
}
