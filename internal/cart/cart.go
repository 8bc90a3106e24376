// Package cart holds the mutable line-item collection for one shopping
// session. Every quantity change re-reads live stock through a StockReader,
// so a snapshot that shrank after add-time still caps the cart.
package cart

import (
	"sync"

	"github.com/mholtet/embla/internal/domain"
)

// StockReader is the live per-variant stock view, normally backed by the
// catalog snapshot store. Unknown products or variants report zero stock.
type StockReader interface {
	VariantStock(productID, variantName string) int32
}

// Store owns the ordered line-item sequence for the lifetime of a shopping
// session. It is not persisted; a process restart empties the cart.
//
// All mutations take the store lock, and stock validation happens under the
// same lock, so no entry point can bypass the stock ceiling and no reader
// observes a half-applied change.
type Store struct {
	mu    sync.Mutex
	stock StockReader
	lines []domain.Line
}

// New creates an empty cart validating against the given stock view.
func New(stock StockReader) *Store {
	return &Store{stock: stock}
}

// Add appends a line item for the given product snapshot and variant.
// The variant must exist on the product and the requested quantity must fit
// in live stock. When an identical product+variant line already exists the
// quantities are merged, and the stock ceiling applies to the merged total.
func (s *Store) Add(product domain.Product, variantName string, quantity int32) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	if !product.HasVariant(variantName) {
		return domain.ErrInvalidSelection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := quantity
	existing := -1
	for i, l := range s.lines {
		if l.Product.ID == product.ID && l.Variant == variantName {
			existing = i
			total += l.Quantity
			break
		}
	}

	available := s.stock.VariantStock(product.ID, variantName)
	if total > available {
		return domain.InsufficientStock(product.ID, variantName, available)
	}

	if existing >= 0 {
		s.lines[existing].Quantity = total
		return nil
	}

	s.lines = append(s.lines, domain.Line{
		Product:  product,
		Variant:  variantName,
		Quantity: quantity,
	})
	return nil
}

// SetQuantity replaces the quantity of the line at index. Stock is re-read
// on every call, not only at add time: the snapshot may have shrunk since
// the item entered the cart. On rejection the cart is left unchanged and
// the error carries the maximum purchasable amount.
func (s *Store) SetQuantity(index int, quantity int32) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setQuantityLocked(index, quantity)
}

// Adjust applies a signed delta to the line at index. Increment and
// decrement affordances funnel through here into the same validation as
// direct numeric entry.
func (s *Store) Adjust(index int, delta int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.lines) {
		return domain.ErrLineNotFound
	}
	next := s.lines[index].Quantity + delta
	if next < 1 {
		return domain.ErrInvalidQuantity
	}
	return s.setQuantityLocked(index, next)
}

func (s *Store) setQuantityLocked(index int, quantity int32) error {
	if index < 0 || index >= len(s.lines) {
		return domain.ErrLineNotFound
	}

	line := s.lines[index]
	available := s.stock.VariantStock(line.Product.ID, line.Variant)
	if quantity > available {
		return domain.InsufficientStock(line.Product.ID, line.Variant, available)
	}

	s.lines[index].Quantity = quantity
	return nil
}

// Remove drops the line at index. Out-of-range indexes are a no-op; removal
// always succeeds.
func (s *Store) Remove(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.lines) {
		return
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Lines returns a copy of the current line items in order.
func (s *Store) Lines() []domain.Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len reports the number of line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// IsEmpty reports whether the cart has no line items.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}
