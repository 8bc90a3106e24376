// Package session owns the per-shopper application state for the lifetime
// of a browsing session: the cart, the applied coupon, the checkout
// options, and the checkout orchestrator. Nothing here is persisted; a
// process restart starts every shopper from an empty cart.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/mholtet/embla/internal/cart"
	"github.com/mholtet/embla/internal/checkout"
)

// Session is the state container injected into every handler that needs
// cart or checkout state. It is the single writer for its own fields.
type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Orchestrator

	mu           sync.Mutex
	couponCode   string
	couponBP     int64
	redeemPoints bool
	giftWrap     bool
}

// SetCoupon records a successfully resolved coupon. Applying a new code
// overwrites the previous rate; rejected codes must never reach here.
func (s *Session) SetCoupon(code string, basisPoints int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.couponCode = code
	s.couponBP = basisPoints
}

// Coupon returns the active coupon code and rate, if any.
func (s *Session) Coupon() (string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.couponCode, s.couponBP
}

// SetOptions records the point-redemption and gift-wrap flags.
func (s *Session) SetOptions(redeemPoints, giftWrap bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redeemPoints = redeemPoints
	s.giftWrap = giftWrap
}

// Options returns the point-redemption and gift-wrap flags.
func (s *Session) Options() (redeemPoints, giftWrap bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redeemPoints, s.giftWrap
}

// Manager hands out sessions keyed by an opaque id carried in a cookie.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	stock           cart.StockReader
	newOrchestrator func() *checkout.Orchestrator
}

// NewManager creates a session manager. newOrchestrator builds the
// per-session checkout orchestrator.
func NewManager(stock cart.StockReader, newOrchestrator func() *checkout.Orchestrator) *Manager {
	return &Manager{
		sessions:        make(map[string]*Session),
		stock:           stock,
		newOrchestrator: newOrchestrator,
	}
}

// GetOrCreate returns the session for id, creating a fresh one (with a new
// id) when id is empty or unknown. The returned id should be set back on
// the shopper's cookie.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions[id]; ok {
			return s
		}
	}

	s := &Session{
		ID:       uuid.New().String(),
		Cart:     cart.New(m.stock),
		Checkout: m.newOrchestrator(),
	}
	m.sessions[s.ID] = s
	return s
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
