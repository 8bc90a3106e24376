package api_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mholtet/embla/internal/catalog"
	"github.com/mholtet/embla/internal/checkout"
	"github.com/mholtet/embla/internal/cookie"
	"github.com/mholtet/embla/internal/domain"
	"github.com/mholtet/embla/internal/handler/api"
	"github.com/mholtet/embla/internal/pricing"
	"github.com/mholtet/embla/internal/router"
	"github.com/mholtet/embla/internal/routes"
	"github.com/mholtet/embla/internal/session"
	"github.com/mholtet/embla/internal/telemetry"
)

// Registered once for the package; prometheus rejects duplicate collectors.
var testMetrics = telemetry.NewBusiness("embla_api_test")

type mockProfiles struct {
	ShopperFn     func(ctx context.Context, id string) (domain.Shopper, error)
	DebitPointsFn func(ctx context.Context, id string, points int64) error
}

func (m *mockProfiles) Shopper(ctx context.Context, id string) (domain.Shopper, error) {
	if m.ShopperFn == nil {
		return domain.Shopper{}, domain.Errorf(domain.ENOTFOUND, "mock.Shopper", "Shopper not found")
	}
	return m.ShopperFn(ctx, id)
}

func (m *mockProfiles) DebitPoints(ctx context.Context, id string, points int64) error {
	if m.DebitPointsFn == nil {
		return nil
	}
	return m.DebitPointsFn(ctx, id, points)
}

type mockChannel struct {
	SendFn func(ctx context.Context, destination, payload string) error
}

func (m *mockChannel) Send(ctx context.Context, destination, payload string) error {
	if m.SendFn == nil {
		return nil
	}
	return m.SendFn(ctx, destination, payload)
}

func testProducts() []domain.Product {
	return []domain.Product{
		{
			ID:         "tea-001",
			Name:       "Sencha",
			PriceCents: 1_000,
			PointAward: 10,
			Variants: []domain.Variant{
				{Name: "50g", Stock: 10},
				{Name: "100g", Stock: 3},
			},
		},
		{
			ID:         "tea-002",
			Name:       "Gyokuro",
			PriceCents: 2_500,
			Variants:   []domain.Variant{{Name: "50g", Stock: 5}},
		},
	}
}

type testEnv struct {
	router   http.Handler
	profiles *mockProfiles
	channel  *mockChannel
	catalog  *catalog.Store

	// cookies carries the session cookie across requests in a test, the
	// way a browser would.
	cookies map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := catalog.NewStore(catalog.SourceFunc(func(ctx context.Context) ([]domain.Product, error) {
		return testProducts(), nil
	}), nil, nil, logger)
	require.NoError(t, store.Refresh(t.Context()))

	engine := pricing.New(pricing.Config{
		PointValueCents:          50,
		MaxRedemptionBasisPoints: 5_000,
		GiftSurchargeCents:       200_000,
		Coupons:                  map[string]int64{"WELCOME10": 1_000, "SPRING20": 2_000},
	})

	formatter, err := checkout.NewFormatter("en-US", "USD")
	require.NoError(t, err)

	profiles := &mockProfiles{}
	channel := &mockChannel{}

	sessions := session.NewManager(store, func() *checkout.Orchestrator {
		return checkout.New(engine, formatter, profiles, channel, "storefront", nil, logger)
	})

	cookies := cookie.NewConfig(false)

	r := router.New()
	routes.RegisterAPIRoutes(r, routes.APIDeps{
		CatalogHandler:  api.NewCatalogHandler(store),
		CartHandler:     api.NewCartHandler(sessions, cookies, profiles, store, engine, testMetrics),
		CheckoutHandler: api.NewCheckoutHandler(sessions, cookies, profiles),
		MetricsHandler:  http.NotFoundHandler(),
		Healthz: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})

	return &testEnv{
		router:   r,
		profiles: profiles,
		channel:  channel,
		catalog:  store,
		cookies:  make(map[string]string),
	}
}

// do issues a request, replaying and capturing cookies like a browser.
func (e *testEnv) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range e.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(e.cookies, c.Name)
			continue
		}
		e.cookies[c.Name] = c.Value
	}
	return w
}
