package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/auth"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/event"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/service"
	"github.com/Dheeraj-pilakkat/BrewHaven/internal/settlement"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/health"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/httputil"
	pkgkafka "github.com/Dheeraj-pilakkat/BrewHaven/pkg/kafka"
)

// ============================================================================
// Repository mocks
// ============================================================================

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	args := m.Called(ctx, cart, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepository) Delete(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type mockCheckoutRepository struct {
	mock.Mock
}

func (m *mockCheckoutRepository) Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

func (m *mockCheckoutRepository) Save(ctx context.Context, session *domain.CheckoutSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockCheckoutRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCatalogRepository) ListProducts(ctx context.Context, categorySlug string) ([]domain.Product, error) {
	args := m.Called(ctx, categorySlug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalogRepository) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCatalogRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCatalogRepository) UpsertCategory(ctx context.Context, category *domain.Category) (string, error) {
	args := m.Called(ctx, category)
	return args.String(0), args.Error(1)
}

func (m *mockCatalogRepository) UpsertProduct(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Settle(ctx context.Context, req settlement.Request) (*settlement.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Result), args.Error(1)
}

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testEventProducer points at an unreachable broker. Publish failures are
// logged by the services, not surfaced, so handlers behave normally.
func testEventProducer() *event.Producer {
	logger := testLogger()
	cfg := pkgkafka.DefaultProducerConfig([]string{"localhost:1"})
	return event.NewProducer(pkgkafka.NewProducer(cfg, logger), logger)
}

func testJWT() *auth.JWTManager {
	return auth.NewJWTManager("handler-test-secret", time.Hour)
}

// bearerFor mints a valid token for the given user.
func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := testJWT().GenerateToken(userID, "shopper@example.com", "Shopper")
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// routerFixture bundles the repository mocks behind a production-shaped
// router so requests exercise the real middleware chain and route table.
type routerFixture struct {
	carts    *mockCartRepository
	sessions *mockCheckoutRepository
	catalog  *mockCatalogRepository
	orders   *mockOrderRepository
	users    *mockUserRepository
	gateway  *mockGateway
	router   *chi.Mux
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		carts:    new(mockCartRepository),
		sessions: new(mockCheckoutRepository),
		catalog:  new(mockCatalogRepository),
		orders:   new(mockOrderRepository),
		users:    new(mockUserRepository),
		gateway:  new(mockGateway),
	}

	logger := testLogger()
	producer := testEventProducer()
	jwt := testJWT()

	cartSvc := service.NewCartService(f.carts, f.catalog, producer, logger, 168*time.Hour, "USD")
	checkoutSvc := service.NewCheckoutService(f.sessions, f.carts, f.orders, f.gateway, producer, logger, 30*time.Minute, 500, "USD")
	catalogSvc := service.NewCatalogService(f.catalog, logger)
	orderSvc := service.NewOrderService(f.orders, logger)
	authSvc := service.NewAuthService(f.users, jwt, logger, 0, bcrypt.MinCost)

	f.router = NewRouter(RouterConfig{
		Cart:     NewCartHandler(cartSvc, logger),
		Checkout: NewCheckoutHandler(checkoutSvc, logger),
		Catalog:  NewCatalogHandler(catalogSvc, logger),
		Auth:     NewAuthHandler(authSvc, logger),
		Orders:   NewOrderHandler(orderSvc, logger),
		JWT:      jwt,
		Health:   health.NewHandler(),
		Logger:   logger,
	})
	return f
}

func sampleCart(cartID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID: cartID,
		Items: []domain.CartItem{
			{
				ProductID: "550e8400-e29b-41d4-a716-446655440001",
				Name:      "Classic Espresso",
				Price:     299,
				Quantity:  2,
				Category:  "Hot Coffees",
			},
		},
		Currency:  "USD",
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:         "550e8400-e29b-41d4-a716-446655440001",
		Name:       "Classic Espresso",
		Slug:       "classic-espresso",
		Price:      299,
		Currency:   "USD",
		CategoryID: "cat-1",
		Category:   "Hot Coffees",
		Stock:      25,
	}
}
