package repository

import (
	"context"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
)

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves a cart by its ID.
	Get(ctx context.Context, cartID string) (*domain.Cart, error)

	// Save persists a cart to the store, overwriting any existing cart with the same ID.
	Save(ctx context.Context, cart *domain.Cart) error

	// SaveIfVersion persists the cart only when the stored version still equals
	// expectedVersion, bumping the version on success. Returns false when
	// another writer got there first.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)

	// Delete removes a cart from the store by its ID.
	Delete(ctx context.Context, cartID string) error
}

// CheckoutRepository defines the interface for checkout session persistence.
type CheckoutRepository interface {
	// Get retrieves a checkout session by its ID.
	Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)

	// Save persists a session, overwriting any existing session with the same ID.
	Save(ctx context.Context, session *domain.CheckoutSession) error

	// Delete removes a session from the store by its ID.
	Delete(ctx context.Context, sessionID string) error
}

// CatalogRepository defines read and seed access to the product catalog.
type CatalogRepository interface {
	// ListCategories returns every category ordered by name.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// ListProducts returns products, optionally filtered by category slug.
	ListProducts(ctx context.Context, categorySlug string) ([]domain.Product, error)

	// GetProduct retrieves a product by its ID.
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)

	// GetProductBySlug retrieves a product by its URL slug.
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// UpsertCategory inserts or updates a category keyed by slug, returning its ID.
	UpsertCategory(ctx context.Context, category *domain.Category) (string, error)

	// UpsertProduct inserts or updates a product keyed by slug.
	UpsertProduct(ctx context.Context, product *domain.Product) error
}

// OrderRepository defines the interface for order persistence.
type OrderRepository interface {
	// Create persists a new order.
	Create(ctx context.Context, order *domain.Order) error

	// Get retrieves an order by its ID.
	Get(ctx context.Context, orderID string) (*domain.Order, error)

	// GetByReference retrieves an order by its customer-facing reference.
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// UpdateStatus transitions an order to the given status.
	UpdateStatus(ctx context.Context, orderID, status string) error
}

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	// Create persists a new user account.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
