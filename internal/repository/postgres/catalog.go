package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Dheeraj-pilakkat/BrewHaven/internal/domain"
	"github.com/Dheeraj-pilakkat/BrewHaven/pkg/database"
	apperrors "github.com/Dheeraj-pilakkat/BrewHaven/pkg/errors"
)

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListCategories returns every category ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT id, name, slug, image_url, created_at
		FROM categories
		ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

const productColumns = `
	p.id, p.name, p.slug, p.description, p.price, p.currency,
	p.category_id, c.name AS category, p.image_url, p.stock,
	p.created_at, p.updated_at`

// ListProducts returns products ordered by name, optionally filtered by
// category slug. An empty slug returns the whole catalog.
func (r *CatalogRepository) ListProducts(ctx context.Context, categorySlug string) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id`

	var args []any
	if categorySlug != "" {
		query += " WHERE c.slug = $1"
		args = append(args, categorySlug)
	}
	query += " ORDER BY p.name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// GetProduct retrieves a product by ID.
func (r *CatalogRepository) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	var p domain.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, productID), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, err
	}

	return &p, nil
}

// GetProductBySlug retrieves a product by its URL slug.
func (r *CatalogRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.slug = $1`

	var p domain.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, slug), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", slug)
		}
		return nil, err
	}

	return &p, nil
}

// UpsertCategory inserts or updates a category keyed by slug, returning its ID.
func (r *CatalogRepository) UpsertCategory(ctx context.Context, c *domain.Category) (string, error) {
	query := `
		INSERT INTO categories (id, name, slug, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name, image_url = EXCLUDED.image_url
		RETURNING id`

	var id string
	err := r.pool.QueryRow(ctx, query, c.ID, c.Name, c.Slug, c.ImageURL, c.CreatedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert category: %w", err)
	}

	return id, nil
}

// UpsertProduct inserts or updates a product keyed by slug.
func (r *CatalogRepository) UpsertProduct(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, category_id, name, slug, description, price, currency, image_url, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (slug) DO UPDATE
		SET category_id = EXCLUDED.category_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			image_url = EXCLUDED.image_url,
			stock = EXCLUDED.stock,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.CategoryID, p.Name, p.Slug, p.Description,
		p.Price, p.Currency, p.ImageURL, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}

	return nil
}

// scanProduct scans a product row in productColumns order.
func scanProduct(row pgx.Row, p *domain.Product) error {
	if err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Currency,
		&p.CategoryID, &p.Category, &p.ImageURL, &p.Stock,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return fmt.Errorf("scan product: %w", err)
	}
	return nil
}
