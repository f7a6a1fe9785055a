package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/product"
)

const (
	productColumns = `id, name, description, slug, weight, price, stock, category,
		images, benefits, in_stock, active, created_at, updated_at`

	listProductsSQL = `SELECT ` + productColumns + `
		FROM products WHERE active ORDER BY created_at DESC, id`

	getProductByIDSQL = `SELECT ` + productColumns + `
		FROM products WHERE id = $1`

	getProductBySlugSQL = `SELECT ` + productColumns + `
		FROM products WHERE slug = $1 ORDER BY active DESC, created_at LIMIT 1`

	getProductByNameSQL = `SELECT ` + productColumns + `
		FROM products WHERE name = $1 ORDER BY active DESC, created_at LIMIT 1`

	insertProductSQL = `INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	updateProductSQL = `UPDATE products SET
		name = $2, description = $3, slug = $4, weight = $5, price = $6, stock = $7,
		category = $8, images = $9, benefits = $10, in_stock = $7 > 0, updated_at = $11
		WHERE id = $1`

	deactivateProductSQL = `UPDATE products SET active = FALSE, updated_at = now() WHERE id = $1`

	// Conditional decrement: the row lock taken by UPDATE serializes
	// concurrent checkouts, and the predicate is re-checked on the locked row.
	decrementStockSQL = `UPDATE products
		SET stock = stock - $2, in_stock = stock - $2 > 0, updated_at = now()
		WHERE id = $1 AND active AND stock >= $2
		RETURNING stock`

	countProductsSQL = `SELECT count(*) FROM products`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	conn
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{conn{pool: pool}}
}

// List returns active products, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.q(ctx).Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a product by id regardless of its active flag.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

// GetBySlug returns the product with the given slug, preferring active rows.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return r.getOne(ctx, getProductBySlugSQL, slug)
}

// GetByName returns the product with exactly the given name, preferring active rows.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*product.Product, error) {
	return r.getOne(ctx, getProductByNameSQL, name)
}

func (r *ProductRepository) getOne(ctx context.Context, query, arg string) (*product.Product, error) {
	rows, err := r.q(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", arg, err)
	}
	return &p, nil
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.q(ctx).Exec(ctx, insertProductSQL,
		p.ID, p.Name, p.Description, p.Slug, p.Weight, p.Price, p.Stock, p.Category,
		p.Images, p.Benefits, p.Stock > 0, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update replaces the editable fields of a product and recomputes in_stock.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.q(ctx).Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Slug, p.Weight, p.Price, p.Stock,
		p.Category, p.Images, p.Benefits, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes a product.
func (r *ProductRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q(ctx).Exec(ctx, deactivateProductSQL, id)
	if err != nil {
		return fmt.Errorf("deactivating product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// DecrementStock removes qty units when at least qty are available. It
// reports ok=false and changes nothing otherwise.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) (int, bool, error) {
	var remaining int
	err := r.q(ctx).QueryRow(ctx, decrementStockSQL, id, qty).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("decrementing stock of %q: %w", id, err)
	}
	return remaining, true, nil
}

// Count returns the number of products, active or not.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q(ctx).QueryRow(ctx, countProductsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Slug, &p.Weight, &p.Price, &p.Stock, &p.Category,
		&p.Images, &p.Benefits, &p.InStock, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
