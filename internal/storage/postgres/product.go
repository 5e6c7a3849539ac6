package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecopack/cartengine/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
// The full product document lives in a JSONB column; id, slug, category and
// status are extracted into dedicated columns for lookups.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT doc FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetByID returns a single product by its identifier. Returns
// product.ErrNotFound when no matching product exists.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM products WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := unmarshalProduct(doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts or replaces a product document. Used by the seeding tool.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling product %q: %w", p.ID, err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO products (id, slug, category, status, doc)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET slug = EXCLUDED.slug,
		    category = EXCLUDED.category,
		    status = EXCLUDED.status,
		    doc = EXCLUDED.doc`,
		p.ID, p.Slug, p.Category, string(p.Status), doc)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]product.Product, error) {
	var products []product.Product
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		p, err := unmarshalProduct(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading product rows: %w", err)
	}
	return products, nil
}

func unmarshalProduct(doc []byte) (product.Product, error) {
	var p product.Product
	if err := json.Unmarshal(doc, &p); err != nil {
		return product.Product{}, fmt.Errorf("decoding product document: %w", err)
	}
	return p, nil
}
