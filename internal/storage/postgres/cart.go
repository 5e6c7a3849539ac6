package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecopack/cartengine/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository persists carts as JSONB snapshots. A cart is always read
// and written whole; recalculation happens in the domain, not in SQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get loads a cart snapshot by ID. Returns cart.ErrNotFound when absent.
func (r *CartRepository) Get(ctx context.Context, id string) (*cart.Cart, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM carts WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart %q: %w", id, err)
	}

	var c cart.Cart
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("decoding cart document: %w", err)
	}
	return &c, nil
}

// Save upserts the full cart snapshot.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling cart %q: %w", c.ID, err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO carts (id, doc, updated_at, expires_at)
		VALUES ($1, $2, $3, NULLIF($4, 'epoch'::timestamptz))
		ON CONFLICT (id) DO UPDATE
		SET doc = EXCLUDED.doc,
		    updated_at = EXCLUDED.updated_at,
		    expires_at = EXCLUDED.expires_at`,
		c.ID, doc, c.UpdatedAt, expiresAtOrEpoch(c))
	if err != nil {
		return fmt.Errorf("saving cart %q: %w", c.ID, err)
	}
	return nil
}

// Delete removes a cart. Deleting an absent cart is not an error.
func (r *CartRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting cart %q: %w", id, err)
	}
	return nil
}

// PurgeExpired deletes carts whose expiry passed before the cutoff and
// returns how many were removed. Intended for a periodic sweep.
func (r *CartRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE expires_at IS NOT NULL AND expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging expired carts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// expiresAtOrEpoch maps a never-expiring cart to the epoch sentinel so the
// NULLIF in Save stores NULL for it.
func expiresAtOrEpoch(c *cart.Cart) time.Time {
	if c.ExpiresAt.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return c.ExpiresAt
}
