package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecopack/cartengine/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Orders
// are immutable; the snapshot goes into a JSONB column with the totals
// extracted for reporting queries.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order record.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshaling order %q: %w", o.ID, err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (id, order_number, cart_id, currency, total, doc, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.OrderNumber, o.CartID, o.Total.Currency, o.Total.Amount, doc, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}
