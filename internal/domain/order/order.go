// Package order converts an active cart into an immutable order record with
// a sustainability report.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/ecopack/cartengine/internal/domain/cart"
	"github.com/ecopack/cartengine/internal/domain/money"
	"github.com/ecopack/cartengine/internal/domain/sustainability"
)

// ErrEmptyCart is returned when checking out a cart with no items.
var ErrEmptyCart = errors.New("cart has no items")

// Order is the immutable result of checking out a cart.
type Order struct {
	ID          string                `json:"id"`
	OrderNumber string                `json:"orderNumber"`
	CartID      string                `json:"cartId"`
	Items       []cart.Item           `json:"items"`
	Subtotal    money.Money           `json:"subtotal"`
	Discount    *money.Money          `json:"discount,omitempty"`
	Tax         *money.Money          `json:"tax,omitempty"`
	Shipping    *cart.ShippingOption  `json:"shipping,omitempty"`
	Total       money.Money           `json:"total"`
	Report      sustainability.Report `json:"sustainabilityReport"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
}
