package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecopack/cartengine/internal/domain/cart"
	"github.com/ecopack/cartengine/internal/domain/sustainability"
)

// Service turns carts into orders.
type Service struct {
	carts  cart.Repository
	orders Repository
	lg     *zap.Logger
	now    func() time.Time
}

// NewService creates an order Service. A nil logger disables logging.
func NewService(carts cart.Repository, orders Repository, lg *zap.Logger) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{carts: carts, orders: orders, lg: lg, now: time.Now}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Checkout snapshots the cart into an order with a sustainability report,
// persists it, and deletes the cart. An expired or empty cart cannot be
// checked out.
func (s *Service) Checkout(ctx context.Context, cartID string) (*Order, error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if c.Expired(now) {
		return nil, &cart.ExpiredError{CartID: c.ID, ExpiresAt: c.ExpiresAt}
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]sustainability.Line, len(c.Items))
	for i, it := range c.Items {
		lines[i] = sustainability.Line{Product: it.Product, Quantity: it.Quantity}
	}

	o := &Order{
		ID:          uuid.New().String(),
		OrderNumber: orderNumber(now),
		CartID:      c.ID,
		Items:       c.Items,
		Subtotal:    c.Subtotal,
		Tax:         c.Tax,
		Shipping:    c.Shipping,
		Total:       c.Total,
		CreatedAt:   now,
	}
	if c.Discount != nil {
		amount := c.Discount.Amount
		o.Discount = &amount
	}
	o.Report = sustainability.BuildReport(o.ID, lines)

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// The cart is consumed by checkout; deletion is best-effort since the
	// order is already durable, but an orphaned cart is worth knowing about.
	if err := s.carts.Delete(ctx, cartID); err != nil {
		s.lg.Warn("Deleting cart after checkout",
			zap.String("cart_id", cartID),
			zap.String("order_id", o.ID),
			zap.Error(err))
	}

	return o, nil
}

// orderNumber derives a human-readable order number, e.g. ECO-20260315-4F2A1C.
func orderNumber(now time.Time) string {
	suffix := uuid.New().String()[:6]
	return fmt.Sprintf("ECO-%s-%s", now.Format("20060102"), suffix)
}
