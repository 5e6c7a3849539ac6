package cart

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecopack/cartengine/internal/domain/money"
	"github.com/ecopack/cartengine/internal/domain/product"
	"github.com/ecopack/cartengine/internal/domain/promotion"
)

// Repository defines persistence operations for cart snapshots.
type Repository interface {
	Get(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher receives a snapshot after every committed cart mutation.
// Publishing is best-effort: failures are logged and never fail the mutation.
type EventPublisher interface {
	CartUpdated(ctx context.Context, c *Cart) error
}

const lockStripes = 64

// Service wires the cart aggregate to the catalog, promotion, and
// persistence collaborators. The aggregate requires at most one writer per
// cart at a time; Service enforces that with striped per-cart locks.
type Service struct {
	products product.Repository
	promos   promotion.Validator
	carts    Repository
	events   EventPublisher
	lg       *zap.Logger
	now      func() time.Time
	ttl      time.Duration

	locks [lockStripes]sync.Mutex
}

// NewService creates a cart Service. events may be nil to disable event
// publishing; ttl of zero creates carts without expiry.
func NewService(
	products product.Repository,
	promos promotion.Validator,
	carts Repository,
	events EventPublisher,
	lg *zap.Logger,
	ttl time.Duration,
) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{
		products: products,
		promos:   promos,
		carts:    carts,
		events:   events,
		lg:       lg,
		now:      time.Now,
		ttl:      ttl,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) lock(cartID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(cartID))
	return &s.locks[h.Sum32()%lockStripes]
}

// Create creates and persists a new empty cart in the given currency.
func (s *Service) Create(ctx context.Context, currency string) (*Cart, error) {
	c := New(uuid.New().String(), currency, s.now(), s.ttl)
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// Get returns the cart snapshot with the given id. Reading an expired cart
// is allowed; only mutations fail.
func (s *Service) Get(ctx context.Context, cartID string) (*Cart, error) {
	return s.carts.Get(ctx, cartID)
}

// AddItem adds quantity of a product to the cart and returns the updated
// snapshot.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, quantity int, customizations map[string]string) (*Cart, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}

	return s.mutate(ctx, cartID, func(c *Cart) error {
		_, err := c.AddItem(s.now(), *p, quantity, customizations)
		return err
	})
}

// UpdateItemQuantity changes a line's quantity; zero removes the line.
func (s *Service) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (*Cart, error) {
	if quantity == 0 {
		return s.RemoveItem(ctx, cartID, itemID)
	}

	return s.mutate(ctx, cartID, func(c *Cart) error {
		item := c.FindItem(itemID)
		if item == nil {
			return &ItemNotFoundError{CartID: c.ID, ItemID: itemID}
		}
		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return errors.Wrap(err, "get product")
		}
		return c.UpdateItemQuantity(s.now(), itemID, quantity, *p)
	})
}

// RemoveItem removes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		return c.RemoveItem(s.now(), itemID)
	})
}

// ApplyDiscount validates a promotion code through the promotion
// collaborator and applies the resulting discount to the cart. The code's
// usage counter is consumed only once the cart has accepted the discount,
// so an already-discounted or expired cart never burns a use.
func (s *Service) ApplyDiscount(ctx context.Context, cartID, code string) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		d, err := s.promos.Validate(ctx, code, c.Currency, c.TotalQuantity())
		if err != nil {
			return err
		}
		if err := c.ApplyDiscount(s.now(), *d); err != nil {
			return err
		}
		return s.promos.Consume(ctx, code)
	})
}

// RemoveDiscount detaches the cart's active discount.
func (s *Service) RemoveDiscount(ctx context.Context, cartID string) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		return c.RemoveDiscount(s.now())
	})
}

// SetShipping attaches a resolved shipping option.
func (s *Service) SetShipping(ctx context.Context, cartID string, opt ShippingOption) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		return c.SetShipping(s.now(), opt)
	})
}

// SetTax attaches an externally computed tax amount.
func (s *Service) SetTax(ctx context.Context, cartID string, amount money.Money) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		return c.SetTax(s.now(), amount)
	})
}

// SetTaxRate attaches an externally supplied tax rate.
func (s *Service) SetTaxRate(ctx context.Context, cartID string, rate decimal.Decimal) (*Cart, error) {
	return s.mutate(ctx, cartID, func(c *Cart) error {
		return c.SetTaxRate(s.now(), rate)
	})
}

// mutate loads the cart under its lock, applies op, persists the result, and
// publishes a cart.updated event.
func (s *Service) mutate(ctx context.Context, cartID string, op func(c *Cart) error) (*Cart, error) {
	mu := s.lock(cartID)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := op(c); err != nil {
		return nil, err
	}

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}

	for _, w := range c.Warnings {
		s.lg.Warn("cart warning", zap.String("cart_id", c.ID), zap.String("warning", w))
	}

	if s.events != nil {
		if err := s.events.CartUpdated(ctx, c); err != nil {
			s.lg.Warn("publish cart.updated failed", zap.String("cart_id", c.ID), zap.Error(err))
		}
	}

	return c, nil
}
