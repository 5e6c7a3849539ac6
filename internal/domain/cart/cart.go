// Package cart implements the mutable cart aggregate: an ordered collection
// of line items with totals, an optional discount, shipping, tax, and a
// sustainability roll-up, all recomputed on every mutation.
//
// Every mutating operation is all-or-nothing: it works on a copy of the cart
// and commits only on success, so a failed operation never leaves the cart
// partially updated. The current time is always supplied by the caller,
// keeping the aggregate deterministic. Callers are responsible for
// serializing concurrent mutations to the same cart (Service does this with
// a per-cart lock).
package cart

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecopack/cartengine/internal/domain/money"
	"github.com/ecopack/cartengine/internal/domain/pricing"
	"github.com/ecopack/cartengine/internal/domain/product"
	"github.com/ecopack/cartengine/internal/domain/promotion"
	"github.com/ecopack/cartengine/internal/domain/sustainability"
)

// Item is one cart line. Product is a borrowed reference to the immutable
// catalog record; UnitPrice is the price snapshot resolved when the line was
// added or its quantity last changed.
type Item struct {
	ID              string            `json:"id"`
	ProductID       string            `json:"productId"`
	Product         product.Product   `json:"product"`
	Quantity        int               `json:"quantity"`
	Customizations  map[string]string `json:"customizations,omitempty"`
	UnitPrice       money.Money       `json:"price"`
	DiscountedPrice *money.Money      `json:"discountedPrice,omitempty"`
	AddedAt         time.Time         `json:"addedAt"`
}

// EffectiveUnitPrice returns the discounted price when one is set, the
// resolved unit price otherwise.
func (it Item) EffectiveUnitPrice() money.Money {
	if it.DiscountedPrice != nil {
		return *it.DiscountedPrice
	}
	return it.UnitPrice
}

// LineTotal returns the effective unit price times the quantity, unrounded.
func (it Item) LineTotal() money.Money {
	return it.EffectiveUnitPrice().Mul(int64(it.Quantity))
}

// AppliedDiscount is the cart's single active discount: the validated
// descriptor plus the amount it currently reduces the subtotal by. Amount is
// recomputed on every mutation and always rendered as a positive reduction.
type AppliedDiscount struct {
	Discount promotion.Discount `json:"discount"`
	Amount   money.Money        `json:"amount"`
}

// ShippingOption is a resolved shipping choice supplied by the shipping
// collaborator. CarbonNeutral is display metadata.
type ShippingOption struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Carrier       string      `json:"carrier"`
	EstimatedDays int         `json:"estimatedDays"`
	Price         money.Money `json:"price"`
	CarbonNeutral bool        `json:"carbonNeutral"`
}

// Cart is the mutable aggregate. All monetary fields share Currency.
type Cart struct {
	ID       string           `json:"id"`
	Currency string           `json:"currency"`
	Items    []Item           `json:"items"`
	Subtotal money.Money      `json:"subtotal"`
	Discount *AppliedDiscount `json:"discount,omitempty"`
	Shipping *ShippingOption  `json:"shipping,omitempty"`
	Tax      *money.Money     `json:"tax,omitempty"`
	// TaxRate, when set, derives Tax from the discounted subtotal on every
	// recompute instead of using an externally supplied amount.
	TaxRate  *decimal.Decimal      `json:"taxRate,omitempty"`
	Total    money.Money           `json:"total"`
	Impact   sustainability.Impact `json:"sustainabilityImpact"`
	Warnings []string              `json:"warnings,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// ExpiresAt of zero means the cart never expires.
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// New creates an empty active cart. A ttl of zero creates a cart without
// expiry.
func New(id, currency string, now time.Time, ttl time.Duration) *Cart {
	c := &Cart{
		ID:        id,
		Currency:  currency,
		Subtotal:  money.Zero(currency),
		Total:     money.Zero(currency),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		c.ExpiresAt = now.Add(ttl)
	}
	return c
}

// Expired reports whether the cart is past its expiry at the given time.
func (c *Cart) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

func (c *Cart) ensureActive(now time.Time) error {
	if c.Expired(now) {
		return &ExpiredError{CartID: c.ID, ExpiresAt: c.ExpiresAt}
	}
	return nil
}

// TotalQuantity returns the sum of quantities across all lines.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// FindItem returns the line with the given id, or nil.
func (c *Cart) FindItem(itemID string) *Item {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddItem adds a line for the given product, resolving the unit price from
// the bulk pricing table and customization modifiers. A line with the same
// product and customizations already in the cart is merged by summing
// quantities (and re-resolving the price at the merged quantity) rather than
// duplicated. Returns the id of the affected line.
func (c *Cart) AddItem(now time.Time, p product.Product, quantity int, customizations map[string]string) (string, error) {
	if err := c.ensureActive(now); err != nil {
		return "", err
	}

	next := c.clone()

	if existing := next.findMergeTarget(p.ID, customizations); existing != nil {
		merged := existing.Quantity + quantity
		price, err := pricing.ResolveUnitPriceWithOptions(p, merged, customizations)
		if err != nil {
			return "", err
		}
		existing.Quantity = merged
		existing.UnitPrice = price
		existing.Product = p
		if err := next.recalculate(now); err != nil {
			return "", err
		}
		*c = *next
		return existing.ID, nil
	}

	price, err := pricing.ResolveUnitPriceWithOptions(p, quantity, customizations)
	if err != nil {
		return "", err
	}

	item := Item{
		ID:             uuid.New().String(),
		ProductID:      p.ID,
		Product:        p,
		Quantity:       quantity,
		Customizations: maps.Clone(customizations),
		UnitPrice:      price,
		AddedAt:        now,
	}
	next.Items = append(next.Items, item)

	if err := next.recalculate(now); err != nil {
		return "", err
	}
	*c = *next
	return item.ID, nil
}

// UpdateItemQuantity changes a line's quantity, re-resolving its unit price
// against the given product record. A quantity of zero removes the line.
func (c *Cart) UpdateItemQuantity(now time.Time, itemID string, quantity int, p product.Product) error {
	if err := c.ensureActive(now); err != nil {
		return err
	}
	if quantity == 0 {
		return c.RemoveItem(now, itemID)
	}

	next := c.clone()
	item := next.FindItem(itemID)
	if item == nil {
		return &ItemNotFoundError{CartID: c.ID, ItemID: itemID}
	}

	price, err := pricing.ResolveUnitPriceWithOptions(p, quantity, item.Customizations)
	if err != nil {
		return err
	}
	item.Quantity = quantity
	item.UnitPrice = price
	item.Product = p

	if err := next.recalculate(now); err != nil {
		return err
	}
	*c = *next
	return nil
}

// RemoveItem removes a line unconditionally.
func (c *Cart) RemoveItem(now time.Time, itemID string) error {
	if err := c.ensureActive(now); err != nil {
		return err
	}

	next := c.clone()
	idx := -1
	for i := range next.Items {
		if next.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &ItemNotFoundError{CartID: c.ID, ItemID: itemID}
	}
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)

	if err := next.recalculate(now); err != nil {
		return err
	}
	*c = *next
	return nil
}

// ApplyDiscount attaches a validated discount descriptor. A second discount
// is rejected; remove the existing one first.
func (c *Cart) ApplyDiscount(now time.Time, d promotion.Discount) error {
	if err := c.ensureActive(now); err != nil {
		return err
	}
	if c.Discount != nil {
		return &DiscountAlreadyAppliedError{
			CartID:    c.ID,
			Existing:  c.Discount.Discount.Code,
			Attempted: d.Code,
		}
	}

	next := c.clone()
	next.Discount = &AppliedDiscount{Discount: d}

	if err := next.recalculate(now); err != nil {
		return err
	}
	*c = *next
	return nil
}

// RemoveDiscount detaches the active discount, if any.
func (c *Cart) RemoveDiscount(now time.Time) error {
	if err := c.ensureActive(now); err != nil {
		return err
	}

	next := c.clone()
	next.Discount = nil

	if err := next.recalculate(now); err != nil {
		return err
	}
	*c = *next
	return nil
}

// SetShipping attaches a resolved shipping option.
func (c *Cart) SetShipping(now time.Time, opt ShippingOption) error {
	if err := c.ensureActive(now); err != nil {
		return err
	}

	next := c.clone()
	next.Shipping = &opt

	if err := next.recalculate(now); err != nil {
		return err
	}
	*c = *next
	return nil
}

// SetTax attaches an externally computed tax amount, clearing any tax rate.
func (c *Cart) SetTax(now time.Time, amount money.Money) error {
	if err := c.ensureActive(now); err != nil {
		return err
	}

	next := c.clone()
	next.Tax = &amount
	next.TaxRate = nil

	if err := next.recalculate(now); err != nil {
		return err
	}
	*c = *next
	return nil
}

// SetTaxRate attaches an externally supplied tax rate (percent), applied to
// the discounted subtotal on every recompute.
func (c *Cart) SetTaxRate(now time.Time, rate decimal.Decimal) error {
	if err := c.ensureActive(now); err != nil {
		return err
	}

	next := c.clone()
	next.TaxRate = &rate

	if err := next.recalculate(now); err != nil {
		return err
	}
	*c = *next
	return nil
}

// findMergeTarget returns an existing line with the same product and
// customization selections, or nil.
func (c *Cart) findMergeTarget(productID string, customizations map[string]string) *Item {
	for i := range c.Items {
		it := &c.Items[i]
		if it.ProductID == productID && maps.Equal(it.Customizations, customizations) {
			return it
		}
	}
	return nil
}

// recalculate recomputes subtotal, discount, tax, total, and the
// sustainability impact, then stamps UpdatedAt. It maintains the invariant
// total = subtotal - discount + tax + shipping, with negative totals clamped
// to zero and reported as a warning.
func (c *Cart) recalculate(now time.Time) error {
	c.Warnings = nil

	subtotal := money.Zero(c.Currency)
	for _, it := range c.Items {
		var err error
		subtotal, err = subtotal.Add(it.LineTotal())
		if err != nil {
			return err
		}
	}
	c.Subtotal = subtotal.Round()

	discountAmount := money.Zero(c.Currency)
	if c.Discount != nil {
		amount, err := promotion.Apply(c.Discount.Discount, c.Subtotal)
		if err != nil {
			return err
		}
		c.Discount.Amount = amount
		discountAmount = amount
	}

	remaining, clamped, err := c.Subtotal.SubFloor(discountAmount)
	if err != nil {
		return err
	}
	if clamped {
		c.Warnings = append(c.Warnings, "discount exceeds subtotal; total clamped to zero")
	}

	if c.TaxRate != nil {
		tax := remaining.PercentOf(*c.TaxRate).Round()
		c.Tax = &tax
	}
	if c.Tax != nil {
		if remaining, err = remaining.Add(*c.Tax); err != nil {
			return err
		}
	}
	if c.Shipping != nil {
		if remaining, err = remaining.Add(c.Shipping.Price); err != nil {
			return err
		}
	}
	c.Total = remaining.Round()

	lines := make([]sustainability.Line, len(c.Items))
	for i, it := range c.Items {
		lines[i] = sustainability.Line{Product: it.Product, Quantity: it.Quantity}
	}
	c.Impact = sustainability.Aggregate(lines)

	c.UpdatedAt = now
	return nil
}

// clone returns a deep copy of the cart.
func (c *Cart) clone() *Cart {
	next := *c

	next.Items = make([]Item, len(c.Items))
	for i, it := range c.Items {
		it.Customizations = maps.Clone(it.Customizations)
		if it.DiscountedPrice != nil {
			dp := *it.DiscountedPrice
			it.DiscountedPrice = &dp
		}
		next.Items[i] = it
	}
	if c.Discount != nil {
		d := *c.Discount
		next.Discount = &d
	}
	if c.Shipping != nil {
		s := *c.Shipping
		next.Shipping = &s
	}
	if c.Tax != nil {
		t := *c.Tax
		next.Tax = &t
	}
	if c.TaxRate != nil {
		r := *c.TaxRate
		next.TaxRate = &r
	}
	next.Warnings = append([]string(nil), c.Warnings...)

	return &next
}
