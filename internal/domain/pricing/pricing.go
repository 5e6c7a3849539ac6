// Package pricing resolves per-unit prices from a product's bulk pricing
// table and customization selections.
package pricing

import (
	"fmt"

	"github.com/ecopack/cartengine/internal/domain/money"
	"github.com/ecopack/cartengine/internal/domain/product"
)

// QuantityBelowMinimumError indicates a requested quantity under the
// product's minimum order quantity.
type QuantityBelowMinimumError struct {
	ProductID string
	Quantity  int
	Minimum   int
}

func (e *QuantityBelowMinimumError) Error() string {
	return fmt.Sprintf("quantity %d below minimum order quantity %d for product %s",
		e.Quantity, e.Minimum, e.ProductID)
}

// UnknownCustomizationError indicates a customization selection referencing
// an option or value the product does not offer.
type UnknownCustomizationError struct {
	ProductID string
	OptionID  string
	ValueID   string
}

func (e *UnknownCustomizationError) Error() string {
	return fmt.Sprintf("unknown customization %s=%s for product %s",
		e.OptionID, e.ValueID, e.ProductID)
}

// TierFor returns the bulk pricing tier matching the given quantity, or nil
// when no tier matches and the base price applies. Malformed tables with
// overlapping bands are tolerated: the tier with the highest MinQuantity
// (most specific) wins.
func TierFor(p product.Product, quantity int) *product.BulkPricingTier {
	var match *product.BulkPricingTier
	for i := range p.BulkPricing {
		t := &p.BulkPricing[i]
		if !t.Contains(quantity) {
			continue
		}
		if match == nil || t.MinQuantity > match.MinQuantity {
			match = t
		}
	}
	return match
}

// ResolveUnitPrice determines the per-unit price for the given quantity.
// Tier prices already include the volume break, so the tier's discount
// percentage is never reapplied. Quantities with no matching tier fall back
// to the product's base price.
func ResolveUnitPrice(p product.Product, quantity int) (money.Money, error) {
	if quantity < p.MinimumOrderQty {
		return money.Money{}, &QuantityBelowMinimumError{
			ProductID: p.ID,
			Quantity:  quantity,
			Minimum:   p.MinimumOrderQty,
		}
	}

	if t := TierFor(p, quantity); t != nil {
		return t.Price, nil
	}
	return p.Price, nil
}

// ResolveUnitPriceWithOptions resolves the unit price including per-unit
// price modifiers for the selected customizations. The customizations map
// is option id to value id.
func ResolveUnitPriceWithOptions(p product.Product, quantity int, customizations map[string]string) (money.Money, error) {
	price, err := ResolveUnitPrice(p, quantity)
	if err != nil {
		return money.Money{}, err
	}

	for optID, valID := range customizations {
		opt := findOption(p, optID)
		if opt == nil {
			return money.Money{}, &UnknownCustomizationError{ProductID: p.ID, OptionID: optID, ValueID: valID}
		}
		val := findValue(opt, valID)
		if val == nil {
			return money.Money{}, &UnknownCustomizationError{ProductID: p.ID, OptionID: optID, ValueID: valID}
		}

		if opt.PriceModifier != nil {
			if price, err = price.Add(*opt.PriceModifier); err != nil {
				return money.Money{}, err
			}
		}
		if val.PriceModifier != nil {
			if price, err = price.Add(*val.PriceModifier); err != nil {
				return money.Money{}, err
			}
		}
	}
	return price, nil
}

func findOption(p product.Product, id string) *product.CustomizationOption {
	for i := range p.Customizations {
		if p.Customizations[i].ID == id {
			return &p.Customizations[i]
		}
	}
	return nil
}

func findValue(opt *product.CustomizationOption, id string) *product.CustomizationValue {
	for i := range opt.Values {
		if opt.Values[i].ID == id {
			return &opt.Values[i]
		}
	}
	return nil
}
