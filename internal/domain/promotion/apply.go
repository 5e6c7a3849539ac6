package promotion

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ecopack/cartengine/internal/domain/money"
)

var hundred = decimal.NewFromInt(100)

// Apply computes the monetary discount for an already-validated descriptor
// against a subtotal. Percentage rates must be within [0, 100]; fixed amounts
// are clamped so the discount never exceeds the subtotal. The result is
// rounded to the subtotal currency's minor units.
func Apply(d Discount, subtotal money.Money) (money.Money, error) {
	switch d.Type {
	case TypePercentage:
		if d.Rate.IsNegative() || d.Rate.GreaterThan(hundred) {
			return money.Money{}, errors.Wrapf(ErrInvalidRate, "code %s rate %s", d.Code, d.Rate)
		}
		return subtotal.PercentOf(d.Rate).Round(), nil

	case TypeFixed:
		amount, err := money.Min(d.Amount, subtotal)
		if err != nil {
			return money.Money{}, errors.Wrapf(err, "apply fixed discount %s", d.Code)
		}
		if amount.IsNegative() {
			amount = money.Zero(subtotal.Currency)
		}
		return amount.Round(), nil

	default:
		return money.Money{}, errors.Errorf("unsupported discount type: %q", d.Type)
	}
}

// descriptor converts a stored rule into an applicable Discount. The currency
// is the cart currency for fixed-amount rules.
func descriptor(rule *Rule, currency string) Discount {
	d := Discount{
		Code:        rule.Code,
		Type:        rule.Type,
		Description: rule.Description,
	}
	switch rule.Type {
	case TypePercentage:
		d.Rate = rule.Value
	case TypeFixed:
		cur := rule.Currency
		if cur == "" {
			cur = currency
		}
		d.Amount = money.New(rule.Value, cur)
	}
	return d
}
